package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Chapter struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Course      primitive.ObjectID   `bson:"course" json:"course"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Order       int                  `bson:"order" json:"order"`
	Lessons     []primitive.ObjectID `bson:"lessons" json:"lessons"` // ordered
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
