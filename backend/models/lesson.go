package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VideoTypeUpload  = "upload"
	VideoTypeYouTube = "youtube"
)

type Lesson struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Chapter       primitive.ObjectID `bson:"chapter" json:"chapter"`
	Course        primitive.ObjectID `bson:"course" json:"course"` // denormalized for direct querying
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	VideoURL      string             `bson:"videoUrl" json:"videoUrl"`
	VideoType     string             `bson:"videoType" json:"videoType"` // upload, youtube
	NotesURL      string             `bson:"notesUrl" json:"notesUrl"`
	Duration      string             `bson:"duration" json:"duration"`
	Order         int                `bson:"order" json:"order"` // within chapter
	IsFreePreview bool               `bson:"isFreePreview" json:"isFreePreview"`
	Unlocked      bool               `bson:"unlocked" json:"unlocked"`
	Subtitles     string             `bson:"subtitles" json:"subtitles"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
