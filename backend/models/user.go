package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleLearner = "learner"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

// SessionToken is one entry of the user's active-token list.
type SessionToken struct {
	Token string `bson:"token" json:"token"`
}

type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FullName        string               `bson:"fullName" json:"fullName"`
	Username        string               `bson:"username" json:"username"`
	Email           string               `bson:"email" json:"email"`
	Password        string               `bson:"password" json:"-"` // bcrypt hash, never exposed
	Role            string               `bson:"role" json:"role"`  // learner, trainer, admin
	PhoneNumber     string               `bson:"phoneNumber" json:"phoneNumber"`
	Gender          string               `bson:"gender" json:"gender"`
	ProfilePicture  string               `bson:"profilePicture" json:"profilePicture"`
	IsBanned        bool                 `bson:"isBanned" json:"isBanned"`
	IsDeleted       bool                 `bson:"isDeleted" json:"isDeleted"`
	DeletedAt       *time.Time           `bson:"deletedAt" json:"deletedAt,omitempty"`
	EnrolledCourses []primitive.ObjectID `bson:"enrolledCourses" json:"enrolledCourses"`
	Tokens          []SessionToken       `bson:"tokens" json:"-"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}
