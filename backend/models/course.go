package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type SyllabusItem struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
}

// CourseDocuments holds the single course-level PDF references.
type CourseDocuments struct {
	SyllabusPdf       string `bson:"syllabusPdf" json:"syllabusPdf"`
	NotesPdf          string `bson:"notesPdf" json:"notesPdf"`
	PreviousPapersPdf string `bson:"previousPapersPdf" json:"previousPapersPdf"`
}

// TitledDocument is one entry of the courseNotes / previousPapers collections.
type TitledDocument struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title string             `bson:"title" json:"title"`
	URL   string             `bson:"url" json:"url"`
}

type Review struct {
	UserID  primitive.ObjectID `bson:"userId" json:"userId"`
	Comment string             `bson:"comment" json:"comment"`
	Rating  int                `bson:"rating" json:"rating"`
}

type Course struct {
	ID                     primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title                  string               `bson:"title" json:"title"`
	Description            string               `bson:"description" json:"description"`
	Category               string               `bson:"category" json:"category"`
	Thumbnail              string               `bson:"thumbnail" json:"thumbnail"`
	Price                  float64              `bson:"price" json:"price"`
	Duration               string               `bson:"duration" json:"duration"`
	Prerequisites          []string             `bson:"prerequisites" json:"prerequisites"`
	CourseLevel            string               `bson:"courseLevel" json:"courseLevel"` // Beginner, Intermediate, Advanced
	CertificationAvailable bool                 `bson:"certificationAvailable" json:"certificationAvailable"`
	Language               string               `bson:"language" json:"language"`
	Board                  string               `bson:"board" json:"board"`
	ClassLevel             string               `bson:"classLevel" json:"classLevel"`
	Subject                string               `bson:"subject" json:"subject"`
	TargetAudience         string               `bson:"targetAudience" json:"targetAudience"`
	Syllabus               []SyllabusItem       `bson:"syllabus" json:"syllabus"`
	CourseDocuments        CourseDocuments      `bson:"courseDocuments" json:"courseDocuments"`
	CourseNotes            []TitledDocument     `bson:"courseNotes" json:"courseNotes"`
	PreviousPapers         []TitledDocument     `bson:"previousPapers" json:"previousPapers"`
	Chapters               []primitive.ObjectID `bson:"chapters" json:"chapters"` // ordered
	Lessons                []primitive.ObjectID `bson:"lessons" json:"lessons"`   // flattened for direct access
	Reviews                []Review             `bson:"reviews" json:"reviews"`
	Status                 string               `bson:"status" json:"status"` // pending, approved, rejected
	ApprovedBy             *primitive.ObjectID  `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovalDate           *time.Time           `bson:"approvalDate,omitempty" json:"approvalDate,omitempty"`
	RejectionReason        string               `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	Trainer                primitive.ObjectID   `bson:"trainer" json:"trainer"`
	CreatedAt              time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time            `bson:"updatedAt" json:"updatedAt"`
}
