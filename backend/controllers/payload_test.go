package controllers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aqib6220/lms/backend/models"
	"github.com/Aqib6220/lms/backend/storage"
)

func TestDecodeArray(t *testing.T) {
	chapters := decodeArray[ChapterInput](`[{"title":"Intro","lessons":[{"title":"L1","videoType":"upload","hasNotes":"true"}]}]`)
	assert.Len(t, chapters, 1)
	assert.Equal(t, "Intro", chapters[0].Title)
	assert.Len(t, chapters[0].Lessons, 1)
	assert.True(t, bool(chapters[0].Lessons[0].HasNotes))

	// Parse failure yields an empty collection, not an error.
	assert.Nil(t, decodeArray[ChapterInput](`{not json`))
	assert.Nil(t, decodeArray[ChapterInput](""))
}

func TestFlexBool(t *testing.T) {
	type holder struct {
		A FlexBool `json:"a"`
		B FlexBool `json:"b"`
		C FlexBool `json:"c"`
		D FlexBool `json:"d"`
	}
	var h holder
	err := json.Unmarshal([]byte(`{"a":true,"b":"true","c":false,"d":"false"}`), &h)
	assert.NoError(t, err)
	assert.True(t, bool(h.A))
	assert.True(t, bool(h.B))
	assert.False(t, bool(h.C))
	assert.False(t, bool(h.D))
}

func TestTitledMeta(t *testing.T) {
	// Entries may be objects or bare strings.
	meta := decodeArray[TitledMeta](`[{"title":"Algebra"},"Geometry"]`)
	assert.Len(t, meta, 2)
	assert.Equal(t, "Algebra", meta[0].Title)
	assert.Equal(t, "Geometry", meta[1].Title)
}

func TestVideoMappingDecode(t *testing.T) {
	mappings := decodeArray[VideoMapping](`[{"chapterIndex":0,"lessonIndex":2},{"chapterIndex":1,"lessonIndex":0}]`)
	assert.Len(t, mappings, 2)
	assert.Equal(t, 2, mappings[0].LessonIndex)
	assert.Equal(t, 1, mappings[1].ChapterIndex)
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"algebra", "sets"}, stringList(`["algebra","sets"]`))
	assert.Equal(t, []string{"algebra"}, stringList("algebra"))
	assert.Nil(t, stringList(""))
}

func TestTitledDocuments(t *testing.T) {
	files := []storage.UploadedFile{
		{URL: "https://host/raw/upload/v1/course_pdfs/pdf-1.pdf"},
		{URL: "https://host/raw/upload/v1/course_pdfs/pdf-2.pdf"},
	}

	docs := titledDocuments(files, []TitledMeta{{Title: "Algebra"}}, "Note", 3)
	assert.Len(t, docs, 2)
	assert.Equal(t, "Algebra", docs[0].Title)
	assert.Equal(t, "Note 5", docs[1].Title) // numbered past the existing 3 + position
	assert.False(t, docs[0].ID.IsZero())
}

func TestRemoveTitledDocuments(t *testing.T) {
	keep := models.TitledDocument{ID: primitive.NewObjectID(), Title: "Keep", URL: "https://host/a.pdf"}
	drop := models.TitledDocument{ID: primitive.NewObjectID(), Title: "Drop", URL: "https://host/b.pdf"}

	queue := &mediaQueue{}
	kept := removeTitledDocuments([]models.TitledDocument{keep, drop}, []string{drop.ID.Hex()}, queue)

	assert.Len(t, kept, 1)
	assert.Equal(t, "Keep", kept[0].Title)
	assert.Len(t, queue.items, 1)
	assert.Equal(t, "https://host/b.pdf", queue.items[0].url)

	// No removal list leaves everything untouched.
	queue2 := &mediaQueue{}
	assert.Len(t, removeTitledDocuments([]models.TitledDocument{keep, drop}, nil, queue2), 2)
	assert.Empty(t, queue2.items)
}

func TestMediaQueue(t *testing.T) {
	q := &mediaQueue{}
	q.Add("", "image") // empty URLs are never queued
	q.Add("https://host/x.png", "image")
	assert.Len(t, q.items, 1)

	q.Reset()
	assert.Empty(t, q.items)
}
