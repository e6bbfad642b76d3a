package controllers

import (
	"bytes"
	"encoding/json"
)

// Collection fields of the multipart contract arrive either as a JSON-encoded
// string or as an already-parsed array, depending on transport. Everything is
// normalized here before any controller logic runs; parse failure yields an
// empty collection.

// FlexBool accepts JSON booleans and the strings "true"/"false".
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	*b = s == "true"
	return nil
}

type LessonInput struct {
	ID            string   `json:"_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	VideoType     string   `json:"videoType"`
	VideoURL      string   `json:"videoUrl"`
	NotesURL      string   `json:"notesUrl"`
	HasNotes      FlexBool `json:"hasNotes"`
	Duration      string   `json:"duration"`
	Order         int      `json:"order"`
	IsFreePreview FlexBool `json:"isFreePreview"`
	Subtitles     string   `json:"subtitles"`
}

type ChapterInput struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Order       int           `json:"order"`
	Lessons     []LessonInput `json:"lessons"`
}

// VideoMapping pairs one uploaded video file (by its position in the
// lessonVideos array) with a chapter/lesson index.
type VideoMapping struct {
	ChapterIndex int `json:"chapterIndex"`
	LessonIndex  int `json:"lessonIndex"`
}

// TitledMeta is a courseNotesMeta / previousPapersMeta entry: either an
// object carrying a title or a bare string.
type TitledMeta struct {
	Title string `json:"title"`
}

func (m *TitledMeta) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Title = s
		return nil
	}
	type alias TitledMeta
	var a alias
	if err := json.Unmarshal(data, &a); err == nil {
		m.Title = a.Title
	}
	return nil
}

func decodeArray[T any](raw string) []T {
	if raw == "" {
		return nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// mediaQueue collects media references to delete strictly after the
// surrounding database transaction commits.
type mediaQueue struct {
	items []mediaRef
}

type mediaRef struct {
	url  string
	hint string
}

func (q *mediaQueue) Add(url, hint string) {
	if url == "" {
		return
	}
	q.items = append(q.items, mediaRef{url: url, hint: hint})
}

// Reset empties the queue; called when a transaction callback is retried so
// aborted attempts leave nothing queued.
func (q *mediaQueue) Reset() {
	q.items = nil
}
