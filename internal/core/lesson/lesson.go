// Package lesson implements the ordered lessons inside a course. Lesson
// content is gated: paid courses only reveal it to students with a completed
// purchase, except lessons marked as free previews.
package lesson

import "time"

// Lesson is one unit of course content, ordered by Position.
type Lesson struct {
	ID       string  `json:"id"`
	CourseID string  `json:"course_id"`
	Title    string  `json:"title"`
	Content  string  `json:"content,omitempty"`
	VideoURL *string `json:"video_url,omitempty"`

	Position    int64 `json:"position"`
	FreePreview bool  `json:"free_preview"`
	Published   bool  `json:"published"`

	// Locked is set on reads for viewers without access. Locked lessons
	// have Content and VideoURL stripped.
	Locked bool `json:"locked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Redacted returns a copy safe to show viewers without access: the lesson
// exists in the outline but its content is hidden.
func (l *Lesson) Redacted() *Lesson {
	clone := *l
	clone.Content = ""
	clone.VideoURL = nil
	clone.Locked = true
	return &clone
}

const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldVideoURL = "video_url"
	FieldLessons  = "lessons"
)
