// Package progress tracks which lessons a student has completed and
// summarizes per-course progress.
package progress

import "time"

// Completion is one (lesson, student) completion mark.
type Completion struct {
	LessonID  string    `json:"lesson_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CourseProgress summarizes a student's progress through the published
// lessons of one course.
type CourseProgress struct {
	CourseID  string `json:"course_id"`
	Completed int64  `json:"completed"`
	Total     int64  `json:"total"`

	// CompletedLessonIDs lets clients mark individual lessons done.
	CompletedLessonIDs []string `json:"completed_lesson_ids"`
}

// Done reports whether every published lesson is completed.
func (p *CourseProgress) Done() bool {
	return p.Total > 0 && p.Completed >= p.Total
}
