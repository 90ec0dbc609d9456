package progress

import "context"

// Repository defines persistence for lesson completions.
type Repository interface {
	// Mark records a completion; marking twice is a no-op.
	Mark(ctx context.Context, lessonID, studentID string) error

	// Unmark removes a completion; unmarking a lesson never completed is a
	// no-op.
	Unmark(ctx context.Context, lessonID, studentID string) error

	IsMarked(ctx context.Context, lessonID, studentID string) (bool, error)

	// CompletedLessonIDs returns the student's completed lessons within one
	// course, in lesson order.
	CompletedLessonIDs(ctx context.Context, courseID, studentID string) ([]string, error)

	// CountPublishedLessons is the progress denominator.
	CountPublishedLessons(ctx context.Context, courseID string) (int64, error)
}
