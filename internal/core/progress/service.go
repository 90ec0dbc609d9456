package progress

import (
	"context"
	"log/slog"

	"github.com/satomatashiki/manabiya/internal/core/lesson"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

type Service struct {
	repo    Repository
	lessons *lesson.Service
	logger  *slog.Logger
}

// NewService wires progress on top of the lesson service, which already
// enforces visibility and content gating.
func NewService(repo Repository, lessons *lesson.Service, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		lessons: lessons,
		logger:  logger,
	}
}

// CompleteLesson marks a lesson done for the student. Marking an already
// completed lesson is a no-op. The student must be able to open the lesson.
func (service *Service) CompleteLesson(ctx context.Context, lessonID string, student *sec.Identity) (*Completion, error) {
	target, err := service.lessons.GetLesson(ctx, lessonID, student)
	if err != nil {
		return nil, err
	}

	if err := service.repo.Mark(ctx, target.ID, student.UserID); err != nil {
		return nil, err
	}

	service.logger.Info("lesson_completed",
		slog.String("lesson_id", target.ID),
		slog.String("student_id", student.UserID),
	)
	return &Completion{LessonID: target.ID, StudentID: student.UserID}, nil
}

// UncompleteLesson clears the mark. Clearing a lesson never completed is a
// no-op.
func (service *Service) UncompleteLesson(ctx context.Context, lessonID string, student *sec.Identity) error {
	return service.repo.Unmark(ctx, lessonID, student.UserID)
}

// GetCourseProgress summarizes completion against the course's published
// lessons. The course must be visible to the student.
func (service *Service) GetCourseProgress(ctx context.Context, courseID string, student *sec.Identity) (*CourseProgress, error) {
	// Listing enforces course visibility for the viewer.
	if _, err := service.lessons.ListLessons(ctx, courseID, student); err != nil {
		return nil, err
	}

	total, err := service.repo.CountPublishedLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := service.repo.CompletedLessonIDs(ctx, courseID, student.UserID)
	if err != nil {
		return nil, err
	}

	return &CourseProgress{
		CourseID:           courseID,
		Completed:          int64(len(completed)),
		Total:              total,
		CompletedLessonIDs: completed,
	}, nil
}
