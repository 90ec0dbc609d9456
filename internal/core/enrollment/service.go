package enrollment

import (
	"context"
	"log/slog"

	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

type Service struct {
	repo   Repository
	spaces space.Repository
	logger *slog.Logger
}

func NewService(repo Repository, spaces space.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		spaces: spaces,
		logger: logger,
	}
}

// Enroll adds the student to a published space, enforcing the space's
// capacity. Enrolling twice is a conflict; a previously removed student is
// reactivated instead of re-inserted.
func (service *Service) Enroll(ctx context.Context, spaceID string, student *sec.Identity) (*Enrollment, error) {
	target, err := service.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if !target.Published {
		return nil, apperr.NotFound("Space")
	}

	existing, err := service.repo.Get(ctx, target.ID, student.UserID)
	if err == nil && existing.Active() {
		return nil, apperr.Conflict("Already enrolled in this space")
	}
	if err != nil && !apperr.IsAppError(err) {
		return nil, err
	}

	if err := service.checkCapacity(ctx, target); err != nil {
		return nil, err
	}

	if existing != nil {
		if err := service.repo.SetStatus(ctx, target.ID, student.UserID, StatusActive); err != nil {
			return nil, err
		}
		existing.Status = StatusActive
		service.logger.Info("enrollment_reactivated",
			slog.String("space_id", target.ID),
			slog.String("student_id", student.UserID),
		)
		return existing, nil
	}

	enrollment := &Enrollment{
		SpaceID:   target.ID,
		StudentID: student.UserID,
		Status:    StatusActive,
	}
	if err := service.repo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	service.logger.Info("enrollment_created",
		slog.String("space_id", target.ID),
		slog.String("student_id", student.UserID),
	)
	return enrollment, nil
}

// Unenroll marks the membership removed. Unenrolling when not enrolled is
// not an error.
func (service *Service) Unenroll(ctx context.Context, spaceID string, student *sec.Identity) error {
	err := service.repo.SetStatus(ctx, spaceID, student.UserID, StatusRemoved)
	if err != nil && !apperr.IsAppError(err) {
		return err
	}
	return nil
}

// ListStudents returns the active roster of a space. Owner only.
func (service *Service) ListStudents(ctx context.Context, spaceID string, actor *sec.Identity, limit, offset int) ([]*Enrollment, int, error) {
	target, err := service.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return nil, 0, err
	}
	if actor == nil || actor.UserID != target.InstructorID {
		return nil, 0, apperr.Forbidden("Only the space owner can list its students")
	}
	return service.repo.ListBySpace(ctx, target.ID, limit, offset)
}

// ListOwn returns the spaces the student currently belongs to.
func (service *Service) ListOwn(ctx context.Context, student *sec.Identity, limit, offset int) ([]*Enrollment, int, error) {
	return service.repo.ListByStudent(ctx, student.UserID, limit, offset)
}

// IsEnrolled reports whether the student has an active membership.
func (service *Service) IsEnrolled(ctx context.Context, spaceID, studentID string) (bool, error) {
	enrollment, err := service.repo.Get(ctx, spaceID, studentID)
	if err != nil {
		if apperr.IsAppError(err) {
			return false, nil
		}
		return false, err
	}
	return enrollment.Active(), nil
}

func (service *Service) checkCapacity(ctx context.Context, target *space.Space) error {
	if target.StudentCapacity == nil {
		return nil
	}
	enrolled, err := service.spaces.CountStudents(ctx, target.ID)
	if err != nil {
		return err
	}
	if enrolled >= *target.StudentCapacity {
		return apperr.Unprocessable("This space has reached its student capacity")
	}
	return nil
}
