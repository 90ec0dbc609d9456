package lesson

import (
	"context"
	"log/slog"

	"github.com/satomatashiki/manabiya/internal/core/course"
	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/validate"
	"github.com/satomatashiki/manabiya/pkg/uuidv7"
)

// AccessChecker reports whether a student may open the paid content of a
// course. Satisfied by the purchase service.
type AccessChecker interface {
	CanAccess(ctx context.Context, courseID, studentID string) (bool, error)
}

type Service struct {
	repo    Repository
	courses course.Repository
	spaces  space.Repository
	access  AccessChecker
	logger  *slog.Logger
}

func NewService(repo Repository, courses course.Repository, spaces space.Repository, access AccessChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		courses: courses,
		spaces:  spaces,
		access:  access,
		logger:  logger,
	}
}

// CreateInput holds the fields accepted when adding a lesson to a course.
type CreateInput struct {
	Title       string
	Content     string
	VideoURL    *string
	FreePreview bool
}

func (service *Service) CreateLesson(ctx context.Context, courseID string, actor *sec.Identity, input CreateInput) (*Lesson, error) {
	parent, err := service.ownedCourse(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 160)
	if input.VideoURL != nil {
		validator.URL(FieldVideoURL, *input.VideoURL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// New lessons go to the end of the course.
	position, err := service.repo.NextPosition(ctx, parent.ID)
	if err != nil {
		return nil, err
	}

	lesson := &Lesson{
		ID:          uuidv7.New(),
		CourseID:    parent.ID,
		Title:       input.Title,
		Content:     input.Content,
		VideoURL:    input.VideoURL,
		Position:    position,
		FreePreview: input.FreePreview,
	}

	if err := service.repo.Create(ctx, lesson); err != nil {
		return nil, err
	}

	service.logger.Info("lesson_created",
		slog.String("lesson_id", lesson.ID),
		slog.String("course_id", parent.ID),
	)
	return lesson, nil
}

// GetLesson returns a lesson with its content, or an error when the viewer
// may not open it. Free previews are open to anyone who can see the course.
func (service *Service) GetLesson(ctx context.Context, id string, viewer *sec.Identity) (*Lesson, error) {
	lesson, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	parent, err := service.visibleCourse(ctx, lesson.CourseID, viewer)
	if err != nil {
		return nil, err
	}

	// Drafts are invisible outside the owning instructor.
	if !lesson.Published && !service.isOwner(ctx, parent, viewer) {
		return nil, apperr.NotFound("Lesson")
	}

	open, err := service.canOpen(ctx, parent, lesson, viewer)
	if err != nil {
		return nil, err
	}
	if !open {
		if viewer == nil {
			return nil, apperr.Unauthorized("Sign in to access this lesson")
		}
		return nil, apperr.Forbidden("Purchase the course to access this lesson")
	}
	return lesson, nil
}

// ListLessons returns the course outline. Lessons the viewer cannot open are
// included but redacted, so the outline stays browsable.
func (service *Service) ListLessons(ctx context.Context, courseID string, viewer *sec.Identity) ([]*Lesson, error) {
	parent, err := service.visibleCourse(ctx, courseID, viewer)
	if err != nil {
		return nil, err
	}

	all, err := service.repo.ListByCourse(ctx, parent.ID)
	if err != nil {
		return nil, err
	}

	owner := service.isOwner(ctx, parent, viewer)
	lessons := make([]*Lesson, 0, len(all))
	for _, lesson := range all {
		if !lesson.Published && !owner {
			continue
		}
		open, err := service.canOpen(ctx, parent, lesson, viewer)
		if err != nil {
			return nil, err
		}
		if !open {
			lesson = lesson.Redacted()
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

func (service *Service) UpdateLesson(ctx context.Context, id string, actor *sec.Identity, input UpdateInput) (*Lesson, error) {
	lesson, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := service.ownedCourse(ctx, lesson.CourseID, actor); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, 160)
	}
	if input.VideoURL != nil {
		validator.URL(FieldVideoURL, *input.VideoURL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Update(ctx, id, input); err != nil {
		return nil, err
	}
	return service.repo.GetByID(ctx, id)
}

// Reorder rewrites lesson positions to match the given ID order. Every lesson
// of the course must appear exactly once.
func (service *Service) Reorder(ctx context.Context, courseID string, actor *sec.Identity, orderedIDs []string) ([]*Lesson, error) {
	parent, err := service.ownedCourse(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}

	lessons, err := service.repo.ListByCourse(ctx, parent.ID)
	if err != nil {
		return nil, err
	}

	if len(orderedIDs) != len(lessons) {
		return nil, apperr.ValidationError("Reorder must list every lesson of the course exactly once")
	}
	known := make(map[string]bool, len(lessons))
	for _, lesson := range lessons {
		known[lesson.ID] = true
	}
	for _, id := range orderedIDs {
		if !known[id] {
			return nil, apperr.ValidationError("Unknown lesson in reorder: " + id)
		}
		delete(known, id)
	}

	for position, id := range orderedIDs {
		if err := service.repo.SetPosition(ctx, id, int64(position)); err != nil {
			return nil, err
		}
	}

	service.logger.Info("lessons_reordered", slog.String("course_id", parent.ID))
	return service.repo.ListByCourse(ctx, parent.ID)
}

func (service *Service) DeleteLesson(ctx context.Context, id string, actor *sec.Identity) error {
	lesson, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := service.ownedCourse(ctx, lesson.CourseID, actor); err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("lesson_deleted", slog.String("lesson_id", id))
	return nil
}

// canOpen decides content visibility: owners and free courses always, free
// previews for everyone, paid content only with a completed purchase.
func (service *Service) canOpen(ctx context.Context, parent *course.Course, lesson *Lesson, viewer *sec.Identity) (bool, error) {
	if service.isOwner(ctx, parent, viewer) {
		return true, nil
	}
	if parent.Free() || lesson.FreePreview {
		return true, nil
	}
	if viewer == nil {
		return false, nil
	}
	return service.access.CanAccess(ctx, parent.ID, viewer.UserID)
}

func (service *Service) isOwner(ctx context.Context, parent *course.Course, viewer *sec.Identity) bool {
	if viewer == nil {
		return false
	}
	owner, err := service.spaces.GetByID(ctx, parent.SpaceID)
	if err != nil {
		return false
	}
	return viewer.UserID == owner.InstructorID
}

func (service *Service) ownedCourse(ctx context.Context, courseID string, actor *sec.Identity) (*course.Course, error) {
	parent, err := service.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	owner, err := service.spaces.GetByID(ctx, parent.SpaceID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.UserID != owner.InstructorID {
		return nil, apperr.Forbidden("Only the space owner can manage its lessons")
	}
	return parent, nil
}

// visibleCourse loads a course by ID, hiding unpublished courses and spaces
// from anyone but the owner.
func (service *Service) visibleCourse(ctx context.Context, courseID string, viewer *sec.Identity) (*course.Course, error) {
	parent, err := service.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if service.isOwner(ctx, parent, viewer) {
		return parent, nil
	}
	if !parent.Published {
		return nil, apperr.NotFound("Course")
	}
	owner, err := service.spaces.GetByID(ctx, parent.SpaceID)
	if err != nil {
		return nil, err
	}
	if !owner.Published {
		return nil, apperr.NotFound("Course")
	}
	return parent, nil
}
