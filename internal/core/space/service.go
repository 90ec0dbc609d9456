package space

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/validate"
	"github.com/satomatashiki/manabiya/pkg/slug"
	"github.com/satomatashiki/manabiya/pkg/uuidv7"
)

// slugAttempts bounds the suffix search when a generated slug collides.
const slugAttempts = 20

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateInput holds the fields accepted when opening a new space.
type CreateInput struct {
	Name            string
	Description     string
	LogoURL         *string
	StudentCapacity *int64
}

func (service *Service) CreateSpace(ctx context.Context, instructor *sec.Identity, input CreateInput) (*Space, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 120)
	if input.LogoURL != nil {
		validator.URL(FieldLogoURL, *input.LogoURL)
	}
	if input.StudentCapacity != nil {
		validator.NonNegative(FieldStudentCapacity, *input.StudentCapacity)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	spaceSlug, err := service.availableSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	space := &Space{
		ID:              uuidv7.New(),
		InstructorID:    instructor.UserID,
		Name:            input.Name,
		Slug:            spaceSlug,
		Description:     input.Description,
		LogoURL:         input.LogoURL,
		StudentCapacity: input.StudentCapacity,
	}

	if err := service.repo.Create(ctx, space); err != nil {
		return nil, err
	}

	service.logger.Info("space_created",
		slog.String("space_id", space.ID),
		slog.String("slug", space.Slug),
	)
	return space, nil
}

// availableSlug derives a unique slug from the name, probing numeric suffixes
// on collision.
func (service *Service) availableSlug(ctx context.Context, name string) (string, error) {
	base := slug.From(name)
	if base == "" {
		return "", validate.RequiredError(FieldName, "Cannot derive a slug from this name")
	}

	candidate := base
	for attempt := 2; attempt <= slugAttempts; attempt++ {
		_, err := service.repo.GetBySlug(ctx, candidate)
		if err != nil {
			if apperr.IsAppError(err) {
				return candidate, nil
			}
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", apperr.Conflict("Could not find an available slug for this name")
}

// GetSpace resolves a space by slug, hiding unpublished spaces from anyone
// but their owner.
func (service *Service) GetSpace(ctx context.Context, slugOrID string, viewer *sec.Identity) (*Space, error) {
	space, err := service.repo.GetBySlug(ctx, slugOrID)
	if err != nil {
		space, err = service.repo.GetByID(ctx, slugOrID)
	}
	if err != nil {
		return nil, err
	}

	if !space.Published && !service.owns(viewer, space) {
		// Indistinguishable from a missing space.
		return nil, apperr.NotFound("Space")
	}
	return space, nil
}

func (service *Service) ListOwnSpaces(ctx context.Context, instructor *sec.Identity, limit, offset int) ([]*Space, int, error) {
	return service.repo.ListByInstructor(ctx, instructor.UserID, limit, offset)
}

func (service *Service) UpdateSpace(ctx context.Context, id string, actor *sec.Identity, input UpdateInput) (*Space, error) {
	space, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !service.owns(actor, space) {
		return nil, apperr.Forbidden("Only the space owner can modify it")
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, 120)
	}
	if input.LogoURL != nil {
		validator.URL(FieldLogoURL, *input.LogoURL)
	}
	if input.StudentCapacity != nil {
		validator.NonNegative(FieldStudentCapacity, *input.StudentCapacity)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Shrinking capacity below current enrollment is rejected; existing
	// students are never dropped.
	if input.StudentCapacity != nil {
		enrolled, err := service.repo.CountStudents(ctx, id)
		if err != nil {
			return nil, err
		}
		if *input.StudentCapacity < enrolled {
			return nil, apperr.Unprocessable("Capacity cannot be lower than current enrollment")
		}
	}

	if err := service.repo.Update(ctx, id, input); err != nil {
		return nil, err
	}

	service.logger.Info("space_updated", slog.String("space_id", id))
	return service.repo.GetByID(ctx, id)
}

func (service *Service) DeleteSpace(ctx context.Context, id string, actor *sec.Identity) error {
	space, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !service.owns(actor, space) {
		return apperr.Forbidden("Only the space owner can delete it")
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("space_deleted", slog.String("space_id", id))
	return nil
}

func (service *Service) owns(viewer *sec.Identity, space *Space) bool {
	return viewer != nil && viewer.UserID == space.InstructorID
}
