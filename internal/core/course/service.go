package course

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/validate"
	"github.com/satomatashiki/manabiya/pkg/slug"
	"github.com/satomatashiki/manabiya/pkg/uuidv7"
)

const slugAttempts = 20

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

// CreateInput holds the fields accepted when adding a course to a space.
type CreateInput struct {
	Title       string
	Description string
	CoverURL    *string
	Pricing     Pricing
	PriceCents  int64
	Currency    string
	Position    int64
}

func (service *Service) CreateCourse(ctx context.Context, spaceID string, actor *sec.Identity, input CreateInput) (*Course, error) {
	parent, err := service.ownedSpace(ctx, spaceID, actor)
	if err != nil {
		return nil, err
	}

	if input.Currency == "" {
		input.Currency = "JPY"
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 160).
		OneOf(FieldPricing, string(input.Pricing), string(PricingFree), string(PricingPaid)).
		NonNegative(FieldPriceCents, input.PriceCents).
		MinLen(FieldCurrency, input.Currency, 3).
		MaxLen(FieldCurrency, input.Currency, 3)
	if input.CoverURL != nil {
		validator.URL(FieldCoverURL, *input.CoverURL)
	}

	// A paid course with no price cannot be checked out.
	validator.Custom(FieldPriceCents, input.Pricing == PricingPaid && input.PriceCents == 0,
		"Paid courses need a non-zero price")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	courseSlug, err := service.availableSlug(ctx, parent.ID, input.Title)
	if err != nil {
		return nil, err
	}

	course := &Course{
		ID:          uuidv7.New(),
		SpaceID:     parent.ID,
		Title:       input.Title,
		Slug:        courseSlug,
		Description: input.Description,
		CoverURL:    input.CoverURL,
		Pricing:     input.Pricing,
		PriceCents:  input.PriceCents,
		Currency:    input.Currency,
		Position:    input.Position,
	}

	if input.Pricing == PricingFree {
		course.PriceCents = 0
	}

	if err := service.repo.Create(ctx, course); err != nil {
		return nil, err
	}

	service.logger.Info("course_created",
		slog.String("course_id", course.ID),
		slog.String("space_id", parent.ID),
	)
	return course, nil
}

func (service *Service) availableSlug(ctx context.Context, spaceID, title string) (string, error) {
	base := slug.From(title)
	if base == "" {
		return "", validate.RequiredError(FieldTitle, "Cannot derive a slug from this title")
	}

	candidate := base
	for attempt := 2; attempt <= slugAttempts; attempt++ {
		_, err := service.repo.GetBySlug(ctx, spaceID, candidate)
		if err != nil {
			if apperr.IsAppError(err) {
				return candidate, nil
			}
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", apperr.Conflict("Could not find an available slug for this title")
}

// GetCourse resolves a course inside a space, hiding unpublished courses
// from anyone but the space owner. The space itself must be visible too.
func (service *Service) GetCourse(ctx context.Context, spaceSlug, courseSlug string, viewer *sec.Identity) (*Course, error) {
	parent, err := service.visibleSpace(ctx, spaceSlug, viewer)
	if err != nil {
		return nil, err
	}

	course, err := service.repo.GetBySlug(ctx, parent.ID, courseSlug)
	if err != nil {
		return nil, err
	}

	if !course.Published && !service.ownsSpace(viewer, parent) {
		return nil, apperr.NotFound("Course")
	}
	return course, nil
}

func (service *Service) ListCourses(ctx context.Context, spaceSlug string, viewer *sec.Identity, limit, offset int) ([]*Course, int, error) {
	parent, err := service.visibleSpace(ctx, spaceSlug, viewer)
	if err != nil {
		return nil, 0, err
	}

	// Owners see drafts; everyone else only published courses.
	publishedOnly := !service.ownsSpace(viewer, parent)
	return service.repo.ListBySpace(ctx, parent.ID, publishedOnly, limit, offset)
}

// maxBrowseSpaces caps how many spaces one catalog query may cover.
const maxBrowseSpaces = 50

// BrowseCourses returns the published courses of several spaces at once, for
// dashboard views that span a student's enrolled spaces.
func (service *Service) BrowseCourses(ctx context.Context, spaceIDs []string) ([]*Course, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldSpaceID, len(spaceIDs) == 0, "At least one space is required").
		Custom(FieldSpaceID, len(spaceIDs) > maxBrowseSpaces, "Too many spaces requested")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	courses, err := service.repo.ListBySpaces(ctx, spaceIDs, true)
	if err != nil {
		return nil, fmt.Errorf("course_service_browse_failed: %w", err)
	}
	return courses, nil
}

func (service *Service) UpdateCourse(ctx context.Context, id string, actor *sec.Identity, input UpdateInput) (*Course, error) {
	course, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := service.ownedSpace(ctx, course.SpaceID, actor); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, 160)
	}
	if input.CoverURL != nil {
		validator.URL(FieldCoverURL, *input.CoverURL)
	}
	if input.Pricing != nil {
		validator.OneOf(FieldPricing, string(*input.Pricing), string(PricingFree), string(PricingPaid))
	}
	if input.PriceCents != nil {
		validator.NonNegative(FieldPriceCents, *input.PriceCents)
	}

	// Apply the same pricing rules as creation against the resulting state.
	pricing := course.Pricing
	if input.Pricing != nil {
		pricing = *input.Pricing
	}
	price := course.PriceCents
	if input.PriceCents != nil {
		price = *input.PriceCents
	}
	validator.Custom(FieldPriceCents, pricing == PricingPaid && price == 0,
		"Paid courses need a non-zero price")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if pricing == PricingFree && price != 0 {
		zero := int64(0)
		input.PriceCents = &zero
	}

	if err := service.repo.Update(ctx, id, input); err != nil {
		return nil, err
	}

	service.logger.Info("course_updated", slog.String("course_id", id))
	return service.repo.GetByID(ctx, id)
}

func (service *Service) DeleteCourse(ctx context.Context, id string, actor *sec.Identity) error {
	course, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := service.ownedSpace(ctx, course.SpaceID, actor); err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("course_deleted", slog.String("course_id", id))
	return nil
}

// ownedSpace loads a space and enforces that the actor owns it.
func (service *Service) ownedSpace(ctx context.Context, spaceID string, actor *sec.Identity) (*space.Space, error) {
	parent, err := service.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.UserID != parent.InstructorID {
		return nil, apperr.Forbidden("Only the space owner can manage its courses")
	}
	return parent, nil
}

// visibleSpace loads a space by slug, applying publish visibility rules.
func (service *Service) visibleSpace(ctx context.Context, spaceSlug string, viewer *sec.Identity) (*space.Space, error) {
	parent, err := service.spaces.GetBySlug(ctx, spaceSlug)
	if err != nil {
		return nil, err
	}
	if !parent.Published && !service.ownsSpace(viewer, parent) {
		return nil, apperr.NotFound("Space")
	}
	return parent, nil
}

func (service *Service) ownsSpace(viewer *sec.Identity, parent *space.Space) bool {
	return viewer != nil && viewer.UserID == parent.InstructorID
}
