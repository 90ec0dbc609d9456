package space

import "context"

// UpdateInput is the partial-update shape for a space. Nil means unchanged.
type UpdateInput struct {
	Name               *string
	Description        *string
	LogoURL            *string
	LandingPageContent *any
	Published          *bool
	StudentCapacity    *int64
}

// Repository defines persistence for spaces.
type Repository interface {
	Create(ctx context.Context, space *Space) error
	GetByID(ctx context.Context, id string) (*Space, error)
	GetBySlug(ctx context.Context, slug string) (*Space, error)
	ListByInstructor(ctx context.Context, instructorID string, limit, offset int) ([]*Space, int, error)
	Update(ctx context.Context, id string, input UpdateInput) error
	Delete(ctx context.Context, id string) error

	// CountStudents reports current enrollment, used for capacity checks.
	CountStudents(ctx context.Context, spaceID string) (int64, error)
}
