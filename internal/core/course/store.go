package course

import "context"

// UpdateInput is the partial-update shape for a course. Nil means unchanged.
type UpdateInput struct {
	Title             *string
	Description       *string
	CoverURL          *string
	CoursePageContent *any
	Pricing           *Pricing
	PriceCents        *int64
	Currency          *string
	PaymentProductRef *string
	PaymentPriceRef   *string
	Published         *bool
	Position          *int64
}

// Repository defines persistence for courses.
type Repository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id string) (*Course, error)
	GetBySlug(ctx context.Context, spaceID, slug string) (*Course, error)
	ListBySpace(ctx context.Context, spaceID string, publishedOnly bool, limit, offset int) ([]*Course, int, error)
	ListBySpaces(ctx context.Context, spaceIDs []string, publishedOnly bool) ([]*Course, error)
	Update(ctx context.Context, id string, input UpdateInput) error
	Delete(ctx context.Context, id string) error
}
