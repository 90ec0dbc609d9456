package lesson

import "context"

// UpdateInput is the partial-update shape for a lesson. Nil means unchanged.
type UpdateInput struct {
	Title       *string
	Content     *string
	VideoURL    *string
	Position    *int64
	FreePreview *bool
	Published   *bool
}

// Repository defines persistence for lessons.
type Repository interface {
	Create(ctx context.Context, lesson *Lesson) error
	GetByID(ctx context.Context, id string) (*Lesson, error)
	ListByCourse(ctx context.Context, courseID string) ([]*Lesson, error)
	NextPosition(ctx context.Context, courseID string) (int64, error)
	Update(ctx context.Context, id string, input UpdateInput) error
	SetPosition(ctx context.Context, id string, position int64) error
	Delete(ctx context.Context, id string) error
}
