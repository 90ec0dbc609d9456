package purchase

import "context"

// Repository defines persistence for purchases.
type Repository interface {
	Create(ctx context.Context, purchase *Purchase) error
	GetByID(ctx context.Context, id string) (*Purchase, error)
	GetByCourseAndStudent(ctx context.Context, courseID, studentID string) (*Purchase, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*Purchase, int, error)
	SetStatus(ctx context.Context, id string, status Status) error
	SetProviderRef(ctx context.Context, id string, providerRef string) error

	// HasCompleted is the hot path behind access checks.
	HasCompleted(ctx context.Context, courseID, studentID string) (bool, error)
}
