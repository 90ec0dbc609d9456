package enrollment

import "context"

// Repository defines persistence for enrollments.
type Repository interface {
	Create(ctx context.Context, enrollment *Enrollment) error
	Get(ctx context.Context, spaceID, studentID string) (*Enrollment, error)
	SetStatus(ctx context.Context, spaceID, studentID string, status Status) error

	// ListBySpace joins student profiles for the instructor roster view.
	ListBySpace(ctx context.Context, spaceID string, limit, offset int) ([]*Enrollment, int, error)

	// ListByStudent joins spaces for the student's own membership view.
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*Enrollment, int, error)
}
