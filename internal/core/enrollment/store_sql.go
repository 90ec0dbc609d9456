package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
)

// SQLRepository implements Repository over the storage adapter.
type SQLRepository struct {
	db storage.DB
}

func NewRepository(db storage.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (repo *SQLRepository) Create(ctx context.Context, enrollment *Enrollment) error {
	const query = `
		INSERT INTO space_students (space_id, student_id, status, created_at)
		VALUES (?, ?, ?, ?)`

	now := time.Now()
	enrollment.CreatedAt = now

	_, err := repo.db.Prepare(query).Bind(
		enrollment.SpaceID,
		enrollment.StudentID,
		string(enrollment.Status),
		now.Unix(),
	).Run(ctx)

	if err != nil {
		return fmt.Errorf("sql_enrollment_repo_create_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) Get(ctx context.Context, spaceID, studentID string) (*Enrollment, error) {
	const query = `
		SELECT space_id, student_id, status, created_at
		FROM space_students
		WHERE space_id = ? AND student_id = ?`

	row, err := repo.db.Prepare(query).Bind(spaceID, studentID).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_enrollment_repo_get_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Enrollment")
	}
	return fromRow(row), nil
}

func (repo *SQLRepository) SetStatus(ctx context.Context, spaceID, studentID string, status Status) error {
	const query = `
		UPDATE space_students SET status = ?
		WHERE space_id = ? AND student_id = ?`

	result, err := repo.db.Prepare(query).Bind(string(status), spaceID, studentID).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_enrollment_repo_set_status_failed: %w", err)
	}
	if result.Meta.Changes == 0 {
		return apperr.NotFound("Enrollment")
	}
	return nil
}

func (repo *SQLRepository) ListBySpace(ctx context.Context, spaceID string, limit, offset int) ([]*Enrollment, int, error) {
	countRow, err := repo.db.Prepare(
		`SELECT COUNT(*) AS total FROM space_students WHERE space_id = ? AND status = 'active'`).
		Bind(spaceID).
		First(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_enrollment_repo_count_failed: %w", err)
	}
	total := int(countRow.Int64("total"))

	const query = `
		SELECT ss.space_id, ss.student_id, ss.status, ss.created_at,
		       p.display_name AS student_name, p.email AS student_email
		FROM space_students ss
		JOIN profiles p ON p.id = ss.student_id
		WHERE ss.space_id = ? AND ss.status = 'active'
		ORDER BY ss.created_at ASC
		LIMIT ? OFFSET ?`

	rows, err := repo.db.Prepare(query).Bind(spaceID, limit, offset).All(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_enrollment_repo_list_failed: %w", err)
	}

	enrollments := make([]*Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollment := fromRow(row)
		enrollment.StudentName = row.String("student_name")
		enrollment.StudentEmail = row.String("student_email")
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, total, nil
}

func (repo *SQLRepository) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*Enrollment, int, error) {
	countRow, err := repo.db.Prepare(
		`SELECT COUNT(*) AS total FROM space_students WHERE student_id = ? AND status = 'active'`).
		Bind(studentID).
		First(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_enrollment_repo_count_failed: %w", err)
	}
	total := int(countRow.Int64("total"))

	const query = `
		SELECT ss.space_id, ss.student_id, ss.status, ss.created_at,
		       s.name AS space_name, s.slug AS space_slug
		FROM space_students ss
		JOIN spaces s ON s.id = ss.space_id
		WHERE ss.student_id = ? AND ss.status = 'active'
		ORDER BY ss.created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := repo.db.Prepare(query).Bind(studentID, limit, offset).All(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_enrollment_repo_list_failed: %w", err)
	}

	enrollments := make([]*Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollment := fromRow(row)
		enrollment.SpaceName = row.String("space_name")
		enrollment.SpaceSlug = row.String("space_slug")
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, total, nil
}

func fromRow(row storage.Row) *Enrollment {
	return &Enrollment{
		SpaceID:   row.String("space_id"),
		StudentID: row.String("student_id"),
		Status:    Status(row.String("status")),
		CreatedAt: row.Time("created_at"),
	}
}
