package purchase

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

const purchaseColumns = `id, course_id, student_id, status, amount_cents, currency, provider_ref, created_at, updated_at`

func (repo *SQLRepository) Create(ctx context.Context, purchase *Purchase) error {
	const query = `
		INSERT INTO course_purchases (` + purchaseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	purchase.CreatedAt = now
	purchase.UpdatedAt = now

	_, err := repo.db.Prepare(query).Bind(
		purchase.ID,
		purchase.CourseID,
		purchase.StudentID,
		string(purchase.Status),
		purchase.AmountCents,
		purchase.Currency,
		purchase.ProviderRef,
		now.Unix(),
		now.Unix(),
	).Run(ctx)

	if err != nil {
		return fmt.Errorf("sql_purchase_repo_create_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) GetByID(ctx context.Context, id string) (*Purchase, error) {
	const query = `SELECT ` + purchaseColumns + ` FROM course_purchases WHERE id = ?`

	row, err := repo.db.Prepare(query).Bind(id).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_purchase_repo_get_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Purchase")
	}
	return fromRow(row), nil
}

func (repo *SQLRepository) GetByCourseAndStudent(ctx context.Context, courseID, studentID string) (*Purchase, error) {
	const query = `
		SELECT ` + purchaseColumns + `
		FROM course_purchases
		WHERE course_id = ? AND student_id = ?`

	row, err := repo.db.Prepare(query).Bind(courseID, studentID).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_purchase_repo_get_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Purchase")
	}
	return fromRow(row), nil
}

func (repo *SQLRepository) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*Purchase, int, error) {
	countRow, err := repo.db.Prepare(`SELECT COUNT(*) AS total FROM course_purchases WHERE student_id = ?`).
		Bind(studentID).
		First(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_purchase_repo_count_failed: %w", err)
	}
	total := int(countRow.Int64("total"))

	const query = `
		SELECT ` + purchaseColumns + `
		FROM course_purchases
		WHERE student_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := repo.db.Prepare(query).Bind(studentID, limit, offset).All(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_purchase_repo_list_failed: %w", err)
	}

	purchases := make([]*Purchase, 0, len(rows))
	for _, row := range rows {
		purchases = append(purchases, fromRow(row))
	}
	return purchases, total, nil
}

func (repo *SQLRepository) SetStatus(ctx context.Context, id string, status Status) error {
	const query = `UPDATE course_purchases SET status = ?, updated_at = ? WHERE id = ?`

	result, err := repo.db.Prepare(query).Bind(string(status), time.Now().Unix(), id).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_purchase_repo_set_status_failed: %w", err)
	}
	if result.Meta.Changes == 0 {
		return apperr.NotFound("Purchase")
	}
	return nil
}

func (repo *SQLRepository) SetProviderRef(ctx context.Context, id string, providerRef string) error {
	const query = `UPDATE course_purchases SET provider_ref = ?, updated_at = ? WHERE id = ?`

	result, err := repo.db.Prepare(query).Bind(providerRef, time.Now().Unix(), id).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_purchase_repo_set_provider_ref_failed: %w", err)
	}
	if result.Meta.Changes == 0 {
		return apperr.NotFound("Purchase")
	}
	return nil
}

func (repo *SQLRepository) HasCompleted(ctx context.Context, courseID, studentID string) (bool, error) {
	const query = `
		SELECT COUNT(*) AS total
		FROM course_purchases
		WHERE course_id = ? AND student_id = ? AND status = 'completed'`

	row, err := repo.db.Prepare(query).Bind(courseID, studentID).First(ctx)
	if err != nil {
		return false, fmt.Errorf("sql_purchase_repo_has_completed_failed: %w", err)
	}
	return row.Int64("total") > 0, nil
}

func fromRow(row storage.Row) *Purchase {
	return &Purchase{
		ID:          row.String("id"),
		CourseID:    row.String("course_id"),
		StudentID:   row.String("student_id"),
		Status:      Status(row.String("status")),
		AmountCents: row.Int64("amount_cents"),
		Currency:    row.String("currency"),
		ProviderRef: row.NullString("provider_ref"),
		CreatedAt:   row.Time("created_at"),
		UpdatedAt:   row.Time("updated_at"),
	}
}
