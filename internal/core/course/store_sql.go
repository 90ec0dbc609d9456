package course

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
)

// SQLRepository implements Repository over the storage adapter.
type SQLRepository struct {
	db     storage.DB
	logger *slog.Logger
}

func NewRepository(db storage.DB, logger *slog.Logger) *SQLRepository {
	return &SQLRepository{db: db, logger: logger}
}

const courseColumns = `id, space_id, title, slug, description, cover_url, course_page_content, pricing, price_cents, currency, payment_product_ref, payment_price_ref, published, position, created_at, updated_at`

func (repo *SQLRepository) Create(ctx context.Context, course *Course) error {
	const query = `
		INSERT INTO courses (` + courseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	content, err := encodeContent(course.CoursePageContent)
	if err != nil {
		return fmt.Errorf("sql_course_repo_encode_failed: %w", err)
	}

	_, err = repo.db.Prepare(query).Bind(
		course.ID,
		course.SpaceID,
		course.Title,
		course.Slug,
		course.Description,
		course.CoverURL,
		content,
		string(course.Pricing),
		course.PriceCents,
		course.Currency,
		course.PaymentProductRef,
		course.PaymentPriceRef,
		course.Published,
		course.Position,
		now.Unix(),
		now.Unix(),
	).Run(ctx)

	if err != nil {
		return fmt.Errorf("sql_course_repo_create_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) GetByID(ctx context.Context, id string) (*Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`

	row, err := repo.db.Prepare(query).Bind(id).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_course_repo_get_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Course")
	}
	return repo.fromRow(ctx, row), nil
}

func (repo *SQLRepository) GetBySlug(ctx context.Context, spaceID, slug string) (*Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE space_id = ? AND slug = ?`

	row, err := repo.db.Prepare(query).Bind(spaceID, slug).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_course_repo_get_by_slug_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Course")
	}
	return repo.fromRow(ctx, row), nil
}

func (repo *SQLRepository) ListBySpace(ctx context.Context, spaceID string, publishedOnly bool, limit, offset int) ([]*Course, int, error) {
	filter := ""
	if publishedOnly {
		filter = " AND published = 1"
	}

	countRow, err := repo.db.Prepare(`SELECT COUNT(*) AS total FROM courses WHERE space_id = ?` + filter).
		Bind(spaceID).
		First(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_course_repo_count_failed: %w", err)
	}
	total := int(countRow.Int64("total"))

	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE space_id = ?` + filter + `
		ORDER BY position ASC, created_at ASC
		LIMIT ? OFFSET ?`

	rows, err := repo.db.Prepare(query).Bind(spaceID, limit, offset).All(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_course_repo_list_failed: %w", err)
	}

	courses := make([]*Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.fromRow(ctx, row))
	}
	return courses, total, nil
}

func (repo *SQLRepository) ListBySpaces(ctx context.Context, spaceIDs []string, publishedOnly bool) ([]*Course, error) {
	if len(spaceIDs) == 0 {
		return []*Course{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(spaceIDs)), ", ")
	filter := ""
	if publishedOnly {
		filter = " AND published = 1"
	}

	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE space_id IN (` + placeholders + `)` + filter + `
		ORDER BY space_id ASC, position ASC, created_at ASC`

	args := make([]any, 0, len(spaceIDs))
	for _, id := range spaceIDs {
		args = append(args, id)
	}

	rows, err := repo.db.Prepare(query).Bind(args...).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_course_repo_list_spaces_failed: %w", err)
	}

	courses := make([]*Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.fromRow(ctx, row))
	}
	return courses, nil
}

func (repo *SQLRepository) Update(ctx context.Context, id string, input UpdateInput) error {
	update := storage.NewUpdate("courses")
	storage.SetIf(update, "title", input.Title)
	storage.SetIf(update, "description", input.Description)
	storage.SetIf(update, "cover_url", input.CoverURL)
	storage.SetIf(update, "price_cents", input.PriceCents)
	storage.SetIf(update, "currency", input.Currency)
	storage.SetIf(update, "payment_product_ref", input.PaymentProductRef)
	storage.SetIf(update, "payment_price_ref", input.PaymentPriceRef)
	storage.SetIf(update, "published", input.Published)
	storage.SetIf(update, "position", input.Position)

	if input.Pricing != nil {
		update.Set("pricing", string(*input.Pricing))
	}

	if input.CoursePageContent != nil {
		content, err := encodeContent(*input.CoursePageContent)
		if err != nil {
			return fmt.Errorf("sql_course_repo_encode_failed: %w", err)
		}
		update.Set("course_page_content", content)
	}

	update.Where("id = ?", id)
	statement, ok := update.Build(repo.db)
	if !ok {
		return nil
	}

	if _, err := statement.Run(ctx); err != nil {
		return fmt.Errorf("sql_course_repo_update_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = ?`

	result, err := repo.db.Prepare(query).Bind(id).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_course_repo_delete_failed: %w", err)
	}
	if result.Meta.Changes == 0 {
		return apperr.NotFound("Course")
	}
	return nil
}

func (repo *SQLRepository) fromRow(ctx context.Context, row storage.Row) *Course {
	course := &Course{
		ID:          row.String("id"),
		SpaceID:     row.String("space_id"),
		Title:       row.String("title"),
		Slug:        row.String("slug"),
		Description: row.String("description"),
		CoverURL:    row.NullString("cover_url"),
		Pricing:     Pricing(row.String("pricing")),
		PriceCents:  row.Int64("price_cents"),
		Currency:    row.String("currency"),
		Published:   row.Bool("published"),

		PaymentProductRef: row.NullString("payment_product_ref"),
		PaymentPriceRef:   row.NullString("payment_price_ref"),
		Position:    row.Int64("position"),
		CreatedAt:   row.Time("created_at"),
		UpdatedAt:   row.Time("updated_at"),
	}

	course.CoursePageContent = decodeContent(ctx, repo.logger, row.NullString("course_page_content"))
	return course
}

// encodeContent serializes a sales-page document for storage. Nil stays NULL.
func encodeContent(content any) (*string, error) {
	if content == nil {
		return nil, nil
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	serialized := string(raw)
	return &serialized, nil
}

// decodeContent parses a stored document. A corrupt document degrades to nil
// with a warning rather than failing the whole read.
func decodeContent(ctx context.Context, logger *slog.Logger, raw *string) any {
	if raw == nil || *raw == "" {
		return nil
	}
	var content any
	if err := json.Unmarshal([]byte(*raw), &content); err != nil {
		logger.WarnContext(ctx, "course_page_content_unparseable", slog.Any("error", err))
		return nil
	}
	return content
}
