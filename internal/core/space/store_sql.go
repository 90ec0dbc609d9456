package space

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
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

const spaceColumns = `id, instructor_id, name, slug, description, logo_url, landing_page_content, published, student_capacity, created_at, updated_at`

func (repo *SQLRepository) Create(ctx context.Context, space *Space) error {
	const query = `
		INSERT INTO spaces (` + spaceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	space.CreatedAt = now
	space.UpdatedAt = now

	content, err := encodeContent(space.LandingPageContent)
	if err != nil {
		return fmt.Errorf("sql_space_repo_encode_failed: %w", err)
	}

	_, err = repo.db.Prepare(query).Bind(
		space.ID,
		space.InstructorID,
		space.Name,
		space.Slug,
		space.Description,
		space.LogoURL,
		content,
		space.Published,
		space.StudentCapacity,
		now.Unix(),
		now.Unix(),
	).Run(ctx)

	if err != nil {
		return fmt.Errorf("sql_space_repo_create_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) GetByID(ctx context.Context, id string) (*Space, error) {
	const query = `SELECT ` + spaceColumns + ` FROM spaces WHERE id = ?`

	row, err := repo.db.Prepare(query).Bind(id).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_space_repo_get_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Space")
	}
	return repo.fromRow(ctx, row), nil
}

func (repo *SQLRepository) GetBySlug(ctx context.Context, slug string) (*Space, error) {
	const query = `SELECT ` + spaceColumns + ` FROM spaces WHERE slug = ?`

	row, err := repo.db.Prepare(query).Bind(slug).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_space_repo_get_by_slug_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Space")
	}
	return repo.fromRow(ctx, row), nil
}

func (repo *SQLRepository) ListByInstructor(ctx context.Context, instructorID string, limit, offset int) ([]*Space, int, error) {
	const countQuery = `SELECT COUNT(*) AS total FROM spaces WHERE instructor_id = ?`
	countRow, err := repo.db.Prepare(countQuery).Bind(instructorID).First(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_space_repo_count_failed: %w", err)
	}
	total := int(countRow.Int64("total"))

	const query = `
		SELECT ` + spaceColumns + `
		FROM spaces
		WHERE instructor_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := repo.db.Prepare(query).Bind(instructorID, limit, offset).All(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sql_space_repo_list_failed: %w", err)
	}

	spaces := make([]*Space, 0, len(rows))
	for _, row := range rows {
		spaces = append(spaces, repo.fromRow(ctx, row))
	}
	return spaces, total, nil
}

func (repo *SQLRepository) Update(ctx context.Context, id string, input UpdateInput) error {
	update := storage.NewUpdate("spaces")
	storage.SetIf(update, "name", input.Name)
	storage.SetIf(update, "description", input.Description)
	storage.SetIf(update, "logo_url", input.LogoURL)
	storage.SetIf(update, "published", input.Published)

	if input.StudentCapacity != nil {
		update.Set("student_capacity", *input.StudentCapacity)
	}

	if input.LandingPageContent != nil {
		content, err := encodeContent(*input.LandingPageContent)
		if err != nil {
			return fmt.Errorf("sql_space_repo_encode_failed: %w", err)
		}
		update.Set("landing_page_content", content)
	}

	update.Where("id = ?", id)
	statement, ok := update.Build(repo.db)
	if !ok {
		return nil
	}

	if _, err := statement.Run(ctx); err != nil {
		return fmt.Errorf("sql_space_repo_update_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM spaces WHERE id = ?`

	result, err := repo.db.Prepare(query).Bind(id).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_space_repo_delete_failed: %w", err)
	}
	if result.Meta.Changes == 0 {
		return apperr.NotFound("Space")
	}
	return nil
}

func (repo *SQLRepository) CountStudents(ctx context.Context, spaceID string) (int64, error) {
	const query = `SELECT COUNT(*) AS total FROM space_students WHERE space_id = ? AND status = 'active'`

	row, err := repo.db.Prepare(query).Bind(spaceID).First(ctx)
	if err != nil {
		return 0, fmt.Errorf("sql_space_repo_count_students_failed: %w", err)
	}
	return row.Int64("total"), nil
}

func (repo *SQLRepository) fromRow(ctx context.Context, row storage.Row) *Space {
	space := &Space{
		ID:           row.String("id"),
		InstructorID: row.String("instructor_id"),
		Name:         row.String("name"),
		Slug:         row.String("slug"),
		Description:  row.String("description"),
		LogoURL:      row.NullString("logo_url"),
		Published:    row.Bool("published"),
		CreatedAt:    row.Time("created_at"),
		UpdatedAt:    row.Time("updated_at"),
	}

	space.StudentCapacity = row.NullInt64("student_capacity")
	space.LandingPageContent = decodeContent(ctx, repo.logger, row.NullString("landing_page_content"))
	return space
}

// encodeContent serializes a page-builder document for storage. Nil stays NULL.
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
		logger.WarnContext(ctx, "landing_page_content_unparseable", slog.Any("error", err))
		return nil
	}
	return content
}
