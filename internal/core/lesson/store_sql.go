package lesson

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

const lessonColumns = `id, course_id, title, content, video_url, position, free_preview, published, created_at, updated_at`

func (repo *SQLRepository) Create(ctx context.Context, lesson *Lesson) error {
	const query = `
		INSERT INTO lessons (` + lessonColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	_, err := repo.db.Prepare(query).Bind(
		lesson.ID,
		lesson.CourseID,
		lesson.Title,
		lesson.Content,
		lesson.VideoURL,
		lesson.Position,
		lesson.FreePreview,
		lesson.Published,
		now.Unix(),
		now.Unix(),
	).Run(ctx)

	if err != nil {
		return fmt.Errorf("sql_lesson_repo_create_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) GetByID(ctx context.Context, id string) (*Lesson, error) {
	const query = `SELECT ` + lessonColumns + ` FROM lessons WHERE id = ?`

	row, err := repo.db.Prepare(query).Bind(id).First(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_lesson_repo_get_failed: %w", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Lesson")
	}
	return fromRow(row), nil
}

func (repo *SQLRepository) ListByCourse(ctx context.Context, courseID string) ([]*Lesson, error) {
	const query = `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE course_id = ?
		ORDER BY position ASC, created_at ASC`

	rows, err := repo.db.Prepare(query).Bind(courseID).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_lesson_repo_list_failed: %w", err)
	}

	lessons := make([]*Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, fromRow(row))
	}
	return lessons, nil
}

func (repo *SQLRepository) NextPosition(ctx context.Context, courseID string) (int64, error) {
	const query = `SELECT COALESCE(MAX(position), -1) + 1 AS next FROM lessons WHERE course_id = ?`

	row, err := repo.db.Prepare(query).Bind(courseID).First(ctx)
	if err != nil {
		return 0, fmt.Errorf("sql_lesson_repo_next_position_failed: %w", err)
	}
	return row.Int64("next"), nil
}

func (repo *SQLRepository) Update(ctx context.Context, id string, input UpdateInput) error {
	update := storage.NewUpdate("lessons")
	storage.SetIf(update, "title", input.Title)
	storage.SetIf(update, "content", input.Content)
	storage.SetIf(update, "video_url", input.VideoURL)
	storage.SetIf(update, "position", input.Position)
	storage.SetIf(update, "free_preview", input.FreePreview)
	storage.SetIf(update, "published", input.Published)

	update.Where("id = ?", id)
	statement, ok := update.Build(repo.db)
	if !ok {
		return nil
	}

	if _, err := statement.Run(ctx); err != nil {
		return fmt.Errorf("sql_lesson_repo_update_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) SetPosition(ctx context.Context, id string, position int64) error {
	const query = `UPDATE lessons SET position = ?, updated_at = ? WHERE id = ?`

	_, err := repo.db.Prepare(query).Bind(position, time.Now().Unix(), id).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_lesson_repo_set_position_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM lessons WHERE id = ?`

	result, err := repo.db.Prepare(query).Bind(id).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_lesson_repo_delete_failed: %w", err)
	}
	if result.Meta.Changes == 0 {
		return apperr.NotFound("Lesson")
	}
	return nil
}

func fromRow(row storage.Row) *Lesson {
	return &Lesson{
		ID:          row.String("id"),
		CourseID:    row.String("course_id"),
		Title:       row.String("title"),
		Content:     row.String("content"),
		VideoURL:    row.NullString("video_url"),
		Position:    row.Int64("position"),
		FreePreview: row.Bool("free_preview"),
		Published:   row.Bool("published"),
		CreatedAt:   row.Time("created_at"),
		UpdatedAt:   row.Time("updated_at"),
	}
}
