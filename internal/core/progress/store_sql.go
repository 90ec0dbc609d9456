package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/satomatashiki/manabiya/internal/platform/storage"
)

// SQLRepository implements Repository over the storage adapter.
type SQLRepository struct {
	db storage.DB
}

func NewRepository(db storage.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (repo *SQLRepository) Mark(ctx context.Context, lessonID, studentID string) error {
	// ON CONFLICT DO NOTHING makes repeat marks a no-op on both backends.
	const query = `
		INSERT INTO lesson_completions (lesson_id, student_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`

	_, err := repo.db.Prepare(query).Bind(lessonID, studentID, time.Now().Unix()).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_progress_repo_mark_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) Unmark(ctx context.Context, lessonID, studentID string) error {
	const query = `DELETE FROM lesson_completions WHERE lesson_id = ? AND student_id = ?`

	_, err := repo.db.Prepare(query).Bind(lessonID, studentID).Run(ctx)
	if err != nil {
		return fmt.Errorf("sql_progress_repo_unmark_failed: %w", err)
	}
	return nil
}

func (repo *SQLRepository) IsMarked(ctx context.Context, lessonID, studentID string) (bool, error) {
	const query = `
		SELECT COUNT(*) AS total
		FROM lesson_completions
		WHERE lesson_id = ? AND student_id = ?`

	row, err := repo.db.Prepare(query).Bind(lessonID, studentID).First(ctx)
	if err != nil {
		return false, fmt.Errorf("sql_progress_repo_is_marked_failed: %w", err)
	}
	return row.Int64("total") > 0, nil
}

func (repo *SQLRepository) CompletedLessonIDs(ctx context.Context, courseID, studentID string) ([]string, error) {
	const query = `
		SELECT lc.lesson_id
		FROM lesson_completions lc
		JOIN lessons l ON l.id = lc.lesson_id
		WHERE l.course_id = ? AND lc.student_id = ? AND l.published = 1
		ORDER BY l.position ASC`

	rows, err := repo.db.Prepare(query).Bind(courseID, studentID).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("sql_progress_repo_completed_failed: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.String("lesson_id"))
	}
	return ids, nil
}

func (repo *SQLRepository) CountPublishedLessons(ctx context.Context, courseID string) (int64, error) {
	const query = `SELECT COUNT(*) AS total FROM lessons WHERE course_id = ? AND published = 1`

	row, err := repo.db.Prepare(query).Bind(courseID).First(ctx)
	if err != nil {
		return 0, fmt.Errorf("sql_progress_repo_count_failed: %w", err)
	}
	return row.Int64("total"), nil
}
