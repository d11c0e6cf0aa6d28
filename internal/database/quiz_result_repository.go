package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/wordbox/pkg/models"
	"github.com/jmoiron/sqlx"
)

// QuizResultRepository handles database operations for finished quizzes
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Create inserts a new quiz result
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.TakenAt.IsZero() {
		result.TakenAt = time.Now()
	}

	query := r.db.Rebind(`
		INSERT INTO quiz_results (user_id, total_words, correct_words, score, taken_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		result.UserID,
		result.TotalWords,
		result.CorrectWords,
		result.Score,
		result.TakenAt.UnixMilli(),
	).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// QuizSummary aggregates quiz results
type QuizSummary struct {
	Quizzes   int `db:"quizzes"`
	BestScore int `db:"best_score"`
	Correct   int `db:"correct"`
	Total     int `db:"total"`
}

// GetSummary returns aggregated statistics across all quizzes
func (r *QuizResultRepository) GetSummary(ctx context.Context) (*QuizSummary, error) {
	var summary QuizSummary
	err := r.db.GetContext(ctx, &summary, `
		SELECT
			COUNT(*) AS quizzes,
			COALESCE(MAX(score), 0) AS best_score,
			COALESCE(SUM(correct_words), 0) AS correct,
			COALESCE(SUM(total_words), 0) AS total
		FROM quiz_results
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz summary: %w", err)
	}
	return &summary, nil
}
