package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordbox/pkg/models"
	"github.com/jmoiron/sqlx"
)

// GameStateRepository handles database operations for per-word quiz statistics
type GameStateRepository struct {
	db *sqlx.DB
}

// NewGameStateRepository creates a new repository instance
func NewGameStateRepository(db *sqlx.DB) *GameStateRepository {
	return &GameStateRepository{db: db}
}

// UpdateStats adds one correct or wrong answer to the word's counters,
// creating the row on first use. It returns ErrWordNotFound when the word
// no longer exists.
func (r *GameStateRepository) UpdateStats(ctx context.Context, wordID int64, correct bool) error {
	correctInc, wrongInc := 0, 1
	if correct {
		correctInc, wrongInc = 1, 0
	}

	// selecting from words keeps a removed word from tripping the foreign key
	query := r.db.Rebind(`
		INSERT INTO game_state (word_id, correct_answer, wrong_answer)
		SELECT id, CAST(? AS INTEGER), CAST(? AS INTEGER) FROM words WHERE id = ?
		ON CONFLICT (word_id) DO UPDATE SET
			correct_answer = game_state.correct_answer + excluded.correct_answer,
			wrong_answer = game_state.wrong_answer + excluded.wrong_answer
	`)
	result, err := r.db.ExecContext(ctx, query, correctInc, wrongInc, wordID)
	if err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}
	return checkAffected(result)
}

// GetByWordID returns the counters for a word, or nil if it was never quizzed
func (r *GameStateRepository) GetByWordID(ctx context.Context, wordID int64) (*models.GameState, error) {
	var state models.GameState
	err := r.db.GetContext(ctx, &state, r.db.Rebind(`
		SELECT id, word_id, correct_answer, wrong_answer
		FROM game_state
		WHERE word_id = ?
	`), wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}
	return &state, nil
}

// GetFullReport returns every word with its counters; words without
// statistics report zero answers
func (r *GameStateRepository) GetFullReport(ctx context.Context) ([]models.WordReport, error) {
	var reports []models.WordReport
	err := r.db.SelectContext(ctx, &reports, `
		SELECT
			words.id AS word_id,
			words.english AS english_word,
			COALESCE(game_state.correct_answer, 0) AS correct_count,
			COALESCE(game_state.wrong_answer, 0) AS wrong_count
		FROM words
		LEFT JOIN game_state ON words.id = game_state.word_id
		ORDER BY words.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get full report: %w", err)
	}
	return reports, nil
}
