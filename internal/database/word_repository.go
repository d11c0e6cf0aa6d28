package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/wordbox/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ErrDuplicateWord is returned when the English text already exists
var ErrDuplicateWord = errors.New("word already exists")

// ErrEmptyWord is returned when either side of a word pair is blank
var ErrEmptyWord = errors.New("english and persian text are required")

const wordColumns = "id, english, persian, is_skipped, is_deleted, date_added, leitner_box, next_review_date"

// wordRow is the stored shape of a word. Times are unix milliseconds.
type wordRow struct {
	ID             int64  `db:"id"`
	English        string `db:"english"`
	Persian        string `db:"persian"`
	IsSkipped      bool   `db:"is_skipped"`
	IsDeleted      bool   `db:"is_deleted"`
	DateAdded      int64  `db:"date_added"`
	LeitnerBox     int    `db:"leitner_box"`
	NextReviewDate int64  `db:"next_review_date"`
}

func (r wordRow) toModel() models.Word {
	return models.Word{
		ID:             r.ID,
		English:        r.English,
		Persian:        r.Persian,
		IsSkipped:      r.IsSkipped,
		IsDeleted:      r.IsDeleted,
		DateAdded:      time.UnixMilli(r.DateAdded),
		LeitnerBox:     r.LeitnerBox,
		NextReviewDate: time.UnixMilli(r.NextReviewDate),
	}
}

func toModels(rows []wordRow) []models.Word {
	words := make([]models.Word, len(rows))
	for i, r := range rows {
		words[i] = r.toModel()
	}
	return words
}

// WordRepository handles database operations for words
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Create inserts a new word and fills in its ID
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if err := validateWord(word); err != nil {
		return err
	}

	query := r.db.Rebind(`
		INSERT INTO words (english, persian, is_skipped, is_deleted, date_added, leitner_box, next_review_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (english) DO NOTHING
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query, insertArgs(*word)...).Scan(&word.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrDuplicateWord, word.English)
	}
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	return nil
}

// CreateMany inserts words in a single transaction, silently ignoring words
// whose English text already exists. It returns the number of inserted words.
func (r *WordRepository) CreateMany(ctx context.Context, words []models.Word) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO words (english, persian, is_skipped, is_deleted, date_added, leitner_box, next_review_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (english) DO NOTHING
	`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range words {
		if err := validateWord(&words[i]); err != nil {
			continue
		}
		result, err := stmt.ExecContext(ctx, insertArgs(words[i])...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert word %q: %w", words[i].English, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// GetByID returns a word by ID, including soft-deleted words
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var row wordRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind("SELECT "+wordColumns+" FROM words WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", err)
	}
	word := row.toModel()
	return &word, nil
}

// GetAll returns all words that are not soft-deleted, newest first
func (r *WordRepository) GetAll(ctx context.Context) ([]models.Word, error) {
	return r.selectWords(ctx, "get words", `
		SELECT `+wordColumns+` FROM words
		WHERE NOT is_deleted
		ORDER BY date_added DESC, id DESC
	`)
}

// Search returns non-deleted words whose English or Persian text contains query
func (r *WordRepository) Search(ctx context.Context, query string) ([]models.Word, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	return r.selectWords(ctx, "search words", `
		SELECT `+wordColumns+` FROM words
		WHERE NOT is_deleted AND (LOWER(english) LIKE ? OR LOWER(persian) LIKE ?)
		ORDER BY english
	`, pattern, pattern)
}

// GetDueForReview returns non-deleted, non-mastered words whose review time
// has passed, ordered by box and then by review time
func (r *WordRepository) GetDueForReview(ctx context.Context, now time.Time) ([]models.Word, error) {
	return r.selectWords(ctx, "get due words", `
		SELECT `+wordColumns+` FROM words
		WHERE NOT is_deleted AND leitner_box < ? AND next_review_date <= ?
		ORDER BY leitner_box ASC, next_review_date ASC, id ASC
	`, models.MaxBox, now.UnixMilli())
}

// GetHighPriority returns every non-deleted word flagged as skipped,
// regardless of its review time
func (r *WordRepository) GetHighPriority(ctx context.Context) ([]models.Word, error) {
	return r.selectWords(ctx, "get skipped words", `
		SELECT `+wordColumns+` FROM words
		WHERE is_skipped AND NOT is_deleted
		ORDER BY date_added DESC, id DESC
	`)
}

// GetAllDateAdded returns the creation time of every non-deleted word
func (r *WordRepository) GetAllDateAdded(ctx context.Context) ([]time.Time, error) {
	var millis []int64
	if err := r.db.SelectContext(ctx, &millis, "SELECT date_added FROM words WHERE NOT is_deleted"); err != nil {
		return nil, fmt.Errorf("failed to get dates: %w", err)
	}
	dates := make([]time.Time, len(millis))
	for i, ms := range millis {
		dates[i] = time.UnixMilli(ms)
	}
	return dates, nil
}

// CountByBox returns the number of non-deleted words in each Leitner box
func (r *WordRepository) CountByBox(ctx context.Context) (map[int]int, error) {
	var rows []struct {
		Box   int `db:"leitner_box"`
		Count int `db:"total"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT leitner_box, COUNT(*) AS total FROM words
		WHERE NOT is_deleted
		GROUP BY leitner_box
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count words by box: %w", err)
	}
	counts := make(map[int]int, models.MaxBox)
	for _, row := range rows {
		counts[row.Box] = row.Count
	}
	return counts, nil
}

// Update modifies the English and Persian text of an existing word
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	if err := validateWord(word); err != nil {
		return err
	}
	err := r.exec(ctx, "update word", "UPDATE words SET english = ?, persian = ? WHERE id = ?",
		word.English, word.Persian, word.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateWord, word.English)
	}
	return err
}

// SetBox moves a word to another Leitner box
func (r *WordRepository) SetBox(ctx context.Context, id int64, box int) error {
	if box < models.MinBox || box > models.MaxBox {
		return fmt.Errorf("box %d out of range [%d, %d]", box, models.MinBox, models.MaxBox)
	}
	return r.exec(ctx, "update box", "UPDATE words SET leitner_box = ? WHERE id = ?", box, id)
}

// SetNextReviewTime sets when the word becomes due again
func (r *WordRepository) SetNextReviewTime(ctx context.Context, id int64, t time.Time) error {
	return r.exec(ctx, "update next review date", "UPDATE words SET next_review_date = ? WHERE id = ?",
		t.UnixMilli(), id)
}

// SetSkipped sets or clears the high priority flag
func (r *WordRepository) SetSkipped(ctx context.Context, id int64, skipped bool) error {
	return r.exec(ctx, "update skip status", "UPDATE words SET is_skipped = ? WHERE id = ?", skipped, id)
}

// SoftDelete hides a word from review and quiz selection without removing it
func (r *WordRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.exec(ctx, "soft delete word", "UPDATE words SET is_deleted = ? WHERE id = ?", true, id)
}

// Delete physically removes a word and its quiz statistics
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete word", "DELETE FROM words WHERE id = ?", id)
}

// Remove deletes a word. Words that are in use (for example the current
// question of a running quiz) or that already have quiz statistics are only
// soft-deleted. The returned flag is true when the word was soft-deleted.
func (r *WordRepository) Remove(ctx context.Context, id int64, inUse bool) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var referenced int
	err = tx.GetContext(ctx, &referenced, tx.Rebind("SELECT COUNT(*) FROM game_state WHERE word_id = ?"), id)
	if err != nil {
		return false, fmt.Errorf("failed to check word references: %w", err)
	}
	soft := inUse || referenced > 0

	query := "DELETE FROM words WHERE id = ?"
	args := []interface{}{id}
	if soft {
		query = "UPDATE words SET is_deleted = ? WHERE id = ?"
		args = []interface{}{true, id}
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("failed to remove word: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return soft, nil
}

func (r *WordRepository) selectWords(ctx context.Context, action, query string, args ...interface{}) ([]models.Word, error) {
	var rows []wordRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return toModels(rows), nil
}

func (r *WordRepository) exec(ctx context.Context, action, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrWordNotFound
	}
	return nil
}

func validateWord(word *models.Word) error {
	word.English = strings.TrimSpace(word.English)
	word.Persian = strings.TrimSpace(word.Persian)
	if word.English == "" || word.Persian == "" {
		return ErrEmptyWord
	}
	if word.LeitnerBox == 0 {
		word.LeitnerBox = models.MinBox
	}
	if word.DateAdded.IsZero() {
		word.DateAdded = time.Now()
	}
	if word.NextReviewDate.IsZero() {
		word.NextReviewDate = word.DateAdded
	}
	return nil
}

func insertArgs(w models.Word) []interface{} {
	return []interface{}{
		w.English,
		w.Persian,
		w.IsSkipped,
		w.IsDeleted,
		w.DateAdded.UnixMilli(),
		w.LeitnerBox,
		w.NextReviewDate.UnixMilli(),
	}
}
