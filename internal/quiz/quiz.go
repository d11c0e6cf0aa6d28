package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/pkg/models"
)

const (
	// DefaultWordCount is the number of words asked in one session
	DefaultWordCount = 10
	// PointsPerWord is added to the score for every correct answer
	PointsPerWord = 20
)

var (
	ErrEmptyGuess   = errors.New("guess is empty")
	ErrNoActiveWord = errors.New("no active word")
	ErrGameOver     = errors.New("game is over")
	ErrNoWords      = errors.New("no words available")
)

// WordSource provides the quiz vocabulary and stores the skipped flag
type WordSource interface {
	GetAll(ctx context.Context) ([]models.Word, error)
	SetSkipped(ctx context.Context, id int64, skipped bool) error
}

// StatsRecorder counts right and wrong answers per word
type StatsRecorder interface {
	UpdateStats(ctx context.Context, wordID int64, correct bool) error
}

// ResultRecorder persists finished sessions
type ResultRecorder interface {
	Create(ctx context.Context, result *models.QuizResult) error
}

// Config controls a session
type Config struct {
	WordCount int
	// Seed makes word order and shuffling reproducible when non-zero
	Seed int64
	// UserID is stored with the session result
	UserID int64
}

// Question is the word currently being asked
type Question struct {
	Word     models.Word
	Shuffled string
	Number   int
	Total    int
}

// Outcome describes the effect of a guess or a skip
type Outcome struct {
	Correct bool
	// Dropped is set when the word was removed from the store while it was
	// being asked. It does not count towards the session.
	Dropped  bool
	Answer   string
	Score    int
	Finished bool
}

// Session is a single typing game. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	words   WordSource
	stats   StatsRecorder
	results ResultRecorder
	cfg     Config
	rnd     *rand.Rand

	used     map[int64]bool
	asked    int
	total    int
	correct  int
	score    int
	current  *Question
	finished bool
	saved    bool
}

// NewSession creates a session. results may be nil.
func NewSession(words WordSource, stats StatsRecorder, results ResultRecorder, cfg Config) *Session {
	if cfg.WordCount <= 0 {
		cfg.WordCount = DefaultWordCount
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Session{
		words:   words,
		stats:   stats,
		results: results,
		cfg:     cfg,
		rnd:     rand.New(rand.NewSource(seed)),
		used:    make(map[int64]bool),
	}
}

// Next picks a random unused word and returns it with its letters shuffled.
// If a word is already active it is returned again.
func (s *Session) Next(ctx context.Context) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return *s.current, nil
	}
	if s.finished {
		return Question{}, ErrGameOver
	}
	if s.asked >= s.cfg.WordCount {
		return Question{}, s.finish(ctx)
	}

	all, err := s.words.GetAll(ctx)
	if err != nil {
		return Question{}, fmt.Errorf("failed to load words: %w", err)
	}

	candidates := make([]models.Word, 0, len(all))
	for _, w := range all {
		if !w.IsDeleted && !s.used[w.ID] {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		if s.asked == 0 {
			return Question{}, ErrNoWords
		}
		return Question{}, s.finish(ctx)
	}

	s.total = s.asked + len(candidates)
	if s.total > s.cfg.WordCount {
		s.total = s.cfg.WordCount
	}

	word := candidates[s.rnd.Intn(len(candidates))]
	s.used[word.ID] = true
	s.asked++
	s.current = &Question{
		Word:     word,
		Shuffled: Shuffle(word.English, s.rnd),
		Number:   s.asked,
		Total:    s.total,
	}
	return *s.current, nil
}

// Guess checks the answer for the active word, ignoring case and surrounding
// spaces. A wrong answer is handled like Skip.
func (s *Session) Guess(ctx context.Context, input string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guess := strings.TrimSpace(input)
	if guess == "" {
		return Outcome{}, ErrEmptyGuess
	}
	if s.current == nil {
		return Outcome{}, ErrNoActiveWord
	}

	if strings.EqualFold(guess, s.current.Word.English) {
		return s.resolve(ctx, true)
	}
	return s.resolve(ctx, false)
}

// Skip gives up on the active word
func (s *Session) Skip(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Outcome{}, ErrNoActiveWord
	}
	return s.resolve(ctx, false)
}

func (s *Session) resolve(ctx context.Context, correct bool) (Outcome, error) {
	word := s.current.Word

	err := s.stats.UpdateStats(ctx, word.ID, correct)
	if errors.Is(err, database.ErrWordNotFound) {
		s.current = nil
		s.asked--
		return s.advance(ctx, Outcome{Dropped: true, Answer: word.English, Score: s.score})
	}
	if err != nil {
		return Outcome{}, err
	}
	if correct {
		if word.IsSkipped {
			if err := s.words.SetSkipped(ctx, word.ID, false); err != nil {
				return Outcome{}, fmt.Errorf("failed to clear skipped flag: %w", err)
			}
		}
		s.correct++
		s.score += PointsPerWord
	} else if err := s.words.SetSkipped(ctx, word.ID, true); err != nil {
		return Outcome{}, fmt.Errorf("failed to set skipped flag: %w", err)
	}

	s.current = nil
	return s.advance(ctx, Outcome{Correct: correct, Answer: word.English, Score: s.score})
}

// advance finishes the session once every planned word has been asked
func (s *Session) advance(ctx context.Context, out Outcome) (Outcome, error) {
	if s.asked >= s.total {
		out.Finished = true
		if err := s.finish(ctx); !errors.Is(err, ErrGameOver) {
			return out, err
		}
	}
	return out, nil
}

// finish marks the session over and records its result once. It returns
// ErrGameOver unless saving fails.
func (s *Session) finish(ctx context.Context) error {
	s.finished = true
	if s.results == nil || s.saved || s.asked == 0 {
		return ErrGameOver
	}
	s.saved = true
	err := s.results.Create(ctx, &models.QuizResult{
		UserID:       s.cfg.UserID,
		TotalWords:   s.asked,
		CorrectWords: s.correct,
		Score:        s.score,
	})
	if err != nil {
		return fmt.Errorf("failed to save quiz result: %w", err)
	}
	return ErrGameOver
}

// Restart forgets used words and resets the score
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.used = make(map[int64]bool)
	s.asked, s.total, s.correct, s.score = 0, 0, 0, 0
	s.current = nil
	s.finished = false
	s.saved = false
}

// Current returns the active question, if any
func (s *Session) Current() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Question{}, false
	}
	return *s.current, true
}

// Score returns the points and correct answers so far
func (s *Session) Score() (score, correct int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, s.correct
}

// Finished reports whether the session is over
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Shuffle returns the letters of word in random order. The result differs
// from word whenever word has at least two distinct letters.
func Shuffle(word string, rnd *rand.Rand) string {
	letters := []rune(word)
	if len(letters) < 2 || !hasDistinct(letters) {
		return word
	}
	for {
		rnd.Shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
		if out := string(letters); out != word {
			return out
		}
	}
}

func hasDistinct(letters []rune) bool {
	for _, r := range letters[1:] {
		if r != letters[0] {
			return true
		}
	}
	return false
}
