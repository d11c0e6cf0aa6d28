package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWords struct {
	words   []models.Word
	skipped map[int64]bool
}

func (f *fakeWords) GetAll(context.Context) ([]models.Word, error) {
	out := make([]models.Word, len(f.words))
	copy(out, f.words)
	return out, nil
}

func (f *fakeWords) SetSkipped(_ context.Context, id int64, skipped bool) error {
	if f.skipped == nil {
		f.skipped = make(map[int64]bool)
	}
	f.skipped[id] = skipped
	return nil
}

type fakeStats struct {
	correct map[int64]int
	wrong   map[int64]int
	err     error
}

func newFakeStats() *fakeStats {
	return &fakeStats{correct: map[int64]int{}, wrong: map[int64]int{}}
}

func (f *fakeStats) UpdateStats(_ context.Context, id int64, correct bool) error {
	if f.err != nil {
		return f.err
	}
	if correct {
		f.correct[id]++
	} else {
		f.wrong[id]++
	}
	return nil
}

type fakeResults struct {
	saved []models.QuizResult
}

func (f *fakeResults) Create(_ context.Context, r *models.QuizResult) error {
	f.saved = append(f.saved, *r)
	return nil
}

func vocabulary(n int) *fakeWords {
	names := []string{"apple", "river", "window", "garden", "silver", "planet", "bridge", "candle", "forest", "mirror", "pocket", "rabbit"}
	fw := &fakeWords{}
	for i := 0; i < n; i++ {
		fw.words = append(fw.words, models.Word{ID: int64(i + 1), English: names[i], Persian: "x", LeitnerBox: 1})
	}
	return fw
}

func TestShuffleNeverReturnsOriginal(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, w := range []string{"ab", "apple", "window", "کتاب", "aab"} {
		for i := 0; i < 50; i++ {
			got := Shuffle(w, rnd)
			assert.NotEqual(t, w, got)
			assert.ElementsMatch(t, []rune(w), []rune(got))
		}
	}
}

func TestShuffleDegenerateWords(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	assert.Equal(t, "", Shuffle("", rnd))
	assert.Equal(t, "a", Shuffle("a", rnd))
	assert.Equal(t, "aaa", Shuffle("aaa", rnd))
}

func TestCorrectGuessScoresAndClearsSkipped(t *testing.T) {
	ctx := context.Background()
	words := vocabulary(1)
	words.words[0].IsSkipped = true
	stats := newFakeStats()
	s := NewSession(words, stats, nil, Config{Seed: 7})

	q, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Number)
	assert.Equal(t, 1, q.Total)

	out, err := s.Guess(ctx, "  APPLE ")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, PointsPerWord, out.Score)
	assert.True(t, out.Finished)
	assert.Equal(t, 1, stats.correct[1])
	assert.False(t, words.skipped[1])
	assert.True(t, s.Finished())
}

func TestWrongGuessFlagsWord(t *testing.T) {
	ctx := context.Background()
	words := vocabulary(2)
	stats := newFakeStats()
	s := NewSession(words, stats, nil, Config{Seed: 3})

	q, err := s.Next(ctx)
	require.NoError(t, err)

	out, err := s.Guess(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, q.Word.English, out.Answer)
	assert.Zero(t, out.Score)
	assert.False(t, out.Finished)
	assert.Equal(t, 1, stats.wrong[q.Word.ID])
	assert.True(t, words.skipped[q.Word.ID])

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestEmptyGuessChangesNothing(t *testing.T) {
	ctx := context.Background()
	stats := newFakeStats()
	s := NewSession(vocabulary(1), stats, nil, Config{Seed: 1})

	_, err := s.Next(ctx)
	require.NoError(t, err)

	_, err = s.Guess(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyGuess)
	assert.Empty(t, stats.correct)
	assert.Empty(t, stats.wrong)

	_, ok := s.Current()
	assert.True(t, ok)
}

func TestGuessWithoutActiveWord(t *testing.T) {
	s := NewSession(vocabulary(1), newFakeStats(), nil, Config{})
	_, err := s.Guess(context.Background(), "apple")
	assert.ErrorIs(t, err, ErrNoActiveWord)
	_, err = s.Skip(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveWord)
}

func TestNoWords(t *testing.T) {
	s := NewSession(&fakeWords{}, newFakeStats(), nil, Config{})
	_, err := s.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoWords)
}

func TestDeletedWordsAreNeverAsked(t *testing.T) {
	words := vocabulary(2)
	words.words[0].IsDeleted = true
	s := NewSession(words, newFakeStats(), nil, Config{Seed: 5})

	q, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), q.Word.ID)
	assert.Equal(t, 1, q.Total)
}

func TestSessionStopsAtWordCount(t *testing.T) {
	ctx := context.Background()
	results := &fakeResults{}
	s := NewSession(vocabulary(12), newFakeStats(), results, Config{Seed: 11, UserID: 42})

	seen := map[int64]bool{}
	var out Outcome
	for i := 0; i < DefaultWordCount; i++ {
		q, err := s.Next(ctx)
		require.NoError(t, err)
		assert.False(t, seen[q.Word.ID], "word %d asked twice", q.Word.ID)
		seen[q.Word.ID] = true
		assert.Equal(t, DefaultWordCount, q.Total)

		if i%2 == 0 {
			out, err = s.Guess(ctx, q.Word.English)
		} else {
			out, err = s.Skip(ctx)
		}
		require.NoError(t, err)
	}
	assert.True(t, out.Finished)

	_, err := s.Next(ctx)
	assert.ErrorIs(t, err, ErrGameOver)

	score, correct := s.Score()
	assert.Equal(t, 5*PointsPerWord, score)
	assert.Equal(t, 5, correct)

	require.Len(t, results.saved, 1)
	assert.Equal(t, models.QuizResult{UserID: 42, TotalWords: 10, CorrectWords: 5, Score: 100}, results.saved[0])
}

func TestRestartResetsSession(t *testing.T) {
	ctx := context.Background()
	s := NewSession(vocabulary(1), newFakeStats(), nil, Config{Seed: 2})

	q, err := s.Next(ctx)
	require.NoError(t, err)
	_, err = s.Guess(ctx, q.Word.English)
	require.NoError(t, err)
	_, err = s.Next(ctx)
	require.ErrorIs(t, err, ErrGameOver)

	s.Restart()
	score, _ := s.Score()
	assert.Zero(t, score)
	assert.False(t, s.Finished())

	q, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "apple", q.Word.English)
	assert.Equal(t, 1, q.Number)
}

func TestNextReturnsActiveWord(t *testing.T) {
	ctx := context.Background()
	s := NewSession(vocabulary(3), newFakeStats(), nil, Config{Seed: 9})

	first, err := s.Next(ctx)
	require.NoError(t, err)
	again, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestStatsFailureKeepsWordActive(t *testing.T) {
	ctx := context.Background()
	stats := newFakeStats()
	stats.err = errors.New("disk full")
	s := NewSession(vocabulary(1), stats, nil, Config{Seed: 4})

	q, err := s.Next(ctx)
	require.NoError(t, err)
	_, err = s.Guess(ctx, strings.ToUpper(q.Word.English))
	assert.EqualError(t, err, "disk full")

	_, ok := s.Current()
	assert.True(t, ok)
}

func TestRemovedWordIsDroppedAndSessionMovesOn(t *testing.T) {
	ctx := context.Background()
	stats := newFakeStats()
	s := NewSession(vocabulary(3), stats, nil, Config{WordCount: 3, Seed: 8})

	first, err := s.Next(ctx)
	require.NoError(t, err)

	stats.err = fmt.Errorf("failed to update stats: %w", database.ErrWordNotFound)
	out, err := s.Guess(ctx, first.Word.English)
	require.NoError(t, err)
	assert.True(t, out.Dropped)
	assert.False(t, out.Correct)
	assert.False(t, out.Finished)
	assert.Equal(t, first.Word.English, out.Answer)

	_, ok := s.Current()
	assert.False(t, ok)

	stats.err = nil
	second, err := s.Next(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Word.ID, second.Word.ID)
	assert.Equal(t, 1, second.Number, "the dropped word does not count")

	out, err = s.Skip(ctx)
	require.NoError(t, err)
	assert.False(t, out.Dropped)
	assert.Equal(t, 1, stats.wrong[second.Word.ID])
}
