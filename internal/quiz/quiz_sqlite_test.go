package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSurvivesWordRemovedMidQuestion(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	words := database.NewWordRepository(db)
	stats := database.NewGameStateRepository(db)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, pair := range [][2]string{{"apple", "سیب"}, {"river", "رود"}} {
		w := models.NewWord(pair[0], pair[1], now)
		require.NoError(t, words.Create(ctx, &w))
	}

	s := NewSession(words, stats, nil, Config{WordCount: 2, Seed: 3})
	first, err := s.Next(ctx)
	require.NoError(t, err)

	soft, err := words.Remove(ctx, first.Word.ID, false)
	require.NoError(t, err)
	require.False(t, soft)

	out, err := s.Guess(ctx, first.Word.English)
	require.NoError(t, err)
	assert.True(t, out.Dropped)

	second, err := s.Next(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Word.ID, second.Word.ID)

	out, err = s.Guess(ctx, second.Word.English)
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.True(t, out.Finished)

	state, err := stats.GetByWordID(ctx, second.Word.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 1, state.CorrectAnswer)
}
