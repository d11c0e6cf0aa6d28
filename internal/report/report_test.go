package report

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday
var now = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func TestWeeklyChart(t *testing.T) {
	dates := []time.Time{
		now.Add(-time.Hour),
		now.Add(-15 * time.Hour), // early today
		now.Add(-16 * time.Hour), // yesterday
		now.AddDate(0, 0, -6),    // first bar
		now.AddDate(0, 0, -7),    // too old
		now.Add(24 * time.Hour),  // future
	}

	chart := WeeklyChart(dates, now)
	require.Len(t, chart, 7)

	days := make([]string, len(chart))
	counts := make([]int, len(chart))
	for i, c := range chart {
		days[i] = c.Day
		counts[i] = c.Count
	}
	assert.Equal(t, []string{"Tue", "Wed", "Thu", "Fri", "Sat", "Sun", "Mon"}, days)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 1, 2}, counts)
}

func TestWeeklyChartUsesLocation(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	local := now.In(tehran) // 19:00 Monday

	// 22:00 UTC Sunday is 01:30 Monday in Tehran
	chart := WeeklyChart([]time.Time{time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC)}, local)
	assert.Equal(t, 1, chart[6].Count)
	assert.Equal(t, 0, chart[5].Count)
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 0, barWidth(0, 5000))
	assert.Equal(t, 3, barWidth(3, 7))
	assert.Equal(t, MaxBarWidth, barWidth(MaxBarWidth, MaxBarWidth))
	assert.Equal(t, MaxBarWidth, barWidth(5000, 5000))
	assert.Equal(t, 10, barWidth(2500, 5000))
	assert.Equal(t, 1, barWidth(1, 5000))
}

func TestFormatScalesLargeImports(t *testing.T) {
	dates := make([]time.Time, 0, 5001)
	for i := 0; i < 5000; i++ {
		dates = append(dates, now.Add(-time.Minute))
	}
	dates = append(dates, now.AddDate(0, 0, -1))

	r := &Report{Weekly: WeeklyChart(dates, now), GeneratedAt: now}
	text := r.Format()

	assert.Less(t, utf8.RuneCountInString(text), 4096)
	assert.Contains(t, text, "Mon "+strings.Repeat("▇", MaxBarWidth)+" 5000\n")
	assert.Contains(t, text, "Sun ▇ 1\n")
	assert.Contains(t, text, "Sat  0\n")
}

func TestHardestWords(t *testing.T) {
	rows := []models.WordReport{
		{WordID: 1, EnglishWord: "a", WrongCount: 1},
		{WordID: 2, EnglishWord: "b", WrongCount: 0, CorrectCount: 9},
		{WordID: 3, EnglishWord: "c", WrongCount: 5},
		{WordID: 4, EnglishWord: "d", WrongCount: 3},
		{WordID: 5, EnglishWord: "e", WrongCount: 3},
		{WordID: 6, EnglishWord: "f", WrongCount: 2},
		{WordID: 7, EnglishWord: "g", WrongCount: 4},
	}

	hard := HardestWords(rows, HardWordsLimit)
	require.Len(t, hard, 5)
	ids := []int64{}
	for _, h := range hard {
		ids = append(ids, h.WordID)
	}
	assert.Equal(t, []int64{3, 7, 4, 5, 6}, ids)

	assert.Empty(t, HardestWords(rows[1:2], HardWordsLimit))
}

func TestBuildAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	words := database.NewWordRepository(db)
	stats := database.NewGameStateRepository(db)
	quizzes := database.NewQuizResultRepository(db)

	apple := models.NewWord("apple", "سیب", now.Add(-time.Hour))
	pear := models.NewWord("pear", "گلابی", now.AddDate(0, 0, -2))
	require.NoError(t, words.Create(ctx, &apple))
	require.NoError(t, words.Create(ctx, &pear))
	require.NoError(t, words.SetBox(ctx, pear.ID, 3))

	require.NoError(t, stats.UpdateStats(ctx, apple.ID, true))
	require.NoError(t, stats.UpdateStats(ctx, pear.ID, false))
	require.NoError(t, stats.UpdateStats(ctx, pear.ID, false))
	require.NoError(t, quizzes.Create(ctx, &models.QuizResult{TotalWords: 3, CorrectWords: 1, Score: 20}))

	svc := NewService(words, stats, quizzes)
	svc.now = func() time.Time { return now.In(time.Local) }

	r, err := svc.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, r.TotalCorrect)
	assert.Equal(t, 2, r.TotalWrong)
	assert.Equal(t, [models.MaxBox]int{1, 0, 1, 0, 0}, r.Boxes)
	require.Len(t, r.HardWords, 1)
	assert.Equal(t, "pear", r.HardWords[0].EnglishWord)

	total := 0
	for _, d := range r.Weekly {
		total += d.Count
	}
	assert.Equal(t, 2, total)

	require.NotNil(t, r.Quiz)
	assert.Equal(t, 1, r.Quiz.Quizzes)

	text := r.Format()
	assert.Contains(t, text, "Correct: 1")
	assert.Contains(t, text, "Box 3: 1")
	assert.Contains(t, text, "1. pear (2 wrong, 0 correct)")
	assert.Contains(t, text, "Quizzes: 1, best score 20")
}
