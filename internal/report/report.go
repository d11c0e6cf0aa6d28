package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/wordbox/internal/database"
	"github.com/example/wordbox/pkg/models"
)

const (
	// HardWordsLimit is the number of hardest words listed in a report
	HardWordsLimit = 5
	// MaxBarWidth caps the weekly chart bars; busier weeks are scaled down
	MaxBarWidth = 20
)

// WordSource provides word dates and box counts
type WordSource interface {
	GetAllDateAdded(ctx context.Context) ([]time.Time, error)
	CountByBox(ctx context.Context) (map[int]int, error)
}

// StatsSource provides per-word answer counts
type StatsSource interface {
	GetFullReport(ctx context.Context) ([]models.WordReport, error)
}

// QuizSource provides aggregated quiz results
type QuizSource interface {
	GetSummary(ctx context.Context) (*database.QuizSummary, error)
}

// DayCount is a bar of the weekly chart
type DayCount struct {
	Day   string
	Date  time.Time
	Count int
}

// Report is a snapshot of learning progress
type Report struct {
	Weekly       []DayCount
	TotalCorrect int
	TotalWrong   int
	HardWords    []models.WordReport
	Boxes        [models.MaxBox]int
	Quiz         *database.QuizSummary
	GeneratedAt  time.Time
}

// Service builds progress reports
type Service struct {
	words   WordSource
	stats   StatsSource
	quizzes QuizSource
	now     func() time.Time
}

// NewService creates a new report service. quizzes may be nil.
func NewService(words WordSource, stats StatsSource, quizzes QuizSource) *Service {
	return &Service{words: words, stats: stats, quizzes: quizzes, now: time.Now}
}

// Build collects every section of the report
func (s *Service) Build(ctx context.Context) (*Report, error) {
	now := s.now()
	r := &Report{GeneratedAt: now}

	dates, err := s.words.GetAllDateAdded(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load word dates: %w", err)
	}
	r.Weekly = WeeklyChart(dates, now)

	boxes, err := s.words.CountByBox(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count boxes: %w", err)
	}
	for box := models.MinBox; box <= models.MaxBox; box++ {
		r.Boxes[box-1] = boxes[box]
	}

	rows, err := s.stats.GetFullReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer stats: %w", err)
	}
	for _, row := range rows {
		r.TotalCorrect += row.CorrectCount
		r.TotalWrong += row.WrongCount
	}
	r.HardWords = HardestWords(rows, HardWordsLimit)

	if s.quizzes != nil {
		r.Quiz, err = s.quizzes.GetSummary(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load quiz summary: %w", err)
		}
	}
	return r, nil
}

// WeeklyChart counts dates per calendar day for the seven days ending at
// now, oldest first. Days are taken in now's location.
func WeeklyChart(dates []time.Time, now time.Time) []DayCount {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	chart := make([]DayCount, 7)
	index := make(map[string]int, 7)
	for i := range chart {
		day := today.AddDate(0, 0, i-6)
		chart[i] = DayCount{Day: day.Weekday().String()[:3], Date: day}
		index[day.Format("2006-01-02")] = i
	}

	for _, t := range dates {
		if i, ok := index[t.In(loc).Format("2006-01-02")]; ok {
			chart[i].Count++
		}
	}
	return chart
}

// HardestWords returns up to limit words with at least one wrong answer,
// most wrong answers first
func HardestWords(rows []models.WordReport, limit int) []models.WordReport {
	hard := make([]models.WordReport, 0, len(rows))
	for _, row := range rows {
		if row.WrongCount > 0 {
			hard = append(hard, row)
		}
	}
	sort.SliceStable(hard, func(i, j int) bool {
		return hard[i].WrongCount > hard[j].WrongCount
	})
	if len(hard) > limit {
		hard = hard[:limit]
	}
	return hard
}

// barWidth scales count against the busiest day. Non-empty days always get
// at least one glyph.
func barWidth(count, peak int) int {
	if count <= 0 {
		return 0
	}
	if peak <= MaxBarWidth {
		return count
	}
	if w := count * MaxBarWidth / peak; w > 0 {
		return w
	}
	return 1
}

// Format renders the report as plain text
func (r *Report) Format() string {
	var b strings.Builder

	b.WriteString("📊 Words added this week\n")
	peak := 0
	for _, day := range r.Weekly {
		if day.Count > peak {
			peak = day.Count
		}
	}
	for _, day := range r.Weekly {
		fmt.Fprintf(&b, "%s %s %d\n", day.Day, strings.Repeat("▇", barWidth(day.Count, peak)), day.Count)
	}

	fmt.Fprintf(&b, "\n✅ Correct: %d\n❌ Wrong: %d\n", r.TotalCorrect, r.TotalWrong)

	b.WriteString("\n📦 Leitner boxes\n")
	for i, n := range r.Boxes {
		fmt.Fprintf(&b, "Box %d: %d\n", i+1, n)
	}

	if len(r.HardWords) > 0 {
		b.WriteString("\n🔥 Hardest words\n")
		for i, w := range r.HardWords {
			fmt.Fprintf(&b, "%d. %s (%d wrong, %d correct)\n", i+1, w.EnglishWord, w.WrongCount, w.CorrectCount)
		}
	}

	if r.Quiz != nil && r.Quiz.Quizzes > 0 {
		fmt.Fprintf(&b, "\n🎯 Quizzes: %d, best score %d, %d/%d answered correctly\n",
			r.Quiz.Quizzes, r.Quiz.BestScore, r.Quiz.Correct, r.Quiz.Total)
	}
	return b.String()
}
