package spaced_repetition

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/wordbox/pkg/models"
)

const day = 24 * time.Hour

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// Leitner holds the review interval of every box. Box 1 is always reviewed
// immediately.
type Leitner struct {
	// Intervals maps boxes 2..5 to the delay before the next review
	Intervals map[int]time.Duration
}

// NewLeitner creates a Leitner table with the default 1/3/7/14 day intervals
func NewLeitner() *Leitner {
	return &Leitner{
		Intervals: map[int]time.Duration{
			2: 1 * day,
			3: 3 * day,
			4: 7 * day,
			5: 14 * day,
		},
	}
}

// Validate checks that every box above the first has an interval and that
// intervals grow strictly with the box number
func (l *Leitner) Validate() error {
	prev := time.Duration(0)
	for box := models.MinBox + 1; box <= models.MaxBox; box++ {
		iv, ok := l.Intervals[box]
		if !ok {
			return fmt.Errorf("missing interval for box %d", box)
		}
		if iv <= prev {
			return fmt.Errorf("interval for box %d (%s) must be greater than %s", box, iv, prev)
		}
		prev = iv
	}
	return nil
}

// Interval returns the review delay of a box. Boxes outside [1,5] are clamped.
func (l *Leitner) Interval(box int) time.Duration {
	box = clampBox(box)
	if box == models.MinBox {
		return 0
	}
	return l.Intervals[box]
}

// NextBox returns the box a word moves to after a successful recall
func (l *Leitner) NextBox(box int) int {
	return clampBox(box + 1)
}

func clampBox(box int) int {
	if box < models.MinBox {
		return models.MinBox
	}
	if box > models.MaxBox {
		return models.MaxBox
	}
	return box
}

// WordStore is the persistent state the engine reads and mutates
type WordStore interface {
	GetDueForReview(ctx context.Context, now time.Time) ([]models.Word, error)
	GetHighPriority(ctx context.Context) ([]models.Word, error)
	SetBox(ctx context.Context, id int64, box int) error
	SetNextReviewTime(ctx context.Context, id int64, t time.Time) error
	SetSkipped(ctx context.Context, id int64, skipped bool) error
}

// Engine applies Leitner transitions to stored words and builds review queues.
// It keeps no state of its own; every call reads the store.
type Engine struct {
	store   WordStore
	clock   Clock
	leitner *Leitner
}

// NewEngine creates an engine. A nil clock uses the wall clock. A nil or
// invalid table is replaced by NewLeitner.
func NewEngine(store WordStore, clock Clock, leitner *Leitner) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if leitner == nil {
		leitner = NewLeitner()
	} else if err := leitner.Validate(); err != nil {
		log.Printf("Invalid Leitner intervals, using defaults: %v", err)
		leitner = NewLeitner()
	}
	return &Engine{store: store, clock: clock, leitner: leitner}
}

// Leitner returns the interval table used by the engine
func (e *Engine) Leitner() *Leitner {
	return e.leitner
}

// MarkLearned moves the word one box up, schedules its next review and clears
// the skipped flag. Unsaved words (ID <= 0) are returned unchanged.
func (e *Engine) MarkLearned(ctx context.Context, word models.Word) (models.Word, error) {
	if !word.IsPersisted() {
		return word, nil
	}

	now := e.clock.Now()
	newBox := e.leitner.NextBox(word.LeitnerBox)
	next := now.Add(e.leitner.Interval(newBox))

	if err := e.store.SetBox(ctx, word.ID, newBox); err != nil {
		return word, err
	}
	if err := e.store.SetNextReviewTime(ctx, word.ID, next); err != nil {
		return word, err
	}
	if word.IsSkipped {
		if err := e.store.SetSkipped(ctx, word.ID, false); err != nil {
			return word, err
		}
	}

	word.LeitnerBox = newBox
	word.NextReviewDate = next
	word.IsSkipped = false
	return word, nil
}

// MarkForgotten sends the word back to box 1, makes it due now and flags it
// as high priority. Unsaved words (ID <= 0) are returned unchanged.
func (e *Engine) MarkForgotten(ctx context.Context, word models.Word) (models.Word, error) {
	if !word.IsPersisted() {
		return word, nil
	}

	now := e.clock.Now()

	if err := e.store.SetBox(ctx, word.ID, models.MinBox); err != nil {
		return word, err
	}
	if err := e.store.SetNextReviewTime(ctx, word.ID, now); err != nil {
		return word, err
	}
	if err := e.store.SetSkipped(ctx, word.ID, true); err != nil {
		return word, err
	}

	word.LeitnerBox = models.MinBox
	word.NextReviewDate = now
	word.IsSkipped = true
	return word, nil
}

// Queue reads the store and builds the current review queue
func (e *Engine) Queue(ctx context.Context) (ReviewQueue, error) {
	now := e.clock.Now()

	due, err := e.store.GetDueForReview(ctx, now)
	if err != nil {
		return ReviewQueue{}, err
	}
	skipped, err := e.store.GetHighPriority(ctx)
	if err != nil {
		return ReviewQueue{}, err
	}
	return NewReviewQueue(due, skipped, now), nil
}

// Next builds a fresh queue and selects the word to show. ok is false when
// nothing is due.
func (e *Engine) Next(ctx context.Context) (word models.Word, ok bool, err error) {
	q, err := e.Queue(ctx)
	if err != nil {
		return models.Word{}, false, err
	}
	word, ok = SelectNext(q)
	return word, ok, nil
}

// DueCount returns the number of words currently due
func (e *Engine) DueCount(ctx context.Context) (int, error) {
	q, err := e.Queue(ctx)
	if err != nil {
		return 0, err
	}
	return q.Len(), nil
}
