package spaced_repetition

import (
	"time"

	"github.com/example/wordbox/pkg/models"
)

// ReviewQueue is the set of words due at GeneratedAt, split by priority.
// It is derived from the store and never persisted.
type ReviewQueue struct {
	// HighPriority holds due words flagged as skipped
	HighPriority []models.Word
	// Normal holds the remaining due words
	Normal []models.Word
	// AllSkipped lists every skipped word, due or not
	AllSkipped []models.Word

	GeneratedAt time.Time
}

// NewReviewQueue partitions due words by their skipped flag, keeping the
// order the store returned. Words that are deleted, mastered or not yet due
// are dropped.
func NewReviewQueue(due, skipped []models.Word, now time.Time) ReviewQueue {
	q := ReviewQueue{GeneratedAt: now}
	for _, w := range due {
		if !w.IsDue(now) {
			continue
		}
		if w.IsSkipped {
			q.HighPriority = append(q.HighPriority, w)
		} else {
			q.Normal = append(q.Normal, w)
		}
	}
	for _, w := range skipped {
		if w.IsSkipped && !w.IsDeleted {
			q.AllSkipped = append(q.AllSkipped, w)
		}
	}
	return q
}

// Len returns the number of due words
func (q ReviewQueue) Len() int {
	return len(q.HighPriority) + len(q.Normal)
}

// IsEmpty reports whether nothing is due
func (q ReviewQueue) IsEmpty() bool {
	return q.Len() == 0
}

// SelectNext returns the first high priority word, falling back to the first
// normal word. ok is false when the queue is empty.
func SelectNext(q ReviewQueue) (word models.Word, ok bool) {
	if len(q.HighPriority) > 0 {
		return q.HighPriority[0], true
	}
	if len(q.Normal) > 0 {
		return q.Normal[0], true
	}
	return models.Word{}, false
}
