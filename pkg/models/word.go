package models

import (
	"strings"
	"time"
)

// Leitner box bounds. Box 5 means mastered.
const (
	MinBox = 1
	MaxBox = 5
)

// Word represents an English word and its Persian meaning together with its
// position on the Leitner ladder
type Word struct {
	ID             int64     `json:"id" db:"id"`
	English        string    `json:"english" db:"english"`
	Persian        string    `json:"persian" db:"persian"`
	IsSkipped      bool      `json:"is_skipped" db:"is_skipped"` // high priority, shown before other due words
	IsDeleted      bool      `json:"is_deleted" db:"is_deleted"`
	DateAdded      time.Time `json:"date_added" db:"date_added"`
	LeitnerBox     int       `json:"leitner_box" db:"leitner_box"`
	NextReviewDate time.Time `json:"next_review_date" db:"next_review_date"`
}

// NewWord creates an unsaved word in box 1 that is due immediately
func NewWord(english, persian string, now time.Time) Word {
	return Word{
		English:        strings.TrimSpace(english),
		Persian:        strings.TrimSpace(persian),
		DateAdded:      now,
		LeitnerBox:     MinBox,
		NextReviewDate: now,
	}
}

// IsPersisted reports whether the word has been assigned an ID by the store
func (w Word) IsPersisted() bool {
	return w.ID > 0
}

// IsMastered reports whether the word reached the last box
func (w Word) IsMastered() bool {
	return w.LeitnerBox >= MaxBox
}

// IsDue reports whether the word should be reviewed at the given time
func (w Word) IsDue(now time.Time) bool {
	return !w.IsDeleted && w.LeitnerBox < MaxBox && !w.NextReviewDate.After(now)
}
