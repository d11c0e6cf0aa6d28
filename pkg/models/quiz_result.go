package models

import "time"

// QuizResult records the outcome of a finished quiz
type QuizResult struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	TotalWords   int       `json:"total_words" db:"total_words"`
	CorrectWords int       `json:"correct_words" db:"correct_words"`
	Score        int       `json:"score" db:"score"`
	TakenAt      time.Time `json:"taken_at" db:"taken_at"`
}
