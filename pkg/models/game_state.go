package models

// GameState tracks quiz answers for a single word
type GameState struct {
	ID            int64 `json:"id" db:"id"`
	WordID        int64 `json:"word_id" db:"word_id"`
	CorrectAnswer int   `json:"correct_answer" db:"correct_answer"`
	WrongAnswer   int   `json:"wrong_answer" db:"wrong_answer"`
}

// WordReport joins a word with its quiz counters. Words never quizzed report zero.
type WordReport struct {
	WordID       int64  `json:"word_id" db:"word_id"`
	EnglishWord  string `json:"english_word" db:"english_word"`
	CorrectCount int    `json:"correct_count" db:"correct_count"`
	WrongCount   int    `json:"wrong_count" db:"wrong_count"`
}
