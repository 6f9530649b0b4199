package models

import (
	"fmt"
	"time"
)

// Difficulty is the difficulty band of a quiz question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the three known difficulty bands.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question count bounds accepted by QuizSpec.
const (
	MinQuestions = 3
	MaxQuestions = 20
)

// QuizSpec is the caller's request for quiz generation.
type QuizSpec struct {
	NumQuestions int `json:"num_questions"`
}

// Validate checks that the requested question count is within bounds.
func (s QuizSpec) Validate() error {
	if s.NumQuestions < MinQuestions || s.NumQuestions > MaxQuestions {
		return fmt.Errorf("num_questions must be between %d and %d, got %d",
			MinQuestions, MaxQuestions, s.NumQuestions)
	}
	return nil
}

// Bands returns the per-difficulty question targets derived from the
// requested count: easy and medium each get n/3 and the remainder always
// lands in the hard band.
func (s QuizSpec) Bands() (easy, medium, hard int) {
	easy = s.NumQuestions / 3
	medium = s.NumQuestions / 3
	hard = s.NumQuestions - 2*(s.NumQuestions/3)
	return easy, medium, hard
}

// Question is one validated multiple-choice item. Invariants: Options has
// exactly 4 entries, Answer equals one of them exactly, and Difficulty is
// one of the three bands.
type Question struct {
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Answer      string     `json:"answer"`
	Difficulty  Difficulty `json:"difficulty"`
	Explanation string     `json:"explanation"`
	Section     string     `json:"section"`
}

// QuizResult is the outcome of one quiz synthesis run.
type QuizResult struct {
	Questions              []Question         `json:"questions"`
	RelatedTopics          []string           `json:"related_topics"`
	DifficultyDistribution map[Difficulty]int `json:"difficulty_distribution"`
	GenerationTime         time.Duration      `json:"-"`
}

// Quiz is a persisted quiz with its metadata.
type Quiz struct {
	ID             int64              `json:"id"`
	ArticleID      int64              `json:"article_id"`
	Topic          string             `json:"topic"`
	Questions      []Question         `json:"questions,omitempty"`
	RelatedTopics  []string           `json:"related_topics,omitempty"`
	TotalQuestions int                `json:"total_questions"`
	Distribution   map[Difficulty]int `json:"difficulty_distribution,omitempty"`
	ModelUsed      string             `json:"model_used,omitempty"`
	GenerationSecs float64            `json:"generation_time_seconds"`
	CreatedAt      time.Time          `json:"created_at"`
}

// QuizAttempt records a completed run through a quiz's questions.
type QuizAttempt struct {
	ID             int64     `json:"id"`
	QuizID         int64     `json:"quiz_id"`
	Answers        []string  `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	CreatedAt      time.Time `json:"created_at"`
}
