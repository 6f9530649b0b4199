package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhich05/wikiquiz/internal/models"
)

// SaveAttempt scores a completed run through a quiz's questions and
// persists it. The answers slice is positional: answers[i] is the chosen
// option for question i+1. Answers are compared to the stored correct
// option by exact match.
func (s *Store) SaveAttempt(ctx context.Context, quizID int64, answers []string) (*models.QuizAttempt, error) {
	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	score := 0
	for i, q := range quiz.Questions {
		if i < len(answers) && answers[i] == q.Answer {
			score++
		}
	}

	total := len(quiz.Questions)
	percentage := 0.0
	if total > 0 {
		percentage = float64(score) / float64(total) * 100
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("marshaling answers: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (quiz_id, answers, score, total_questions, percentage)
		VALUES (?, ?, ?, ?, ?)`,
		quizID, string(answersJSON), score, total, percentage,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting attempt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading attempt id: %w", err)
	}

	return &models.QuizAttempt{
		ID:             id,
		QuizID:         quizID,
		Answers:        answers,
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage,
	}, nil
}

// ListAttempts returns all attempts for a quiz, newest first.
func (s *Store) ListAttempts(ctx context.Context, quizID int64) ([]models.QuizAttempt, error) {
	const query = `
		SELECT id, quiz_id, answers, score, total_questions, percentage, created_at
		FROM quiz_attempts
		WHERE quiz_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("querying attempts for quiz %d: %w", quizID, err)
	}
	defer rows.Close()

	var attempts []models.QuizAttempt
	for rows.Next() {
		var (
			a         models.QuizAttempt
			answers   string
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.QuizID, &answers, &a.Score,
			&a.TotalQuestions, &a.Percentage, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			return nil, fmt.Errorf("unmarshaling answers: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attempts: %w", err)
	}
	return attempts, nil
}
