package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhich05/wikiquiz/internal/models"
)

// SaveQuiz persists a synthesized quiz and its questions in a single
// transaction and returns the new quiz ID.
func (s *Store) SaveQuiz(ctx context.Context, articleID int64, topic, modelUsed string, result *models.QuizResult) (int64, error) {
	distribution, err := json.Marshal(result.DifficultyDistribution)
	if err != nil {
		return 0, fmt.Errorf("marshaling distribution: %w", err)
	}
	related, err := json.Marshal(result.RelatedTopics)
	if err != nil {
		return 0, fmt.Errorf("marshaling related topics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `
		INSERT INTO quizzes
			(article_id, topic, total_questions, difficulty_distribution,
			 related_topics, model_used, generation_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		articleID, topic, len(result.Questions), string(distribution),
		string(related), modelUsed, result.GenerationTime.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting quiz: %w", err)
	}

	quizID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading quiz id: %w", err)
	}

	for i, q := range result.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return 0, fmt.Errorf("marshaling options for question %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quiz_questions
				(quiz_id, question_number, question_text, options, answer,
				 difficulty, explanation, section)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			quizID, i+1, q.Question, string(options), q.Answer,
			string(q.Difficulty), q.Explanation, q.Section,
		); err != nil {
			return 0, fmt.Errorf("inserting question %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing quiz: %w", err)
	}

	return quizID, nil
}

// GetQuiz returns a stored quiz with its questions in order.
func (s *Store) GetQuiz(ctx context.Context, id int64) (*models.Quiz, error) {
	const query = `
		SELECT id, article_id, topic, total_questions,
		       difficulty_distribution, related_topics, model_used,
		       generation_seconds, created_at
		FROM quizzes
		WHERE id = ?
	`
	var (
		q            models.Quiz
		distribution string
		related      string
		createdAt    string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.ArticleID, &q.Topic, &q.TotalQuestions,
		&distribution, &related, &q.ModelUsed, &q.GenerationSecs, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying quiz %d: %w", id, err)
	}

	if err := json.Unmarshal([]byte(distribution), &q.Distribution); err != nil {
		return nil, fmt.Errorf("unmarshaling distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(related), &q.RelatedTopics); err != nil {
		return nil, fmt.Errorf("unmarshaling related topics: %w", err)
	}
	q.CreatedAt = parseTime(createdAt)

	questions, err := s.quizQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Questions = questions

	return &q, nil
}

// quizQuestions loads a quiz's questions ordered by question number.
func (s *Store) quizQuestions(ctx context.Context, quizID int64) ([]models.Question, error) {
	const query = `
		SELECT question_text, options, answer, difficulty, explanation, section
		FROM quiz_questions
		WHERE quiz_id = ?
		ORDER BY question_number
	`
	rows, err := s.db.QueryContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("querying questions for quiz %d: %w", quizID, err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var (
			q          models.Question
			options    string
			difficulty string
		)
		if err := rows.Scan(&q.Question, &options, &q.Answer, &difficulty, &q.Explanation, &q.Section); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshaling options: %w", err)
		}
		q.Difficulty = models.Difficulty(difficulty)
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating questions: %w", err)
	}
	return questions, nil
}

// ListRecentQuizzes returns up to limit quizzes, newest first, without
// their questions.
func (s *Store) ListRecentQuizzes(ctx context.Context, limit int) ([]models.Quiz, error) {
	const query = `
		SELECT id, article_id, topic, total_questions, model_used,
		       generation_seconds, created_at
		FROM quizzes
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var (
			q         models.Quiz
			createdAt string
		)
		if err := rows.Scan(&q.ID, &q.ArticleID, &q.Topic, &q.TotalQuestions,
			&q.ModelUsed, &q.GenerationSecs, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning quiz: %w", err)
		}
		q.CreatedAt = parseTime(createdAt)
		quizzes = append(quizzes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quizzes: %w", err)
	}
	return quizzes, nil
}
