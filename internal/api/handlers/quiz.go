package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/abhich05/wikiquiz/internal/ai"
	"github.com/abhich05/wikiquiz/internal/config"
	"github.com/abhich05/wikiquiz/internal/models"
	"github.com/abhich05/wikiquiz/internal/quiz"
	"github.com/abhich05/wikiquiz/internal/reliability"
	"github.com/abhich05/wikiquiz/internal/storage"
	"github.com/abhich05/wikiquiz/internal/wiki"
)

// GenerateQuizRequest is the request body for POST /api/quiz.
type GenerateQuizRequest struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
}

// GenerateQuizResponse is the response body for POST /api/quiz.
type GenerateQuizResponse struct {
	QuizID                 int64                     `json:"quiz_id"`
	Topic                  string                    `json:"topic"`
	Title                  string                    `json:"title"`
	Questions              []models.Question         `json:"questions"`
	TotalQuestions         int                       `json:"total_questions"`
	RelatedTopics          []string                  `json:"related_topics"`
	DifficultyDistribution map[models.Difficulty]int `json:"difficulty_distribution"`
	GenerationSeconds      float64                   `json:"generation_time_seconds"`
}

// GenerateQuiz handles POST /api/quiz. It runs the full pipeline (fetch,
// extract, synthesize, validate) and persists the result.
func GenerateQuiz(store *storage.Store, svc *quiz.Service, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req GenerateQuizRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Topic == "" {
			writeError(w, http.StatusBadRequest, "topic is required")
			return
		}

		spec := models.QuizSpec{NumQuestions: req.NumQuestions}
		if err := spec.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		doc, err := svc.FetchAndExtract(ctx, req.Topic)
		if err != nil {
			writePipelineError(w, req.Topic, err)
			return
		}

		articleID, err := store.SaveArticle(ctx, doc)
		if err != nil {
			slog.Error("failed to save article", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save article")
			return
		}

		result, err := svc.SynthesizeQuiz(ctx, doc, spec)
		if err != nil {
			writePipelineError(w, req.Topic, err)
			return
		}

		quizID, err := store.SaveQuiz(ctx, articleID, req.Topic, cfg.AI.Model, result)
		if err != nil {
			slog.Error("failed to save quiz", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save quiz")
			return
		}

		writeJSON(w, http.StatusOK, GenerateQuizResponse{
			QuizID:                 quizID,
			Topic:                  req.Topic,
			Title:                  doc.Title,
			Questions:              result.Questions,
			TotalQuestions:         len(result.Questions),
			RelatedTopics:          result.RelatedTopics,
			DifficultyDistribution: result.DifficultyDistribution,
			GenerationSeconds:      result.GenerationTime.Seconds(),
		})
	}
}

// writePipelineError maps the core pipeline's error taxonomy onto HTTP
// statuses so callers can tell "upstream content unavailable" from "quiz
// synthesis unavailable" from "dependency temporarily unavailable".
func writePipelineError(w http.ResponseWriter, topic string, err error) {
	switch {
	case errors.Is(err, reliability.ErrUnavailable):
		slog.Warn("dependency circuit open", "topic", topic, "error", err)
		writeError(w, http.StatusServiceUnavailable,
			"Service temporarily unavailable. Please try again in a moment.")
	case errors.Is(err, wiki.ErrFetch):
		slog.Error("wikipedia fetch failed", "topic", topic, "error", err)
		writeError(w, http.StatusBadGateway,
			"Failed to fetch Wikipedia content. Please verify the topic exists.")
	case errors.Is(err, wiki.ErrExtraction):
		slog.Error("article extraction failed", "topic", topic, "error", err)
		writeError(w, http.StatusUnprocessableEntity,
			"The article could not be processed. It may be too short or malformed.")
	case errors.Is(err, ai.ErrResponseFormat), errors.Is(err, ai.ErrNoValidQuestions),
		errors.Is(err, quiz.ErrGeneration):
		slog.Error("quiz synthesis failed", "topic", topic, "error", err)
		writeError(w, http.StatusBadGateway,
			"Failed to generate quiz. The AI service may be temporarily unavailable.")
	default:
		slog.Error("unexpected pipeline error", "topic", topic, "error", err)
		writeError(w, http.StatusInternalServerError,
			"An unexpected error occurred. Please try again.")
	}
}

// GetQuiz handles GET /api/quizzes/{id}.
func GetQuiz(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		q, err := store.GetQuiz(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Quiz not found")
			return
		}
		if err != nil {
			slog.Error("failed to load quiz", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load quiz")
			return
		}

		writeJSON(w, http.StatusOK, q)
	}
}

// ListQuizzes handles GET /api/quizzes.
func ListQuizzes(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizzes, err := store.ListRecentQuizzes(r.Context(), 50)
		if err != nil {
			slog.Error("failed to list quizzes", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list quizzes")
			return
		}
		if quizzes == nil {
			quizzes = []models.Quiz{}
		}
		writeJSON(w, http.StatusOK, quizzes)
	}
}

// SubmitAttemptRequest is the request body for POST /api/quizzes/{id}/attempts.
type SubmitAttemptRequest struct {
	Answers []string `json:"answers"`
}

// SubmitAttempt handles POST /api/quizzes/{id}/attempts. Answers are
// scored server-side against the stored correct options.
func SubmitAttempt(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var req SubmitAttemptRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if len(req.Answers) == 0 {
			writeError(w, http.StatusBadRequest, "answers are required")
			return
		}

		attempt, err := store.SaveAttempt(r.Context(), id, req.Answers)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Quiz not found")
			return
		}
		if err != nil {
			slog.Error("failed to save attempt", "quiz_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save attempt")
			return
		}

		writeJSON(w, http.StatusOK, attempt)
	}
}

// ListAttempts handles GET /api/quizzes/{id}/attempts.
func ListAttempts(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		attempts, err := store.ListAttempts(r.Context(), id)
		if err != nil {
			slog.Error("failed to list attempts", "quiz_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list attempts")
			return
		}
		if attempts == nil {
			attempts = []models.QuizAttempt{}
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}
