package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhich05/wikiquiz/internal/ai"
	"github.com/abhich05/wikiquiz/internal/config"
	"github.com/abhich05/wikiquiz/internal/models"
	"github.com/abhich05/wikiquiz/internal/quiz"
	"github.com/abhich05/wikiquiz/internal/reliability"
	"github.com/abhich05/wikiquiz/internal/storage"
	"github.com/abhich05/wikiquiz/internal/wiki"
)

// newTestStore opens an in-memory store with migrations applied.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return storage.NewStore(db)
}

// seedQuiz stores an article and a two-question quiz, returning the quiz ID.
func seedQuiz(t *testing.T, store *storage.Store) int64 {
	t.Helper()
	ctx := context.Background()

	articleID, err := store.SaveArticle(ctx, &models.ArticleDocument{
		URL:   "https://en.wikipedia.org/wiki/Alan_Turing",
		Title: "Alan Turing",
	})
	if err != nil {
		t.Fatalf("seeding article: %v", err)
	}

	quizID, err := store.SaveQuiz(ctx, articleID, "Alan Turing", "test-model", &models.QuizResult{
		Questions: []models.Question{
			{Question: "Q1?", Options: []string{"A", "B", "C", "D"}, Answer: "A",
				Difficulty: models.DifficultyEasy, Explanation: "E.", Section: "S"},
			{Question: "Q2?", Options: []string{"A", "B", "C", "D"}, Answer: "B",
				Difficulty: models.DifficultyHard, Explanation: "E.", Section: "S"},
		},
		DifficultyDistribution: map[models.Difficulty]int{
			models.DifficultyEasy: 1, models.DifficultyHard: 1,
		},
	})
	if err != nil {
		t.Fatalf("seeding quiz: %v", err)
	}
	return quizID
}

// quizRouter mounts the quiz handlers the way the real router does, so URL
// parameters resolve.
func quizRouter(store *storage.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/quizzes", ListQuizzes(store))
	r.Get("/api/quizzes/{id}", GetQuiz(store))
	r.Post("/api/quizzes/{id}/attempts", SubmitAttempt(store))
	r.Get("/api/quizzes/{id}/attempts", ListAttempts(store))
	return r
}

func TestGetQuiz(t *testing.T) {
	store := newTestStore(t)
	quizID := seedQuiz(t, store)
	router := quizRouter(store)

	t.Run("returns stored quiz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/quizzes/1", nil)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var got models.Quiz
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if got.ID != quizID || len(got.Questions) != 2 {
			t.Errorf("quiz = %+v", got)
		}
	})

	t.Run("missing quiz is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/quizzes/999", nil)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/quizzes/abc", nil)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestListQuizzes(t *testing.T) {
	store := newTestStore(t)
	router := quizRouter(store)

	t.Run("empty store returns empty array", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("body = %q, want empty JSON array", body)
		}
	})

	t.Run("lists stored quizzes", func(t *testing.T) {
		seedQuiz(t, store)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
		router.ServeHTTP(rec, req)

		var got []models.Quiz
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("got %d quizzes, want 1", len(got))
		}
	})
}

func TestSubmitAttempt(t *testing.T) {
	store := newTestStore(t)
	seedQuiz(t, store)
	router := quizRouter(store)

	post := func(path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("scores and persists", func(t *testing.T) {
		rec := post("/api/quizzes/1/attempts", `{"answers": ["A", "C"]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var got models.QuizAttempt
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if got.Score != 1 || got.Percentage != 50 {
			t.Errorf("attempt = %+v", got)
		}

		list := httptest.NewRecorder()
		router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/quizzes/1/attempts", nil))
		var attempts []models.QuizAttempt
		if err := json.NewDecoder(list.Body).Decode(&attempts); err != nil {
			t.Fatalf("decoding list: %v", err)
		}
		if len(attempts) != 1 {
			t.Errorf("got %d attempts, want 1", len(attempts))
		}
	})

	t.Run("missing quiz is 404", func(t *testing.T) {
		rec := post("/api/quizzes/999/attempts", `{"answers": ["A"]}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("empty answers is 400", func(t *testing.T) {
		rec := post("/api/quizzes/1/attempts", `{"answers": []}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		rec := post("/api/quizzes/1/attempts", `{"answers": "not-a-list"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

// stubProvider answers quiz prompts with a fixed response.
type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Generate(context.Context, string, ai.GenerationParams) (string, error) {
	return s.response, s.err
}

const stubQuizResponse = `{"questions": [
  {"question": "Q?", "options": ["A","B","C","D"], "answer": "A",
   "difficulty": "easy", "explanation": "E.", "section": "S"},
  {"question": "Q2?", "options": ["A","B","C","D"], "answer": "B",
   "difficulty": "medium", "explanation": "E.", "section": "S"},
  {"question": "Q3?", "options": ["A","B","C","D"], "answer": "C",
   "difficulty": "hard", "explanation": "E.", "section": "S"}
]}`

const testArticleHTML = `<html><body>
<h1 id="firstHeading">Alan Turing</h1>
<div id="mw-content-text">
<p>Alan Turing was an English mathematician, computer scientist, and cryptanalyst who was highly influential in the development of theoretical computer science.</p>
</div></body></html>`

func newGenerateHandler(t *testing.T, store *storage.Store, provider ai.Provider, wikiHandler http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	srv := httptest.NewServer(wikiHandler)
	t.Cleanup(srv.Close)

	policy := reliability.Policy{
		MaxAttempts: 1, MinDelay: time.Millisecond, MaxDelay: time.Millisecond,
		FailureThreshold: 5, Cooldown: time.Minute,
	}
	svc := quiz.NewService(quiz.Options{
		Fetcher:     wiki.NewFetcher(time.Second, "test-agent", wiki.WithBaseURL(srv.URL+"/wiki/")),
		Provider:    provider,
		FetchPolicy: policy,
		GenPolicy:   policy,
		ExtractOpts: wiki.DefaultExtractOptions(),
	})

	cfg := &config.Config{}
	cfg.AI.Model = "test-model"
	return GenerateQuiz(store, svc, cfg)
}

func TestGenerateQuiz(t *testing.T) {
	serveArticle := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testArticleHTML))
	}

	post := func(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/quiz", strings.NewReader(body))
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("full pipeline persists and responds", func(t *testing.T) {
		store := newTestStore(t)
		h := newGenerateHandler(t, store, &stubProvider{response: stubQuizResponse}, serveArticle)

		rec := post(h, `{"topic": "Alan Turing", "num_questions": 3}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var got GenerateQuizResponse
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if got.TotalQuestions != 3 {
			t.Errorf("TotalQuestions = %d, want 3", got.TotalQuestions)
		}
		if got.Title != "Alan Turing" {
			t.Errorf("Title = %q", got.Title)
		}

		stored, err := store.GetQuiz(context.Background(), got.QuizID)
		if err != nil {
			t.Fatalf("stored quiz missing: %v", err)
		}
		if len(stored.Questions) != 3 {
			t.Errorf("stored questions = %d, want 3", len(stored.Questions))
		}
	})

	t.Run("missing topic is 400", func(t *testing.T) {
		h := newGenerateHandler(t, newTestStore(t), &stubProvider{response: stubQuizResponse}, serveArticle)
		rec := post(h, `{"num_questions": 3}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("out-of-range question count is 400", func(t *testing.T) {
		h := newGenerateHandler(t, newTestStore(t), &stubProvider{response: stubQuizResponse}, serveArticle)
		rec := post(h, `{"topic": "Alan Turing", "num_questions": 2}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("upstream fetch failure is 502", func(t *testing.T) {
		h := newGenerateHandler(t, newTestStore(t), &stubProvider{response: stubQuizResponse},
			func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			})
		rec := post(h, `{"topic": "Missing", "num_questions": 3}`)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})

	t.Run("unprocessable article is 422", func(t *testing.T) {
		h := newGenerateHandler(t, newTestStore(t), &stubProvider{response: stubQuizResponse},
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html><body><p>No content region.</p></body></html>"))
			})
		rec := post(h, `{"topic": "Stub", "num_questions": 3}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("malformed model output is 502", func(t *testing.T) {
		h := newGenerateHandler(t, newTestStore(t), &stubProvider{response: "not json"}, serveArticle)
		rec := post(h, `{"topic": "Alan Turing", "num_questions": 3}`)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})
}
