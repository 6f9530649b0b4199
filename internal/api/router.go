// Package api wires the HTTP surface of WikiQuiz: routing, middleware,
// and request handlers. It translates the core pipeline's error taxonomy
// into HTTP statuses; all quiz logic lives below it.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhich05/wikiquiz/internal/api/handlers"
	"github.com/abhich05/wikiquiz/internal/config"
	"github.com/abhich05/wikiquiz/internal/discover"
	"github.com/abhich05/wikiquiz/internal/quiz"
	"github.com/abhich05/wikiquiz/internal/storage"
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(store *storage.Store, svc *quiz.Service, disc *discover.Discoverer, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. Order matters: recovery outermost so panics in
	// other middleware are caught too.
	r.Use(Recovery)
	r.Use(RequestLogger)
	r.Use(SecurityHeaders)
	r.Use(CORS)
	r.Use(RateLimit(
		cfg.Server.RateLimitRequests,
		time.Duration(cfg.Server.RateLimitWindowS)*time.Second,
	))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handlers.Health(svc))

		api.Post("/quiz", handlers.GenerateQuiz(store, svc, cfg))
		api.Get("/quizzes", handlers.ListQuizzes(store))
		api.Get("/quizzes/{id}", handlers.GetQuiz(store))
		api.Post("/quizzes/{id}/attempts", handlers.SubmitAttempt(store))
		api.Get("/quizzes/{id}/attempts", handlers.ListAttempts(store))

		api.Get("/topics/featured", handlers.FeaturedTopics(disc))
	})

	return r
}
