package handlers

import (
	"net/http"

	"github.com/abhich05/wikiquiz/internal/quiz"
	"github.com/abhich05/wikiquiz/internal/reliability"
)

// HealthResponse reports service liveness and the per-dependency circuit
// breaker states.
type HealthResponse struct {
	Status   string                       `json:"status"`
	Breakers map[string]reliability.State `json:"breakers"`
}

// Health handles GET /api/health.
func Health(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "ok",
			Breakers: map[string]reliability.State{
				"fetch":      svc.FetchState(),
				"generation": svc.GenerationState(),
			},
		})
	}
}
