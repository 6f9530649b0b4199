package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abhich05/wikiquiz/internal/quiz"
	"github.com/abhich05/wikiquiz/internal/reliability"
)

func TestHealth(t *testing.T) {
	svc := quiz.NewService(quiz.Options{
		FetchPolicy: reliability.Policy{MaxAttempts: 1, FailureThreshold: 5, Cooldown: time.Minute},
		GenPolicy:   reliability.Policy{MaxAttempts: 1, FailureThreshold: 5, Cooldown: time.Minute},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	Health(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Status != "ok" {
		t.Errorf("Status = %q", got.Status)
	}
	if got.Breakers["fetch"] != reliability.StateClosed {
		t.Errorf("fetch breaker = %v, want closed", got.Breakers["fetch"])
	}
	if got.Breakers["generation"] != reliability.StateClosed {
		t.Errorf("generation breaker = %v, want closed", got.Breakers["generation"])
	}
}

func TestFeaturedTopicsLimitValidation(t *testing.T) {
	for _, limit := range []string{"0", "-1", "51", "abc"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/topics/featured?limit="+limit, nil)
		FeaturedTopics(nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", limit, rec.Code)
		}
	}
}
