package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)

	SecurityHeaders(okHandler()).ServeHTTP(rec, req)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestCORS(t *testing.T) {
	t.Run("sets headers on normal requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)

		CORS(okHandler()).ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/quizzes", nil)

		called := false
		CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if called {
			t.Error("preflight reached the inner handler")
		}
	})
}

func TestRecovery(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)

	Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	t.Run("rejects past the limit with headers", func(t *testing.T) {
		handler := RateLimit(2, time.Minute)(okHandler())

		codes := make([]int, 3)
		for i := range codes {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			handler.ServeHTTP(rec, req)
			codes[i] = rec.Code

			if i == 2 {
				if got := rec.Header().Get("Retry-After"); got != "60" {
					t.Errorf("Retry-After = %q, want 60", got)
				}
				if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
					t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
				}
			}
		}

		want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
		for i, w := range want {
			if codes[i] != w {
				t.Errorf("request %d status = %d, want %d", i+1, codes[i], w)
			}
		}
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		handler := RateLimit(1, time.Minute)(okHandler())

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
			req.RemoteAddr = addr
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("first request from %s status = %d", addr, rec.Code)
			}
		}
	})

	t.Run("health endpoint exempt", func(t *testing.T) {
		handler := RateLimit(1, time.Minute)(okHandler())

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("health request %d status = %d", i+1, rec.Code)
			}
		}
	})

	t.Run("window expiry restores budget", func(t *testing.T) {
		rl := &rateLimiter{
			requests: make(map[string][]time.Time),
			limit:    1,
			window:   time.Minute,
		}
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }

		if ok, _ := rl.allow("ip"); !ok {
			t.Fatal("first request rejected")
		}
		if ok, _ := rl.allow("ip"); ok {
			t.Fatal("second request within window allowed")
		}

		now = now.Add(61 * time.Second)
		if ok, _ := rl.allow("ip"); !ok {
			t.Error("request after window expiry rejected")
		}
	})
}
