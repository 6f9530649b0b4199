package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abhich05/wikiquiz/internal/discover"
)

const defaultFeaturedLimit = 10

// FeaturedTopics handles GET /api/topics/featured. It returns recent
// featured-article titles as quiz topic suggestions. An optional ?limit=
// query parameter caps the list.
func FeaturedTopics(disc *discover.Discoverer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultFeaturedLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 50 {
				writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 50")
				return
			}
			limit = n
		}

		topics, err := disc.FeaturedTopics(r.Context(), limit)
		if err != nil {
			slog.Error("featured topics fetch failed", "error", err)
			writeError(w, http.StatusBadGateway, "Failed to fetch featured topics")
			return
		}
		if topics == nil {
			topics = []string{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
	}
}
