// Package discover suggests quiz topics from Wikipedia's featured-article
// Atom feed.
package discover

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// featuredFeedURL is Wikipedia's "Today's featured article" Atom feed.
const featuredFeedURL = "https://en.wikipedia.org/w/api.php?action=featuredfeed&feed=featured&feedformat=atom"

// Discoverer fetches featured-article topic suggestions.
type Discoverer struct {
	feedURL   string
	userAgent string
	client    *http.Client
}

// NewDiscoverer creates a Discoverer with the given request timeout and
// User-Agent header.
func NewDiscoverer(timeout time.Duration, userAgent string) *Discoverer {
	return &Discoverer{
		feedURL:   featuredFeedURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// FeaturedTopics returns up to limit recent featured-article titles,
// newest first, deduplicated. Feed entry titles are used as quiz topic
// candidates directly: Wikipedia's featured feed titles are the article
// titles themselves.
func (d *Discoverer) FeaturedTopics(ctx context.Context, limit int) ([]string, error) {
	fp := gofeed.NewParser()
	fp.Client = d.client
	fp.UserAgent = d.userAgent

	feed, err := fp.ParseURLWithContext(d.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing featured feed: %w", err)
	}

	seen := make(map[string]bool)
	var topics []string
	for i := len(feed.Items) - 1; i >= 0; i-- {
		title := cleanFeaturedTitle(feed.Items[i].Title)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		topics = append(topics, title)
		if len(topics) == limit {
			break
		}
	}
	return topics, nil
}

// cleanFeaturedTitle strips the feed's date prefix ("Wikipedia featured
// articles for August 27, 2026") when present and trims the result.
func cleanFeaturedTitle(title string) string {
	title = strings.TrimSpace(title)
	if idx := strings.Index(title, ": "); idx >= 0 && idx < 60 {
		title = title[idx+2:]
	}
	return strings.TrimSpace(title)
}
