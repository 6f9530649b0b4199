// Package quiz orchestrates the content-extraction and AI-synthesis
// pipeline: fetch and extract an article, drive the generative model
// through the prompt contracts, and validate the response into a typed
// quiz result.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhich05/wikiquiz/internal/ai"
	"github.com/abhich05/wikiquiz/internal/models"
	"github.com/abhich05/wikiquiz/internal/reliability"
	"github.com/abhich05/wikiquiz/internal/wiki"
)

// ErrGeneration indicates the model call failed after retry exhaustion.
var ErrGeneration = errors.New("quiz generation failed")

// Service runs the quiz pipeline. Within one request the pipeline is
// strictly sequential; independent requests may call a Service
// concurrently. The only shared mutable state is the pair of reliability
// guards, which serialize internally.
type Service struct {
	fetcher  *wiki.Fetcher
	provider ai.Provider

	// One guard per dependency, fully independent of each other.
	fetchGuard *reliability.Guard
	genGuard   *reliability.Guard

	extractOpts     wiki.ExtractOptions
	genParams       ai.GenerationParams
	maxContentChars int
}

// Options configures a Service.
type Options struct {
	Fetcher         *wiki.Fetcher
	Provider        ai.Provider
	FetchPolicy     reliability.Policy
	GenPolicy       reliability.Policy
	ExtractOpts     wiki.ExtractOptions
	GenParams       ai.GenerationParams
	MaxContentChars int
}

// NewService creates a Service with its two dependency guards.
func NewService(opts Options) *Service {
	if opts.MaxContentChars == 0 {
		opts.MaxContentChars = 5000
	}
	return &Service{
		fetcher:         opts.Fetcher,
		provider:        opts.Provider,
		fetchGuard:      reliability.NewGuard("fetch", opts.FetchPolicy),
		genGuard:        reliability.NewGuard("generation", opts.GenPolicy),
		extractOpts:     opts.ExtractOpts,
		genParams:       opts.GenParams,
		maxContentChars: opts.MaxContentChars,
	}
}

// FetchState and GenerationState report the breaker states for health
// diagnostics.
func (s *Service) FetchState() reliability.State      { return s.fetchGuard.State() }
func (s *Service) GenerationState() reliability.State { return s.genGuard.State() }

// fetchResult carries both values produced by one guarded fetch attempt.
type fetchResult struct {
	markup string
	url    string
}

// FetchAndExtract retrieves the article for a topic or URL and extracts it
// into an ArticleDocument. Fetching runs under the fetch guard; extraction
// does not (it is local work and its failures say nothing about the
// upstream's health). A failure returns no partial document.
func (s *Service) FetchAndExtract(ctx context.Context, topic string) (*models.ArticleDocument, error) {
	fetched, err := reliability.Execute(ctx, s.fetchGuard, func(ctx context.Context) (fetchResult, error) {
		markup, url, err := s.fetcher.Fetch(ctx, topic)
		return fetchResult{markup: markup, url: url}, err
	})
	if err != nil {
		return nil, err
	}

	doc, err := wiki.Extract(fetched.markup, fetched.url, s.extractOpts)
	if err != nil {
		return nil, err
	}

	slog.Info("extracted article",
		"title", doc.Title,
		"sections", len(doc.Sections),
		"content_chars", len(doc.Content),
	)
	return doc, nil
}

// SynthesizeQuiz generates a validated quiz from an extracted article.
// Quiz questions and related topics are produced by two independent
// generation calls; both depend only on the document, so they run
// concurrently. A related-topics failure degrades to an empty list and
// never aborts the quiz.
func (s *Service) SynthesizeQuiz(ctx context.Context, doc *models.ArticleDocument, spec models.QuizSpec) (*models.QuizResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var (
		questions []models.Question
		related   []string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		questions, err = s.generateQuestions(gctx, doc, spec)
		return err
	})

	g.Go(func() error {
		related = s.SuggestRelatedTopics(gctx, doc)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(questions) > spec.NumQuestions {
		questions = questions[:spec.NumQuestions]
	}

	distribution := map[models.Difficulty]int{
		models.DifficultyEasy:   0,
		models.DifficultyMedium: 0,
		models.DifficultyHard:   0,
	}
	for _, q := range questions {
		distribution[q.Difficulty]++
	}

	result := &models.QuizResult{
		Questions:              questions,
		RelatedTopics:          related,
		DifficultyDistribution: distribution,
		GenerationTime:         time.Since(start),
	}

	slog.Info("quiz synthesized",
		"title", doc.Title,
		"questions", len(questions),
		"related_topics", len(related),
		"duration", result.GenerationTime.String(),
	)
	return result, nil
}

// generateQuestions runs the guarded quiz generation call and validates
// the response.
func (s *Service) generateQuestions(ctx context.Context, doc *models.ArticleDocument, spec models.QuizSpec) ([]models.Question, error) {
	prompt := ai.QuizPrompt(doc, spec, s.maxContentChars)

	text, err := reliability.Execute(ctx, s.genGuard, func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, prompt, s.genParams)
	})
	if err != nil {
		if errors.Is(err, reliability.ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return ai.ParseQuizResponse(text, doc.Sections)
}

// SuggestRelatedTopics asks the model for follow-up reading suggestions.
// It never fails: any fetch, generation, or parsing problem resolves to an
// empty list so the main quiz result is unaffected.
func (s *Service) SuggestRelatedTopics(ctx context.Context, doc *models.ArticleDocument) []string {
	prompt := ai.RelatedTopicsPrompt(doc)

	text, err := reliability.Execute(ctx, s.genGuard, func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, prompt, s.genParams)
	})
	if err != nil {
		slog.Warn("related topics generation failed", "error", err)
		return nil
	}

	topics, err := ai.ParseRelatedTopics(text)
	if err != nil {
		slog.Warn("related topics parsing failed", "error", err)
		return nil
	}
	return topics
}
