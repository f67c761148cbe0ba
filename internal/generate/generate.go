// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate orchestrates article generation: prompt rendering,
// model calls with retry, output assembly, and batch runs.
// Implements: prd002-generation (R1-R6);
//
//	docs/ARCHITECTURE § Generation.
package generate

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/article-engine/internal/prompt"
	"github.com/pdiddy/article-engine/internal/seo"
	"github.com/pdiddy/article-engine/pkg/types"
)

// ModelBackend abstracts the model API so tests can supply a mock.
// Per Strategy pattern (prd002-generation R5.1).
type ModelBackend interface {
	Chat(ctx context.Context, system, user string, gen types.GenConfig, onDelta func(string)) (string, error)
}

// Generator runs the generation pipeline against one backend.
type Generator struct {
	backend ModelBackend
	cfg     types.GenerationConfig
}

// New builds a Generator. Zero-valued config fields fall back to the
// documented defaults.
func New(backend ModelBackend, cfg types.GenerationConfig) *Generator {
	if cfg.Gen.Model == "" {
		cfg.Gen.Model = types.DefaultModel
	}
	if cfg.Gen.Temperature == nil {
		t := types.DefaultTemperature
		cfg.Gen.Temperature = &t
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join("output", "articles")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	return &Generator{backend: backend, cfg: cfg}
}

// Generate produces one draft: validate, render the prompt, stream the
// model, and assemble the result. onDelta, when non-nil, receives
// content fragments as they arrive. Per prd002-generation R2.1-R2.4.
func (g *Generator) Generate(ctx context.Context, req types.ArticleRequest, onDelta func(string)) (*types.Draft, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	gen := g.cfg.Gen
	if err := gen.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}

	userPrompt, err := prompt.Render(req)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	start := time.Now()
	content, err := g.chatWithRetry(ctx, userPrompt, gen, onDelta)
	if err != nil {
		return nil, fmt.Errorf("generating %q: %w", req.Topic, err)
	}

	return &types.Draft{
		Request:   req,
		Gen:       gen,
		Content:   content,
		Duration:  time.Since(start),
		CreatedAt: start,
	}, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// chatWithRetry calls the backend with exponential backoff on failure.
// Once fragments have reached onDelta the stream is visible to the
// caller and cannot be restarted, so only failures before the first
// fragment are retried. Per prd002-generation R5.4.
func (g *Generator) chatWithRetry(ctx context.Context, userPrompt string, gen types.GenConfig, onDelta func(string)) (string, error) {
	maxRetries := g.cfg.MaxRetries

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		var emitted bool
		delta := func(d string) {
			emitted = true
			if onDelta != nil {
				onDelta(d)
			}
		}

		content, err := g.backend.Chat(ctx, prompt.SystemPrompt, userPrompt, gen, delta)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if emitted {
			return "", fmt.Errorf("stream interrupted: %w", err)
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// ToArticle parses a draft into a library Article: split parts, derive
// the title and word count, and assign a stable ID.
// Per prd004-library R1.2.
func ToArticle(draft *types.Draft) types.Article {
	parsed := seo.Parse(draft.Content)

	title := parsed.Title()
	if title == "" {
		title = draft.Request.Topic
	}

	return types.Article{
		ID:        stableID(draft.Request.Topic, draft.Gen.Model, draft.Content),
		Topic:     draft.Request.Topic,
		Title:     title,
		Model:     draft.Gen.Model,
		Language:  draft.Request.Language,
		Keywords:  draft.Request.Keywords,
		Content:   draft.Content,
		SEO:       parsed.SEO,
		WordCount: parsed.WordCount(),
		CreatedAt: draft.CreatedAt,
	}
}

// stableID generates a deterministic ID from topic, model, and content.
// The ID is the first 12 hex characters of SHA-256(topic + model + content).
func stableID(topic, model, content string) string {
	h := sha256.New()
	h.Write([]byte(topic))
	h.Write([]byte(model))
	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// OutputFilename names a single-run output file from its generation
// time: article_YYYYMMDD_HHMMSS.md.
func OutputFilename(t time.Time) string {
	return fmt.Sprintf("article_%s.md", t.Format("20060102_150405"))
}

// TopicSlug turns a topic into a filesystem-safe slug for batch output
// files: lowercased, non-alphanumerics collapsed to single hyphens.
func TopicSlug(topic string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(topic) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// WriteDraft writes draft content into the output directory under the
// given filename, creating the directory as needed.
func (g *Generator) WriteDraft(filename, content string) (string, error) {
	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(g.cfg.OutputDir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// BatchSummary holds counts from a batch generation run (R6.4).
type BatchSummary struct {
	Generated int
	Skipped   int
	Failed    int
}

// Total returns the number of topics processed.
func (s BatchSummary) Total() int {
	return s.Generated + s.Skipped + s.Failed
}

// HasFailures reports whether any topics failed (R6.5).
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// BatchResult pairs a request with its generated draft, for callers
// that store batch output in the library.
type BatchResult struct {
	Request types.ArticleRequest
	Draft   *types.Draft
	Path    string
}

// Batch generates every request, bounded by the configured concurrency,
// writing slug-named outputs and per-topic status lines to w. Existing
// outputs are skipped unless force is set; individual failures do not
// abort the run. Per prd002-generation R6.1-R6.5.
func (g *Generator) Batch(ctx context.Context, reqs []types.ArticleRequest, force bool, w io.Writer) ([]BatchResult, BatchSummary, error) {
	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return nil, BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	var (
		mu      sync.Mutex
		summary BatchSummary
		results []BatchResult
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)

	for _, req := range reqs {
		req := req
		eg.Go(func() error {
			slug := TopicSlug(req.Topic)
			if slug == "" {
				slug = "article"
			}
			filename := slug + ".md"
			outPath := filepath.Join(g.cfg.OutputDir, filename)

			if !force {
				if _, err := os.Stat(outPath); err == nil {
					mu.Lock()
					fmt.Fprintf(w, "skipped %s\n", req.Topic)
					summary.Skipped++
					mu.Unlock()
					return nil
				}
			}

			mu.Lock()
			fmt.Fprintf(w, "generating %s\n", req.Topic)
			mu.Unlock()

			draft, err := g.Generate(ctx, req, nil)
			if err != nil {
				mu.Lock()
				fmt.Fprintf(w, "failed  %s: %v\n", req.Topic, err)
				summary.Failed++
				mu.Unlock()
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}

			path, err := g.WriteDraft(filename, draft.Content)
			if err != nil {
				mu.Lock()
				fmt.Fprintf(w, "failed  %s: write error: %v\n", req.Topic, err)
				summary.Failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			fmt.Fprintf(w, "generated %s (%d words, %s)\n",
				req.Topic, len(strings.Fields(draft.Content)), draft.Duration.Round(time.Second))
			summary.Generated++
			results = append(results, BatchResult{Request: req, Draft: draft, Path: path})
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, summary, err
	}

	fmt.Fprintf(w, "\ngenerated: %d, skipped: %d, failed: %d\n",
		summary.Generated, summary.Skipped, summary.Failed)
	return results, summary, nil
}
