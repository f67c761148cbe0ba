// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/article-engine/internal/generate"
	"github.com/pdiddy/article-engine/internal/library"
	"github.com/pdiddy/article-engine/internal/seo"
	"github.com/pdiddy/article-engine/pkg/types"
)

// generateResponse is the body returned by POST /api/v1/articles.
type generateResponse struct {
	Article  types.Article `json:"article"`
	Warnings []string      `json:"warnings,omitempty"`
	Duration string        `json:"duration"`
}

// handleGenerate runs the full pipeline for one request and stores the
// result in the library (R2.1-R2.4). The response is buffered; clients
// that want token streaming use the CLI.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	// Decode over a defaulted request so absent fields keep their
	// documented defaults rather than zero values.
	req := types.NewArticleRequest("")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	start := time.Now()
	draft, err := s.gen.Generate(r.Context(), req, nil)
	if err != nil {
		s.logger.Error().Err(err).Str("topic", req.Topic).Msg("generation failed")
		writeError(w, http.StatusBadGateway, "generation failed: "+err.Error())
		return
	}

	art := generate.ToArticle(draft)
	if err := s.store.Save(r.Context(), art); err != nil {
		s.logger.Error().Err(err).Str("article_id", art.ID).Msg("library save failed")
		writeError(w, http.StatusInternalServerError, "saving article: "+err.Error())
		return
	}

	observeGeneration(time.Since(start), draft.Gen.Model)

	resp := generateResponse{
		Article:  art,
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}
	if req.IncludeSEO {
		resp.Warnings = seo.Lint(art.SEO)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleList serves GET /api/v1/articles with optional full-text query
// and filters (R3.1, R3.2).
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := library.QueryOptions{
		Query:    q.Get("q"),
		Model:    q.Get("model"),
		Language: q.Get("language"),
		Keyword:  q.Get("keyword"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.MaxResults = n
	}
	if since := q.Get("since"); since != "" {
		t, err := time.Parse("2006-01-02", since)
		if err != nil {
			t, err = time.Parse(time.RFC3339, since)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be YYYY-MM-DD or RFC3339")
			return
		}
		opts.Since = t
	}

	articles, err := s.store.Retrieve(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Drop full content from list responses; Get serves it.
	summaries := make([]types.Article, len(articles))
	for i, a := range articles {
		a.Content = ""
		summaries[i] = a
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": summaries, "count": len(summaries)})
}

// handleGet serves GET /api/v1/articles/{id} (R3.3). With
// "Accept: text/markdown" the raw article body is returned instead of
// the JSON record.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	art, err := s.store.Get(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, art.Content)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// handleDelete serves DELETE /api/v1/articles/{id} (R3.4).
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleModels serves GET /api/v1/models by proxying the model host (R4.2).
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.models.ListModels(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "listing models: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

// handleVersion reports engine and model host versions (R4.3).
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"engine": s.version}
	if v, err := s.models.Version(r.Context()); err == nil {
		resp["ollama"] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports liveness plus model host reachability. The
// endpoint stays 200 when Ollama is down so probes do not restart a
// server that can still serve the library.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "ollama": "ok"}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.models.Version(ctx); err != nil {
		resp["ollama"] = "unreachable"
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
