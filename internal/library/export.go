// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds an article's metadata for export (R6.3). Content is
// omitted to keep exports scannable; the library itself holds the full
// text.
type ExportEntry struct {
	ID          string    `json:"id" yaml:"id"`
	Topic       string    `json:"topic" yaml:"topic"`
	Title       string    `json:"title" yaml:"title"`
	Model       string    `json:"model" yaml:"model"`
	Language    string    `json:"language" yaml:"language"`
	Keywords    []string  `json:"keywords" yaml:"keywords"`
	SEOTitle    string    `json:"seo_title,omitempty" yaml:"seo_title,omitempty"`
	SEOMeta     string    `json:"seo_meta,omitempty" yaml:"seo_meta,omitempty"`
	SEOKeywords []string  `json:"seo_keywords,omitempty" yaml:"seo_keywords,omitempty"`
	WordCount   int       `json:"word_count" yaml:"word_count"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

const exportLimit = 100000

// ExportYAML writes the library index to library/index/export.yaml (R6.1).
// It supports the same filters as Retrieve (R6.4).
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.libraryDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the library index to library/index/export.json (R6.2).
// It supports the same filters as Retrieve (R6.4).
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.libraryDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:          r.ID,
			Topic:       r.Topic,
			Title:       r.Title,
			Model:       r.Model,
			Language:    r.Language,
			Keywords:    r.Keywords,
			SEOTitle:    r.SEO.Title,
			SEOMeta:     r.SEO.MetaDescription,
			SEOKeywords: r.SEO.Keywords,
			WordCount:   r.WordCount,
			CreatedAt:   r.CreatedAt,
		}
	}

	return entries, nil
}
