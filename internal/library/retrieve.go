// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/article-engine/pkg/types"
)

// QueryOptions holds parameters for library queries (R2, R3).
type QueryOptions struct {
	// Query is the FTS5 full-text search string over titles and
	// content (R2.1).
	Query string

	// Model filters by the model that generated the article (R3.1).
	Model string

	// Language filters by article language (R3.2).
	Language string

	// Keyword filters articles tagged with the given keyword (R3.3).
	Keyword string

	// Since keeps only articles created at or after the given time
	// (R3.4). The zero time disables the filter.
	Since time.Time

	// MaxResults limits result count. Zero uses the store default (R2.3).
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Model == "" && q.Language == "" &&
		q.Keyword == "" && q.Since.IsZero()
}

const selectColumns = `SELECT a.id, a.topic, a.title, a.model, a.language,
	a.keywords, a.seo_title, a.seo_meta, a.seo_keywords,
	a.content, a.word_count, a.created_at`

// Retrieve queries the library with optional full-text search and
// structured filters (R2, R3). Results are ranked by relevance for
// full-text queries or sorted newest-first for structured-only
// queries (R3.5).
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.Article, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	qb.WriteString(selectColumns)
	if useFTS {
		qb.WriteString(`
			FROM articles_fts
			JOIN articles a ON a.rowid = articles_fts.rowid
			WHERE articles_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`
			FROM articles a
			WHERE 1=1`)
	}

	if opts.Model != "" {
		qb.WriteString(` AND a.model = ?`)
		args = append(args, opts.Model)
	}

	if opts.Language != "" {
		qb.WriteString(` AND a.language = ?`)
		args = append(args, opts.Language)
	}

	if opts.Keyword != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(a.keywords) WHERE value = ?)`)
		args = append(args, opts.Keyword)
	}

	if !opts.Since.IsZero() {
		qb.WriteString(` AND a.created_at >= ?`)
		args = append(args, opts.Since.UTC().Format(time.RFC3339))
	}

	if useFTS {
		qb.WriteString(` ORDER BY articles_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY a.created_at DESC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	var results []types.Article
	for rows.Next() {
		art, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, *art)
	}

	return results, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*types.Article, error) {
	var (
		art         types.Article
		keywords    sql.NullString
		seoTitle    sql.NullString
		seoMeta     sql.NullString
		seoKeywords sql.NullString
		createdAt   sql.NullString
	)

	if err := row.Scan(
		&art.ID, &art.Topic, &art.Title, &art.Model, &art.Language,
		&keywords, &seoTitle, &seoMeta, &seoKeywords,
		&art.Content, &art.WordCount, &createdAt,
	); err != nil {
		return nil, err
	}

	if keywords.Valid {
		json.Unmarshal([]byte(keywords.String), &art.Keywords)
	}
	if seoTitle.Valid {
		art.SEO.Title = seoTitle.String
	}
	if seoMeta.Valid {
		art.SEO.MetaDescription = seoMeta.String
	}
	if seoKeywords.Valid {
		json.Unmarshal([]byte(seoKeywords.String), &art.SEO.Keywords)
	}
	if createdAt.Valid {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			art.CreatedAt = t
		}
	}

	return &art, nil
}
