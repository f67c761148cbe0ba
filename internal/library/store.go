// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists generated articles and builds a search index.
// Implements: prd004-library (R1-R6);
//
//	docs/ARCHITECTURE § Article Library.
//
// The schema uses SQLite FTS5, so binaries and tests must be built with
// -tags sqlite_fts5 (the mage Build and Test targets pass it).
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/article-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "articles.db"
)

// Store manages the article library SQLite database.
type Store struct {
	db         *sql.DB
	libraryDir string
	maxResults int
}

// NewStore opens or creates the library database at
// libraryDir/index/articles.db. It creates the schema if it does not
// exist (R1.1, R1.3).
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.LibraryDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		libraryDir: cfg.LibraryDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			topic TEXT NOT NULL,
			title TEXT NOT NULL,
			model TEXT,
			language TEXT,
			keywords TEXT,
			seo_title TEXT,
			seo_meta TEXT,
			seo_keywords TEXT,
			content TEXT NOT NULL,
			word_count INTEGER,
			created_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_model ON articles(model)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(title, content, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, content) VALUES('delete', old.rowid, old.title, old.content);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, content) VALUES('delete', old.rowid, old.title, old.content);
				INSERT INTO articles_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Save upserts an article into the library (R1.2). Re-saving the same
// ID replaces the stored record, keeping the FTS index in sync through
// the triggers.
func (s *Store) Save(ctx context.Context, art types.Article) error {
	keywordsJSON, _ := json.Marshal(art.Keywords)
	seoKeywordsJSON, _ := json.Marshal(art.SEO.Keywords)

	createdAt := art.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (id, topic, title, model, language, keywords,
			seo_title, seo_meta, seo_keywords, content, word_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			topic=excluded.topic, title=excluded.title, model=excluded.model,
			language=excluded.language, keywords=excluded.keywords,
			seo_title=excluded.seo_title, seo_meta=excluded.seo_meta,
			seo_keywords=excluded.seo_keywords, content=excluded.content,
			word_count=excluded.word_count, created_at=excluded.created_at`,
		art.ID, art.Topic, art.Title, art.Model, art.Language, string(keywordsJSON),
		art.SEO.Title, art.SEO.MetaDescription, string(seoKeywordsJSON),
		art.Content, art.WordCount, createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving article %s: %w", art.ID, err)
	}
	return nil
}

// Get returns the article with the given ID (R4.1).
func (s *Store) Get(ctx context.Context, id string) (*types.Article, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM articles a WHERE a.id = ?`, id)
	art, err := scanArticle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("article %s not found", id)
		}
		return nil, fmt.Errorf("looking up article: %w", err)
	}
	return art, nil
}

// Delete removes the article with the given ID (R4.3). Deleting an
// unknown ID is an error so callers can report typos.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting article %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting article %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("article %s not found", id)
	}
	return nil
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}
