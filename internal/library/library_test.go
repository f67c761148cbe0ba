// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/article-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := types.LibraryConfig{
		LibraryDir: filepath.Join(tmpDir, "library"),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func sampleArticle(id string) types.Article {
	return types.Article{
		ID:       id,
		Topic:    "Kubernetes Operators",
		Title:    "Building Kubernetes Operators in Practice",
		Model:    "phi3:3.8b",
		Language: "English",
		Keywords: []string{"kubernetes", "operators"},
		SEO: types.SEOBlock{
			Title:           "Building Kubernetes Operators",
			MetaDescription: "A practical guide to writing operators.",
			Keywords: []string{
				"kubernetes", "operators", "controllers", "crd",
				"reconciliation", "go", "client-go", "automation",
			},
		},
		Content:   "# Building Kubernetes Operators in Practice\n\nOperators extend the control plane.",
		WordCount: 11,
		CreatedAt: time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC),
	}
}

func saveHelper(t *testing.T, store *Store, articles ...types.Article) {
	t.Helper()
	for _, a := range articles {
		if err := store.Save(context.Background(), a); err != nil {
			t.Fatal(err)
		}
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testSetup(t)

	tables := []string{"articles", "articles_fts"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "library", indexDir, dbFile)

	store, err := NewStore(types.LibraryConfig{LibraryDir: filepath.Join(tmpDir, "library")})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

// --- save/get/delete tests ---

func TestSaveAndGet(t *testing.T) {
	store, _ := testSetup(t)
	want := sampleArticle("abc123def456")
	saveHelper(t, store, want)

	got, err := store.Get(context.Background(), "abc123def456")
	if err != nil {
		t.Fatal(err)
	}

	if got.Topic != want.Topic {
		t.Errorf("Topic = %q, want %q", got.Topic, want.Topic)
	}
	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if got.Model != want.Model {
		t.Errorf("Model = %q, want %q", got.Model, want.Model)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "kubernetes" {
		t.Errorf("Keywords = %v", got.Keywords)
	}
	if got.SEO.Title != want.SEO.Title {
		t.Errorf("SEO.Title = %q, want %q", got.SEO.Title, want.SEO.Title)
	}
	if len(got.SEO.Keywords) != 8 {
		t.Errorf("SEO.Keywords = %v, want 8 entries", got.SEO.Keywords)
	}
	if got.WordCount != want.WordCount {
		t.Errorf("WordCount = %d, want %d", got.WordCount, want.WordCount)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestSaveUpsertsExisting(t *testing.T) {
	store, _ := testSetup(t)
	art := sampleArticle("dup-id-000001")
	saveHelper(t, store, art)

	art.Title = "Revised Title"
	art.Content = "# Revised Title\n\nRewritten body."
	saveHelper(t, store, art)

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1 after upsert", n)
	}

	got, err := store.Get(context.Background(), "dup-id-000001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Revised Title" {
		t.Errorf("Title = %q after upsert", got.Title)
	}
}

func TestGetNotFound(t *testing.T) {
	store, _ := testSetup(t)

	_, err := store.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing article")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want 'not found'", err)
	}
}

func TestDelete(t *testing.T) {
	store, _ := testSetup(t)
	saveHelper(t, store, sampleArticle("to-delete-001"))

	if err := store.Delete(context.Background(), "to-delete-001"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(context.Background(), "to-delete-001"); err == nil {
		t.Error("article still present after delete")
	}

	if err := store.Delete(context.Background(), "to-delete-001"); err == nil {
		t.Error("expected error deleting missing article")
	}
}

// --- retrieve tests ---

func TestRetrieveFullText(t *testing.T) {
	store, _ := testSetup(t)

	k8s := sampleArticle("fts-kube-0001")
	gitops := sampleArticle("fts-git-0001")
	gitops.Topic = "GitOps Workflows"
	gitops.Title = "GitOps Workflows with Argo CD"
	gitops.Content = "# GitOps Workflows with Argo CD\n\nDeclarative delivery pipelines."
	saveHelper(t, store, k8s, gitops)

	results, err := store.Retrieve(context.Background(), QueryOptions{Query: "declarative"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ID != "fts-git-0001" {
		t.Errorf("ID = %q, want fts-git-0001", results[0].ID)
	}
}

func TestRetrieveMatchesTitle(t *testing.T) {
	store, _ := testSetup(t)
	art := sampleArticle("title-match-1")
	art.Title = "Zero Downtime Deployments"
	art.Content = "# Zero Downtime Deployments\n\nBody without the magic words."
	saveHelper(t, store, art)

	results, err := store.Retrieve(context.Background(), QueryOptions{Query: "downtime"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestRetrieveFilters(t *testing.T) {
	store, _ := testSetup(t)

	a := sampleArticle("filter-a-0001")
	b := sampleArticle("filter-b-0001")
	b.Model = "llama3:8b"
	b.Language = "German"
	b.Keywords = []string{"cloud"}
	saveHelper(t, store, a, b)

	tests := []struct {
		name   string
		opts   QueryOptions
		wantID string
	}{
		{"by model", QueryOptions{Model: "llama3:8b"}, "filter-b-0001"},
		{"by language", QueryOptions{Language: "German"}, "filter-b-0001"},
		{"by keyword", QueryOptions{Keyword: "operators"}, "filter-a-0001"},
		{"fts plus model", QueryOptions{Query: "operators", Model: "phi3:3.8b"}, "filter-a-0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Retrieve(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			if results[0].ID != tt.wantID {
				t.Errorf("ID = %q, want %q", results[0].ID, tt.wantID)
			}
		})
	}
}

func TestRetrieveNewestFirst(t *testing.T) {
	store, _ := testSetup(t)

	old := sampleArticle("order-old-001")
	old.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := sampleArticle("order-new-001")
	recent.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	saveHelper(t, store, old, recent)

	results, err := store.Retrieve(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "order-new-001" {
		t.Errorf("first result = %q, want order-new-001", results[0].ID)
	}
}

func TestRetrieveSince(t *testing.T) {
	store, _ := testSetup(t)

	old := sampleArticle("since-old-001")
	old.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := sampleArticle("since-new-001")
	recent.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	saveHelper(t, store, old, recent)

	results, err := store.Retrieve(context.Background(), QueryOptions{
		Since: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ID != "since-new-001" {
		t.Errorf("ID = %q, want since-new-001", results[0].ID)
	}

	// Boundary: an article created exactly at the cutoff is included.
	results, err = store.Retrieve(context.Background(), QueryOptions{
		Since: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "since-new-001" {
		t.Errorf("cutoff match: got %v", results)
	}
}

func TestRetrieveMaxResults(t *testing.T) {
	store, _ := testSetup(t)
	for i := 0; i < 5; i++ {
		a := sampleArticle(fmt.Sprintf("limit-%04d", i))
		saveHelper(t, store, a)
	}

	results, err := store.Retrieve(context.Background(), QueryOptions{MaxResults: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestDeleteRemovesFromFTS(t *testing.T) {
	store, _ := testSetup(t)
	saveHelper(t, store, sampleArticle("fts-del-0001"))

	if err := store.Delete(context.Background(), "fts-del-0001"); err != nil {
		t.Fatal(err)
	}

	results, err := store.Retrieve(context.Background(), QueryOptions{Query: "operators"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results after delete, want 0", len(results))
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	saveHelper(t, store, sampleArticle("export-y-0001"))

	if err := store.ExportYAML(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "library", indexDir, "export.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ID != "export-y-0001" {
		t.Errorf("ID = %q", entries[0].ID)
	}
	if entries[0].Title == "" {
		t.Error("Title is empty in export")
	}
}

func TestExportJSON(t *testing.T) {
	store, tmpDir := testSetup(t)
	saveHelper(t, store, sampleArticle("export-j-0001"))

	if err := store.ExportJSON(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "library", indexDir, "export.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].WordCount != 11 {
		t.Errorf("WordCount = %d, want 11", entries[0].WordCount)
	}
}

// --- report tests ---

func TestWriteReport(t *testing.T) {
	store, _ := testSetup(t)

	a := sampleArticle("report-a-0001")
	b := sampleArticle("report-b-0001")
	b.Model = "llama3:8b"
	b.SEO = types.SEOBlock{}
	saveHelper(t, store, a, b)

	var buf strings.Builder
	if err := store.WriteReport(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Article Library Report",
		"## Summary",
		"## Articles by Model",
		"phi3:3.8b",
		"llama3:8b",
		"## SEO Compliance",
		"## Recent Articles",
		"report-a-0001",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
