// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/pdiddy/article-engine/internal/seo"
	"github.com/pdiddy/article-engine/pkg/types"
)

const reportRecentLimit = 10

// WriteReport renders a Markdown summary of the library to w: totals,
// per-model counts, SEO compliance, and the most recent articles (R5.1-R5.4).
func (s *Store) WriteReport(ctx context.Context, w io.Writer) error {
	articles, err := s.Retrieve(ctx, QueryOptions{MaxResults: exportLimit})
	if err != nil {
		return fmt.Errorf("querying for report: %w", err)
	}

	md := markdown.NewMarkdown(w)
	md.H1("Article Library Report")
	md.PlainText("")
	md.PlainTextf("Generated %s.", time.Now().Format("2006-01-02 15:04:05 MST"))
	md.PlainText("")

	writeTotals(md, articles)
	writeModelCounts(md, articles)
	writeSEOCompliance(md, articles)
	writeRecent(md, articles)

	return md.Build()
}

func writeTotals(md *markdown.Markdown, articles []types.Article) {
	var words int
	for _, a := range articles {
		words += a.WordCount
	}

	md.H2("Summary")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Articles", strconv.Itoa(len(articles))},
			{"Total words", strconv.Itoa(words)},
		},
	})
	md.PlainText("")
}

func writeModelCounts(md *markdown.Markdown, articles []types.Article) {
	counts := map[string]int{}
	for _, a := range articles {
		counts[a.Model]++
	}

	models := make([]string, 0, len(counts))
	for m := range counts {
		models = append(models, m)
	}
	sort.Strings(models)

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		name := m
		if name == "" {
			name = "(unknown)"
		}
		rows = append(rows, []string{name, strconv.Itoa(counts[m])})
	}

	md.H2("Articles by Model")
	md.Table(markdown.TableSet{
		Header: []string{"Model", "Articles"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeSEOCompliance(md *markdown.Markdown, articles []types.Article) {
	var clean, flagged int
	for _, a := range articles {
		if len(seo.Lint(a.SEO)) == 0 {
			clean++
		} else {
			flagged++
		}
	}

	md.H2("SEO Compliance")
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Articles"},
		Rows: [][]string{
			{"Within limits", strconv.Itoa(clean)},
			{"Flagged", strconv.Itoa(flagged)},
		},
	})
	md.PlainText("")
}

func writeRecent(md *markdown.Markdown, articles []types.Article) {
	md.H2("Recent Articles")

	limit := len(articles)
	if limit > reportRecentLimit {
		limit = reportRecentLimit
	}

	rows := make([][]string, 0, limit)
	for _, a := range articles[:limit] {
		rows = append(rows, []string{
			"`" + a.ID + "`",
			a.Title,
			a.Model,
			strconv.Itoa(a.WordCount),
			a.CreatedAt.Format("2006-01-02"),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Title", "Model", "Words", "Created"},
		Rows:   rows,
	})
}
