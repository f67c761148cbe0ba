package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-engine/internal/container"
	"github.com/pdiddy/article-engine/internal/export"
	"github.com/pdiddy/article-engine/internal/library"
	"github.com/pdiddy/article-engine/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the article library (list, search, show, delete, export, report)",
	Long: `Library manages the local SQLite article library. Use subcommands to
list or search stored articles, show one in full, delete one, export the
index, render an article to a publishing format, or produce a summary report.`,
}

// --- list / search ---

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored articles, newest first",
	RunE:  runLibraryList,
}

var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search article titles and content with full-text search",
	Long: `Search uses FTS5 full-text search over article titles and content,
optionally combined with structured filters (model, language, keyword).`,
	RunE: runLibrarySearch,
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := queryOptsFromFlags(cmd, nil)
	if err != nil {
		return err
	}
	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatArticleList(results, jsonOutput)
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --model, --language, or --keyword")
	}

	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatArticleList(results, jsonOutput)
}

func formatArticleList(results []types.Article, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No articles found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-44s  %-14s  %6s  %s\n",
		"ID", "Title", "Model", "Words", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 92))

	for _, a := range results {
		title := a.Title
		if len(title) > 44 {
			title = title[:41] + "..."
		}
		model := a.Model
		if len(model) > 14 {
			model = model[:11] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-44s  %-14s  %6d  %s\n",
			a.ID, title, model, a.WordCount, a.CreatedAt.Format("2006-01-02"))
	}

	fmt.Fprintf(os.Stdout, "\n%d article(s)\n", len(results))
	return nil
}

// --- show / delete ---

var libraryShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a stored article",
	RunE:  runLibraryShow,
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide an article ID")
	}

	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	art, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(art)
	}

	fmt.Println(art.Content)
	return nil
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored article",
	RunE:  runLibraryDelete,
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide an article ID")
	}

	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

// --- export / render / report ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library index to YAML or JSON",
	Long: `Export writes the library index (or a filtered subset) to
library/index/export.yaml or export.json. Supports the same filter
flags as search for partial exports.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to library/index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to library/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

var libraryRenderCmd = &cobra.Command{
	Use:   "render [id]",
	Short: "Render a stored article to a publishing format via pandoc",
	Long: `Render converts a stored article's Markdown to html, docx, or rst by
piping it through the pandoc container image. Requires docker or podman
with the pandoc/core image pulled.`,
	RunE: runLibraryRender,
}

func runLibraryRender(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide an article ID")
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	art, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}
	conv, err := export.NewPandocConverter(rt)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output-dir")
	path, err := export.ArticleFile(conv, art, outDir, format)
	if err != nil {
		return err
	}
	fmt.Printf("Rendered %s\n", path)
	return nil
}

var libraryReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a Markdown summary report of the library",
	RunE:  runLibraryReport,
}

func runLibraryReport(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return store.WriteReport(context.Background(), os.Stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	defer f.Close()

	if err := store.WriteReport(context.Background(), f); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", output)
	return nil
}

// --- shared helpers ---

func openLibrary(cmd *cobra.Command) (*library.Store, error) {
	libraryDir := stringFlagOrConfig(cmd, "library-dir", "library.dir")
	if libraryDir == "" {
		libraryDir = "library"
	}
	maxResults := intFlagOrConfig(cmd, "max-results", "library.max_results")

	return library.NewStore(types.LibraryConfig{
		LibraryDir: libraryDir,
		MaxResults: maxResults,
	})
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) (library.QueryOptions, error) {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	keyword, _ := cmd.Flags().GetString("keyword")
	limit, _ := cmd.Flags().GetInt("limit")

	var since time.Time
	if raw, _ := cmd.Flags().GetString("since"); raw != "" {
		var err error
		since, err = parseSince(raw)
		if err != nil {
			return library.QueryOptions{}, err
		}
	}

	return library.QueryOptions{
		Query:      queryText,
		Model:      model,
		Language:   language,
		Keyword:    keyword,
		Since:      since,
		MaxResults: limit,
	}, nil
}

// parseSince accepts a date (2006-01-02) or a full RFC3339 timestamp.
func parseSince(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q: use YYYY-MM-DD or RFC3339", raw)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	libraryCmd.PersistentFlags().String("library-dir", "library", "base directory for the library (contains index/)")
	libraryCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// List flags.
	libraryListCmd.Flags().String("model", "", "filter by generating model")
	libraryListCmd.Flags().String("language", "", "filter by language")
	libraryListCmd.Flags().String("keyword", "", "filter by keyword")
	libraryListCmd.Flags().String("since", "", "only articles created on or after this date (YYYY-MM-DD)")
	libraryListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	libraryListCmd.Flags().Bool("json", false, "output results as JSON")

	// Search flags.
	librarySearchCmd.Flags().String("query", "", "full-text search query")
	librarySearchCmd.Flags().String("model", "", "filter by generating model")
	librarySearchCmd.Flags().String("language", "", "filter by language")
	librarySearchCmd.Flags().String("keyword", "", "filter by keyword")
	librarySearchCmd.Flags().String("since", "", "only articles created on or after this date (YYYY-MM-DD)")
	librarySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	librarySearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Show flags.
	libraryShowCmd.Flags().Bool("json", false, "output the full record as JSON")

	// Export flags.
	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	libraryExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	libraryExportCmd.Flags().String("model", "", "filter by generating model")
	libraryExportCmd.Flags().String("language", "", "filter by language")
	libraryExportCmd.Flags().String("keyword", "", "filter by keyword")
	libraryExportCmd.Flags().String("since", "", "only articles created on or after this date (YYYY-MM-DD)")
	libraryExportCmd.Flags().Int("limit", 0, "maximum articles to export (0 = all)")

	// Render flags.
	libraryRenderCmd.Flags().String("format", "html", "render format: html, docx, or rst")
	libraryRenderCmd.Flags().String("output-dir", "output/exports", "directory for rendered files")

	// Report flags.
	libraryReportCmd.Flags().String("output", "", "write the report to a file instead of stdout")

	// Wire subcommands.
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryDeleteCmd)
	libraryCmd.AddCommand(libraryExportCmd)
	libraryCmd.AddCommand(libraryRenderCmd)
	libraryCmd.AddCommand(libraryReportCmd)

	rootCmd.AddCommand(libraryCmd)
}
