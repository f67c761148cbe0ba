package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-engine/internal/generate"
	"github.com/pdiddy/article-engine/internal/library"
	"github.com/pdiddy/article-engine/internal/seo"
	"github.com/pdiddy/article-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate one article from a topic brief",
	Long: `Generate renders a structured prompt from the topic brief, streams the
model output to stdout as it arrives, and writes the finished article to
the output directory. With --save the article also lands in the library.

SEO constraint violations (title length, meta length, keyword count) are
reported as warnings; the article is written either way.`,
	RunE: runGenerate,
}

func init() {
	addModelFlags(generateCmd)

	generateCmd.Flags().String("keywords", "", "primary keywords (comma-separated)")
	generateCmd.Flags().String("audience", "", "target audience (default: General readers)")
	generateCmd.Flags().String("tone", "", "writing tone (default: Informative and engaging)")
	generateCmd.Flags().String("language", "", "output language (default: English)")
	generateCmd.Flags().Int("target-words", 0, "approximate article length (300 to 3000, default 1000)")
	generateCmd.Flags().String("reading-level", "", "reading level: easy, intermediate, or advanced")
	generateCmd.Flags().String("extra", "", "extra instructions appended to the prompt")
	generateCmd.Flags().Bool("outline", true, "include an outline before the article body")
	generateCmd.Flags().Bool("seo", true, "include the SEO block")
	generateCmd.Flags().Bool("references", false, "include a references section")
	generateCmd.Flags().String("output-dir", "output/articles", "directory for generated articles")
	generateCmd.Flags().Bool("save", false, "store the article in the library")
	generateCmd.Flags().String("library-dir", "library", "base directory for the library (with --save)")

	rootCmd.AddCommand(generateCmd)
}

// readingLevelFromFlag maps the short CLI spelling onto the prompt
// wording.
func readingLevelFromFlag(s string) (types.ReadingLevel, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "easy":
		return types.ReadingEasy, nil
	case "intermediate":
		return types.ReadingIntermediate, nil
	case "advanced":
		return types.ReadingAdvanced, nil
	default:
		return "", fmt.Errorf("unknown reading level %q: use easy, intermediate, or advanced", s)
	}
}

// requestFromFlags assembles the article request shared by generate and
// batch entry resolution.
func requestFromFlags(cmd *cobra.Command, topic string) (types.ArticleRequest, error) {
	req := types.NewArticleRequest(topic)

	if keywords, _ := cmd.Flags().GetString("keywords"); keywords != "" {
		for _, k := range strings.Split(keywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				req.Keywords = append(req.Keywords, k)
			}
		}
	}
	if audience, _ := cmd.Flags().GetString("audience"); audience != "" {
		req.Audience = audience
	}
	if tone, _ := cmd.Flags().GetString("tone"); tone != "" {
		req.Tone = tone
	}
	if language, _ := cmd.Flags().GetString("language"); language != "" {
		req.Language = language
	}
	if words, _ := cmd.Flags().GetInt("target-words"); words != 0 {
		req.TargetWords = words
	}
	if extra, _ := cmd.Flags().GetString("extra"); extra != "" {
		req.ExtraInstructions = extra
	}

	levelFlag, _ := cmd.Flags().GetString("reading-level")
	level, err := readingLevelFromFlag(levelFlag)
	if err != nil {
		return req, err
	}
	if level != "" {
		req.ReadingLevel = level
	}

	req.IncludeOutline, _ = cmd.Flags().GetBool("outline")
	req.IncludeSEO, _ = cmd.Flags().GetBool("seo")
	req.IncludeReferences, _ = cmd.Flags().GetBool("references")

	return req, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a topic (e.g. article-engine generate \"Kubernetes Operators\")")
	}
	topic := strings.Join(args, " ")

	req, err := requestFromFlags(cmd, topic)
	if err != nil {
		return err
	}

	client := ollamaClientFromFlags(cmd)
	genCfg := genConfigFromFlags(cmd)
	if err := checkModel(context.Background(), client, genCfg.Model); err != nil {
		return err
	}

	outputDir := stringFlagOrConfig(cmd, "output-dir", "generation.output_dir")
	gen := generate.New(client, types.GenerationConfig{
		Gen:       genCfg,
		OutputDir: outputDir,
	})

	draft, err := gen.Generate(context.Background(), req, func(delta string) {
		fmt.Print(delta)
	})
	if err != nil {
		return err
	}
	fmt.Println()

	path, err := gen.WriteDraft(generate.OutputFilename(time.Now()), draft.Content)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nWrote %s (%d words, %s)\n",
		path, len(strings.Fields(draft.Content)), draft.Duration.Round(time.Second))

	art := generate.ToArticle(draft)
	if req.IncludeSEO {
		for _, warning := range seo.Lint(art.SEO) {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		libraryDir := stringFlagOrConfig(cmd, "library-dir", "library.dir")
		store, err := library.NewStore(types.LibraryConfig{LibraryDir: libraryDir})
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Save(context.Background(), art); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved to library as %s\n", art.ID)
	}

	return nil
}
