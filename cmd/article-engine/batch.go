package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-engine/internal/generate"
	"github.com/pdiddy/article-engine/internal/library"
	"github.com/pdiddy/article-engine/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch [topics.yaml]",
	Short: "Generate articles for every topic in a topics file",
	Long: `Batch reads a topics YAML file (shared defaults plus one entry per
article) and generates every listed topic. Outputs are slug-named files
in the output directory; topics whose output already exists are skipped
unless --force is set. Individual failures do not abort the run.`,
	RunE: runBatch,
}

func init() {
	addModelFlags(batchCmd)

	batchCmd.Flags().Bool("force", false, "regenerate topics whose output already exists")
	batchCmd.Flags().Int("concurrency", 1, "number of topics generated in parallel")
	batchCmd.Flags().String("output-dir", "output/articles", "directory for generated articles")
	batchCmd.Flags().Bool("save", false, "store generated articles in the library")
	batchCmd.Flags().String("library-dir", "library", "base directory for the library (with --save)")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide a topics file (e.g. article-engine batch topics/launch.yaml)")
	}

	tf, err := generate.ReadTopicFile(args[0])
	if err != nil {
		return err
	}
	reqs, err := tf.Requests()
	if err != nil {
		return err
	}

	gen := genConfigFromFlags(cmd)
	if tf.Gen != nil {
		if tf.Gen.Model != "" && !cmd.Flags().Changed("model") {
			gen.Model = tf.Gen.Model
		}
		if tf.Gen.Temperature != nil && !cmd.Flags().Changed("temperature") {
			gen.Temperature = tf.Gen.Temperature
		}
		if tf.Gen.Seed != nil && !cmd.Flags().Changed("seed") {
			gen.Seed = tf.Gen.Seed
		}
	}

	client := ollamaClientFromFlags(cmd)
	if err := checkModel(context.Background(), client, gen.Model); err != nil {
		return err
	}

	outputDir := stringFlagOrConfig(cmd, "output-dir", "generation.output_dir")
	concurrency := intFlagOrConfig(cmd, "concurrency", "generation.concurrency")
	g := generate.New(client, types.GenerationConfig{
		Gen:         gen,
		OutputDir:   outputDir,
		Concurrency: concurrency,
	})

	force, _ := cmd.Flags().GetBool("force")
	results, summary, err := g.Batch(context.Background(), reqs, force, os.Stdout)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save && len(results) > 0 {
		libraryDir := stringFlagOrConfig(cmd, "library-dir", "library.dir")
		store, err := library.NewStore(types.LibraryConfig{LibraryDir: libraryDir})
		if err != nil {
			return err
		}
		defer store.Close()

		for _, r := range results {
			art := generate.ToArticle(r.Draft)
			if err := store.Save(context.Background(), art); err != nil {
				return fmt.Errorf("saving %q: %w", r.Request.Topic, err)
			}
		}
		fmt.Fprintf(os.Stderr, "Saved %d article(s) to the library\n", len(results))
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d topic(s) failed generation", summary.Failed)
	}
	return nil
}
