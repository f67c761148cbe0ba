package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-engine/internal/ollama"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage models on the Ollama host (list, pull)",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models installed on the Ollama host",
	RunE:  runModelsList,
}

func runModelsList(cmd *cobra.Command, args []string) error {
	client := ollamaClientFromFlags(cmd)

	models, err := client.ListModels(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}

	if len(models) == 0 {
		fmt.Println("No models installed.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-28s  %10s  %-8s  %-8s  %s\n",
		"Name", "Size", "Params", "Quant", "Modified")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))

	for _, m := range models {
		fmt.Fprintf(os.Stdout, "%-28s  %10s  %-8s  %-8s  %s\n",
			m.Name, ollama.FormatBytes(m.Size), m.ParameterSize, m.Quantization,
			m.ModifiedAt.Format("2006-01-02"))
	}

	fmt.Fprintf(os.Stdout, "\n%d model(s)\n", len(models))
	return nil
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull [name]",
	Short: "Download a model onto the Ollama host",
	Long: `Pull downloads a model onto the Ollama host, streaming progress lines
as layers arrive. Pulling an already-installed model is a fast no-op on
the host side.`,
	RunE: runModelsPull,
}

func runModelsPull(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide a model name (e.g. article-engine models pull phi3:3.8b)")
	}

	client := ollamaClientFromFlags(cmd)
	return client.Pull(context.Background(), args[0], os.Stdout)
}

func init() {
	addModelFlags(modelsListCmd)
	addModelFlags(modelsPullCmd)
	modelsListCmd.Flags().Bool("json", false, "output results as JSON")

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsPullCmd)

	rootCmd.AddCommand(modelsCmd)
}
