package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-engine/internal/generate"
	"github.com/pdiddy/article-engine/internal/library"
	"github.com/pdiddy/article-engine/internal/log"
	"github.com/pdiddy/article-engine/internal/server"
	"github.com/pdiddy/article-engine/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve article generation and the library over HTTP",
	Long: `Serve exposes the generation pipeline and the library as a JSON API:
POST /api/v1/articles generates and stores an article, GET endpoints
list, search, and fetch stored articles, and /metrics exposes Prometheus
metrics. The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	addModelFlags(serveCmd)

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().Int("rate-limit", 30, "per-client requests per minute")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown deadline")
	serveCmd.Flags().String("library-dir", "library", "base directory for the library")
	serveCmd.Flags().String("output-dir", "output/articles", "directory for generated articles")
	serveCmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logLevel, _ := cmd.Flags().GetString("log-level")
	log.Configure(log.Config{Level: logLevel})

	libraryDir := stringFlagOrConfig(cmd, "library-dir", "library.dir")
	store, err := library.NewStore(types.LibraryConfig{LibraryDir: libraryDir})
	if err != nil {
		return err
	}
	defer store.Close()

	client := ollamaClientFromFlags(cmd)
	outputDir := stringFlagOrConfig(cmd, "output-dir", "generation.output_dir")
	gen := generate.New(client, types.GenerationConfig{
		Gen:       genConfigFromFlags(cmd),
		OutputDir: outputDir,
	})

	listen := stringFlagOrConfig(cmd, "listen", "server.listen")
	rateLimit := intFlagOrConfig(cmd, "rate-limit", "server.rate_limit")
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	srv := server.New(gen, store, client, types.ServerConfig{
		Listen:          listen,
		RateLimit:       rateLimit,
		ShutdownTimeout: shutdownTimeout,
	}, version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
