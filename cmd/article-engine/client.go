package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/article-engine/internal/ollama"
	"github.com/pdiddy/article-engine/pkg/types"
)

const defaultUserAgent = "article-engine/0.1"

// addModelFlags registers the flags shared by every command that talks
// to the model host.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "", "Ollama host URL (default http://localhost:11434, or ollama.host from config)")
	cmd.Flags().String("model", "", "model identifier (default phi3:3.8b)")
	cmd.Flags().Float64("temperature", types.DefaultTemperature, "sampling temperature (0 to 1.5)")
	cmd.Flags().Int("seed", 0, "random seed for reproducible output (omitted unless set)")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout for non-streaming calls (default 60s)")
}

// ollamaConfigFromFlags resolves the model host configuration: flags
// first, then config file, then built-in defaults. The auth token comes
// from .secrets/ollama-auth-token when present.
func ollamaConfigFromFlags(cmd *cobra.Command) types.OllamaConfig {
	host, _ := cmd.Flags().GetString("host")
	if host == "" {
		host = viper.GetString("ollama.host")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return types.OllamaConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Host:      host,
		AuthToken: secretDefault("ollama-auth-token", viper.GetString("ollama.auth_token")),
	}
}

// ollamaClientFromFlags builds the Ollama client used by generation and
// model commands.
func ollamaClientFromFlags(cmd *cobra.Command) *ollama.Client {
	return ollama.NewClient(ollamaConfigFromFlags(cmd))
}

// checkModel verifies the model host is reachable and the model is
// installed before any generation starts, so a missing model fails
// with a pull hint instead of a mid-stream error.
func checkModel(ctx context.Context, client *ollama.Client, model string) error {
	ok, err := client.HasModel(ctx, model)
	if err != nil {
		return fmt.Errorf("checking model host: %w", err)
	}
	if !ok {
		return fmt.Errorf("model %q is not installed; run \"article-engine models pull %s\"", model, model)
	}
	return nil
}

// genConfigFromFlags resolves model parameters: explicit flags first,
// then the config file, then built-in defaults. The seed is attached
// only when set by flag or config; an unset seed keeps generation
// non-deterministic. An explicit temperature of 0 is preserved.
func genConfigFromFlags(cmd *cobra.Command) types.GenConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("generation.model")
	}

	gen := types.NewGenConfig()
	if model != "" {
		gen.Model = model
	}

	temperature, _ := cmd.Flags().GetFloat64("temperature")
	if !cmd.Flags().Changed("temperature") && viper.IsSet("generation.temperature") {
		temperature = viper.GetFloat64("generation.temperature")
	}
	gen.Temperature = &temperature

	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetInt("seed")
		gen.Seed = &seed
	} else if viper.IsSet("generation.seed") {
		seed := viper.GetInt("generation.seed")
		gen.Seed = &seed
	}
	return gen
}

// stringFlagOrConfig resolves a string setting: explicit flag first,
// then the config file key, then the flag's default value.
func stringFlagOrConfig(cmd *cobra.Command, flag, key string) string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

// intFlagOrConfig resolves an int setting with the same precedence.
func intFlagOrConfig(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}
