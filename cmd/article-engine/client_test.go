package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/article-engine/pkg/types"
)

func newModelFlagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addModelFlags(cmd)
	return cmd
}

func TestGenConfigDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	gen := genConfigFromFlags(newModelFlagCmd())

	assert.Equal(t, types.DefaultModel, gen.Model)
	require.NotNil(t, gen.Temperature)
	assert.Equal(t, types.DefaultTemperature, *gen.Temperature)
	assert.Nil(t, gen.Seed)
}

func TestGenConfigZeroTemperatureFlag(t *testing.T) {
	t.Cleanup(viper.Reset)
	cmd := newModelFlagCmd()
	require.NoError(t, cmd.Flags().Set("temperature", "0"))

	gen := genConfigFromFlags(cmd)
	require.NotNil(t, gen.Temperature)
	assert.Equal(t, 0.0, *gen.Temperature)
}

func TestGenConfigFromConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("generation.model", "llama3:8b")
	viper.Set("generation.temperature", 0.2)
	viper.Set("generation.seed", 7)

	gen := genConfigFromFlags(newModelFlagCmd())
	assert.Equal(t, "llama3:8b", gen.Model)
	require.NotNil(t, gen.Temperature)
	assert.Equal(t, 0.2, *gen.Temperature)
	require.NotNil(t, gen.Seed)
	assert.Equal(t, 7, *gen.Seed)
}

func TestGenConfigFlagBeatsConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("generation.model", "llama3:8b")
	viper.Set("generation.temperature", 0.2)

	cmd := newModelFlagCmd()
	require.NoError(t, cmd.Flags().Set("model", "mistral:7b"))
	require.NoError(t, cmd.Flags().Set("temperature", "1.1"))

	gen := genConfigFromFlags(cmd)
	assert.Equal(t, "mistral:7b", gen.Model)
	require.NotNil(t, gen.Temperature)
	assert.Equal(t, 1.1, *gen.Temperature)
}

func TestFlagOrConfigHelpers(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("library.dir", "/srv/articles")
	viper.Set("library.max_results", 50)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("library-dir", "library", "")
	cmd.Flags().Int("max-results", 20, "")

	assert.Equal(t, "/srv/articles", stringFlagOrConfig(cmd, "library-dir", "library.dir"))
	assert.Equal(t, 50, intFlagOrConfig(cmd, "max-results", "library.max_results"))

	require.NoError(t, cmd.Flags().Set("library-dir", "/tmp/lib"))
	require.NoError(t, cmd.Flags().Set("max-results", "5"))
	assert.Equal(t, "/tmp/lib", stringFlagOrConfig(cmd, "library-dir", "library.dir"))
	assert.Equal(t, 5, intFlagOrConfig(cmd, "max-results", "library.max_results"))
}
