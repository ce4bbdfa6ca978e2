package cli

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/roach88/multiverse/internal/config"
)

var (
	scenarioDir = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir   = filepath.Join("..", "harness", "testdata", "golden")
)

func scenarioFile(name string) string {
	return filepath.Join(scenarioDir, name+".yaml")
}

// testOptions returns root options with configuration already loaded, so
// commands built from them never read a config file.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format: format,
		Config: &config.Config{
			Store:   config.StoreConfig{Path: filepath.Join(t.TempDir(), "test.db")},
			Logging: config.LoggingConfig{Level: "info", Format: "text"},
			Emotion: config.EmotionConfig{DecayFactor: config.DefaultDecayFactor},
			Harness: config.HarnessConfig{GoldenDir: goldenDir},
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
