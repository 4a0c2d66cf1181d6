package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "testsmith",
	Short: "LLM-driven unit test generator for Drogon C++ services",
	Long: `testsmith generates Google Test unit tests for Drogon C++ web
services using a local Ollama model.

It scans your sources, prompts the model with per-file-type templates,
writes the generated tests, then drives cmake/ctest and reports lcov
coverage.

Quick Start:
  testsmith generate src/        Generate tests for everything under src/
  testsmith generate src/ --skip-build
                                 Generate only, no compile/test step
  testsmith build                Build and run the tests
  testsmith coverage             Capture and summarize coverage
  testsmith history              Show past runs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
