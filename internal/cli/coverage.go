package cli

import (
	"github.com/spf13/cobra"

	"testsmith/internal/coverage"
)

var coverageBuildDir string

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Capture and summarize test coverage",
	Long: `Run lcov capture over the build directory, filter system
headers, render the HTML report, and print the line/function/branch
percentages. The summary text is also written to coverage.txt in the
build directory.

Requires a prior instrumented build (testsmith build).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep := coverage.NewReporter(coverageBuildDir, nil, logger)
		sum, err := rep.Generate(cmd.Context())
		if err != nil {
			return err
		}
		printCoverage(sum)
		return nil
	},
}

func init() {
	coverageCmd.Flags().StringVar(&coverageBuildDir, "build-dir", "build", "build directory")
	rootCmd.AddCommand(coverageCmd)
}
