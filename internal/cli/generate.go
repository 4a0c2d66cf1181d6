package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"testsmith/internal/builder"
	"testsmith/internal/config"
	"testsmith/internal/coverage"
	"testsmith/internal/generator"
	"testsmith/internal/llm"
	"testsmith/internal/scanner"
	"testsmith/internal/storage"
	"testsmith/pkg/types"
)

var (
	genTestDir      string
	genBuildDir     string
	genConfigDir    string
	genSkipBuild    bool
	genSkipCoverage bool
	genSkipRefine   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <source-path>",
	Short: "Generate unit tests for C++ sources",
	Long: `Run the full pipeline over a source file or directory.

For each source file this analyzes classes and functions, fills the
matching prompt template from generate_tests.yaml, asks the model for a
Google Test suite, and writes <Name>Test.cc into the test directory.
A refinement pass then reworks each generated test (skippable with
--skip-refine). Unless skipped, the project is built with cmake, tests
run under ctest, and lcov coverage is summarized.

A failed generation for one file does not stop the others; it is
recorded and reported at the end.

Example:
  testsmith generate src/                   # whole tree
  testsmith generate src/models/User.cc     # single file
  testsmith generate src/ --skip-build      # generation only`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sourcePath := args[0]

	cfg, err := config.Load(genConfigDir)
	if err != nil {
		return err
	}
	genCfg, err := config.LoadGenerate(genConfigDir)
	if err != nil {
		return err
	}
	refineCfg, err := config.LoadRefine(genConfigDir)
	if err != nil {
		return err
	}
	fixCfg, err := config.LoadBuildError(genConfigDir)
	if err != nil {
		return err
	}

	sources, err := scanner.Collect(sourcePath, genTestDir, genBuildDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no source files found under %s", sourcePath)
	}
	fmt.Printf("Found %d source files\n", len(sources))

	if err := os.MkdirAll(genTestDir, 0755); err != nil {
		return fmt.Errorf("creating test dir: %w", err)
	}

	client := llm.NewOllamaClient(cfg.LLM)

	run := types.RunRecord{
		ID:         storage.NewRunID(),
		SourcePath: sourcePath,
		StartedAt:  time.Now(),
	}

	var refine *config.RefineConfig
	if !genSkipRefine {
		refine = refineCfg
	}
	gen := generator.New(client, genCfg, refine, genTestDir, logger)

	results := gen.GenerateAll(ctx, sources)
	printResults(results)

	generated, failed, skipped := generator.Counts(results)
	fmt.Printf("\nGenerated %d test files (%d failed, %d skipped)\n", generated, failed, skipped)
	run.Generated = generated
	run.Failed = failed

	if generated == 0 {
		finishRun(cfg, &run, results, false, nil, types.RunFailed)
		return fmt.Errorf("no tests generated")
	}

	if !genSkipRefine {
		fmt.Println("Refining generated tests...")
		results = gen.RefineAll(ctx, results)
	}

	var pipelineErr error
	buildOK := false
	var sum *types.CoverageSummary

	if genSkipBuild {
		fmt.Println("Skipping build step.")
	} else {
		fmt.Printf("Building tests in %s...\n", genBuildDir)
		b := builder.New(builder.Options{
			BuildDir:       genBuildDir,
			TestDir:        genTestDir,
			Client:         client,
			FixConfig:      fixCfg,
			MaxFixAttempts: cfg.Build.MaxFixAttempts,
			Log:            logger,
		})

		if err := b.Build(ctx); err != nil {
			pipelineErr = err
			fmt.Println("Build failed.")
		} else if err := b.RunTests(ctx); err != nil {
			pipelineErr = err
			fmt.Println("Some tests failed.")
		} else {
			buildOK = true
			fmt.Println("Build and tests passed.")
			if genSkipCoverage {
				fmt.Println("Skipping coverage analysis.")
			} else {
				fmt.Println("Generating coverage report...")
				rep := coverage.NewReporter(genBuildDir, nil, logger)
				sum, pipelineErr = rep.Generate(ctx)
				if pipelineErr == nil {
					printCoverage(sum)
				}
			}
		}
	}

	status := types.RunSucceeded
	if pipelineErr != nil {
		status = types.RunFailed
	}
	finishRun(cfg, &run, results, buildOK, sum, status)

	return pipelineErr
}

func printResults(results []types.FileResult) {
	for _, r := range results {
		switch r.Status {
		case types.StatusGenerated, types.StatusRefined:
			fmt.Printf("  %s -> %s\n", r.SourcePath, r.TestPath)
		case types.StatusSkipped:
			fmt.Printf("  %s skipped: %s\n", r.SourcePath, r.Error)
		case types.StatusFailed:
			fmt.Printf("  %s FAILED: %s\n", r.SourcePath, r.Error)
		}
	}
}

func printCoverage(sum *types.CoverageSummary) {
	fmt.Printf("Coverage: lines %.1f%%, functions %.1f%%", sum.LinePercent, sum.FunctionPercent)
	if sum.HasBranchData {
		fmt.Printf(", branches %.1f%%", sum.BranchPercent)
	}
	fmt.Println()
}

// finishRun records the run in the history store. History failures are
// logged, never fatal: the pipeline result matters more than the ledger.
func finishRun(cfg *config.Config, run *types.RunRecord, results []types.FileResult, buildOK bool, sum *types.CoverageSummary, status types.RunStatus) {
	run.FinishedAt = time.Now()
	run.BuildOK = buildOK
	run.Coverage = sum
	run.Status = status

	store, err := storage.NewHistoryStore(cfg.History.DatabasePath)
	if err != nil {
		logger.Warn("opening history store", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.SaveRun(run); err != nil {
		logger.Warn("recording run", zap.Error(err))
		return
	}
	for i := range results {
		results[i].RunID = run.ID
		if err := store.SaveFileResult(&results[i]); err != nil {
			logger.Warn("recording file result", zap.Error(err))
		}
	}
}

func init() {
	generateCmd.Flags().StringVar(&genTestDir, "test-dir", "tests", "directory for generated tests")
	generateCmd.Flags().StringVar(&genBuildDir, "build-dir", "build", "build directory")
	generateCmd.Flags().StringVar(&genConfigDir, "config-dir", ".", "directory with YAML config files")
	generateCmd.Flags().BoolVar(&genSkipBuild, "skip-build", false, "skip building and running tests")
	generateCmd.Flags().BoolVar(&genSkipCoverage, "skip-coverage", false, "skip coverage analysis")
	generateCmd.Flags().BoolVar(&genSkipRefine, "skip-refine", false, "skip the refinement pass")
	rootCmd.AddCommand(generateCmd)
}
