package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"testsmith/internal/builder"
	"testsmith/internal/config"
	"testsmith/internal/llm"
)

var (
	buildTestDir   string
	buildBuildDir  string
	buildConfigDir string
	buildNoFix     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the project and run the generated tests",
	Long: `Configure and compile the project with cmake (coverage and
testing enabled), then run ctest. With the fix loop enabled (default),
a failing build is sent to the model once per attempt and the common
include fixes are applied before retrying.

Example:
  testsmith build
  testsmith build --no-fix    # plain build, no LLM involvement`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(buildConfigDir)
	if err != nil {
		return err
	}

	opts := builder.Options{
		BuildDir:       buildBuildDir,
		TestDir:        buildTestDir,
		MaxFixAttempts: cfg.Build.MaxFixAttempts,
		Log:            logger,
	}
	if !buildNoFix {
		fixCfg, err := config.LoadBuildError(buildConfigDir)
		if err != nil {
			return err
		}
		opts.Client = llm.NewOllamaClient(cfg.LLM)
		opts.FixConfig = fixCfg
	}

	b := builder.New(opts)

	fmt.Printf("Building in %s...\n", buildBuildDir)
	if err := b.Build(ctx); err != nil {
		return err
	}
	fmt.Println("Build successful, running tests...")
	if err := b.RunTests(ctx); err != nil {
		return err
	}
	fmt.Println("All tests passed.")
	return nil
}

func init() {
	buildCmd.Flags().StringVar(&buildTestDir, "test-dir", "tests", "directory with generated tests")
	buildCmd.Flags().StringVar(&buildBuildDir, "build-dir", "build", "build directory")
	buildCmd.Flags().StringVar(&buildConfigDir, "config-dir", ".", "directory with YAML config files")
	buildCmd.Flags().BoolVar(&buildNoFix, "no-fix", false, "disable the LLM build-error fix loop")
	rootCmd.AddCommand(buildCmd)
}
