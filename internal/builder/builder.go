// Package builder drives cmake and ctest, with an optional LLM pass that
// tries to repair build errors in the generated tests.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"testsmith/internal/config"
	"testsmith/internal/llm"
	"testsmith/internal/prompt"
	"testsmith/internal/run"
)

// errorContextLines is how much of the tail of the build output goes into
// the fix prompt.
const errorContextLines = 50

// Includes every generated test needs; prepended when missing.
var requiredIncludes = []string{
	"#include <gtest/gtest.h>",
	"#include <drogon/drogon.h>",
}

// Builder configures and builds the project with tests enabled.
type Builder struct {
	buildDir       string
	testDir        string
	client         llm.Client
	fixCfg         *config.BuildErrorConfig
	maxFixAttempts int
	runner         run.Func
	log            *zap.Logger
}

// Options configures a Builder. Client and FixConfig may both be nil to
// disable the error-resolution loop.
type Options struct {
	BuildDir       string
	TestDir        string
	Client         llm.Client
	FixConfig      *config.BuildErrorConfig
	MaxFixAttempts int
	Runner         run.Func
	Log            *zap.Logger
}

// New returns a Builder.
func New(opts Options) *Builder {
	if opts.Runner == nil {
		opts.Runner = run.Command
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.MaxFixAttempts < 1 {
		opts.MaxFixAttempts = 1
	}
	return &Builder{
		buildDir:       opts.BuildDir,
		testDir:        opts.TestDir,
		client:         opts.Client,
		fixCfg:         opts.FixConfig,
		maxFixAttempts: opts.MaxFixAttempts,
		runner:         opts.Runner,
		log:            opts.Log,
	}
}

// Build configures and compiles the project. On compile failure it asks
// the LLM for fixes, applies the common include fixes, and retries, up to
// the configured attempt bound. The last build error is returned when all
// attempts fail.
func (b *Builder) Build(ctx context.Context) error {
	if err := os.MkdirAll(b.buildDir, 0755); err != nil {
		return fmt.Errorf("creating build dir: %w", err)
	}

	_, stderr, err := b.runner(ctx, b.buildDir, "cmake", "..",
		"-DENABLE_COVERAGE=ON",
		"-DBUILD_TESTING=ON",
		"-DCMAKE_BUILD_TYPE=Debug")
	if err != nil {
		return fmt.Errorf("cmake configuration failed: %w\n%s", err, stderr)
	}

	for attempt := 1; ; attempt++ {
		_, stderr, err = b.runner(ctx, b.buildDir, "cmake", "--build", ".", "--parallel")
		if err == nil {
			return nil
		}
		b.log.Warn("build failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt >= b.maxFixAttempts || !b.tryFix(ctx, stderr) {
			return fmt.Errorf("build failed: %w\n%s", err, lastLines(stderr, errorContextLines))
		}
	}
}

// RunTests runs ctest in the build directory, forwarding its exit status.
func (b *Builder) RunTests(ctx context.Context) error {
	stdout, _, err := b.runner(ctx, b.buildDir, "ctest", "--output-on-failure", "--parallel")
	if err != nil {
		return fmt.Errorf("tests failed: %w\n%s", err, stdout)
	}
	return nil
}

// tryFix asks the LLM about the build errors and applies the common fixes.
// Returns false when the loop is disabled or the LLM call fails.
func (b *Builder) tryFix(ctx context.Context, buildOutput string) bool {
	if b.client == nil || b.fixCfg == nil {
		return false
	}

	p := prompt.BuildFix(b.fixCfg, lastLines(buildOutput, errorContextLines), b.testDir)
	suggestion, err := b.client.Complete(ctx, p.System, p.User)
	if err != nil {
		b.log.Warn("fix suggestion failed", zap.Error(err))
		return false
	}
	b.log.Info("fix suggested", zap.String("suggestion", firstLine(suggestion)))

	if err := ApplyCommonFixes(b.testDir); err != nil {
		b.log.Warn("applying common fixes", zap.Error(err))
		return false
	}
	return true
}

// ApplyCommonFixes prepends missing gtest/drogon includes to every test
// file in dir. The suggestion text guides the human; the mechanical part
// is the include repair.
func ApplyCommonFixes(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.cc"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)
		changed := false
		for _, inc := range requiredIncludes {
			if !strings.Contains(content, inc) {
				content = inc + "\n" + content
				changed = true
			}
		}
		if changed {
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
