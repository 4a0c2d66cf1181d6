// Package generator runs the per-file pipeline: analyze the source, build
// the prompt, call the LLM, and write the test file.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"testsmith/internal/analyzer"
	"testsmith/internal/config"
	"testsmith/internal/llm"
	"testsmith/internal/prompt"
	"testsmith/pkg/types"
)

// Generator turns C++ sources into Google Test files.
type Generator struct {
	client    llm.Client
	genCfg    *config.GenerateConfig
	refineCfg *config.RefineConfig
	testDir   string
	log       *zap.Logger
}

// New returns a Generator. refineCfg may be nil when refinement is
// skipped.
func New(client llm.Client, genCfg *config.GenerateConfig, refineCfg *config.RefineConfig, testDir string, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		client:    client,
		genCfg:    genCfg,
		refineCfg: refineCfg,
		testDir:   testDir,
		log:       log,
	}
}

// GenerateAll processes each source file to completion before the next.
// A failure on one file is recorded and does not stop the rest.
func (g *Generator) GenerateAll(ctx context.Context, sources []string) []types.FileResult {
	used := make(map[string]bool)
	results := make([]types.FileResult, 0, len(sources))

	for _, path := range sources {
		results = append(results, g.generateOne(ctx, path, used))
	}
	return results
}

func (g *Generator) generateOne(ctx context.Context, path string, used map[string]bool) types.FileResult {
	result := types.FileResult{SourcePath: path}

	src, err := analyzer.Analyze(path)
	if err != nil {
		g.log.Warn("analysis failed", zap.String("source", path), zap.Error(err))
		result.Status = types.StatusFailed
		result.Error = fmt.Sprintf("analyzing source: %v", err)
		return result
	}

	p, ok := prompt.BuildGenerate(g.genCfg, src)
	if !ok {
		g.log.Warn("no generation rule for file kind",
			zap.String("source", path), zap.String("kind", string(src.Kind)))
		result.Status = types.StatusSkipped
		result.Error = fmt.Sprintf("no rule for file type: %s", src.Kind)
		return result
	}

	g.log.Info("generating tests", zap.String("source", path), zap.String("kind", string(src.Kind)))
	testCode, err := g.client.Complete(ctx, p.System, p.User)
	if err != nil {
		g.log.Warn("generation failed", zap.String("source", path), zap.Error(err))
		result.Status = types.StatusFailed
		result.Error = err.Error()
		return result
	}

	testPath := testFilePath(g.testDir, path, used)
	if err := os.WriteFile(testPath, []byte(testCode), 0644); err != nil {
		g.log.Warn("write failed", zap.String("test", testPath), zap.Error(err))
		result.Status = types.StatusFailed
		result.Error = fmt.Sprintf("writing test file: %v", err)
		return result
	}

	result.TestPath = testPath
	result.Status = types.StatusGenerated
	return result
}

// RefineAll runs the refinement pass over every generated test. The
// original text is kept as <file>.backup; a failed refinement keeps the
// generated version and is not an error.
func (g *Generator) RefineAll(ctx context.Context, results []types.FileResult) []types.FileResult {
	if g.refineCfg == nil {
		return results
	}

	for i := range results {
		if results[i].Status != types.StatusGenerated {
			continue
		}
		if err := g.refineOne(ctx, results[i].TestPath); err != nil {
			g.log.Warn("refinement failed, keeping generated version",
				zap.String("test", results[i].TestPath), zap.Error(err))
			continue
		}
		results[i].Status = types.StatusRefined
	}
	return results
}

func (g *Generator) refineOne(ctx context.Context, testPath string) error {
	original, err := os.ReadFile(testPath)
	if err != nil {
		return err
	}

	p := prompt.BuildRefine(g.refineCfg, testPath, string(original))
	refined, err := g.client.Complete(ctx, p.System, p.User)
	if err != nil {
		return err
	}

	if err := os.WriteFile(testPath+".backup", original, 0644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	if err := os.WriteFile(testPath, []byte(refined), 0644); err != nil {
		return fmt.Errorf("writing refined test: %w", err)
	}
	return nil
}

// testFilePath derives the output path for a source file: Foo.cc maps to
// FooTest.cc. A stem already taken by another source gets a numeric
// suffix so distinct inputs never collide.
func testFilePath(testDir, sourcePath string, used map[string]bool) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	name := stem + "Test.cc"
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%sTest%d.cc", stem, n)
	}
	used[name] = true

	return filepath.Join(testDir, name)
}

// Counts summarizes results for reporting.
func Counts(results []types.FileResult) (generated, failed, skipped int) {
	for _, r := range results {
		switch r.Status {
		case types.StatusGenerated, types.StatusRefined:
			generated++
		case types.StatusFailed:
			failed++
		case types.StatusSkipped:
			skipped++
		}
	}
	return
}
