// Package coverage drives lcov/genhtml and parses the summary they print.
package coverage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"testsmith/internal/run"
	"testsmith/pkg/types"
)

const (
	captureFile  = "coverage.info"
	filteredFile = "coverage.filtered.info"
	htmlDir      = "coverage-html"
	summaryFile  = "coverage.txt"
)

// summaryLine matches both lcov summary spellings:
//
//	lines......: 78.6% (1234 of 1570 lines)
//	lines: 78.6%
var summaryLine = regexp.MustCompile(`(?m)^\s*(lines|functions|branches)[.\s]*:\s*([0-9.]+)%`)

// Reporter captures coverage data and produces the summary record.
type Reporter struct {
	buildDir string
	runner   run.Func
	log      *zap.Logger
}

// NewReporter returns a Reporter for buildDir. runner may be nil to use
// the real command runner.
func NewReporter(buildDir string, runner run.Func, log *zap.Logger) *Reporter {
	if runner == nil {
		runner = run.Command
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{buildDir: buildDir, runner: runner, log: log}
}

// Generate runs the lcov capture/filter/report chain and parses the
// summary. Capture, filter, and genhtml failures are warnings, matching
// the external tools' partial-output behavior; a failed or unparseable
// summary is an error since the pipeline's success depends on it.
func (r *Reporter) Generate(ctx context.Context) (*types.CoverageSummary, error) {
	steps := [][]string{
		{"lcov", "--capture", "--directory", ".", "--output-file", captureFile},
		{"lcov", "--remove", captureFile, "/usr/*", "--output-file", filteredFile},
		{"genhtml", filteredFile, "--output-directory", htmlDir},
	}
	for _, step := range steps {
		if _, stderr, err := r.runner(ctx, r.buildDir, step[0], step[1:]...); err != nil {
			r.log.Warn("coverage command failed",
				zap.Strings("command", step),
				zap.String("stderr", stderr),
				zap.Error(err))
		}
	}

	stdout, stderr, err := r.runner(ctx, r.buildDir, "lcov", "--summary", filteredFile)
	if err != nil {
		return nil, fmt.Errorf("lcov summary: %w (%s)", err, stderr)
	}

	// lcov prints the summary on stderr in some versions.
	text := stdout
	if text == "" {
		text = stderr
	}

	if werr := os.WriteFile(filepath.Join(r.buildDir, summaryFile), []byte(text), 0644); werr != nil {
		r.log.Warn("writing coverage summary file", zap.Error(werr))
	}

	return ParseSummary(text)
}

// ParseSummary extracts line/function/branch percentages from lcov summary
// text. A missing branches line means branch instrumentation was off, not
// an error; missing lines or functions means the output is unusable.
func ParseSummary(text string) (*types.CoverageSummary, error) {
	sum := &types.CoverageSummary{}
	var haveLines, haveFunctions bool

	for _, m := range summaryLine.FindAllStringSubmatch(text, -1) {
		pct, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		switch m[1] {
		case "lines":
			sum.LinePercent = pct
			haveLines = true
		case "functions":
			sum.FunctionPercent = pct
			haveFunctions = true
		case "branches":
			sum.BranchPercent = pct
			sum.HasBranchData = true
		}
	}

	if !haveLines || !haveFunctions {
		return nil, fmt.Errorf("no coverage percentages found in summary output")
	}
	return sum, nil
}
