package types

import "time"

// FileKind classifies a C++ source by its role in a Drogon application.
// The prompt rules in generate_tests.yaml are keyed by this value.
type FileKind string

const (
	KindController FileKind = "controller"
	KindModel      FileKind = "model"
	KindPlugin     FileKind = "plugin"
	KindUnknown    FileKind = "unknown"
)

// SourceFile is an analyzed C++ source file: its raw text plus the
// symbols detected for prompt building.
type SourceFile struct {
	Path      string   `json:"path"`
	Kind      FileKind `json:"kind"`
	Content   string   `json:"content"`
	Classes   []string `json:"classes"`
	Functions []string `json:"functions"`
	Includes  []string `json:"includes"`
}

// GeneratedTest records a test file written for one source file.
type GeneratedTest struct {
	SourcePath string `json:"source_path"`
	TestPath   string `json:"test_path"`
	Refined    bool   `json:"refined"`
}

// CoverageSummary holds the percentages parsed from lcov summary output.
// Branch coverage is optional: lcov omits the branches line unless branch
// instrumentation was enabled.
type CoverageSummary struct {
	LinePercent     float64 `json:"line_percent"`
	FunctionPercent float64 `json:"function_percent"`
	BranchPercent   float64 `json:"branch_percent"`
	HasBranchData   bool    `json:"has_branch_data"`
}

// FileStatus is the outcome of processing a single source file.
type FileStatus string

const (
	StatusGenerated FileStatus = "generated"
	StatusRefined   FileStatus = "refined"
	StatusSkipped   FileStatus = "skipped"
	StatusFailed    FileStatus = "failed"
)

// FileResult is the per-file record of a generation run.
type FileResult struct {
	ID         string     `json:"id"`
	RunID      string     `json:"run_id"`
	SourcePath string     `json:"source_path"`
	TestPath   string     `json:"test_path,omitempty"`
	Status     FileStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
}

// RunStatus is the overall outcome of a generate invocation.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord summarizes one generate invocation for the history store.
type RunRecord struct {
	ID         string           `json:"id"`
	SourcePath string           `json:"source_path"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Generated  int              `json:"generated"`
	Failed     int              `json:"failed"`
	BuildOK    bool             `json:"build_ok"`
	Coverage   *CoverageSummary `json:"coverage,omitempty"`
	Status     RunStatus        `json:"status"`
}
