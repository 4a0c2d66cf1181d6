// Package run wraps subprocess invocation so the build and coverage
// drivers can be tested without cmake or lcov installed.
package run

import (
	"bytes"
	"context"
	"os/exec"
)

// Func runs a command in dir and returns captured stdout and stderr.
// A non-zero exit surfaces as a non-nil error alongside the output.
type Func func(ctx context.Context, dir, name string, arg ...string) (stdout, stderr string, err error)

// Command is the real implementation backed by os/exec.
func Command(ctx context.Context, dir, name string, arg ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Dir = dir

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return out.String(), errBuf.String(), err
}
