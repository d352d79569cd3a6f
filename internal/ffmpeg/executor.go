package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// DefaultBinary is the ffmpeg executable looked up on PATH.
const DefaultBinary = "ffmpeg"

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Runner executes one ffmpeg invocation. Execute is the default; tests
// substitute a fake.
type Runner func(ctx context.Context, binary string, args []string) ExecResult

// Execute runs binary with args. Stderr is always captured for failure
// classification; when tee is non-nil it is also copied there as it arrives.
func Execute(ctx context.Context, binary string, args []string, tee io.Writer) ExecResult {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stderrBuf bytes.Buffer
	if tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}
