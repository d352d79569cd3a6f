package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// DefaultBinary is the ffprobe executable looked up on PATH.
const DefaultBinary = "ffprobe"

// Output is the complete capture of one ffprobe run.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Invoker runs the probe tool against a resource. Implementations must
// return only after both streams are fully read.
type Invoker interface {
	Invoke(ctx context.Context, path string) (Output, error)
}

// ExecInvoker runs an ffprobe binary as a subprocess.
type ExecInvoker struct {
	Binary string // Default: "ffprobe".
}

// Args returns the ffprobe arguments used for path.
func Args(path string) []string {
	return []string{
		"-i", path,
		"-print_format", "json",
		"-show_format", "-show_streams", "-show_error",
	}
}

// Invoke runs ffprobe and captures stdout and stderr. A non-zero exit is not
// an error: ffprobe exits non-zero alongside a JSON "error" object, which the
// caller handles. Only a failure to run the binary at all is returned.
func (e ExecInvoker) Invoke(ctx context.Context, path string) (Output, error) {
	bin := e.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	// #nosec G204 - binary comes from configuration; path is passed as a single argument
	cmd := exec.CommandContext(ctx, bin, Args(path)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return out, nil
	}
	return out, fmt.Errorf("%s %q: %w", bin, path, err)
}
