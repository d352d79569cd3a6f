package probe

import (
	"errors"
	"fmt"
)

// Sentinel errors returned while constructing a Movie.
var (
	// ErrResourceNotFound means a local file is missing or a remote URL did
	// not answer with a success status.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrTooManyRedirects means the remote check exceeded its redirect bound.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrUnparsable is matched by every *UnparsableError.
	ErrUnparsable = errors.New("could not parse ffprobe output")
)

// UnparsableError carries the raw ffprobe stdout that failed to decode.
type UnparsableError struct {
	Raw string
	Err error
}

func (e *UnparsableError) Error() string {
	raw := e.Raw
	if len(raw) > 512 {
		raw = raw[:512] + "..."
	}
	return fmt.Sprintf("could not parse ffprobe output: %v:\n%s", e.Err, raw)
}

func (e *UnparsableError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnparsable) match.
func (e *UnparsableError) Is(target error) bool { return target == ErrUnparsable }
