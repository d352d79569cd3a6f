package ffmpeg

import (
	"errors"
	"regexp"
)

// Sentinel errors for failures no retry can fix.
var (
	ErrInvalidInput      = errors.New("movie is not valid for transcoding")
	ErrEncoderMissing    = errors.New("ffmpeg encoder not available")
	ErrOutputNotWritable = errors.New("output path not writable")
	ErrNothingEncoded    = errors.New("ffmpeg produced no output")
)

// Pre-compiled regexes for classifying ffmpeg stderr output. Checked in
// order by [RetryState.Advance]; the first matching pattern whose fix has
// not yet been applied wins.
var (
	reUnknownEncoder = regexp.MustCompile(
		`Unknown encoder '([^']+)'|Encoder \(codec [^)]*\) not found|` +
			`Encoder not found`)

	reMissingFilter = regexp.MustCompile(
		`No such filter: '([^']+)'|Error initializing filter|` +
			`Error reinitializing filters`)

	reNothingEncoded = regexp.MustCompile(
		`(?i)Output file is empty, nothing was encoded|` +
			`Output file #\d+ does not contain any stream`)

	reOutputNotWritable = regexp.MustCompile(
		`(?i)Permission denied|Read-only file system|Error opening output file`)
)

// MatchUnknownEncoder reports whether stderr says the requested encoder is missing.
func MatchUnknownEncoder(stderr string) bool {
	return reUnknownEncoder.MatchString(stderr)
}

// MatchMissingFilter reports whether stderr says a filter in the graph is unavailable.
func MatchMissingFilter(stderr string) bool {
	return reMissingFilter.MatchString(stderr)
}

// MatchNothingEncoded reports whether ffmpeg finished without writing a frame.
func MatchNothingEncoded(stderr string) bool {
	return reNothingEncoded.MatchString(stderr)
}

// MatchOutputNotWritable reports whether ffmpeg could not open the output.
func MatchOutputNotWritable(stderr string) bool {
	return reOutputNotWritable.MatchString(stderr)
}

// classify maps the stderr of a failed run that no retry fixed to a sentinel,
// or nil when nothing matches.
func classify(stderr string) error {
	switch {
	case MatchOutputNotWritable(stderr):
		return ErrOutputNotWritable
	case MatchUnknownEncoder(stderr):
		return ErrEncoderMissing
	case MatchNothingEncoded(stderr):
		return ErrNothingEncoded
	}
	return nil
}
