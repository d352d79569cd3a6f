package probe

import (
	"regexp"
	"strconv"
	"strings"
)

// Diagnostics extracts validity signals from ffprobe's free-text stderr.
// The wording drifts between ffprobe releases, so the rest of the package
// only depends on this interface.
type Diagnostics interface {
	// UnsupportedStreams returns the indices of input streams reported as
	// using an unsupported codec.
	UnsupportedStreams(stderr string) map[int]struct{}

	// CodecParamsMissing reports whether ffprobe could not find codec
	// parameters for some stream.
	CodecParamsMissing(stderr string) bool
}

// Pre-compiled pattern for the unsupported-codec line, e.g.
// "Unsupported codec with id 27 for input stream 0".
var reUnsupportedCodec = regexp.MustCompile(
	`Unsupported codec with id (\d+) for input stream (\d+)`)

const codecParamsMarker = "could not find codec parameters"

// FFprobeDiagnostics matches the messages printed by current ffprobe builds.
type FFprobeDiagnostics struct{}

// UnsupportedStreams matches over the whole text, so no line length can
// cut the scan short.
func (FFprobeDiagnostics) UnsupportedStreams(stderr string) map[int]struct{} {
	streams := make(map[int]struct{})
	for _, m := range reUnsupportedCodec.FindAllStringSubmatch(stderr, -1) {
		if idx, err := strconv.Atoi(m[2]); err == nil {
			streams[idx] = struct{}{}
		}
	}
	return streams
}

// CodecParamsMissing matches case-insensitively: ffprobe capitalises the
// sentence ("Could not find codec parameters for stream 0 ...").
func (FFprobeDiagnostics) CodecParamsMissing(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), codecParamsMarker)
}
