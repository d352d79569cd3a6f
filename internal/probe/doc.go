// Package probe inspects a media resource with ffprobe and reconciles its
// output into a [Movie]: container fields, the first video stream, every
// audio stream, display geometry, and a validity verdict.
//
// One JSON call per resource is made:
//
//	ffprobe -i <path> -print_format json -show_format -show_streams -show_error
//
// stdout is decoded by [ParseJSON]; stderr is scanned by a [Diagnostics]
// implementation for unsupported-codec and missing-codec-parameter markers.
// A top-level "error" object in the JSON triggers exactly one re-probe; a
// second error yields a zero-duration, invalid Movie rather than a Go error.
//
// Remote inputs (http/https) are checked first with a HEAD request that
// follows a bounded number of redirects (see [RemoteChecker]).
package probe
