// Package ffmpeg is the transcoder behind probe.Movie's Transcode and
// Screenshot entry points. It turns a validated Movie plus Options into an
// ffmpeg argument list, runs it with stderr captured, and applies at most a
// few targeted fixes when the stderr shows a recoverable failure.
//
// Files:
//   - options.go: Options and the named filter-graph Preset values
//   - builder.go: Build(movie, output, opts, screenshot) → []string
//   - executor.go: Execute(ctx, binary, args) → ExecResult
//   - errors.go: stderr classification into retryable and fatal causes
//   - retry.go: RetryState, one fix per attempt
//   - transcoder.go: Transcoder, the probe.Transcoder implementation
package ffmpeg
