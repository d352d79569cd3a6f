package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/backmassage/muxprobe/internal/probe"
)

// Logger is the minimal logging interface used by Transcoder.
type Logger interface {
	Debug(string, ...interface{})
	Warn(string, ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// Transcoder implements probe.Transcoder with the ffmpeg binary. Options are
// bound to the value; use WithOptions for a per-call variant. With
// AutoPresets set, the presets PresetsFor picks for the movie's video stream
// are appended to Options.Presets on every call.
type Transcoder struct {
	Binary      string
	Options     Options
	AutoPresets bool
	Stderr      io.Writer // Optional live copy of ffmpeg's stderr.
	Log         Logger
	Run         Runner
}

var _ probe.Transcoder = (*Transcoder)(nil)

// New returns a Transcoder running binary (DefaultBinary when empty).
func New(binary string, opts Options) *Transcoder {
	return &Transcoder{Binary: binary, Options: opts}
}

// WithOptions returns a copy of t that uses opts.
func (t *Transcoder) WithOptions(opts Options) *Transcoder {
	c := *t
	c.Options = opts
	return &c
}

// Transcode writes m to output, or a single frame of it when screenshot is
// set. Invalid movies are rejected with ErrInvalidInput before ffmpeg runs.
// Recoverable failures are retried with one fix per attempt.
func (t *Transcoder) Transcode(ctx context.Context, m *probe.Movie, output string, screenshot bool) error {
	if m == nil || !m.Valid() {
		return ErrInvalidInput
	}
	if screenshot && m.Video() == nil {
		return fmt.Errorf("%w: %s has no video stream", ErrInvalidInput, m.Path())
	}

	binary := t.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	log := t.Log
	if log == nil {
		log = nopLogger{}
	}
	run := t.Run
	if run == nil {
		run = func(ctx context.Context, binary string, args []string) ExecResult {
			return Execute(ctx, binary, args, t.Stderr)
		}
	}

	opts := t.Options
	if t.AutoPresets {
		if auto := PresetsFor(m.Video()); len(auto) > 0 {
			opts.Presets = mergePresets(opts.Presets, auto)
			log.Debug("%s: applying presets %v", m.Path(), opts.Presets)
		}
	}

	rs := NewRetryState(opts)
	for {
		args, err := Build(m, output, rs.Opts, screenshot)
		if err != nil {
			return err
		}
		log.Debug("%s %s", binary, strings.Join(args, " "))

		res := run(ctx, binary, args)
		if res.Err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		action := rs.Advance(res.Stderr)
		if action == RetryNone {
			return failure(m, res)
		}
		log.Warn("ffmpeg failed on %s, retrying with %s", m.Path(), action)
	}
}

// failure wraps the run error with a classified sentinel and the last line
// of stderr.
func failure(m *probe.Movie, res ExecResult) error {
	detail := lastLine(res.Stderr)
	if cause := classify(res.Stderr); cause != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", m.Path(), cause, detail)
	}
	if detail != "" {
		return fmt.Errorf("ffmpeg %s: %w: %s", m.Path(), res.Err, detail)
	}
	return fmt.Errorf("ffmpeg %s: %w", m.Path(), res.Err)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
