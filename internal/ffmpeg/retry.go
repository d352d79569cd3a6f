package ffmpeg

// RetryAction identifies which fix was applied (or none).
type RetryAction int

const (
	RetryNone         RetryAction = iota
	RetryDefaultCodec             // Let ffmpeg pick the encoders.
	RetryDropPresets              // Run without the preset filter graphs.
	RetrySeekStart                // Seek to the first frame.
)

func (a RetryAction) String() string {
	switch a {
	case RetryDefaultCodec:
		return "default codecs"
	case RetryDropPresets:
		return "no filter presets"
	case RetrySeekStart:
		return "seek to start"
	}
	return "none"
}

const maxAttempts = 4

// RetryState tracks which fallback fixes have been applied across ffmpeg
// attempts for a single output. Opts holds the options for the next attempt.
type RetryState struct {
	Attempt     int
	MaxAttempts int
	Opts        Options
}

// NewRetryState starts from the caller's options.
func NewRetryState(opts Options) *RetryState {
	return &RetryState{MaxAttempts: maxAttempts, Opts: opts}
}

// Advance inspects stderr from a failed ffmpeg run, finds the first matching
// error pattern whose fix has not yet been applied, applies that fix, and
// returns the action taken. Returns RetryNone when no fixable pattern matches
// or the attempt limit is reached.
//
// Pattern evaluation order: encoder → filter → empty output.
// Only one fix is applied per call.
func (s *RetryState) Advance(stderr string) RetryAction {
	s.Attempt++
	if s.Attempt >= s.MaxAttempts {
		return RetryNone
	}

	if (s.Opts.VideoCodec != "" || s.Opts.AudioCodec != "") && MatchUnknownEncoder(stderr) {
		s.Opts.VideoCodec, s.Opts.AudioCodec = "", ""
		return RetryDefaultCodec
	}
	if len(s.Opts.Presets) > 0 && MatchMissingFilter(stderr) {
		s.Opts.Presets = nil
		return RetryDropPresets
	}
	if s.Opts.Seek > 0 && MatchNothingEncoded(stderr) {
		s.Opts.Seek = 0
		return RetrySeekStart
	}
	return RetryNone
}
