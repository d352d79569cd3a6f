package probe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxAttempts bounds the probe passes per resource: the first run plus one
// re-probe when ffprobe reports a top-level error.
const maxAttempts = 2

// Logger is the minimal logging interface used by Prober.
type Logger interface {
	Debug(string, ...interface{})
	Warn(string, ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// Config configures a Prober. Zero values select the defaults.
type Config struct {
	Invoker      Invoker      // Default: ExecInvoker{Binary: Binary}.
	Binary       string       // ffprobe path for the default invoker.
	HTTPClient   *http.Client // Used for remote existence checks.
	MaxRedirects int          // Default: DefaultMaxRedirects; negative means none.
	Diagnostics  Diagnostics  // Default: FFprobeDiagnostics.
	Logger       Logger
}

// Prober builds Movies. It holds no per-probe state and is safe for
// concurrent use.
type Prober struct {
	invoker Invoker
	remote  *RemoteChecker
	diag    Diagnostics
	log     Logger
}

// New returns a Prober for cfg.
func New(cfg Config) *Prober {
	p := &Prober{
		invoker: cfg.Invoker,
		diag:    cfg.Diagnostics,
		log:     cfg.Logger,
	}
	if p.invoker == nil {
		p.invoker = ExecInvoker{Binary: cfg.Binary}
	}
	if p.diag == nil {
		p.diag = FFprobeDiagnostics{}
	}
	if p.log == nil {
		p.log = nopLogger{}
	}
	redirects := cfg.MaxRedirects
	if redirects == 0 {
		redirects = DefaultMaxRedirects
	}
	p.remote = NewRemoteChecker(cfg.HTTPClient, redirects)
	return p
}

// Movie is the reconciled result of probing one resource. It is not
// modified after Open returns.
type Movie struct {
	path   string
	remote bool
	head   *RemoteResponse

	duration     float64
	startTime    float64
	bitrate      int64
	creationTime Optional[time.Time]
	container    string
	formatTags   map[string]string

	video *VideoStream
	audio []AudioStream

	probeErr *ProbeError
	stderr   string
	attempts int
	valid    bool
}

// Open checks that path exists, probes it, and returns the Movie. It fails
// with ErrResourceNotFound, ErrTooManyRedirects or an *UnparsableError;
// a probe-reported error instead yields an invalid Movie with zero duration.
func (p *Prober) Open(ctx context.Context, path string) (*Movie, error) {
	m := &Movie{path: path, remote: IsRemote(path)}

	if m.remote {
		head, err := p.remote.Head(ctx, path)
		if err != nil {
			return nil, err
		}
		if !head.OK() {
			return nil, fmt.Errorf("%w: url %q is not available (%s)", ErrResourceNotFound, path, describeHead(head))
		}
		m.head = head
	} else if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return nil, fmt.Errorf("%w: file %q does not exist", ErrResourceNotFound, path)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := p.invoker.Invoke(ctx, path)
		if err != nil {
			return nil, err
		}
		md, err := ParseJSON(out.Stdout)
		if err != nil {
			return nil, err
		}

		if md.Error != nil && attempt < maxAttempts {
			p.log.Warn("ffprobe reported %v for %s, probing again", md.Error, path)
			continue
		}

		m.attempts = attempt
		m.populate(md, string(normalizeText(out.Stderr)), p.diag)
		break
	}

	p.log.Debug("probed %s: valid=%v attempts=%d", path, m.valid, m.attempts)
	return m, nil
}

func describeHead(h *RemoteResponse) string {
	if h == nil {
		return "no response"
	}
	return fmt.Sprintf("response code: %d", h.StatusCode)
}

// populate derives every field from one probe pass.
func (m *Movie) populate(md *Metadata, stderr string, diag Diagnostics) {
	f := &md.Format
	m.container = f.FormatName
	m.formatTags = f.Tags
	m.startTime = parseFloat(f.StartTime)
	m.bitrate = parseInt64(f.BitRate)
	m.duration = parseFloat(f.Duration)
	m.creationTime = parseCreationTime(f.Tags["creation_time"])

	m.video, m.audio = Classify(md.Streams)
	m.stderr = stderr
	m.probeErr = md.Error
	if md.Error != nil {
		m.duration = 0
	}

	m.valid = determineValidity(md, stderr, m.video, m.PrimaryAudio(), diag)
}

var creationTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseCreationTime accepts the layouts muxers commonly write. Anything
// else is absent.
func parseCreationTime(s string) Optional[time.Time] {
	s = strings.TrimSpace(s)
	if s == "" {
		return None[time.Time]()
	}
	for _, layout := range creationTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Some(t)
		}
	}
	return None[time.Time]()
}

// --- Container accessors ---

func (m *Movie) Path() string { return m.path }

// Remote reports whether the Movie was opened from an http/https URL.
func (m *Movie) Remote() bool { return m.remote }

// Local is the inverse of Remote.
func (m *Movie) Local() bool { return !m.remote }

// Duration in seconds; 0 when ffprobe reported an error.
func (m *Movie) Duration() float64 { return m.duration }

func (m *Movie) StartTime() float64 { return m.startTime }

// Bitrate is the container bitrate in bits/sec.
func (m *Movie) Bitrate() int64 { return m.bitrate }

func (m *Movie) CreationTime() Optional[time.Time] { return m.creationTime }

// Container is ffprobe's format_name, e.g. "mov,mp4,m4a,3gp,3g2,mj2".
func (m *Movie) Container() string { return m.container }

// FormatTags returns a copy of the container tags (nil when none).
func (m *Movie) FormatTags() map[string]string {
	if m.formatTags == nil {
		return nil
	}
	out := make(map[string]string, len(m.formatTags))
	for k, v := range m.formatTags {
		out[k] = v
	}
	return out
}

// Valid reports whether the resource is usable for transcoding.
func (m *Movie) Valid() bool { return m.valid }

// Attempts is the number of probe passes that ran (1 or 2).
func (m *Movie) Attempts() int { return m.attempts }

// ProbeError is ffprobe's top-level error from the final pass, or nil.
func (m *Movie) ProbeError() *ProbeError { return m.probeErr }

// Stderr is ffprobe's diagnostic output from the final pass.
func (m *Movie) Stderr() string { return m.stderr }

// Size returns the resource size in bytes: the Content-Length seen during
// the remote check, or the current file size for local paths.
func (m *Movie) Size() (int64, error) {
	if m.remote {
		return m.head.ContentLength, nil
	}
	fi, err := os.Stat(m.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
	}
	return fi.Size(), nil
}

// --- Stream accessors ---

// Video returns a copy of the first video stream, or nil.
func (m *Movie) Video() *VideoStream {
	if m.video == nil {
		return nil
	}
	v := *m.video
	return &v
}

// Audio returns a copy of the audio streams in reported order.
func (m *Movie) Audio() []AudioStream {
	return append([]AudioStream(nil), m.audio...)
}

// PrimaryAudio returns the first audio stream, or nil.
func (m *Movie) PrimaryAudio() *AudioStream {
	if len(m.audio) == 0 {
		return nil
	}
	a := m.audio[0]
	return &a
}

// Width is the display-oriented width; 0 without video.
func (m *Movie) Width() int {
	if m.video == nil {
		return 0
	}
	return m.video.Width()
}

// Height is the display-oriented height; 0 without video.
func (m *Movie) Height() int {
	if m.video == nil {
		return 0
	}
	return m.video.Height()
}

// Resolution is "WxH" in display orientation, or "" without video.
func (m *Movie) Resolution() string {
	if m.video == nil {
		return ""
	}
	return m.video.Resolution()
}

// CalculatedAspectRatio is the display aspect ratio corrected for rotation,
// falling back to Width/Height.
func (m *Movie) CalculatedAspectRatio() Optional[float64] {
	if m.video == nil {
		return None[float64]()
	}
	return m.video.AspectRatio()
}

// CalculatedPixelAspectRatio is the sample aspect ratio, defaulting to 1.
func (m *Movie) CalculatedPixelAspectRatio() float64 {
	if m.video == nil {
		return 1
	}
	return m.video.PixelAspectRatio()
}

// FrameRate of the video stream; absent without video or for "0/0".
func (m *Movie) FrameRate() Optional[Rational] {
	if m.video == nil {
		return None[Rational]()
	}
	return m.video.FrameRate
}

// Rotation of the video stream in degrees, when reported.
func (m *Movie) Rotation() Optional[int] {
	if m.video == nil {
		return None[int]()
	}
	return m.video.Rotation
}

// VideoCodec is the video codec name, or "".
func (m *Movie) VideoCodec() string {
	if m.video == nil {
		return ""
	}
	return m.video.CodecName
}

// AudioCodec is the primary audio codec name, or "".
func (m *Movie) AudioCodec() string {
	if len(m.audio) == 0 {
		return ""
	}
	return m.audio[0].CodecName
}
