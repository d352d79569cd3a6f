package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_LocalPhone(t *testing.T) {
	path := mediaFile(t, "phone.mp4")
	inv := replay(samplePhone)

	m, err := New(Config{Invoker: inv}).Open(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, m.Path())
	assert.True(t, m.Local())
	assert.False(t, m.Remote())
	assert.True(t, m.Valid())
	assert.Equal(t, 1, m.Attempts())
	assert.Nil(t, m.ProbeError())
	assert.InDelta(t, 7.574, m.Duration(), 1e-9)
	assert.InDelta(t, 0.0, m.StartTime(), 1e-9)
	assert.Equal(t, int64(17150000), m.Bitrate())
	assert.Equal(t, "mov,mp4,m4a,3gp,3g2,mj2", m.Container())
	assert.Equal(t, "qt  ", m.FormatTags()["major_brand"])

	ct, ok := m.CreationTime().Get()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 17, 9, 12, 44, 0, time.UTC), ct)

	assert.Equal(t, 1080, m.Width())
	assert.Equal(t, 1920, m.Height())
	assert.Equal(t, "1080x1920", m.Resolution())
	ar, ok := m.CalculatedAspectRatio().Get()
	require.True(t, ok)
	assert.InDelta(t, 0.5625, ar, 1e-9)
	assert.InDelta(t, 1.0, m.CalculatedPixelAspectRatio(), 1e-9)
	assert.Equal(t, Some(90), m.Rotation())
	assert.Equal(t, Some(Rational{30000, 1001}), m.FrameRate())
	assert.Equal(t, "h264", m.VideoCodec())
	assert.Equal(t, "aac", m.AudioCodec())
	require.NotNil(t, m.PrimaryAudio())
	assert.Equal(t, 48000, m.PrimaryAudio().SampleRate)

	size, err := m.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(len("not really media")), size)

	assert.Equal(t, []string{path}, inv.paths)
}

func TestOpen_AudioOnly(t *testing.T) {
	m, err := New(Config{Invoker: replay(sampleAudioOnly)}).Open(context.Background(), mediaFile(t, "voice.mp3"))
	require.NoError(t, err)

	assert.True(t, m.Valid())
	assert.Nil(t, m.Video())
	assert.Equal(t, 0, m.Width())
	assert.Equal(t, "", m.Resolution())
	assert.False(t, m.CalculatedAspectRatio().Present())
	assert.Equal(t, 1.0, m.CalculatedPixelAspectRatio())
	assert.False(t, m.FrameRate().Present())
	assert.Equal(t, "stereo", m.PrimaryAudio().Layout())
	assert.False(t, m.CreationTime().Present())
}

func TestOpen_MissingFileNeverProbes(t *testing.T) {
	inv := replay(samplePhone)

	_, err := New(Config{Invoker: inv}).Open(context.Background(), "/nonexistent/movie.mp4")
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Equal(t, 0, inv.Calls())
}

func TestOpen_DirectoryIsNotFound(t *testing.T) {
	inv := replay(samplePhone)

	_, err := New(Config{Invoker: inv}).Open(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Equal(t, 0, inv.Calls())
}

func TestOpen_RetriesOnceThenRecovers(t *testing.T) {
	inv := replay(sampleError, samplePhone)

	m, err := New(Config{Invoker: inv}).Open(context.Background(), mediaFile(t, "flaky.mp4"))
	require.NoError(t, err)

	assert.Equal(t, 2, inv.Calls())
	assert.Equal(t, 2, m.Attempts())
	assert.True(t, m.Valid())
	assert.Nil(t, m.ProbeError())
	assert.InDelta(t, 7.574, m.Duration(), 1e-9)
}

func TestOpen_PersistentProbeErrorDegrades(t *testing.T) {
	inv := replay(sampleError, sampleError, samplePhone)

	m, err := New(Config{Invoker: inv}).Open(context.Background(), mediaFile(t, "broken.mp4"))
	require.NoError(t, err, "a probe-reported error is not a Go error")

	assert.Equal(t, 2, inv.Calls(), "exactly one retry")
	assert.Equal(t, 2, m.Attempts())
	assert.False(t, m.Valid())
	assert.Equal(t, 0.0, m.Duration())
	require.NotNil(t, m.ProbeError())
	assert.Equal(t, "Invalid data found when processing input", m.ProbeError().String)
}

func TestOpen_ErrorFieldForcesZeroDuration(t *testing.T) {
	withError := `{"error":{"code":-5,"string":"I/O error"},"format":{"duration":"42.0","format_name":"mp4"},"streams":[{"index":0,"codec_type":"video","width":2,"height":2}]}`

	m, err := New(Config{Invoker: replay(withError)}).Open(context.Background(), mediaFile(t, "partial.mp4"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Duration())
	assert.False(t, m.Valid())
	assert.Equal(t, "mp4", m.Container())
}

func TestOpen_UnsupportedVideoWithoutAudioIsInvalid(t *testing.T) {
	stdout := `{"format":{"format_name":"mpegts","duration":"10.0"},"streams":[{"index":0,"codec_type":"video","codec_name":"h264","width":640,"height":480}]}`
	inv := &fakeInvoker{outputs: []Output{{Stdout: []byte(stdout), Stderr: []byte(stderrUnsupported0)}}}

	m, err := New(Config{Invoker: inv}).Open(context.Background(), mediaFile(t, "x.ts"))
	require.NoError(t, err)
	assert.False(t, m.Valid())
	assert.Equal(t, 1, m.Attempts())
	assert.Contains(t, m.Stderr(), "Unsupported codec with id 27")
}

func TestOpen_CodecParamsMissingIsInvalid(t *testing.T) {
	inv := &fakeInvoker{outputs: []Output{{
		Stdout: []byte(samplePhone),
		Stderr: []byte("[mov,mp4 @ 0x1] Could not find codec parameters for stream 0 (Video: h264): unspecified size\n"),
	}}}

	m, err := New(Config{Invoker: inv}).Open(context.Background(), mediaFile(t, "p.mp4"))
	require.NoError(t, err)
	assert.False(t, m.Valid())
}

func TestOpen_Unparsable(t *testing.T) {
	_, err := New(Config{Invoker: replay("ffprobe: not json")}).Open(context.Background(), mediaFile(t, "a.mp4"))

	var ue *UnparsableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "ffprobe: not json", ue.Raw)
}

func TestOpen_InvokerFailure(t *testing.T) {
	inv := &fakeInvoker{err: errors.New("exec: \"ffprobe\": executable file not found in $PATH")}

	_, err := New(Config{Invoker: inv}).Open(context.Background(), mediaFile(t, "a.mp4"))
	assert.ErrorContains(t, err, "executable file not found")
}

func TestOpen_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old.mp4":
			http.Redirect(w, r, "/movie.mp4", http.StatusMovedPermanently)
		case "/movie.mp4":
			w.Header().Set("Content-Length", "16237212")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	inv := replay(samplePhone)
	p := New(Config{Invoker: inv, HTTPClient: srv.Client()})

	m, err := p.Open(context.Background(), srv.URL+"/old.mp4")
	require.NoError(t, err)
	assert.True(t, m.Remote())
	assert.True(t, m.Valid())
	size, err := m.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(16237212), size)
	assert.Equal(t, []string{srv.URL + "/old.mp4"}, inv.paths)

	_, err = p.Open(context.Background(), srv.URL+"/gone.mp4")
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Equal(t, 1, inv.Calls(), "no probe for a missing URL")
}

func TestOpen_RemoteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/movie.mp4"
	srv.Close()

	inv := replay(samplePhone)
	_, err := New(Config{Invoker: inv}).Open(context.Background(), url)
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Equal(t, 0, inv.Calls())
}

func TestOpen_RemoteTooManyRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	_, err := New(Config{Invoker: replay(samplePhone), MaxRedirects: 2}).Open(context.Background(), srv.URL+"/a")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestOpen_ConcurrentProbesAreIndependent(t *testing.T) {
	p := New(Config{Invoker: replay(samplePhone)})
	phone := mediaFile(t, "phone.mp4")

	var wg sync.WaitGroup
	movies := make([]*Movie, 8)
	for i := range movies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := p.Open(context.Background(), phone)
			assert.NoError(t, err)
			movies[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range movies {
		require.NotNil(t, m)
		assert.Equal(t, "1080x1920", m.Resolution())
	}
}

func TestMovie_AccessorsReturnCopies(t *testing.T) {
	m, err := New(Config{Invoker: replay(samplePhone)}).Open(context.Background(), mediaFile(t, "phone.mp4"))
	require.NoError(t, err)

	m.Video().StoredWidth = 1
	m.Audio()[0].CodecName = "mp3"
	m.FormatTags()["major_brand"] = "isom"

	assert.Equal(t, 1920, m.Video().StoredWidth)
	assert.Equal(t, "aac", m.AudioCodec())
	assert.Equal(t, "qt  ", m.FormatTags()["major_brand"])
}

func TestMovie_SizeAfterLocalFileRemoved(t *testing.T) {
	path := mediaFile(t, "gone.mp4")
	m, err := New(Config{Invoker: replay(samplePhone)}).Open(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	_, err = m.Size()
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestParseCreationTime(t *testing.T) {
	cases := map[string]bool{
		"2024-05-17T09:12:44.000000Z": true,
		"2024-05-17T09:12:44Z":        true,
		"2024-05-17 09:12:44":         true,
		"2024-05-17":                  true,
		"yesterday":                   false,
		"":                            false,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseCreationTime(in).Present(), in)
	}
}

type recordingTranscoder struct {
	output     string
	screenshot bool
	movie      *Movie
}

func (r *recordingTranscoder) Transcode(_ context.Context, m *Movie, output string, screenshot bool) error {
	r.movie, r.output, r.screenshot = m, output, screenshot
	return nil
}

func TestMovie_TranscodeBridge(t *testing.T) {
	m, err := New(Config{Invoker: replay(samplePhone)}).Open(context.Background(), mediaFile(t, "phone.mp4"))
	require.NoError(t, err)

	rt := &recordingTranscoder{}
	require.NoError(t, m.Transcode(context.Background(), rt, "out.mkv"))
	assert.Equal(t, "out.mkv", rt.output)
	assert.False(t, rt.screenshot)
	assert.Same(t, m, rt.movie)

	require.NoError(t, m.Screenshot(context.Background(), rt, "thumb.jpg"))
	assert.Equal(t, "thumb.jpg", rt.output)
	assert.True(t, rt.screenshot)
}
