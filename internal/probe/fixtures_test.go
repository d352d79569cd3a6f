package probe

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Realistic ffprobe -show_format -show_streams -show_error output for a
// phone recording: H.264 1920x1080 rotated by 90° through the legacy
// "rotate" tag, plus one AAC stereo track.
const samplePhone = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_long_name": "H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10",
      "profile": "High",
      "codec_type": "video",
      "codec_tag_string": "avc1",
      "codec_tag": "0x31637661",
      "width": 1920,
      "height": 1080,
      "sample_aspect_ratio": "1:1",
      "display_aspect_ratio": "16:9",
      "pix_fmt": "yuv420p",
      "field_order": "progressive",
      "r_frame_rate": "30/1",
      "avg_frame_rate": "30000/1001",
      "bit_rate": "16951148",
      "disposition": { "default": 1, "attached_pic": 0 },
      "tags": { "rotate": "90", "language": "und" }
    },
    {
      "index": 1,
      "codec_name": "aac",
      "profile": "LC",
      "codec_type": "audio",
      "codec_tag_string": "mp4a",
      "codec_tag": "0x6134706d",
      "sample_fmt": "fltp",
      "sample_rate": "48000",
      "channels": 2,
      "channel_layout": "stereo",
      "bit_rate": "192000",
      "disposition": { "default": 1 },
      "tags": { "language": "eng" }
    }
  ],
  "format": {
    "filename": "phone.mp4",
    "nb_streams": 2,
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "format_long_name": "QuickTime / MOV",
    "start_time": "0.000000",
    "duration": "7.574000",
    "size": "16237212",
    "bit_rate": "17150000",
    "tags": {
      "major_brand": "qt  ",
      "creation_time": "2024-05-17T09:12:44.000000Z"
    }
  }
}`

// Newer ffprobe: rotation only in side data, no channel_layout on an old
// 6-channel track, and an unknown frame rate.
const sampleSideData = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "hevc",
      "profile": "Main",
      "codec_type": "video",
      "codec_tag_string": "hvc1",
      "codec_tag": "0x31637668",
      "width": 3840,
      "height": 2160,
      "pix_fmt": "yuv420p10le",
      "color_transfer": "arib-std-b67",
      "avg_frame_rate": "0/0",
      "r_frame_rate": "0/0",
      "side_data_list": [
        { "side_data_type": "Display Matrix", "displaymatrix": "...", "rotation": -90 }
      ]
    },
    {
      "index": 1,
      "codec_name": "ac3",
      "codec_type": "audio",
      "sample_fmt": "fltp",
      "sample_rate": "48000",
      "channels": 6,
      "bit_rate": "N/A"
    }
  ],
  "format": {
    "filename": "clip.mov",
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "start_time": "0.021333",
    "duration": "12.500000",
    "bit_rate": "40000000"
  }
}`

// Audio-only file.
const sampleAudioOnly = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mp3",
      "codec_type": "audio",
      "sample_fmt": "fltp",
      "sample_rate": "44100",
      "channels": 1,
      "bit_rate": "128000"
    }
  ],
  "format": {
    "filename": "voice.mp3",
    "format_name": "mp3",
    "duration": "61.2",
    "bit_rate": "128000"
  }
}`

// What ffprobe prints for a file it cannot open.
const sampleError = `{
  "error": {
    "code": -1094995529,
    "string": "Invalid data found when processing input"
  }
}`

// fakeInvoker replays canned outputs; the last one repeats.
type fakeInvoker struct {
	mu      sync.Mutex
	outputs []Output
	err     error
	calls   int
	paths   []string
}

func (f *fakeInvoker) Invoke(_ context.Context, path string) (Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.paths = append(f.paths, path)
	if f.err != nil {
		return Output{}, f.err
	}
	if i >= len(f.outputs) {
		i = len(f.outputs) - 1
	}
	return f.outputs[i], nil
}

func (f *fakeInvoker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func replay(stdout ...string) *fakeInvoker {
	f := &fakeInvoker{}
	for _, s := range stdout {
		f.outputs = append(f.outputs, Output{Stdout: []byte(s)})
	}
	return f
}

// mediaFile creates an empty file standing in for a local resource.
func mediaFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("not really media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func mustParse(t *testing.T, s string) *Metadata {
	t.Helper()
	md, err := ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	return md
}
