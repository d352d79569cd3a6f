package ffmpeg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/backmassage/muxprobe/internal/probe"
)

// Build constructs the ffmpeg argument slice (without the binary) that
// turns m into output. In screenshot mode a single frame is written as an
// image at opts.Seek; otherwise a full transcode honoring opts is produced.
func Build(m *probe.Movie, output string, opts Options, screenshot bool) ([]string, error) {
	args := make([]string, 0, 48)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	// --- Input seek (fast seek before -i) ---
	if seek := seekFor(m, opts, screenshot); seek > 0 {
		args = append(args, "-ss", formatSeconds(seek))
	}

	// --- Input ---
	args = append(args, "-i", m.Path())

	// --- Video filter chain ---
	filters, err := videoFilters(m, opts)
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	if screenshot {
		args = append(args, "-an", "-vframes", "1", "-f", "image2", "-q:v", "2")
		args = append(args, opts.CustomArgs...)
		return append(args, output), nil
	}

	// --- Video codec ---
	if m.Video() == nil {
		args = append(args, "-vn")
	} else {
		if opts.VideoCodec != "" {
			args = append(args, "-c:v", opts.VideoCodec)
		}
		if opts.VideoBitrate > 0 {
			args = append(args, "-b:v", strconv.Itoa(opts.VideoBitrate)+"k")
		}
		if opts.FrameRate > 0 {
			args = append(args, "-r", strconv.FormatFloat(opts.FrameRate, 'f', -1, 64))
		}
	}

	// --- Audio codec ---
	if m.PrimaryAudio() == nil {
		args = append(args, "-an")
	} else {
		if opts.AudioCodec != "" {
			args = append(args, "-c:a", opts.AudioCodec)
		}
		if opts.AudioBitrate > 0 {
			args = append(args, "-b:a", strconv.Itoa(opts.AudioBitrate)+"k")
		}
		if opts.AudioSampleRate > 0 {
			args = append(args, "-ar", strconv.Itoa(opts.AudioSampleRate))
		}
		if opts.AudioChannels > 0 {
			args = append(args, "-ac", strconv.Itoa(opts.AudioChannels))
		}
	}

	if opts.Duration > 0 {
		args = append(args, "-t", formatSeconds(opts.Duration))
	}

	// --- Metadata ---
	args = append(args, "-map_metadata", "0")

	args = append(args, opts.CustomArgs...)
	return append(args, output), nil
}

// seekFor returns the input seek. A screenshot position past the end of the
// movie falls back to its midpoint so a frame is always produced.
func seekFor(m *probe.Movie, opts Options, screenshot bool) float64 {
	seek := opts.Seek
	if screenshot && m.Duration() > 0 && seek >= m.Duration() {
		seek = m.Duration() / 2
	}
	return seek
}

// videoFilters returns the preset filters followed by the scale filter for
// opts.Resolution.
func videoFilters(m *probe.Movie, opts Options) ([]string, error) {
	if m.Video() == nil {
		return nil, nil
	}
	filters := make([]string, 0, len(opts.Presets)+1)
	for _, p := range opts.Presets {
		filters = append(filters, p.Filter)
	}
	if opts.Resolution == "" {
		return filters, nil
	}

	w, h, err := parseResolution(opts.Resolution)
	if err != nil {
		return nil, err
	}
	w, h = fitAspect(w, h, opts.Aspect, m.CalculatedAspectRatio())
	return append(filters, fmt.Sprintf("scale=%d:%d", w, h)), nil
}

// fitAspect derives the free dimension from the source aspect ratio,
// rounded to an even number. Without a known ratio the size is kept as is.
func fitAspect(w, h int, mode AspectMode, ratio probe.Optional[float64]) (int, int) {
	ar, ok := ratio.Get()
	if !ok || ar <= 0 {
		return w, h
	}
	switch mode {
	case AspectKeepWidth:
		h = evenRound(float64(w) / ar)
	case AspectKeepHeight:
		w = evenRound(float64(h) * ar)
	}
	return w, h
}

// evenRound rounds x to the nearest even integer, never below 2.
func evenRound(x float64) int {
	n := int(math.Round(x/2)) * 2
	if n < 2 {
		return 2
	}
	return n
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
