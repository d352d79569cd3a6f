package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/muxprobe/internal/probe"
)

// Preset is a named video filter graph applied before any scaling.
type Preset struct {
	Name   string
	Filter string
}

func (p Preset) String() string { return p.Name }

// Named filter-graph presets.
var (
	// PresetPad pads odd coded dimensions up to the next even size, which
	// 4:2:0 encoders require.
	PresetPad = Preset{"pad", "pad=ceil(iw/2)*2:ceil(ih/2)*2"}

	// PresetNormalizeDAR resamples anamorphic video to square pixels so the
	// stored size matches the display aspect ratio.
	PresetNormalizeDAR = Preset{"normalize-dar", "scale=trunc(iw*sar/2)*2:ih,setsar=1"}

	// PresetTonemap converts HDR10/HLG to SDR bt709 with zscale and the
	// hable curve.
	PresetTonemap = Preset{"tonemap", "zscale=t=linear:npl=100,format=gbrpf32le,zscale=p=bt709," +
		"tonemap=tonemap=hable:desat=0," +
		"zscale=t=bt709:m=bt709:r=tv,format=yuv420p"}

	// PresetDeinterlace runs yadif on frames flagged as interlaced only.
	PresetDeinterlace = Preset{"deinterlace", "yadif=mode=send_frame:parity=auto:deint=interlaced"}
)

// Presets lists every named preset, in the order they are documented.
var Presets = []Preset{PresetPad, PresetNormalizeDAR, PresetTonemap, PresetDeinterlace}

// PresetByName looks up a preset by its Name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ParsePresets resolves names in order. Unknown names are an error.
func ParsePresets(names []string) ([]Preset, error) {
	var out []Preset
	for _, n := range names {
		p, ok := PresetByName(strings.ToLower(strings.TrimSpace(n)))
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", n)
		}
		out = mergePresets(out, []Preset{p})
	}
	return out, nil
}

// PresetsFor returns the presets a video stream needs to render correctly
// as SDR progressive frames: deinterlace for interlaced field orders, then
// tonemap for HDR colour metadata. A nil stream needs none.
func PresetsFor(v *probe.VideoStream) []Preset {
	if v == nil {
		return nil
	}
	var out []Preset
	if v.Interlaced() {
		out = append(out, PresetDeinterlace)
	}
	if v.HDR() {
		out = append(out, PresetTonemap)
	}
	return out
}

// mergePresets returns a new slice of base followed by the extra presets
// base does not already name.
func mergePresets(base, extra []Preset) []Preset {
	out := make([]Preset, 0, len(base)+len(extra))
	out = append(out, base...)
	for _, p := range extra {
		dup := false
		for _, q := range out {
			if q.Name == p.Name {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// AspectMode controls how Resolution is reconciled with the source aspect.
type AspectMode int

const (
	AspectStretch    AspectMode = iota // Use Resolution as given.
	AspectKeepWidth                    // Keep the requested width, derive the height.
	AspectKeepHeight                   // Keep the requested height, derive the width.
)

// Options describes one transcode. Zero values leave the choice to ffmpeg.
type Options struct {
	VideoCodec      string
	AudioCodec      string
	Resolution      string  // "WxH".
	Aspect          AspectMode
	VideoBitrate    int     // kbit/s.
	AudioBitrate    int     // kbit/s.
	AudioSampleRate int     // Hz.
	AudioChannels   int
	FrameRate       float64
	Seek            float64 // Seconds; also the screenshot position.
	Duration        float64 // Seconds of output; 0 for the whole input.
	Presets         []Preset
	CustomArgs      []string // Appended verbatim before the output path.
}

// parseResolution splits "WxH" into positive integers.
func parseResolution(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid resolution %q (want WxH)", s)
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution %q (want WxH)", s)
	}
	return w, h, nil
}
