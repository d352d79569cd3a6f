package probe

import (
	"strconv"
	"strings"
)

// VideoStream holds the parsed properties of the first reported video stream.
// StoredWidth/StoredHeight are the coded dimensions (StoredWidth already
// reconciled with the display aspect ratio); use Width and Height for the
// display-oriented values.
type VideoStream struct {
	Index              int
	CodecName          string
	Profile            string
	PixelFormat        string
	CodecTagString     string
	CodecTag           string
	StoredWidth        int
	StoredHeight       int
	SampleAspectRatio  Optional[string]
	DisplayAspectRatio Optional[string]
	Bitrate            int64
	FrameRate          Optional[Rational]
	Rotation           Optional[int]
	FieldOrder         string
	ColorTransfer      string
	ColorPrimaries     string
	ColorSpace         string
	Tags               map[string]string
	Overview           string
}

// AudioStream holds the parsed properties of a single audio stream.
// ChannelLayout is what ffprobe reported; Layout applies the legacy fallback.
type AudioStream struct {
	Index          int
	CodecName      string
	CodecTagString string
	CodecTag       string
	SampleFmt      string
	Channels       int
	SampleRate     int
	Bitrate        int64
	ChannelLayout  Optional[string]
	Tags           map[string]string
	Overview       string
}

// quarterTurn reports whether the rotation swaps the displayed axes.
func (v *VideoStream) quarterTurn() bool {
	r, ok := v.Rotation.Get()
	if !ok {
		return false
	}
	if r < 0 {
		r = -r
	}
	return r == 90 || r == 270
}

// Width is the displayed width: StoredHeight for a ±90/±270 rotation,
// StoredWidth otherwise.
func (v *VideoStream) Width() int {
	if v.quarterTurn() {
		return v.StoredHeight
	}
	return v.StoredWidth
}

// Height is the displayed height; see Width.
func (v *VideoStream) Height() int {
	if v.quarterTurn() {
		return v.StoredWidth
	}
	return v.StoredHeight
}

// Resolution returns "WxH" in display orientation.
func (v *VideoStream) Resolution() string {
	return strconv.Itoa(v.Width()) + "x" + strconv.Itoa(v.Height())
}

// AspectRatio prefers the display aspect ratio, inverted for a quarter-turn
// rotation, and falls back to Width/Height. Absent when neither yields a
// finite number.
func (v *VideoStream) AspectRatio() Optional[float64] {
	if dar, ok := parseAspect(v.DisplayAspectRatio.OrElse("")).Get(); ok {
		if v.quarterTurn() {
			return Some(1 / dar)
		}
		return Some(dar)
	}
	return finite(float64(v.Width()) / float64(v.Height()))
}

// PixelAspectRatio is the sample aspect ratio, or 1 when it is absent,
// malformed, or has a zero component.
func (v *VideoStream) PixelAspectRatio() float64 {
	return parseAspect(v.SampleAspectRatio.OrElse("")).OrElse(1)
}

// HDR reports whether the stream carries HDR colour metadata: a PQ or HLG
// transfer, or bt2020 primaries.
func (v *VideoStream) HDR() bool {
	switch v.ColorTransfer {
	case "smpte2084", "arib-std-b67":
		return true
	}
	return v.ColorPrimaries == "bt2020"
}

// Interlaced reports whether field_order is tt, bb, tb or bt.
func (v *VideoStream) Interlaced() bool {
	switch strings.ToLower(strings.TrimSpace(v.FieldOrder)) {
	case "tt", "bb", "tb", "bt":
		return true
	}
	return false
}

// Layout returns the reported channel layout, or for ffprobe builds that
// omit the field, a layout inferred from the channel count.
func (a *AudioStream) Layout() string {
	if l, ok := a.ChannelLayout.Get(); ok {
		return l
	}
	return legacyChannelLayout(a.Channels)
}

// legacyChannelLayout maps 1 and 2 channels to "stereo" and 6 to "5.1".
// Mono is reported as "stereo" to stay compatible with existing consumers.
func legacyChannelLayout(channels int) string {
	switch channels {
	case 1, 2:
		return "stereo"
	case 6:
		return "5.1"
	default:
		return "unknown"
	}
}
