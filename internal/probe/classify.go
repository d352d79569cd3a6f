package probe

import (
	"fmt"
	"math"
	"strings"
)

// Classify partitions streams by codec_type. The first video stream wins;
// every audio stream is kept in reported order, the first being primary.
func Classify(streams []RawStream) (*VideoStream, []AudioStream) {
	var video *VideoStream
	var audio []AudioStream

	for i := range streams {
		s := &streams[i]
		switch s.CodecType {
		case "video":
			if video == nil {
				video = newVideoStream(s)
			}
		case "audio":
			audio = append(audio, newAudioStream(s))
		}
	}
	return video, audio
}

func newVideoStream(s *RawStream) *VideoStream {
	v := &VideoStream{
		Index:              s.Index,
		CodecName:          s.CodecName,
		Profile:            s.Profile,
		PixelFormat:        s.PixFmt,
		CodecTagString:     s.CodecTagString,
		CodecTag:           s.CodecTag,
		StoredWidth:        s.Width,
		StoredHeight:       s.Height,
		SampleAspectRatio:  presentString(s.SampleAspectRatio),
		DisplayAspectRatio: presentString(s.DisplayAspectRatio),
		Bitrate:            parseInt64(string(s.BitRate)),
		FrameRate:          frameRateOf(s),
		Rotation:           rotationOf(s),
		FieldOrder:         s.FieldOrder,
		ColorTransfer:      s.ColorTransfer,
		ColorPrimaries:     s.ColorPrimaries,
		ColorSpace:         s.ColorSpace,
		Tags:               s.Tags,
	}

	// The coded width is unreliable for anamorphic content; derive it from
	// the height and the display aspect ratio when one is reported.
	if dar, ok := parseAspect(s.DisplayAspectRatio).Get(); ok && s.Height > 0 {
		v.StoredWidth = int(math.Round(float64(s.Height) * dar))
	}

	v.Overview = fmt.Sprintf("%s (%s) (%s / %s), %s, %s",
		v.CodecName, v.Profile, v.CodecTagString, v.CodecTag, v.PixelFormat,
		v.Resolution()) + aspectGroup(v.SampleAspectRatio, v.DisplayAspectRatio)
	return v
}

// aspectGroup renders " [SAR x DAR y]" with only the reported ratios, or
// nothing when neither is reported.
func aspectGroup(sar, dar Optional[string]) string {
	var parts []string
	if s, ok := sar.Get(); ok {
		parts = append(parts, "SAR "+s)
	}
	if d, ok := dar.Get(); ok {
		parts = append(parts, "DAR "+d)
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func newAudioStream(s *RawStream) AudioStream {
	a := AudioStream{
		Index:          s.Index,
		CodecName:      s.CodecName,
		CodecTagString: s.CodecTagString,
		CodecTag:       s.CodecTag,
		SampleFmt:      s.SampleFmt,
		Channels:       s.Channels,
		SampleRate:     parseInt(string(s.SampleRate)),
		Bitrate:        parseInt64(string(s.BitRate)),
		Tags:           s.Tags,
	}
	if s.ChannelLayout != nil {
		a.ChannelLayout = Some(*s.ChannelLayout)
	}

	a.Overview = fmt.Sprintf("%s (%s / %s), %d Hz, %s, %s, %d bit/s",
		a.CodecName, a.CodecTagString, a.CodecTag, a.SampleRate,
		a.Layout(), a.SampleFmt, a.Bitrate)
	return a
}

// frameRateOf reads avg_frame_rate, or r_frame_rate when avg is missing.
// "0/0" is absent.
func frameRateOf(s *RawStream) Optional[Rational] {
	if strings.TrimSpace(s.AvgFrameRate) != "" {
		return parseRational(s.AvgFrameRate)
	}
	return parseRational(s.RFrameRate)
}

// rotationOf reads the "rotate" stream tag, then the first side-data entry.
func rotationOf(s *RawStream) Optional[int] {
	if tag, ok := s.Tags["rotate"]; ok {
		return Some(parseInt(tag))
	}
	if len(s.SideDataList) > 0 && s.SideDataList[0].Rotation != nil {
		return Some(int(*s.SideDataList[0].Rotation))
	}
	return None[int]()
}

func presentString(s string) Optional[string] {
	if strings.TrimSpace(s) == "" {
		return None[string]()
	}
	return Some(s)
}
