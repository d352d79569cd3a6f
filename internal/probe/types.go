package probe

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// --- ffprobe JSON wire types ---

// Metadata is the decoded ffprobe document: container fields, the ordered
// stream list, and the top-level error object emitted by -show_error.
type Metadata struct {
	Format  RawFormat   `json:"format"`
	Streams []RawStream `json:"streams"`
	Error   *ProbeError `json:"error,omitempty"`
}

// ProbeError is ffprobe's top-level error object.
type ProbeError struct {
	Code   int    `json:"code"`
	String string `json:"string"`
}

func (e *ProbeError) Error() string {
	return "ffprobe error " + strconv.Itoa(e.Code) + ": " + e.String
}

// RawFormat is the "format" section. ffprobe reports numbers as strings.
type RawFormat struct {
	Filename       string            `json:"filename"`
	NbStreams      int               `json:"nb_streams"`
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	StartTime      string            `json:"start_time"`
	Duration       string            `json:"duration"`
	Size           string            `json:"size"`
	BitRate        string            `json:"bit_rate"`
	Tags           map[string]string `json:"tags"`
}

// RawStream is one entry of the "streams" list. Fields are shared between
// stream types; those that do not apply are left empty by ffprobe.
type RawStream struct {
	Index              int               `json:"index"`
	CodecName          string            `json:"codec_name"`
	CodecLongName      string            `json:"codec_long_name"`
	CodecType          string            `json:"codec_type"`
	CodecTagString     string            `json:"codec_tag_string"`
	CodecTag           string            `json:"codec_tag"`
	Profile            string            `json:"profile"`
	PixFmt             string            `json:"pix_fmt"`
	Width              int               `json:"width"`
	Height             int               `json:"height"`
	SampleAspectRatio  string            `json:"sample_aspect_ratio"`
	DisplayAspectRatio string            `json:"display_aspect_ratio"`
	FieldOrder         string            `json:"field_order"`
	ColorTransfer      string            `json:"color_transfer"`
	ColorPrimaries     string            `json:"color_primaries"`
	ColorSpace         string            `json:"color_space"`
	AvgFrameRate       string            `json:"avg_frame_rate"`
	RFrameRate         string            `json:"r_frame_rate"`
	BitRate            looseString       `json:"bit_rate"`
	SampleFmt          string            `json:"sample_fmt"`
	SampleRate         looseString       `json:"sample_rate"`
	Channels           int               `json:"channels"`
	ChannelLayout      *string           `json:"channel_layout"`
	Disposition        map[string]int    `json:"disposition"`
	Tags               map[string]string `json:"tags"`
	SideDataList       []RawSideData     `json:"side_data_list"`
}

// RawSideData is one side-data block. Only rotation is consumed.
type RawSideData struct {
	SideDataType string    `json:"side_data_type"`
	Rotation     *looseInt `json:"rotation"`
}

// looseString accepts a JSON string or number and keeps its text form.
// Older ffprobe builds emit some numeric fields unquoted.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}
	*s = looseString(b)
	return nil
}

// looseInt accepts a JSON number or numeric string.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = looseInt(parseInt(string(s)))
	return nil
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// "-90.00" style values from side data
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int64(f)
	}
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt(s string) int {
	return int(parseInt64(s))
}
