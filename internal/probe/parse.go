package probe

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ParseJSON decodes raw ffprobe stdout into Metadata. Output that is not
// valid UTF-8 (tags written by legacy muxers) is first read as ISO-8859-1 so
// decoding never fails mid-document on a stray byte. On failure the returned
// error is an *UnparsableError holding the original bytes.
func ParseJSON(raw []byte) (*Metadata, error) {
	text := normalizeText(raw)
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, &UnparsableError{Raw: string(raw), Err: errors.New("empty output")}
	}

	var md Metadata
	if err := json.Unmarshal(text, &md); err != nil {
		return nil, &UnparsableError{Raw: string(raw), Err: err}
	}
	return &md, nil
}

// normalizeText returns b unchanged when it is valid UTF-8, otherwise the
// ISO-8859-1 reading of b re-encoded as UTF-8. Every byte maps to one rune
// in ISO-8859-1, so the conversion cannot fail.
func normalizeText(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return bytes.ToValidUTF8(b, []byte("�"))
	}
	return out
}
