package probe

import "context"

// Transcoder turns a probed Movie into an output file. Implementations own
// their option types and bind them at construction; screenshot asks for a
// single frame instead of a full encode.
type Transcoder interface {
	Transcode(ctx context.Context, m *Movie, output string, screenshot bool) error
}

// Transcode hands the Movie to t for a full encode into output.
func (m *Movie) Transcode(ctx context.Context, t Transcoder, output string) error {
	return t.Transcode(ctx, m, output, false)
}

// Screenshot hands the Movie to t to extract a single frame into output.
func (m *Movie) Screenshot(ctx context.Context, t Transcoder, output string) error {
	return t.Transcode(ctx, m, output, true)
}
