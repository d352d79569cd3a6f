package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/muxprobe/internal/config"
	"github.com/backmassage/muxprobe/internal/display"
	"github.com/backmassage/muxprobe/internal/term"
)

// WriteReport renders rep to w in the given format.
func WriteReport(w io.Writer, format config.OutputFormat, rep *Report) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatText, "":
		return writeText(w, rep)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// writeText prints one block per resource and a closing summary line.
func writeText(w io.Writer, rep *Report) error {
	var b strings.Builder
	for i := range rep.Results {
		r := &rep.Results[i]
		switch r.Status {
		case StatusValid:
			fmt.Fprintf(&b, "%sVALID%s    %s\n", term.Green, term.NC, r.Input)
		case StatusInvalid:
			fmt.Fprintf(&b, "%sINVALID%s  %s\n", term.Yellow, term.NC, r.Input)
		default:
			fmt.Fprintf(&b, "%sFAILED%s   %s\n", term.Red, term.NC, r.Input)
			fmt.Fprintf(&b, "         %s\n", r.Error)
			continue
		}

		fields := []string{r.Container, display.FormatDuration(r.Duration)}
		if r.Resolution != "" {
			fields = append(fields, r.Resolution)
		}
		if r.HDR {
			fields = append(fields, "HDR")
		}
		if r.Interlaced {
			fields = append(fields, "interlaced")
		}
		if r.Bitrate > 0 {
			fields = append(fields, display.FormatBitrateLabel(r.Bitrate))
		}
		if r.Size > 0 {
			fields = append(fields, display.FormatBytes(r.Size))
		}
		if r.Attempts > 1 {
			fields = append(fields, fmt.Sprintf("%d attempts", r.Attempts))
		}
		fmt.Fprintf(&b, "         %s\n", strings.Join(fields, " | "))
		if r.Error != "" {
			fmt.Fprintf(&b, "         %s\n", r.Error)
		}
		if r.Video != "" {
			fmt.Fprintf(&b, "         video: %s\n", r.Video)
		}
		for _, a := range r.Audio {
			fmt.Fprintf(&b, "         audio: %s\n", a)
		}
		if r.Screenshot != "" {
			fmt.Fprintf(&b, "         screenshot: %s\n", r.Screenshot)
		}
	}
	fmt.Fprintf(&b, "\n%s%s%s\n", term.Cyan, rep.Stats, term.NC)
	_, err := io.WriteString(w, b.String())
	return err
}
