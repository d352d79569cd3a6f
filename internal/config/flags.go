package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into probing, output, display, and utility.
// The config file is loaded before flags are applied so flags always win.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// ErrVersion is returned by ParseFlags when --version was requested.
var ErrVersion = errors.New("version requested")

// ParseFlags parses args (without the program name) into cfg. A --config
// file is loaded first, then the remaining flags override it. It returns
// flag.ErrHelp after printing usage for --help, and ErrVersion for --version;
// the caller decides how to exit.
func ParseFlags(cfg *Config, version string, args []string, usageOut io.Writer) error {
	fs := flag.NewFlagSet("muxprobe", flag.ContinueOnError)
	fs.SetOutput(usageOut)
	fs.Usage = func() { printUsage(usageOut, version) }

	if path := scanConfigFlag(args); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return err
		}
		cfg.ConfigFile = path
	}

	// Negated/override flags are captured then applied after Parse so file
	// and default values hold unless the user passes the flag.
	var negated negatedFlags

	defineProbeFlags(fs, cfg)
	defineOutputFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(args); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(usageOut, version)
		return flag.ErrHelp
	}
	if negated.showVersion {
		return ErrVersion
	}

	cfg.Inputs = append(cfg.Inputs[:0], fs.Args()...)
	return nil
}

// scanConfigFlag finds --config/-config before the full parse so the file
// can be layered beneath the other flags.
func scanConfigFlag(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	forceColor    bool
	noColor       bool
	noAutoPresets bool
	showVersion bool
	showHelp    bool
}

// defineProbeFlags registers --ffprobe, --max-redirects, --timeout, --http-timeout, -j/--jobs.
func defineProbeFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFprobeBinary, "ffprobe", cfg.FFprobeBinary, "ffprobe binary")
	fs.StringVar(&cfg.FFmpegBinary, "ffmpeg", cfg.FFmpegBinary, "ffmpeg binary (screenshots)")
	fs.IntVar(&cfg.MaxRedirects, "max-redirects", cfg.MaxRedirects, "Redirects followed for URLs")
	fs.DurationVar(&cfg.ProbeTimeout, "timeout", cfg.ProbeTimeout, "Per-resource probe timeout (0 = none)")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "Timeout for each URL check")
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "Resources probed concurrently")
	fs.IntVar(&cfg.Jobs, "j", cfg.Jobs, "Same as --jobs")
}

// defineOutputFlags registers -f/--format, --screenshot, --screenshot-at,
// --metrics-file, --preset and --no-auto-presets.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noAutoPresets, "no-auto-presets", false, "Never add deinterlace/tonemap presets automatically")
	fs.Var(&formatValue{&cfg.Format}, "format", "Report format: text | json | yaml")
	fs.Var(&formatValue{&cfg.Format}, "f", "Same as --format")
	fs.StringVar(&cfg.ScreenshotDir, "screenshot", cfg.ScreenshotDir, "Write one JPEG frame per valid resource into DIR")
	fs.Float64Var(&cfg.ScreenshotAt, "screenshot-at", cfg.ScreenshotAt, "Screenshot offset in seconds")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to file")
	fs.Var(&listValue{p: &cfg.Presets}, "preset", "Screenshot filter preset (repeatable, comma-separated)")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append JSON logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --config, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies color and preset overrides into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noAutoPresets {
		cfg.AutoPresets = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "muxprobe v" + version + ": media probe and validity checker"},
		{"", ""},
		{"  muxprobe [OPTIONS] <file|dir|url>...", ""},
		{"", ""},
		{"Probing", ""},
		{"  --ffprobe <path>", "ffprobe binary (default: ffprobe)"},
		{"  --max-redirects <n>", "Redirects followed for URLs (default: 10)"},
		{"  --timeout <duration>", "Per-resource probe timeout (default: 2m)"},
		{"  --http-timeout <duration>", "Timeout for each URL check (default: 15s)"},
		{"  -j, --jobs <n>", "Resources probed concurrently (default: 4)"},
		{"", ""},
		{"Output", ""},
		{"  -f, --format <text|json|yaml>", "Report format (default: text)"},
		{"  --screenshot <dir>", "Write one frame per valid resource"},
		{"  --screenshot-at <seconds>", "Screenshot offset (default: 1)"},
		{"  --ffmpeg <path>", "ffmpeg binary for screenshots (default: ffmpeg)"},
		{"  --preset <name>[,<name>]", "Screenshot preset: pad, normalize-dar, tonemap, deinterlace"},
		{"  --no-auto-presets", "Skip automatic deinterlace/tonemap"},
		{"  --metrics-file <path>", "Write Prometheus metrics (textfile format)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  --config <path>", "YAML config file (flags override it)"},
		{"  -l, --log <path>", "Append JSON logs to file"},
		{"  -c, --check", "System diagnostics (ffprobe, ffmpeg)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so the OutputFormat enum can be used with flag.Var.

type formatValue struct{ p *OutputFormat }

func (f *formatValue) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f *formatValue) Set(s string) error {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatText:
		*f.p = FormatText
	case FormatJSON:
		*f.p = FormatJSON
	case FormatYAML:
		*f.p = FormatYAML
	default:
		return fmt.Errorf("invalid format %q (use 'text', 'json' or 'yaml')", s)
	}
	return nil
}

// listValue collects repeatable, comma-separated flag values. The first Set
// replaces any list loaded from the config file.
type listValue struct {
	p   *[]string
	set bool
}

func (l *listValue) String() string {
	if l.p == nil {
		return ""
	}
	return strings.Join(*l.p, ",")
}

func (l *listValue) Set(s string) error {
	if !l.set {
		*l.p = nil
		l.set = true
	}
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*l.p = append(*l.p, v)
		}
	}
	return nil
}
