// Command muxprobe probes media files and URLs with ffprobe and reports
// whether each one is usable.
//
// It parses flags (layered over an optional YAML config file), validates
// configuration, and either runs system diagnostics (--check) or probes
// every input, printing a text, JSON or YAML report. The exit status is 1
// when any resource failed or was invalid.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/muxprobe/internal/check"
	"github.com/backmassage/muxprobe/internal/config"
	"github.com/backmassage/muxprobe/internal/display"
	"github.com/backmassage/muxprobe/internal/ffmpeg"
	"github.com/backmassage/muxprobe/internal/logging"
	"github.com/backmassage/muxprobe/internal/metrics"
	"github.com/backmassage/muxprobe/internal/pipeline"
	"github.com/backmassage/muxprobe/internal/probe"
	"github.com/backmassage/muxprobe/internal/term"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "0.1.0"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process exit, so it can be driven from tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// 1. Load config from defaults, the optional config file and CLI flags.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version, args, stderr); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, config.ErrVersion):
			fmt.Fprintf(stdout, "muxprobe v%s (%s)\n", version, commit)
			return 0
		}
		fmt.Fprintf(stderr, "muxprobe: %v\n", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "muxprobe: %v\n", err)
		return 2
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(stderr, "muxprobe: %v\n", err)
		return 1
	}
	defer log.Close()

	// 2. If the user asked for a system check, run it and exit.
	if cfg.CheckOnly {
		if term.IsTerminal(os.Stderr) {
			display.PrintBanner(stderr)
		}
		if !check.RunCheck(ctx, &cfg, log) {
			return 1
		}
		return 0
	}

	// 3. Fail fast when ffprobe (or ffmpeg for screenshots) is unusable.
	if err := check.CheckDeps(ctx, &cfg); err != nil {
		log.Error("%v", err)
		return 1
	}
	if cfg.ScreenshotDir != "" {
		if err := os.MkdirAll(cfg.ScreenshotDir, 0o755); err != nil {
			log.Error("Cannot create screenshot directory: %v", err)
			return 1
		}
	}
	if cfg.ConfigFile != "" {
		log.Debug("Loaded config from %s", cfg.ConfigFile)
	}

	// 4. Probe every input.
	runner := newRunner(&cfg, log)
	rep, runErr := runner.Run(ctx, cfg.Inputs)
	if runErr != nil {
		log.Error("%v", runErr)
	}

	if rep != nil {
		if err := pipeline.WriteReport(stdout, cfg.Format, rep); err != nil {
			log.Error("Writing report: %v", err)
			return 1
		}
	}
	if runner.Metrics != nil {
		if err := runner.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("Writing metrics: %v", err)
		}
	}

	if runErr != nil || rep == nil || !rep.Stats.OK() {
		return 1
	}
	return 0
}

// newRunner wires the prober, the optional screenshot transcoder and the
// optional metrics recorder from cfg.
func newRunner(cfg *config.Config, log *logging.Logger) *pipeline.Runner {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = -1 // zero from the user means "follow none"
	}
	prober := probe.New(probe.Config{
		Binary:       cfg.FFprobeBinary,
		HTTPClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		MaxRedirects: maxRedirects,
		Logger:       log,
	})

	r := &pipeline.Runner{
		Prober:       prober,
		Jobs:         cfg.Jobs,
		ProbeTimeout: cfg.ProbeTimeout,
		Log:          log,
	}
	if cfg.ScreenshotDir != "" {
		presets, _ := ffmpeg.ParsePresets(cfg.Presets) // checked by Validate
		t := ffmpeg.New(cfg.FFmpegBinary, ffmpeg.Options{Seek: cfg.ScreenshotAt, Presets: presets})
		t.AutoPresets = cfg.AutoPresets
		t.Log = log
		r.Transcoder = t
		r.ScreenshotDir = cfg.ScreenshotDir
	}
	if cfg.MetricsFile != "" {
		r.Metrics = metrics.New()
	}
	return r
}
