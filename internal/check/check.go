// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffprobe and ffmpeg.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/backmassage/muxprobe/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrFfmpegNotFound  = errors.New("ffmpeg not found (needed for screenshots)")
	ErrFfprobeBroken   = errors.New("ffprobe found but -version failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Seams for tests.
var (
	lookPath = exec.LookPath
	output   = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}
)

const toolTimeout = 10 * time.Second

// RunCheck runs the interactive --check flow: prints availability and
// version of ffprobe and ffmpeg, plus the ffmpeg features the screenshot
// and tonemap paths rely on. It returns false when ffprobe is unusable.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(ctx, log, "ffprobe", cfg.FFprobeBinary)
	if checkTool(ctx, log, "ffmpeg", cfg.FFmpegBinary) {
		checkFeature(ctx, log, cfg.FFmpegBinary, "-encoders", "mjpeg", "JPEG screenshots")
		checkFeature(ctx, log, cfg.FFmpegBinary, "-filters", "zscale", "tonemap preset (zscale)")
	} else {
		log.Warn("Screenshots and transcoding are unavailable")
	}
	return ok
}

// checkTool verifies binary is resolvable and logs its version string.
func checkTool(ctx context.Context, log Logger, name, binary string) bool {
	path, err := lookPath(binary)
	if err != nil {
		log.Error("%s not found (%s)", name, binary)
		return false
	}
	log.Debug("%s resolved to %s", name, path)
	v, err := version(ctx, path)
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return false
	}
	log.Success("%s: %s", name, v)
	return true
}

// checkFeature greps the listing printed by `ffmpeg -hide_banner <listing>`.
func checkFeature(ctx context.Context, log Logger, binary, listing, needle, label string) {
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	out, err := output(ctx, binary, "-hide_banner", listing)
	if err != nil {
		log.Warn("Could not list %s: %v", strings.TrimPrefix(listing, "-"), err)
		return
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == needle {
			log.Success("%s available", label)
			return
		}
	}
	log.Warn("%s not available", label)
}

// CheckDeps is the pre-pipeline validation: ffprobe must run, and ffmpeg
// must be resolvable when screenshots were requested.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	path, err := lookPath(cfg.FFprobeBinary)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, cfg.FFprobeBinary)
	}
	if _, err := version(ctx, path); err != nil {
		return fmt.Errorf("%w: %v", ErrFfprobeBroken, err)
	}
	if cfg.ScreenshotDir != "" {
		if _, err := lookPath(cfg.FFmpegBinary); err != nil {
			return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.FFmpegBinary)
		}
	}
	return nil
}

// version returns the first line of `<binary> -version`.
func version(ctx context.Context, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	out, err := output(ctx, binary, "-version")
	if err != nil {
		return "", err
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	return firstLine, nil
}
