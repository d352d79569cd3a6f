// Package pipeline expands CLI inputs into resources, probes them with
// bounded concurrency, optionally grabs a screenshot of each valid one, and
// reports per-resource validity plus batch stats.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/muxprobe/internal/display"
	"github.com/backmassage/muxprobe/internal/logging"
	"github.com/backmassage/muxprobe/internal/metrics"
	"github.com/backmassage/muxprobe/internal/probe"
)

// Status is the outcome of one resource.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusFailed  Status = "failed" // Not found, unparsable, or the probe could not run.
)

// Result is the report row for one resource.
type Result struct {
	Input            string                     `json:"input" yaml:"input"`
	Status           Status                     `json:"status" yaml:"status"`
	Error            string                     `json:"error,omitempty" yaml:"error,omitempty"`
	Remote           bool                       `json:"remote" yaml:"remote"`
	Attempts         int                        `json:"attempts" yaml:"attempts"`
	Size             int64                      `json:"size,omitempty" yaml:"size,omitempty"`
	Duration         float64                    `json:"duration" yaml:"duration"`
	StartTime        float64                    `json:"start_time" yaml:"start_time"`
	Bitrate          int64                      `json:"bitrate" yaml:"bitrate"`
	Container        string                     `json:"container,omitempty" yaml:"container,omitempty"`
	CreationTime     probe.Optional[time.Time]  `json:"creation_time" yaml:"creation_time"`
	Resolution       string                     `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	AspectRatio      probe.Optional[float64]    `json:"aspect_ratio" yaml:"aspect_ratio"`
	PixelAspectRatio float64                    `json:"pixel_aspect_ratio" yaml:"pixel_aspect_ratio"`
	FrameRate        probe.Optional[string]     `json:"frame_rate" yaml:"frame_rate"`
	Rotation         probe.Optional[int]        `json:"rotation" yaml:"rotation"`
	HDR              bool                       `json:"hdr" yaml:"hdr"`
	Interlaced       bool                       `json:"interlaced" yaml:"interlaced"`
	VideoCodec       string                     `json:"video_codec,omitempty" yaml:"video_codec,omitempty"`
	AudioCodec       string                     `json:"audio_codec,omitempty" yaml:"audio_codec,omitempty"`
	Video            string                     `json:"video,omitempty" yaml:"video,omitempty"`
	Audio            []string                   `json:"audio,omitempty" yaml:"audio,omitempty"`
	Screenshot       string                     `json:"screenshot,omitempty" yaml:"screenshot,omitempty"`
	Elapsed          time.Duration              `json:"-" yaml:"-"`
}

// Report is the outcome of one Run.
type Report struct {
	RunID   string    `json:"run_id" yaml:"run_id"`
	Started time.Time `json:"started" yaml:"started"`
	Results []Result  `json:"results" yaml:"results"`
	Stats   RunStats  `json:"stats" yaml:"stats"`
}

// Runner probes batches of resources. Prober is required; Transcoder and
// ScreenshotDir together enable screenshots; Metrics and Log are optional.
type Runner struct {
	Prober        *probe.Prober
	Transcoder    probe.Transcoder
	ScreenshotDir string
	Jobs          int
	ProbeTimeout  time.Duration
	Metrics       *metrics.Recorder
	Log           *logging.Logger
}

// Run expands inputs and probes every resource with at most Jobs probes in
// flight. Per-resource failures are recorded in the report, never returned;
// the error is non-nil only for input expansion failures or when ctx is
// cancelled, in which case the partial report is still returned.
func (r *Runner) Run(ctx context.Context, inputs []string) (*Report, error) {
	log := r.Log
	if log == nil {
		log = logging.Nop()
	}
	rep := &Report{RunID: uuid.NewString(), Started: time.Now()}
	log = log.With("run_id", rep.RunID)

	resources, err := Expand(inputs)
	if err != nil {
		return rep, err
	}
	log.Info("Probing %d resource(s) with %d job(s)", len(resources), r.jobs())

	results := make([]Result, len(resources))
	started := make([]bool, len(resources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs())
	for i, res := range resources {
		if gctx.Err() != nil {
			break
		}
		started[i] = true
		i, res := i, res
		g.Go(func() error {
			results[i] = r.probeOne(gctx, log, i, res)
			return nil
		})
	}
	_ = g.Wait()

	for i := range results {
		if !started[i] {
			continue
		}
		rep.Results = append(rep.Results, results[i])
		rep.Stats.add(&results[i])
	}
	if r.Metrics != nil {
		r.Metrics.Finish(time.Now())
	}
	log.Info("%s", rep.Stats)
	return rep, ctx.Err()
}

func (r *Runner) jobs() int {
	if r.Jobs < 1 {
		return 1
	}
	return r.Jobs
}

// probeOne opens one resource and converts it to a Result.
func (r *Runner) probeOne(ctx context.Context, log *logging.Logger, i int, resource string) Result {
	start := time.Now()
	res := Result{Input: resource, Remote: probe.IsRemote(resource)}

	pctx := ctx
	if r.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, r.ProbeTimeout)
		defer cancel()
	}

	m, err := r.Prober.Open(pctx, resource)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		log.Error("%s: %v", resource, err)
		r.observe(&res)
		return res
	}

	fill(&res, m)
	switch {
	case res.Status == StatusValid:
		log.Success("%s: valid (%s, %s)", resource, res.Container, display.FormatDuration(res.Duration))
	case res.Attempts > 1:
		log.Warn("%s: invalid after %d attempts", resource, res.Attempts)
	default:
		log.Warn("%s: invalid", resource)
	}
	r.observe(&res)

	if res.Status == StatusValid && r.Transcoder != nil && r.ScreenshotDir != "" && m.Video() != nil {
		out := filepath.Join(r.ScreenshotDir, screenshotName(i, resource))
		err := m.Screenshot(ctx, r.Transcoder, out)
		if r.Metrics != nil {
			r.Metrics.ObserveScreenshot(err)
		}
		if err != nil {
			log.Warn("%s: screenshot failed: %v", resource, err)
		} else {
			res.Screenshot = out
			log.Debug("%s: screenshot %s", resource, out)
		}
	}
	return res
}

func (r *Runner) observe(res *Result) {
	if r.Metrics == nil {
		return
	}
	source := "local"
	if res.Remote {
		source = "remote"
	}
	r.Metrics.ObserveProbe(string(res.Status), source, res.Attempts, res.Elapsed)
}

// fill copies the Movie's read surface into res.
func fill(res *Result, m *probe.Movie) {
	res.Status = StatusInvalid
	if m.Valid() {
		res.Status = StatusValid
	}
	if pe := m.ProbeError(); pe != nil {
		res.Error = pe.Error()
	}
	res.Attempts = m.Attempts()
	if size, err := m.Size(); err == nil {
		res.Size = size
	}
	res.Duration = m.Duration()
	res.StartTime = m.StartTime()
	res.Bitrate = m.Bitrate()
	res.Container = m.Container()
	res.CreationTime = m.CreationTime()
	res.Resolution = m.Resolution()
	res.AspectRatio = m.CalculatedAspectRatio()
	res.PixelAspectRatio = m.CalculatedPixelAspectRatio()
	if fr, ok := m.FrameRate().Get(); ok {
		res.FrameRate = probe.Some(fr.String())
	}
	res.Rotation = m.Rotation()
	res.VideoCodec = m.VideoCodec()
	res.AudioCodec = m.AudioCodec()
	if v := m.Video(); v != nil {
		res.Video = v.Overview
		res.HDR = v.HDR()
		res.Interlaced = v.Interlaced()
	}
	for _, a := range m.Audio() {
		res.Audio = append(res.Audio, a.Overview)
	}
}

// screenshotName derives a unique JPEG name from the resource's base name.
func screenshotName(i int, resource string) string {
	base := resource
	if probe.IsRemote(resource) {
		if u, err := url.Parse(resource); err == nil {
			base = path.Base(u.Path)
		}
	} else {
		base = filepath.Base(resource)
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		stem = "resource"
	}
	return fmt.Sprintf("%04d_%s.jpg", i+1, stem)
}
