// Package ctharvester builds multi-resolution image pyramids from a stack of
// sequentially numbered CT-scan slice images.
//
// Basic usage:
//
//	builder, err := ctharvester.New("/scans/specimen-42",
//	    ctharvester.WithMaxThumbnailSize(256),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := builder.Build(ctx, func(ev ctharvester.Event) error {
//	    if p, ok := ev.(ctharvester.BuildProgressEvent); ok {
//	        fmt.Printf("level %d: %d/%d\n", p.Level, p.CompletedTasks, p.TotalTasks)
//	    }
//	    return nil
//	})
package ctharvester

import (
	"context"
	"fmt"
	"os"

	"github.com/jikhanjung/ctharvester/internal/config"
	"github.com/jikhanjung/ctharvester/internal/pyramid"
	"github.com/jikhanjung/ctharvester/internal/reporter"
)

// Re-export the pyramid result types so callers never import internal/pyramid directly.
type (
	Result = pyramid.Result
	Volume = pyramid.Volume
)

// Builder is the main entry point for a pyramid build.
type Builder struct {
	config *config.Config
}

// Option configures a Builder.
type Option func(*config.Config)

// New creates a Builder rooted at inputDir with the given options applied.
func New(inputDir string, opts ...Option) (*Builder, error) {
	cfg := config.NewConfig(inputDir)

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Builder{config: cfg}, nil
}

// WithOutputDir overrides the default <input>/.thumbnail output directory.
func WithOutputDir(dir string) Option {
	return func(c *config.Config) { config.WithOutputDir(dir)(c) }
}

// WithMaxThumbnailSize sets the largest level that retains an in-memory array.
func WithMaxThumbnailSize(size int) Option {
	return func(c *config.Config) { config.WithMaxThumbnailSize(size)(c) }
}

// WithMaxPyramidLevels caps the number of levels built.
func WithMaxPyramidLevels(levels int) Option {
	return func(c *config.Config) { config.WithMaxPyramidLevels(levels)(c) }
}

// WithSampleSize sets the per-stage ETA calibration sample size.
func WithSampleSize(size int) Option {
	return func(c *config.Config) { config.WithSampleSize(size)(c) }
}

// WithWorkerThreads sets the fixed worker pool size.
func WithWorkerThreads(n int) Option {
	return func(c *config.Config) { config.WithWorkerThreads(n)(c) }
}

// WithStallThreshold sets the stall-warning threshold in seconds.
func WithStallThreshold(seconds int) Option {
	return func(c *config.Config) { config.WithStallThreshold(seconds)(c) }
}

// WithVerbose enables debug-level logging.
func WithVerbose(verbose bool) Option {
	return func(c *config.Config) { config.WithVerbose(verbose)(c) }
}

// WithNoLog disables file logging entirely.
func WithNoLog(noLog bool) Option {
	return func(c *config.Config) { config.WithNoLog(noLog)(c) }
}

// WithTrendTuning overrides the ETA trend-adjustment threshold and coefficient.
func WithTrendTuning(threshold, coefficient float64) Option {
	return func(c *config.Config) { config.WithTrendTuning(threshold, coefficient)(c) }
}

// BuildWithReporter runs the pyramid build using a caller-supplied Reporter,
// giving direct access to every reporter callback rather than the flattened
// Event stream Build produces.
func (b *Builder) BuildWithReporter(ctx context.Context, rep reporter.Reporter) (*Result, error) {
	if err := os.MkdirAll(b.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	result, err := pyramid.Build(ctx, b.config, rep)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Build runs the pyramid build, delivering progress through handler. Pass a
// nil handler to run silently.
func (b *Builder) Build(ctx context.Context, handler EventHandler) (*Result, error) {
	var rep reporter.Reporter = reporter.NullReporter{}
	if handler != nil {
		rep = newEventReporter(handler)
	}
	return b.BuildWithReporter(ctx, rep)
}

// eventReporter adapts EventHandler to the Reporter interface.
type eventReporter struct {
	handler EventHandler
}

func newEventReporter(handler EventHandler) *eventReporter {
	return &eventReporter{handler: handler}
}

func (r *eventReporter) Hardware(reporter.HardwareSummary) {}

func (r *eventReporter) Manifest(s reporter.ManifestSummary) {
	_ = r.handler(ManifestEvent{
		BaseEvent:   BaseEvent{EventType: EventTypeManifest, Time: NewTimestamp()},
		InputDir:    s.InputDir,
		OutputDir:   s.OutputDir,
		SliceCount:  s.SliceCount,
		Width:       s.Width,
		Height:      s.Height,
		BitDepth:    s.BitDepth,
		TotalLevels: s.TotalLevels,
	})
}

func (r *eventReporter) StageProgress(reporter.StageProgress) {}

func (r *eventReporter) LevelStarted(info reporter.LevelStartInfo) {
	_ = r.handler(LevelStartedEvent{
		BaseEvent:  BaseEvent{EventType: EventTypeLevelStarted, Time: NewTimestamp()},
		Level:      info.Level,
		TotalTasks: info.TotalTasks,
	})
}

func (r *eventReporter) Calibration(stage reporter.CalibrationStage) {
	_ = r.handler(CalibrationEvent{
		BaseEvent:              BaseEvent{EventType: EventTypeCalibration, Time: NewTimestamp()},
		Stage:                  stage.Stage,
		TimePerImageSeconds:    stage.TimePerImage.Seconds(),
		TotalEstimateFormatted: stage.TotalEstimateFormatted,
		StorageClass:           stage.StorageClass,
	})
}

func (r *eventReporter) BuildProgress(p reporter.BuildProgress) {
	_ = r.handler(BuildProgressEvent{
		BaseEvent:      BaseEvent{EventType: EventTypeBuildProgress, Time: NewTimestamp()},
		Level:          p.Level,
		CompletedTasks: p.CompletedTasks,
		TotalTasks:     p.TotalTasks,
	})
}

func (r *eventReporter) LevelComplete(info reporter.LevelCompleteInfo) {
	_ = r.handler(LevelCompleteEvent{
		BaseEvent:       BaseEvent{EventType: EventTypeLevelComplete, Time: NewTimestamp()},
		Level:           info.Level,
		OutputCount:     info.OutputCount,
		GeneratedCount:  info.GeneratedCount,
		LoadedCount:     info.LoadedCount,
		GenerationRatio: info.GenerationRatio,
	})
}

func (r *eventReporter) Warning(message string) {
	_ = r.handler(WarningEvent{
		BaseEvent: BaseEvent{EventType: EventTypeWarning, Time: NewTimestamp()},
		Message:   message,
	})
}

func (r *eventReporter) Error(e reporter.ReporterError) {
	_ = r.handler(ErrorEvent{
		BaseEvent:  BaseEvent{EventType: EventTypeError, Time: NewTimestamp()},
		Title:      e.Title,
		Message:    e.Message,
		Context:    e.Context,
		Suggestion: e.Suggestion,
	})
}

func (r *eventReporter) BuildComplete(s reporter.BuildSummary) {
	_ = r.handler(BuildCompleteEvent{
		BaseEvent:   BaseEvent{EventType: EventTypeBuildComplete, Time: NewTimestamp()},
		Cancelled:   s.Cancelled,
		LevelsBuilt: s.LevelsBuilt,
		ErrorCount:  s.ErrorCount,
	})
}

func (r *eventReporter) Verbose(string) {}
