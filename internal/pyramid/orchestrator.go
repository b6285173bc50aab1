// Package pyramid drives the level-by-level pyramid build: it wires the
// inventory, pixelworker, progress, and pool packages together, persists
// each level's output directory, and assembles the final in-memory volume.
package pyramid

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jikhanjung/ctharvester/internal/config"
	"github.com/jikhanjung/ctharvester/internal/ctherrors"
	"github.com/jikhanjung/ctharvester/internal/inventory"
	"github.com/jikhanjung/ctharvester/internal/pixelworker"
	"github.com/jikhanjung/ctharvester/internal/pool"
	"github.com/jikhanjung/ctharvester/internal/progress"
	"github.com/jikhanjung/ctharvester/internal/reporter"
	"github.com/jikhanjung/ctharvester/internal/util"
)

// Result is what Build returns: whether the build ran to completion, how
// far it got, the smallest level's decoded volume, and any per-task errors
// encountered along the way.
type Result struct {
	Cancelled          bool
	LastCompletedLevel int
	Volume             *Volume
	Errors             []*ctherrors.TaskError
}

// Volume is the smallest pyramid level's full set of decoded slices, kept in
// memory for the caller rather than re-read from disk.
type Volume struct {
	Level  int
	Width  int
	Height int
	Slices []*pixelworker.PixelBuffer
}

// levelState tracks the mutable per-level bookkeeping the orchestrator
// advances as it walks down the pyramid.
type levelState struct {
	index         int
	sourceDir     string
	seqBegin      int
	seqEnd        int
	width, height int
	levelWeight   float64
}

// Build drives the full pyramid: it loads the manifest, walks levels 0..N
// applying the halved-dimension/ceil-halved-count progression, and stops at
// the first level whose largest dimension drops below
// cfg.MaxThumbnailSize, or at cfg.MaxPyramidLevels, or on cancellation.
func Build(ctx context.Context, cfg *config.Config, rep reporter.Reporter) (Result, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{Hostname: sysInfo.Hostname, NumCPU: sysInfo.NumCPU})

	manifest, err := inventory.LoadManifest(cfg.InputDir)
	if err != nil {
		return Result{}, err
	}
	bitDepth, err := manifest.BitDepth()
	if err != nil {
		return Result{}, err
	}

	totalLevels := estimateTotalLevels(manifest.ImageWidth, manifest.ImageHeight, cfg.MaxThumbnailSize, cfg.MaxPyramidLevels)

	rep.Manifest(reporter.ManifestSummary{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		Prefix:      manifest.Prefix,
		FileType:    manifest.FileType,
		SliceCount:  manifest.Count(),
		Width:       manifest.ImageWidth,
		Height:      manifest.ImageHeight,
		BitDepth:    bitDepth,
		TotalLevels: totalLevels,
	})

	state := levelState{
		index:       0,
		sourceDir:   cfg.InputDir,
		seqBegin:    manifest.SeqBegin,
		seqEnd:      manifest.SeqEnd,
		width:       manifest.ImageWidth,
		height:      manifest.ImageHeight,
		levelWeight: 1.0,
	}

	var tracker *progress.Tracker
	var errors []*ctherrors.TaskError
	result := Result{LastCompletedLevel: -1}

	for {
		inputCount := state.seqEnd - state.seqBegin + 1
		outputCount := ceilDiv(inputCount, 2)
		isFinalLevel := maxDim(state.width/2, state.height/2) < cfg.MaxThumbnailSize || state.index+1 >= cfg.MaxPyramidLevels || inputCount == 0

		targetDir := filepath.Join(cfg.OutputDir, fmt.Sprintf("%d", state.index+1))
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return result, fmt.Errorf("creating level directory: %w", err)
		}

		if tracker == nil {
			tracker = progress.NewTracker(cfg.SampleSize, state.levelWeight, cfg.TrendThreshold, cfg.TrendCoefficient, nil)
		}
		tracker.StartSampling(state.index, outputCount)

		rep.LevelStarted(reporter.LevelStartInfo{Level: state.index, TotalTasks: outputCount})

		tasks := buildTasks(state, manifest, targetDir, outputCount, cfg, isFinalLevel)

		levelStart := time.Now()
		outcome := pool.RunLevel(ctx, tasks, pool.Options{
			Workers:         cfg.WorkerThreads,
			GCIntervalTasks: cfg.GCIntervalTasks,
			StallThreshold:  time.Duration(cfg.StallThresholdSeconds) * time.Second,
			CancelGrace:     time.Duration(cfg.CancelGraceMillis) * time.Millisecond,
			OnTaskCompleted: func(res pixelworker.Result) {
				tracker.OnTaskCompleted(tracker.CompletedTasks()+1, outputCount, res.WasGenerated)
				if tracker.ShouldLogStage() {
					stage, message := tracker.StageInfo(outputCount, totalLevels)
					rep.Calibration(stage)
					rep.Verbose(message)
				}
				rep.BuildProgress(reporter.BuildProgress{
					Level:          state.index,
					CompletedTasks: tracker.CompletedTasks(),
					TotalTasks:     outputCount,
				})
			},
			OnStalled: func(completed, total, active int, elapsed time.Duration) {
				rep.Warning(fmt.Sprintf("no progress for %s at level %d (%d/%d complete)", elapsed.Round(time.Second), state.index, completed, total))
			},
		})
		tracker.FinalizeSampling()

		errors = append(errors, outcome.Errors...)
		for _, taskErr := range outcome.Errors {
			rep.Error(reporter.ReporterError{
				Title:   fmt.Sprintf("level %d, output %d", state.index, taskErr.OutputIndex),
				Message: taskErr.Error(),
				Context: taskErr.Path,
			})
		}

		levelDuration := time.Since(levelStart)
		generationRatio := 0.0
		if outcome.Completed > 0 {
			generationRatio = float64(outcome.GeneratedCount) / float64(outcome.Completed) * 100
		}
		rep.LevelComplete(reporter.LevelCompleteInfo{
			Level:           state.index,
			OutputCount:     outputCount,
			GeneratedCount:  outcome.GeneratedCount,
			LoadedCount:     outcome.LoadedCount,
			GenerationRatio: generationRatio,
			Duration:        levelDuration,
		})

		if outcome.Cancelled {
			result.Cancelled = true
			result.Errors = errors
			rep.BuildComplete(reporter.BuildSummary{
				Cancelled:   true,
				LevelsBuilt: result.LastCompletedLevel + 1,
				OutputDir:   cfg.OutputDir,
				ErrorCount:  len(errors),
			})
			return result, nil
		}

		result.LastCompletedLevel = state.index

		if isFinalLevel {
			buffers := outcome.OrderedBuffers(outputCount)
			result.Volume = &Volume{
				Level:  state.index,
				Width:  state.width / 2,
				Height: state.height / 2,
				Slices: buffers,
			}
			result.Errors = errors
			rep.BuildComplete(reporter.BuildSummary{
				LevelsBuilt: result.LastCompletedLevel + 1,
				OutputDir:   cfg.OutputDir,
				ErrorCount:  len(errors),
			})
			return result, nil
		}

		perf := tracker.PerformanceData()
		state = levelState{
			index:       state.index + 1,
			sourceDir:   targetDir,
			seqBegin:    0,
			seqEnd:      outputCount - 1,
			width:       state.width / 2,
			height:      state.height / 2,
			levelWeight: math.Pow(0.25, float64(state.index+1)),
		}
		tracker = progress.NewTracker(cfg.SampleSize, state.levelWeight, cfg.TrendThreshold, cfg.TrendCoefficient, perf.ImagesPerSecond)
	}
}

// buildTasks constructs one Task per output index for the level described
// by state, pairing consecutive source sequence numbers.
func buildTasks(state levelState, manifest *inventory.Manifest, targetDir string, outputCount int, cfg *config.Config, isFinalLevel bool) []pixelworker.Task {
	tasks := make([]pixelworker.Task, 0, outputCount)
	size := maxDim(state.width/2, state.height/2)
	for i := 0; i < outputCount; i++ {
		sourceSeq := state.seqBegin + 2*i
		tasks = append(tasks, pixelworker.Task{
			OutputIndex:      i,
			SourceSeq:        sourceSeq,
			SourceSeqBegin:   state.seqBegin,
			SourceSeqEnd:     state.seqEnd,
			SourceDir:        state.sourceDir,
			TargetDir:        targetDir,
			Level:            state.index,
			Manifest:         manifest,
			Size:             size,
			MaxThumbnailSize: cfg.MaxThumbnailSize,
			WantArray:        isFinalLevel,
		})
	}
	return tasks
}

func estimateTotalLevels(width, height, maxThumbnailSize, maxPyramidLevels int) int {
	levels := 1
	w, h := width, height
	for levels < maxPyramidLevels {
		w, h = w/2, h/2
		levels++
		if maxDim(w, h) < maxThumbnailSize {
			break
		}
	}
	return levels
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

func maxDim(a, b int) int {
	if a > b {
		return a
	}
	return b
}
