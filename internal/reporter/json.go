package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON build events, one JSON object per line, for
// consumption by a host UI or log aggregator.
type JSONReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{writer: os.Stdout}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]interface{}{
		"type":      "hardware",
		"hostname":  summary.Hostname,
		"num_cpu":   summary.NumCPU,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Manifest(summary ManifestSummary) {
	r.write(map[string]interface{}{
		"type":         "manifest",
		"input_dir":    summary.InputDir,
		"output_dir":   summary.OutputDir,
		"prefix":       summary.Prefix,
		"file_type":    summary.FileType,
		"slice_count":  summary.SliceCount,
		"width":        summary.Width,
		"height":       summary.Height,
		"bit_depth":    summary.BitDepth,
		"total_levels": summary.TotalLevels,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	event := map[string]interface{}{
		"type":      "stage_progress",
		"stage":     update.Stage,
		"percent":   update.Percent,
		"message":   update.Message,
		"timestamp": r.timestamp(),
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) LevelStarted(info LevelStartInfo) {
	r.write(map[string]interface{}{
		"type":        "level_started",
		"level":       info.Level,
		"total_tasks": info.TotalTasks,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) Calibration(stage CalibrationStage) {
	r.write(map[string]interface{}{
		"type":                     "calibration",
		"stage":                    stage.Stage,
		"elapsed_seconds":          stage.Elapsed.Seconds(),
		"time_per_image_ms":        stage.TimePerImage.Milliseconds(),
		"total_estimate_seconds":   int64(stage.TotalEstimate.Seconds()),
		"total_estimate_formatted": stage.TotalEstimateFormatted,
		"weighted_speed":           stage.WeightedSpeed,
		"storage_class":            stage.StorageClass,
		"should_stop_sampling":     stage.ShouldStopSampling,
		"timestamp":                r.timestamp(),
	})
}

func (r *JSONReporter) BuildProgress(progress BuildProgress) {
	event := map[string]interface{}{
		"type":            "build_progress",
		"level":           progress.Level,
		"completed_tasks": progress.CompletedTasks,
		"total_tasks":     progress.TotalTasks,
		"percent":         progress.Percent,
		"speed":           progress.Speed,
		"generated_count": progress.GeneratedCount,
		"loaded_count":    progress.LoadedCount,
		"timestamp":       r.timestamp(),
	}
	if progress.ETA != nil {
		event["eta_seconds"] = int64(progress.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) LevelComplete(info LevelCompleteInfo) {
	r.write(map[string]interface{}{
		"type":             "level_complete",
		"level":            info.Level,
		"output_count":     info.OutputCount,
		"generated_count":  info.GeneratedCount,
		"loaded_count":     info.LoadedCount,
		"generation_ratio": info.GenerationRatio,
		"duration_seconds": info.Duration.Seconds(),
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) BuildComplete(summary BuildSummary) {
	r.write(map[string]interface{}{
		"type":                   "build_complete",
		"cancelled":              summary.Cancelled,
		"levels_built":           summary.LevelsBuilt,
		"total_tasks":            summary.TotalTasks,
		"total_generated":        summary.TotalGenerated,
		"total_loaded":           summary.TotalLoaded,
		"total_duration_seconds": summary.TotalDuration.Seconds(),
		"average_speed":          summary.AverageSpeed,
		"output_dir":             summary.OutputDir,
		"error_count":            summary.ErrorCount,
		"timestamp":              r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
