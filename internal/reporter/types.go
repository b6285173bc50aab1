// Package reporter provides progress reporting interfaces and implementations
// for pyramid builds.
package reporter

import "time"

// HardwareSummary contains hardware information shown at build start.
type HardwareSummary struct {
	Hostname string
	NumCPU   int
}

// ManifestSummary describes the parsed reconstruction log before building starts.
type ManifestSummary struct {
	InputDir    string
	OutputDir   string
	Prefix      string
	FileType    string
	SliceCount  int
	Width       int
	Height      int
	BitDepth    int
	TotalLevels int
}

// StageProgress represents a generic orchestrator stage update
// (e.g. "scanning", "building level 2", "assembling volume").
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}

// LevelStartInfo announces the start of a pyramid level.
type LevelStartInfo struct {
	Level      int
	TotalTasks int
}

// CalibrationStage carries the 3-stage sampling output for level 0.
type CalibrationStage struct {
	Stage                  int // 1, 2, or 3
	Elapsed                time.Duration
	TimePerImage           time.Duration
	TotalEstimate          time.Duration
	TotalEstimateFormatted string
	WeightedSpeed          float64
	StorageClass           string // only set at stage 3
	ShouldStopSampling     bool
}

// BuildProgress contains live progress information for the running level.
type BuildProgress struct {
	Level          int
	CompletedTasks int
	TotalTasks     int
	Percent        float32
	Speed          float64 // weighted units per second
	ETA            *time.Duration
	GeneratedCount int
	LoadedCount    int
}

// LevelCompleteInfo summarizes a finished pyramid level.
type LevelCompleteInfo struct {
	Level           int
	OutputCount     int
	GeneratedCount  int
	LoadedCount     int
	GenerationRatio float64
	Duration        time.Duration
}

// ReporterError contains error information for a single failed task.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BuildSummary contains final build completion information.
type BuildSummary struct {
	Cancelled      bool
	LevelsBuilt    int
	TotalTasks     int
	TotalGenerated int
	TotalLoaded    int
	TotalDuration  time.Duration
	AverageSpeed   float64
	OutputDir      string
	ErrorCount     int
}
