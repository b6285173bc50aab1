package ctharvester

import "time"

// EventType identifies the concrete shape of an Event.
type EventType string

const (
	EventTypeManifest      EventType = "manifest"
	EventTypeLevelStarted  EventType = "level_started"
	EventTypeCalibration   EventType = "calibration"
	EventTypeBuildProgress EventType = "build_progress"
	EventTypeLevelComplete EventType = "level_complete"
	EventTypeWarning       EventType = "warning"
	EventTypeError         EventType = "error"
	EventTypeBuildComplete EventType = "build_complete"
)

// NewTimestamp returns the current time formatted for event payloads.
func NewTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Event is the common shape every build notification satisfies.
type Event interface {
	Type() EventType
}

// BaseEvent carries the fields every Event embeds.
type BaseEvent struct {
	EventType EventType `json:"event"`
	Time      string    `json:"time"`
}

// Type implements Event.
func (e BaseEvent) Type() EventType { return e.EventType }

// ManifestEvent announces the parsed reconstruction log before building starts.
type ManifestEvent struct {
	BaseEvent
	InputDir    string `json:"input_dir"`
	OutputDir   string `json:"output_dir"`
	SliceCount  int    `json:"slice_count"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	BitDepth    int    `json:"bit_depth"`
	TotalLevels int    `json:"total_levels"`
}

// LevelStartedEvent announces the start of one pyramid level.
type LevelStartedEvent struct {
	BaseEvent
	Level      int `json:"level"`
	TotalTasks int `json:"total_tasks"`
}

// CalibrationEvent carries a completed ETA-calibration stage for level 0.
type CalibrationEvent struct {
	BaseEvent
	Stage                  int     `json:"stage"`
	TimePerImageSeconds    float64 `json:"time_per_image_seconds"`
	TotalEstimateFormatted string  `json:"total_estimate_formatted"`
	StorageClass           string  `json:"storage_class,omitempty"`
}

// BuildProgressEvent carries a live progress tick for the running level.
type BuildProgressEvent struct {
	BaseEvent
	Level          int `json:"level"`
	CompletedTasks int `json:"completed_tasks"`
	TotalTasks     int `json:"total_tasks"`
}

// LevelCompleteEvent summarizes one finished pyramid level.
type LevelCompleteEvent struct {
	BaseEvent
	Level           int     `json:"level"`
	OutputCount     int     `json:"output_count"`
	GeneratedCount  int     `json:"generated_count"`
	LoadedCount     int     `json:"loaded_count"`
	GenerationRatio float64 `json:"generation_ratio"`
}

// WarningEvent reports a non-fatal condition, such as a stalled level.
type WarningEvent struct {
	BaseEvent
	Message string `json:"message"`
}

// ErrorEvent reports a single failed task.
type ErrorEvent struct {
	BaseEvent
	Title      string `json:"title"`
	Message    string `json:"message"`
	Context    string `json:"context,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// BuildCompleteEvent reports final build completion.
type BuildCompleteEvent struct {
	BaseEvent
	Cancelled   bool `json:"cancelled"`
	LevelsBuilt int  `json:"levels_built"`
	ErrorCount  int  `json:"error_count"`
}

// EventHandler receives build events. A returned error is discarded by the
// built-in reporter adapter; callers that need to abort should cancel the
// context passed to Build instead.
type EventHandler func(Event) error
