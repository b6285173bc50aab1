// Package progress implements the three-stage throughput sampling and ETA
// calibration used while building a pyramid level.
package progress

import (
	"fmt"
	"time"

	"github.com/jikhanjung/ctharvester/internal/reporter"
)

// Tracker measures throughput during level 0's first 3*SampleSize tasks and
// turns the measurement into a calibrated total-build estimate, a storage
// class diagnostic, and a per-level generation ratio.
type Tracker struct {
	SampleSize       int
	LevelWeight      float64
	TrendThreshold   float64
	TrendCoefficient float64

	isSampling     bool
	sampleStart    time.Time
	imagesPerSec   *float64
	currentLevel   int
	completedTasks int
	generatedCount int
	loadedCount    int

	stage1Estimate *float64
	stage1Speed    *float64
	stage2Estimate *float64
}

// NewTracker creates a tracker. initialSpeed, if non-nil, seeds
// ImagesPerSecond from a previous level's calibrated speed so later levels
// skip re-sampling from scratch.
func NewTracker(sampleSize int, levelWeight, trendThreshold, trendCoefficient float64, initialSpeed *float64) *Tracker {
	return &Tracker{
		SampleSize:       sampleSize,
		LevelWeight:      levelWeight,
		TrendThreshold:   trendThreshold,
		TrendCoefficient: trendCoefficient,
		imagesPerSec:     initialSpeed,
	}
}

// StartSampling resets per-level counters and begins stage sampling on
// level 0 only (higher levels reuse level 0's calibrated speed).
func (t *Tracker) StartSampling(level, totalTasks int) {
	t.currentLevel = level
	t.completedTasks = 0
	t.generatedCount = 0
	t.loadedCount = 0

	if level == 0 && t.SampleSize > 0 {
		t.isSampling = true
		t.sampleStart = time.Now()
	} else {
		t.isSampling = false
	}
}

// OnTaskCompleted records a completed task, tallying generated vs. loaded
// counts and clamping completedTasks to totalTasks.
func (t *Tracker) OnTaskCompleted(completedCount, totalTasks int, wasGenerated bool) {
	t.completedTasks = completedCount
	if wasGenerated {
		t.generatedCount++
	} else {
		t.loadedCount++
	}
	if t.completedTasks > totalTasks {
		t.completedTasks = totalTasks
	}
}

// ShouldLogStage reports whether generatedCount has just crossed one of the
// three sample-size multiples during level 0 sampling. Loaded-from-disk
// completions advance completedTasks but must not affect stage timing, since
// a burst of near-instant reuse hits would otherwise corrupt the throughput
// sample.
func (t *Tracker) ShouldLogStage() bool {
	if !t.isSampling || t.currentLevel != 0 {
		return false
	}
	return t.generatedCount == t.SampleSize ||
		t.generatedCount == t.SampleSize*2 ||
		t.generatedCount == t.SampleSize*3
}

// CurrentStage returns the 1/2/3 stage number at the current generated
// count, or ok=false if not at a stage boundary.
func (t *Tracker) CurrentStage() (stage int, ok bool) {
	if !t.ShouldLogStage() {
		return 0, false
	}
	switch t.generatedCount {
	case t.SampleSize:
		return 1, true
	case t.SampleSize * 2:
		return 2, true
	default:
		return 3, true
	}
}

// StageInfo computes the calibration payload for the current stage
// boundary: elapsed time, projected total, and (at stage 3) the trend
// adjustment and storage-class diagnostic. Call only when CurrentStage
// reports ok=true.
func (t *Tracker) StageInfo(totalTasks, totalLevels int) (reporter.CalibrationStage, string) {
	stage, _ := t.CurrentStage()
	elapsed := time.Since(t.sampleStart).Seconds()
	sampleCount := t.SampleSize * stage

	est := estimateStage(elapsed, sampleCount, totalTasks, totalLevels)
	weightedSpeed := 1.0
	if elapsed > 0 {
		weightedSpeed = (float64(sampleCount) * t.LevelWeight) / elapsed
	}

	result := reporter.CalibrationStage{
		Stage:                  stage,
		Elapsed:                time.Duration(elapsed * float64(time.Second)),
		TimePerImage:           time.Duration(est.timePerImage * float64(time.Second)),
		TotalEstimate:          time.Duration(est.totalEstimate * float64(time.Second)),
		TotalEstimateFormatted: est.totalEstimateFormatted,
		WeightedSpeed:          weightedSpeed,
	}

	var message string
	switch stage {
	case 1:
		t.stage1Estimate = &est.totalEstimate
		t.stage1Speed = &est.timePerImage
		message = fmt.Sprintf("stage 1: %d images in %.2fs, %.3fs/image, estimate %s",
			sampleCount, elapsed, est.timePerImage, est.totalEstimateFormatted)

	case 2:
		t.stage2Estimate = &est.totalEstimate
		message = fmt.Sprintf("stage 2: %d images in %.2fs, %.3fs/image, estimate %s",
			sampleCount, elapsed, est.timePerImage, est.totalEstimateFormatted)

	default: // stage 3
		weightedUnits := float64(sampleCount) * t.LevelWeight
		speed := 20.0
		if elapsed > 0 {
			speed = weightedUnits / elapsed
		}
		t.imagesPerSec = &speed
		result.WeightedSpeed = speed

		totalEstimate := est.totalEstimate
		if t.stage1Estimate != nil && t.stage2Estimate != nil && totalEstimate > *t.stage1Estimate*t.TrendThreshold {
			trendFactor := totalEstimate / *t.stage1Estimate
			totalEstimate *= 1 + (trendFactor-1)*t.TrendCoefficient
			result.TotalEstimate = time.Duration(totalEstimate * float64(time.Second))
		}

		result.StorageClass = estimateStorageClass(speed)
		result.TotalEstimateFormatted = formatFinalEstimate(totalEstimate)
		result.ShouldStopSampling = true

		message = fmt.Sprintf("stage 3: %.1f weighted units/s, storage class %s, final estimate %s",
			speed, result.StorageClass, result.TotalEstimateFormatted)
	}

	return result, message
}

// CompletedTasks returns the most recently recorded completion count,
// mirroring on_worker_result's read of progress_tracker.completed_tasks
// when computing the next call's completedCount argument.
func (t *Tracker) CompletedTasks() int {
	return t.completedTasks
}

// FinalizeSampling marks sampling complete; subsequent ShouldLogStage calls
// return false until StartSampling is called again.
func (t *Tracker) FinalizeSampling() {
	t.isSampling = false
}

// PerformanceData is what one level hands off to the next: its calibrated
// speed and the generation-vs-reuse ratio for reporting.
type PerformanceData struct {
	ImagesPerSecond *float64
	TimePerImage    time.Duration
	TotalEstimate   *time.Duration
	GenerationRatio float64
	GeneratedCount  int
	LoadedCount     int
}

// PerformanceData summarizes this level's measured throughput for handoff
// to the next level's Tracker (via initialSpeed) and for reporter summaries.
func (t *Tracker) PerformanceData() PerformanceData {
	generationRatio := 0.0
	if t.completedTasks > 0 {
		generationRatio = float64(t.generatedCount) / float64(t.completedTasks) * 100
	}

	timePerImage := 0.05
	if t.imagesPerSec != nil && *t.imagesPerSec > 0 {
		timePerImage = 1.0 / *t.imagesPerSec
	}

	var totalEstimate *time.Duration
	if t.stage2Estimate != nil {
		d := time.Duration(*t.stage2Estimate * float64(time.Second))
		totalEstimate = &d
	} else if t.stage1Estimate != nil {
		d := time.Duration(*t.stage1Estimate * float64(time.Second))
		totalEstimate = &d
	}

	return PerformanceData{
		ImagesPerSecond: t.imagesPerSec,
		TimePerImage:    time.Duration(timePerImage * float64(time.Second)),
		TotalEstimate:   totalEstimate,
		GenerationRatio: generationRatio,
		GeneratedCount:  t.generatedCount,
		LoadedCount:     t.loadedCount,
	}
}

// estimateStorageClass classifies measured throughput into a coarse storage
// tier, matching _estimate_storage_type's SSD(>10)/HDD(>2)/Network cutoffs.
func estimateStorageClass(speed float64) string {
	switch {
	case speed > 10:
		return "SSD"
	case speed > 2:
		return "HDD"
	default:
		return "Network/Slow"
	}
}
