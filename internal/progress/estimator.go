package progress

import (
	"fmt"

	"github.com/jikhanjung/ctharvester/internal/util"
)

// defaultLevelReductionFactor is the fraction of a level's work the next
// coarser level is expected to take, used to project a single level's
// measured speed into a total-pyramid time estimate.
const defaultLevelReductionFactor = 0.25

// stageEstimate is the result of projecting a sample's measured rate across
// all pyramid levels.
type stageEstimate struct {
	timePerImage          float64
	totalEstimate         float64
	totalEstimateFormatted string
}

// estimateStage projects elapsed/sampleCount into a time-per-image figure,
// then sums the estimated cost of totalItems at level 1 plus numLevels-1
// geometrically-shrinking coarser levels.
func estimateStage(elapsed float64, sampleCount, totalItems, numLevels int) stageEstimate {
	timePerImage := 0.05
	if sampleCount > 0 {
		timePerImage = elapsed / float64(sampleCount)
	}

	level1Time := float64(totalItems) * timePerImage

	total := level1Time
	levelTime := level1Time
	for l := 2; l <= numLevels; l++ {
		levelTime *= defaultLevelReductionFactor
		total += levelTime
	}

	return stageEstimate{
		timePerImage:           timePerImage,
		totalEstimate:          total,
		totalEstimateFormatted: formatDuration(total),
	}
}

// formatDuration renders seconds the way TimeEstimator.format_duration does:
// sub-minute values keep one decimal, minutes show one decimal, and hours
// drop the trailing "0m".
func formatDuration(seconds float64) string {
	if seconds < 0 {
		return "0s"
	}
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%.1fm", seconds/60)
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	if minutes > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}

// formatFinalEstimate renders the stage-3 calibrated total using the
// coarser s/m-s/h-m tiers from _format_final_estimate, shared with the
// terminal/JSON reporters via util.FormatETA.
func formatFinalEstimate(seconds float64) string {
	return util.FormatETA(seconds)
}
