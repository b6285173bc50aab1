package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/jikhanjung/ctharvester/internal/util"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "CPUs:", fmt.Sprintf("%d", summary.NumCPU))
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Manifest(summary ManifestSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("MANIFEST")
	r.printLabel(12, "Input:", summary.InputDir)
	r.printLabel(12, "Output:", summary.OutputDir)
	r.printLabel(12, "Prefix:", summary.Prefix)
	r.printLabel(12, "File type:", summary.FileType)
	r.printLabel(12, "Slices:", fmt.Sprintf("%d", summary.SliceCount))
	r.printLabel(12, "Size:", fmt.Sprintf("%dx%d, %d-bit", summary.Width, summary.Height, summary.BitDepth))
	r.printLabel(12, "Levels:", fmt.Sprintf("%d", summary.TotalLevels))
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	if r.lastStage != update.Stage {
		r.mu.Unlock()
		fmt.Println()
		_, _ = r.cyan.Println(strings.ToUpper(update.Stage))
		r.mu.Lock()
		r.lastStage = update.Stage
	}
	r.mu.Unlock()
	fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) LevelStarted(info LevelStartInfo) {
	r.finishProgress()
	fmt.Println()
	_, _ = r.cyan.Printf("LEVEL %d\n", info.Level)
	fmt.Printf("  %d thumbnails to build\n", info.TotalTasks)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Building [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) Calibration(stage CalibrationStage) {
	label := fmt.Sprintf("stage %d estimate", stage.Stage)
	if stage.ShouldStopSampling {
		label = "calibrated"
	}
	fmt.Printf("  %s %s: %s (%.1f units/s", r.magenta.Sprint("›"), label,
		stage.TotalEstimateFormatted, stage.WeightedSpeed)
	if stage.StorageClass != "" {
		fmt.Printf(", storage class %s", stage.StorageClass)
	}
	fmt.Println(")")
}

func (r *TerminalReporter) BuildProgress(progress BuildProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := progress.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	eta := "unknown"
	if progress.ETA != nil {
		eta = util.FormatDurationFromSecs(int64(progress.ETA.Seconds()))
	}
	desc := fmt.Sprintf("speed %.1f/s, eta %s, %d/%d",
		progress.Speed, eta, progress.CompletedTasks, progress.TotalTasks)
	r.progress.Describe(desc)
}

func (r *TerminalReporter) LevelComplete(info LevelCompleteInfo) {
	r.finishProgress()
	fmt.Printf("  %s level %d done: %d generated, %d reused (%.0f%% generated) in %s\n",
		r.green.Sprint("✓"), info.Level, info.GeneratedCount, info.LoadedCount,
		info.GenerationRatio, util.FormatDurationFromSecs(int64(info.Duration.Seconds())))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) BuildComplete(summary BuildSummary) {
	fmt.Println()
	if summary.Cancelled {
		_, _ = r.yellow.Println("BUILD CANCELLED")
	} else {
		_, _ = r.cyan.Println("BUILD COMPLETE")
	}
	fmt.Printf("  %s\n", r.bold.Sprintf("%d levels built", summary.LevelsBuilt))
	fmt.Printf("  Tasks: %d total (%d generated, %d reused)\n",
		summary.TotalTasks, summary.TotalGenerated, summary.TotalLoaded)
	fmt.Printf("  Time: %s (avg %.1f units/s)\n",
		util.FormatDurationFromSecs(int64(summary.TotalDuration.Seconds())), summary.AverageSpeed)
	fmt.Printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputDir))
	if summary.ErrorCount > 0 {
		fmt.Printf("  %s %d task error(s) recorded\n", r.yellow.Sprint("!"), summary.ErrorCount)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	_, _ = color.New(color.Faint).Printf("  %s\n", message)
}
