package reporter

// Reporter defines the interface for pyramid build progress reporting. It is
// the concrete, multi-sink-capable counterpart of the callback contract a
// caller satisfies with a single EventHandler function.
type Reporter interface {
	Hardware(summary HardwareSummary)
	Manifest(summary ManifestSummary)
	StageProgress(update StageProgress)
	LevelStarted(info LevelStartInfo)
	Calibration(stage CalibrationStage)
	BuildProgress(progress BuildProgress)
	LevelComplete(info LevelCompleteInfo)
	Warning(message string)
	Error(err ReporterError)
	BuildComplete(summary BuildSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)         {}
func (NullReporter) Manifest(ManifestSummary)         {}
func (NullReporter) StageProgress(StageProgress)      {}
func (NullReporter) LevelStarted(LevelStartInfo)      {}
func (NullReporter) Calibration(CalibrationStage)     {}
func (NullReporter) BuildProgress(BuildProgress)      {}
func (NullReporter) LevelComplete(LevelCompleteInfo)  {}
func (NullReporter) Warning(string)                   {}
func (NullReporter) Error(ReporterError)               {}
func (NullReporter) BuildComplete(BuildSummary)        {}
func (NullReporter) Verbose(string)                    {}
