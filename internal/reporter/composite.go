package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	for _, r := range c.reporters {
		r.Hardware(summary)
	}
}

func (c *CompositeReporter) Manifest(summary ManifestSummary) {
	for _, r := range c.reporters {
		r.Manifest(summary)
	}
}

func (c *CompositeReporter) StageProgress(update StageProgress) {
	for _, r := range c.reporters {
		r.StageProgress(update)
	}
}

func (c *CompositeReporter) LevelStarted(info LevelStartInfo) {
	for _, r := range c.reporters {
		r.LevelStarted(info)
	}
}

func (c *CompositeReporter) Calibration(stage CalibrationStage) {
	for _, r := range c.reporters {
		r.Calibration(stage)
	}
}

func (c *CompositeReporter) BuildProgress(progress BuildProgress) {
	for _, r := range c.reporters {
		r.BuildProgress(progress)
	}
}

func (c *CompositeReporter) LevelComplete(info LevelCompleteInfo) {
	for _, r := range c.reporters {
		r.LevelComplete(info)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) BuildComplete(summary BuildSummary) {
	for _, r := range c.reporters {
		r.BuildComplete(summary)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
