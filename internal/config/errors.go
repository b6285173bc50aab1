// Package config provides configuration types and defaults for ctharvester.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidThumbnailSize indicates max_thumbnail_size is out of range.
	ErrInvalidThumbnailSize = errors.New("max thumbnail size out of range")

	// ErrInvalidPyramidLevels indicates max_pyramid_levels is out of range.
	ErrInvalidPyramidLevels = errors.New("max pyramid levels out of range")

	// ErrInvalidSampleSize indicates sample_size is negative.
	ErrInvalidSampleSize = errors.New("sample size must be non-negative")

	// ErrInvalidWorkerThreads indicates worker_threads is less than 1.
	ErrInvalidWorkerThreads = errors.New("worker threads must be at least 1")

	// ErrInvalidStallThreshold indicates stall_threshold_seconds is non-positive.
	ErrInvalidStallThreshold = errors.New("stall threshold must be positive")

	// ErrInvalidGCInterval indicates gc_interval_tasks is negative.
	ErrInvalidGCInterval = errors.New("gc interval must be non-negative")

	// ErrInvalidTrendThreshold indicates trend_threshold is not greater than 1.0.
	ErrInvalidTrendThreshold = errors.New("trend threshold must be greater than 1.0")

	// ErrInvalidTrendCoefficient indicates trend_coefficient is outside [0, 1].
	ErrInvalidTrendCoefficient = errors.New("trend coefficient must be between 0 and 1")

	// ErrMissingInputDir indicates no input directory was configured.
	ErrMissingInputDir = errors.New("input directory is required")
)
