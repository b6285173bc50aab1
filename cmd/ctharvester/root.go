package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jikhanjung/ctharvester/internal/config"
	"github.com/jikhanjung/ctharvester/internal/logging"
	"github.com/jikhanjung/ctharvester/internal/pyramid"
	"github.com/jikhanjung/ctharvester/internal/reporter"
)

const (
	appName    = "ctharvester"
	appVersion = "0.1.0"
)

// buildFlags holds the CLI flags shared by the build and resume subcommands.
type buildFlags struct {
	outputDir        string
	logDir           string
	verbose          bool
	noLog            bool
	json             bool
	maxThumbnailSize int
	maxPyramidLevels int
	sampleSize       int
	workers          int
	stallSeconds     int
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Build level-of-detail image pyramids from CT-scan slice stacks",
		Long: fmt.Sprintf(`%s reads a directory of sequentially numbered CT-scan slice
images plus its reconstruction log, and builds a multi-resolution pyramid of
downsampled thumbnail levels alongside it.`, appName),
		SilenceUsage: true,
	}

	root.AddCommand(newBuildCmd())
	root.AddCommand(newResumeCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s version %s\n", appName, appVersion)
			return nil
		},
	}
}

func newBuildCmd() *cobra.Command {
	var bf buildFlags

	cmd := &cobra.Command{
		Use:   "build <input-dir>",
		Short: "Build a pyramid from a slice stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args[0], bf, false)
		},
	}
	bindBuildFlags(cmd, &bf)
	return cmd
}

func newResumeCmd() *cobra.Command {
	var bf buildFlags

	cmd := &cobra.Command{
		Use:   "resume <input-dir>",
		Short: "Resume a previously interrupted build, reusing existing output files",
		Long: `Resume re-runs a build against an input directory whose output directory
already contains partial results. Every level task checks for its output file
before regenerating it, so already-built thumbnails are reused as-is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args[0], bf, true)
		},
	}
	bindBuildFlags(cmd, &bf)
	return cmd
}

func bindBuildFlags(cmd *cobra.Command, bf *buildFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&bf.outputDir, "output", "o", "", "Output directory (defaults to <input>/.thumbnail)")
	fs.StringVarP(&bf.logDir, "log-dir", "l", "", "Log directory (defaults to <output>/logs)")
	fs.BoolVarP(&bf.verbose, "verbose", "v", false, "Enable verbose output for troubleshooting")
	fs.BoolVar(&bf.noLog, "no-log", false, "Disable log file creation")
	fs.BoolVar(&bf.json, "json", false, "Emit NDJSON build events on stdout instead of a terminal progress bar")
	fs.IntVar(&bf.maxThumbnailSize, "max-size", config.DefaultMaxThumbnailSize, "Stop building once a level's largest dimension drops below this size")
	fs.IntVar(&bf.maxPyramidLevels, "max-levels", config.DefaultMaxPyramidLevels, "Maximum number of pyramid levels to build")
	fs.IntVar(&bf.sampleSize, "sample-size", config.DefaultSampleSize, "Tasks per ETA-calibration stage at level 0 (0 disables calibration)")
	fs.IntVar(&bf.workers, "workers", config.AutoWorkerCount(), "Number of concurrent worker goroutines")
	fs.IntVar(&bf.stallSeconds, "stall-threshold", config.DefaultStallThresholdSeconds, "Seconds without progress before logging a stall warning")
}

func runBuild(inputPath string, bf buildFlags, resume bool) error {
	inputDir, err := filepath.Abs(inputPath)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("input directory does not exist: %s", inputDir)
	}

	outputDir := bf.outputDir
	if outputDir == "" {
		outputDir = filepath.Join(inputDir, ".thumbnail")
	} else if outputDir, err = filepath.Abs(outputDir); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	if resume {
		if _, err := os.Stat(outputDir); err != nil {
			return fmt.Errorf("resume requires an existing output directory, got %s: %w", outputDir, err)
		}
	}

	logDir := bf.logDir
	if logDir == "" {
		logDir = filepath.Join(outputDir, "logs")
	}

	logger, err := logging.Setup(logDir, bf.verbose, bf.noLog)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
		logger.Info("ctharvester build starting", "input", inputDir, "output", outputDir, "resume", resume)
	}

	cfg := config.NewConfig(inputDir,
		config.WithOutputDir(outputDir),
		config.WithLogDir(logDir),
		config.WithMaxThumbnailSize(bf.maxThumbnailSize),
		config.WithMaxPyramidLevels(bf.maxPyramidLevels),
		config.WithSampleSize(bf.sampleSize),
		config.WithWorkerThreads(bf.workers),
		config.WithStallThreshold(bf.stallSeconds),
		config.WithVerbose(bf.verbose),
		config.WithNoLog(bf.noLog),
	)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var rep reporter.Reporter
	if bf.json {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		if logger != nil {
			logger.Warn("cancellation requested, waiting for in-flight tasks to finish")
		}
	}()

	result, err := pyramid.Build(ctx, cfg, rep)
	if err != nil {
		if logger != nil {
			logger.Error("build failed", "error", err)
		}
		return err
	}
	if logger != nil {
		logger.Info("build finished", "last_completed_level", result.LastCompletedLevel, "cancelled", result.Cancelled, "errors", len(result.Errors))
	}
	if result.Cancelled {
		return fmt.Errorf("build cancelled after level %d", result.LastCompletedLevel)
	}
	return nil
}
