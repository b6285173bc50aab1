package pixelworker

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/jikhanjung/ctharvester/internal/ctherrors"
)

// Run executes a single thumbnail task: it reuses an existing output file if
// present, otherwise loads the task's one or two source slices, averages and
// downsamples them, and persists the result. It mirrors the flow of
// ThumbnailWorker.run / _generate_thumbnail: check cancellation, check for an
// existing file, generate if absent, and only materialize the decoded array
// in memory when the caller needs it (current size below the in-memory
// cutoff).
func Run(ctx context.Context, t Task) Result {
	if err := ctx.Err(); err != nil {
		return Result{OutputIndex: t.OutputIndex, Err: ctherrors.NewCancelledError()}
	}

	_, _, outputPath := t.filenames()

	// fail attaches this task's output index and path to a task-local error.
	fail := func(generated bool, err error) Result {
		var coreErr *ctherrors.CoreError
		if errors.As(err, &coreErr) {
			err = ctherrors.NewTaskError(t.OutputIndex, outputPath, coreErr)
		}
		return Result{OutputIndex: t.OutputIndex, WasGenerated: generated, Err: err}
	}

	if _, err := os.Stat(outputPath); err == nil {
		var arr *PixelBuffer
		if t.Size < t.MaxThumbnailSize && t.WantArray {
			arr, err = loadSlice(outputPath)
			if err != nil {
				return fail(false, err)
			}
		}
		return Result{OutputIndex: t.OutputIndex, Array: arr, WasGenerated: false}
	}

	if err := ctx.Err(); err != nil {
		return Result{OutputIndex: t.OutputIndex, Err: ctherrors.NewCancelledError()}
	}

	buf, err := t.generate()
	if err != nil {
		return fail(true, err)
	}

	if err := saveSlice(outputPath, buf); err != nil {
		return fail(true, err)
	}

	var arr *PixelBuffer
	if t.Size < t.MaxThumbnailSize && t.WantArray {
		arr = buf
	}
	return Result{OutputIndex: t.OutputIndex, Array: arr, WasGenerated: true}
}

// generate loads the task's source slice(s) and produces the downsampled
// buffer to persist, following thumbnail_worker.py's branching: a single
// trailing image (odd slice count) is just downsampled; two same-depth
// images are averaged then downsampled; mixed-depth pairs are promoted to
// 16-bit before averaging.
func (t Task) generate() (*PixelBuffer, error) {
	firstName, secondName, _ := t.filenames()
	firstPath := filepath.Join(t.SourceDir, firstName)

	if _, err := os.Stat(firstPath); err != nil {
		return nil, ctherrors.NewMissingSourceError(firstPath)
	}
	first, err := loadSlice(firstPath)
	if err != nil {
		return nil, err
	}

	if secondName == "" {
		return downsample2x2(first), nil
	}

	secondPath := filepath.Join(t.SourceDir, secondName)
	if _, err := os.Stat(secondPath); err != nil {
		// Missing partner slice: tolerate the gap and treat as a single image.
		return downsample2x2(first), nil
	}
	second, err := loadSlice(secondPath)
	if err != nil {
		return nil, err
	}

	if first.BitDepth != second.BitDepth {
		first = first.promoteTo16()
		second = second.promoteTo16()
	}

	avg := averagePair(first, second)
	return downsample2x2(avg), nil
}
