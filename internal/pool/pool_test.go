package pool

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jikhanjung/ctharvester/internal/inventory"
	"github.com/jikhanjung/ctharvester/internal/pixelworker"
)

func testManifest(t *testing.T, dir string, last int) *inventory.Manifest {
	t.Helper()
	body := "Filename Prefix = slice_\n" +
		"Filename Index Length = 4\n" +
		"Result File Type = tif\n" +
		"Result Image Width (pixels) = 2\n" +
		"Result Image Height (pixels) = 2\n" +
		"First Section = 0\n" +
		"Last Section = " + strconv.Itoa(last) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Reconstruction.log"), []byte(body), 0o644))
	m, err := inventory.LoadManifest(dir)
	require.NoError(t, err)
	return m
}

func TestRunLevelCollectsAllResults(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	manifest := testManifest(t, srcDir, 3)

	var tasks []pixelworker.Task
	for i, seq := range []int{0, 2} {
		tasks = append(tasks, pixelworker.Task{
			OutputIndex:      i,
			SourceSeq:        seq,
			SourceSeqEnd:     3,
			SourceDir:        srcDir,
			TargetDir:        dstDir,
			Manifest:         manifest,
			Size:             1,
			MaxThumbnailSize: 512,
			WantArray:        true,
		})
	}
	// Source files don't exist, so each task will fail with a missing-source
	// error; RunLevel must still account for every task exactly once.

	outcome := RunLevel(context.Background(), tasks, Options{Workers: 2})

	assert.Equal(t, len(tasks), outcome.Completed)
	assert.Len(t, outcome.Errors, len(tasks), "expected every task to fail on a missing source file")
}

func TestRunLevelHonorsCancellation(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	manifest := testManifest(t, srcDir, 9)

	var tasks []pixelworker.Task
	for i := 0; i < 10; i++ {
		tasks = append(tasks, pixelworker.Task{
			OutputIndex:      i,
			SourceSeq:        i,
			SourceSeqEnd:     9,
			SourceDir:        srcDir,
			TargetDir:        dstDir,
			Manifest:         manifest,
			MaxThumbnailSize: 512,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	outcome := RunLevel(ctx, tasks, Options{Workers: 2, CancelGrace: 50 * time.Millisecond})
	elapsed := time.Since(start)

	assert.True(t, outcome.Cancelled)
	assert.Lessf(t, elapsed, time.Second, "cancellation took too long: %v", elapsed)
}

func TestOrderedBuffersSkipsMissing(t *testing.T) {
	outcome := LevelOutcome{
		Buffers: map[int]*pixelworker.PixelBuffer{
			0: {Width: 1, Height: 1, Pix: []uint16{1}},
			2: {Width: 1, Height: 1, Pix: []uint16{2}},
		},
	}
	ordered := outcome.OrderedBuffers(3)
	require.Len(t, ordered, 2)
	assert.Equal(t, uint16(1), ordered[0].Pix[0])
	assert.Equal(t, uint16(2), ordered[1].Pix[0])
}
