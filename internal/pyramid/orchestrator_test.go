package pyramid

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/jikhanjung/ctharvester/internal/config"
	"github.com/jikhanjung/ctharvester/internal/reporter"
	"golang.org/x/image/tiff"
)

func writeUniformSlice(t *testing.T, path string, size int, value uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := tiff.Encode(f, img, nil); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func writeManifestLog(t *testing.T, dir string, count, size int) {
	t.Helper()
	writeManifestLogWithBegin(t, dir, 0, count, size)
}

func writeManifestLogWithBegin(t *testing.T, dir string, begin, count, size int) {
	t.Helper()
	body := fmt.Sprintf(
		"Filename Prefix = slice_\nFilename Index Length = 4\nResult File Type = tif\n"+
			"Result Image Width (pixels) = %d\nResult Image Height (pixels) = %d\n"+
			"First Section = %d\nLast Section = %d\n", size, size, begin, begin+count-1)
	if err := os.WriteFile(filepath.Join(dir, "Reconstruction.log"), []byte(body), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func TestBuildPowerOfTwoStack(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	const count = 8
	const size = 256
	writeManifestLog(t, srcDir, count, size)
	for i := 0; i < count; i++ {
		writeUniformSlice(t, filepath.Join(srcDir, fmt.Sprintf("slice_%04d.tif", i)), size, 100)
	}

	cfg := config.NewConfig(srcDir,
		config.WithOutputDir(outDir),
		config.WithMaxThumbnailSize(128),
		config.WithSampleSize(0),
		config.WithWorkerThreads(2),
	)

	result, err := Build(context.Background(), cfg, reporter.NullReporter{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.Cancelled {
		t.Fatal("unexpected cancellation")
	}
	if result.LastCompletedLevel != 1 {
		t.Fatalf("LastCompletedLevel = %d, want 1", result.LastCompletedLevel)
	}

	level1Dir := filepath.Join(outDir, "1")
	entries, err := os.ReadDir(level1Dir)
	if err != nil {
		t.Fatalf("read level 1 dir: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("level 1 file count = %d, want 4", len(entries))
	}

	if result.Volume == nil {
		t.Fatal("expected a volume from the final level")
	}
	if result.Volume.Width != 64 || result.Volume.Height != 64 {
		t.Errorf("volume dims = %dx%d, want 64x64", result.Volume.Width, result.Volume.Height)
	}
	if len(result.Volume.Slices) != 2 {
		t.Errorf("volume slice count = %d, want 2", len(result.Volume.Slices))
	}
	for _, s := range result.Volume.Slices {
		for _, v := range s.Pix {
			if v != 100 {
				t.Errorf("pixel = %d, want 100", v)
				break
			}
		}
	}
}

func TestBuildOddCountProducesLoneTrailingDownsample(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	const count = 5
	const size = 64
	writeManifestLog(t, srcDir, count, size)
	values := []uint8{10, 20, 30, 40, 50}
	for i, v := range values {
		writeUniformSlice(t, filepath.Join(srcDir, fmt.Sprintf("slice_%04d.tif", i)), size, v)
	}

	cfg := config.NewConfig(srcDir,
		config.WithOutputDir(outDir),
		config.WithMaxThumbnailSize(16),
		config.WithSampleSize(0),
		config.WithWorkerThreads(2),
	)

	result, err := Build(context.Background(), cfg, reporter.NullReporter{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	level1Dir := filepath.Join(outDir, "1")
	entries, err := os.ReadDir(level1Dir)
	if err != nil {
		t.Fatalf("read level 1 dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("level 1 file count = %d, want 3", len(entries))
	}
	_ = result
}

// TestBuildWithNonZeroFirstSectionReachesLevelTwo guards against computing a
// level's relative thumbnail filenames from the manifest's original "First
// Section" offset instead of that level's own (always-zero-based) sequence
// range: doing so produces negative, nonexistent filenames for every level
// past level 0 whenever the source dataset doesn't start numbering at 0.
func TestBuildWithNonZeroFirstSectionReachesLevelTwo(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	const begin = 5
	const count = 8
	const size = 256
	writeManifestLogWithBegin(t, srcDir, begin, count, size)
	for i := begin; i < begin+count; i++ {
		writeUniformSlice(t, filepath.Join(srcDir, fmt.Sprintf("slice_%04d.tif", i)), size, 100)
	}

	cfg := config.NewConfig(srcDir,
		config.WithOutputDir(outDir),
		config.WithMaxThumbnailSize(128),
		config.WithSampleSize(0),
		config.WithWorkerThreads(2),
	)

	result, err := Build(context.Background(), cfg, reporter.NullReporter{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected task errors: %v", result.Errors)
	}
	if result.LastCompletedLevel != 1 {
		t.Fatalf("LastCompletedLevel = %d, want 1", result.LastCompletedLevel)
	}

	level1Dir := filepath.Join(outDir, "1")
	entries, err := os.ReadDir(level1Dir)
	if err != nil {
		t.Fatalf("read level 1 dir: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("level 1 file count = %d, want 4", len(entries))
	}
}
