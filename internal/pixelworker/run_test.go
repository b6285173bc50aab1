package pixelworker

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jikhanjung/ctharvester/internal/inventory"
	"golang.org/x/image/tiff"
)

func writeGray8(t *testing.T, path string, w, h int, fill uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fill})
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

func writeGray16(t *testing.T, path string, w, h int, fill uint16) {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: fill})
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

func TestRunAveragesPairAndDownsamples(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	writeGray8(t, filepath.Join(srcDir, "slice_0000.tif"), 4, 4, 100)
	writeGray8(t, filepath.Join(srcDir, "slice_0001.tif"), 4, 4, 200)

	manifest := buildManifest(t, srcDir, "slice_", 4, "tif", 0, 1)

	task := Task{
		OutputIndex:      0,
		SourceSeq:        0,
		SourceSeqEnd:     1,
		SourceDir:        srcDir,
		TargetDir:        dstDir,
		Level:            0,
		Manifest:         manifest,
		Size:             2,
		MaxThumbnailSize: 512,
		WantArray:        true,
	}

	res := Run(context.Background(), task)
	if res.Err != nil {
		t.Fatalf("Run: %v", res.Err)
	}
	if !res.WasGenerated {
		t.Error("expected WasGenerated=true")
	}
	if res.Array == nil {
		t.Fatal("expected array result")
	}
	if res.Array.Width != 2 || res.Array.Height != 2 {
		t.Errorf("dims = %dx%d, want 2x2", res.Array.Width, res.Array.Height)
	}
	// avg(100,200)=150 for every pixel; downsample of uniform value is itself.
	for _, v := range res.Array.Pix {
		if v != 150 {
			t.Errorf("pixel = %d, want 150", v)
		}
	}

	outPath := filepath.Join(dstDir, "000000.tif")
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("expected output file at %s: %v", outPath, err)
	}
}

func TestRunOddTrailingSliceDownsamplesAlone(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	writeGray8(t, filepath.Join(srcDir, "slice_0002.tif"), 4, 4, 80)

	manifest := buildManifest(t, srcDir, "slice_", 4, "tif", 0, 2)

	task := Task{
		OutputIndex:      1,
		SourceSeq:        2,
		SourceSeqEnd:     2,
		SourceDir:        srcDir,
		TargetDir:        dstDir,
		Level:            0,
		Manifest:         manifest,
		Size:             2,
		MaxThumbnailSize: 512,
		WantArray:        true,
	}

	res := Run(context.Background(), task)
	if res.Err != nil {
		t.Fatalf("Run: %v", res.Err)
	}
	for _, v := range res.Array.Pix {
		if v != 80 {
			t.Errorf("pixel = %d, want 80", v)
		}
	}
}

func TestRunMixedBitDepthPromotes(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	writeGray8(t, filepath.Join(srcDir, "slice_0000.tif"), 2, 2, 255)
	writeGray16(t, filepath.Join(srcDir, "slice_0001.tif"), 2, 2, 65280) // 255 << 8

	manifest := buildManifest(t, srcDir, "slice_", 4, "tif", 0, 1)

	task := Task{
		OutputIndex:      0,
		SourceSeq:        0,
		SourceSeqEnd:     1,
		SourceDir:        srcDir,
		TargetDir:        dstDir,
		Level:            0,
		Manifest:         manifest,
		Size:             1,
		MaxThumbnailSize: 512,
		WantArray:        true,
	}

	res := Run(context.Background(), task)
	if res.Err != nil {
		t.Fatalf("Run: %v", res.Err)
	}
	if res.Array.BitDepth != 16 {
		t.Errorf("BitDepth = %d, want 16", res.Array.BitDepth)
	}
	// 255 promoted to 65280, averaged with 65280 -> 65280.
	for _, v := range res.Array.Pix {
		if v != 65280 {
			t.Errorf("pixel = %d, want 65280", v)
		}
	}
}

func TestRunReusesExistingOutput(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	writeGray8(t, filepath.Join(dstDir, "000000.tif"), 2, 2, 42)

	manifest := buildManifest(t, srcDir, "slice_", 4, "tif", 0, 1)

	task := Task{
		OutputIndex:      0,
		SourceSeq:        0,
		SourceSeqEnd:     1,
		SourceDir:        srcDir,
		TargetDir:        dstDir,
		Level:            0,
		Manifest:         manifest,
		Size:             2,
		MaxThumbnailSize: 512,
		WantArray:        true,
	}

	res := Run(context.Background(), task)
	if res.Err != nil {
		t.Fatalf("Run: %v", res.Err)
	}
	if res.WasGenerated {
		t.Error("expected WasGenerated=false when output already exists")
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	manifest := buildManifest(t, srcDir, "slice_", 4, "tif", 0, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := Task{SourceDir: srcDir, TargetDir: dstDir, Manifest: manifest, MaxThumbnailSize: 512}
	res := Run(ctx, task)
	if res.Err == nil {
		t.Fatal("expected cancellation error")
	}
}

func buildManifest(t *testing.T, dir, prefix string, indexLen int, fileType string, begin, end int) *inventory.Manifest {
	t.Helper()
	body := "Filename Prefix = " + prefix + "\n" +
		"Filename Index Length = 4\n" +
		"Result File Type = " + fileType + "\n" +
		"Result Image Width (pixels) = 4\n" +
		"Result Image Height (pixels) = 4\n" +
		"First Section = 0\n" +
		"Last Section = " + strconv.Itoa(end) + "\n"
	if err := os.WriteFile(filepath.Join(dir, "Reconstruction.log"), []byte(body), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	m, err := inventory.LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return m
}
