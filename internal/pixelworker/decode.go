package pixelworker

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jikhanjung/ctharvester/internal/ctherrors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// loadSlice opens and decodes a single source or intermediate image file
// into a PixelBuffer. TIFF files are decoded directly so 16-bit grayscale
// samples survive intact; other formats go through the generic
// image.Decode registry.
func loadSlice(path string) (*PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ctherrors.NewDecodeError(path, err)
	}
	defer f.Close()

	var img image.Image
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".tif" || ext == ".tiff" {
		img, err = tiff.Decode(f)
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, ctherrors.NewDecodeError(path, err)
	}
	return bufferFromImage(img), nil
}

// saveSlice persists buf as a TIFF file at path.
func saveSlice(path string, buf *PixelBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return ctherrors.NewWriteError(path, err)
	}
	defer f.Close()

	if err := tiff.Encode(f, buf.toImage(), nil); err != nil {
		return ctherrors.NewWriteError(path, err)
	}
	return nil
}
