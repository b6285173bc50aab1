package inventory

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/jikhanjung/ctharvester/internal/ctherrors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// BitDepth opens the manifest's first slice and determines whether it is an
// 8-bit or 16-bit grayscale image. TIFF is decoded directly to inspect the
// pixel type; other formats are decoded through image.Decode and classified
// by their Go image.Image concrete type.
func (m *Manifest) BitDepth() (int, error) {
	path := m.PathForSeq(m.SeqBegin)
	f, err := os.Open(path)
	if err != nil {
		return 0, ctherrors.NewFirstImageUnreadableError(path, err)
	}
	defer f.Close()

	if m.FileType == "tif" || m.FileType == "tiff" {
		img, err := tiff.Decode(f)
		if err != nil {
			return 0, ctherrors.NewFirstImageUnreadableError(path, err)
		}
		return bitDepthOf(img), nil
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, ctherrors.NewFirstImageUnreadableError(path, err)
	}
	return bitDepthOf(img), nil
}

// bitDepthOf classifies a decoded image's per-channel sample depth. 16-bit
// grayscale sources decode to image.Gray16 (or a 16-bit-per-channel color
// model); everything else is treated as 8-bit.
func bitDepthOf(img image.Image) int {
	switch img.(type) {
	case *image.Gray16:
		return 16
	case *image.NRGBA64, *image.RGBA64:
		return 16
	default:
		return 8
	}
}
