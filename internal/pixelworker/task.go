// Package pixelworker generates a single pyramid-level thumbnail by
// averaging a pair of source slices and downsampling the result 2x2.
package pixelworker

import (
	"fmt"
	"path/filepath"

	"github.com/jikhanjung/ctharvester/internal/inventory"
)

// Task describes one thumbnail to produce: which source slice(s) feed it,
// where to read and write, and how the result should be delivered.
type Task struct {
	OutputIndex      int
	SourceSeq        int
	SourceSeqBegin   int
	SourceSeqEnd     int
	SourceDir        string
	TargetDir        string
	Level            int
	Manifest         *inventory.Manifest
	Size             int
	MaxThumbnailSize int
	WantArray        bool
}

// Result carries the outcome of running a Task.
type Result struct {
	OutputIndex  int
	Array        *PixelBuffer
	WasGenerated bool
	Err          error
}

// filenames derives the two candidate source filenames and the output path
// for t, matching thumbnail_worker.py's _generate_filenames: level 0 reads
// the manifest-named source files, level 1+ reads simply-numbered thumbnails
// from the previous level's directory.
func (t Task) filenames() (first, second, output string) {
	if t.Level == 0 {
		first = t.Manifest.FilenameForSeq(t.SourceSeq)
		if t.SourceSeq+1 <= t.SourceSeqEnd {
			second = t.Manifest.FilenameForSeq(t.SourceSeq + 1)
		}
	} else {
		relSeq := t.SourceSeq - t.SourceSeqBegin
		first = fmt.Sprintf("%06d.tif", relSeq)
		if t.SourceSeq+1 <= t.SourceSeqEnd {
			second = fmt.Sprintf("%06d.tif", relSeq+1)
		}
	}
	output = filepath.Join(t.TargetDir, fmt.Sprintf("%06d.tif", t.OutputIndex))
	return first, second, output
}
