// Package inventory parses the reconstruction log written alongside a CT
// slice stack and enumerates the slice files it describes.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jikhanjung/ctharvester/internal/ctherrors"
	"gopkg.in/ini.v1"
)

// Manifest describes a validated source slice stack: the naming convention,
// the file type, and the inclusive sequence range.
type Manifest struct {
	Prefix      string
	IndexLength int
	FileType    string // "tif", "bmp", "jpg", "png" (normalized, no leading dot)
	SeqBegin    int
	SeqEnd      int
	ImageWidth  int
	ImageHeight int

	dir string
}

// Dir returns the source directory this manifest was loaded from.
func (m *Manifest) Dir() string {
	return m.dir
}

// Count returns the number of slices in [SeqBegin, SeqEnd].
func (m *Manifest) Count() int {
	return m.SeqEnd - m.SeqBegin + 1
}

// FilenameForSeq derives the on-disk filename for a level-0 source slice.
func (m *Manifest) FilenameForSeq(seq int) string {
	return fmt.Sprintf("%s%s.%s", m.Prefix, zeroPad(seq, m.IndexLength), m.FileType)
}

// PathForSeq joins Dir() and FilenameForSeq(seq).
func (m *Manifest) PathForSeq(seq int) string {
	return filepath.Join(m.dir, m.FilenameForSeq(seq))
}

func zeroPad(n, width int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

const (
	keyPrefix      = "Filename Prefix"
	keyIndexLength = "Filename Index Length"
	keyFileType    = "Result File Type"
	keyWidth       = "Result Image Width (pixels)"
	keyHeight      = "Result Image Height (pixels)"
	keyFirst       = "First Section"
	keyLast        = "Last Section"
)

var requiredKeys = []string{keyPrefix, keyIndexLength, keyFileType, keyWidth, keyHeight, keyFirst, keyLast}

// LoadManifest locates the single *.log reconstruction log in dir, parses
// it, and validates the required keys and range.
func LoadManifest(dir string) (*Manifest, error) {
	logPath, err := findLogFile(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := ini.Load(logPath)
	if err != nil {
		return nil, ctherrors.NewMissingLogError(dir)
	}
	section := cfg.Section("") // no section headers in this log format

	for _, key := range requiredKeys {
		if !section.HasKey(key) {
			return nil, ctherrors.NewMissingKeyError(key)
		}
	}

	indexLength, err := section.Key(keyIndexLength).Int()
	if err != nil {
		return nil, ctherrors.NewMissingKeyError(keyIndexLength)
	}
	width, err := section.Key(keyWidth).Int()
	if err != nil {
		return nil, ctherrors.NewMissingKeyError(keyWidth)
	}
	height, err := section.Key(keyHeight).Int()
	if err != nil {
		return nil, ctherrors.NewMissingKeyError(keyHeight)
	}
	first, err := section.Key(keyFirst).Int()
	if err != nil {
		return nil, ctherrors.NewMissingKeyError(keyFirst)
	}
	last, err := section.Key(keyLast).Int()
	if err != nil {
		return nil, ctherrors.NewMissingKeyError(keyLast)
	}

	if last < first {
		return nil, ctherrors.NewInvalidRangeError(first, last)
	}

	fileType := strings.ToLower(strings.TrimPrefix(section.Key(keyFileType).String(), "."))

	m := &Manifest{
		Prefix:      section.Key(keyPrefix).String(),
		IndexLength: indexLength,
		FileType:    fileType,
		SeqBegin:    first,
		SeqEnd:      last,
		ImageWidth:  width,
		ImageHeight: height,
		dir:         dir,
	}
	return m, nil
}

// findLogFile returns the *.log file in dir, erroring if none is found. When
// several are present, the first in sorted name order is used.
func findLogFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ctherrors.NewMissingLogError(dir)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".log") {
			candidates = append(candidates, filepath.Join(dir, e.Name()))
		}
	}

	if len(candidates) == 0 {
		return "", ctherrors.NewMissingLogError(dir)
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

// MissingSlice records a gap found while enumerating the manifest's range.
type MissingSlice struct {
	Seq  int
	Path string
}

// Slices enumerates every sequence number in [SeqBegin, SeqEnd], reporting
// which ones are present on disk and which are missing. The pyramid build
// does not call it; gaps there are handled per task by the pixel worker.
func (m *Manifest) Slices() (present []int, missing []MissingSlice) {
	for seq := m.SeqBegin; seq <= m.SeqEnd; seq++ {
		path := m.PathForSeq(seq)
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, MissingSlice{Seq: seq, Path: path})
			continue
		}
		present = append(present, seq)
	}
	return present, missing
}
