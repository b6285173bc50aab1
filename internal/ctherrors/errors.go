// Package ctherrors provides structured error types for ctharvester.
package ctherrors

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindMissingLog means no reconstruction log file was found.
	KindMissingLog ErrorKind = iota
	// KindMissingKey means a required key was absent from the reconstruction log.
	KindMissingKey
	// KindInvalidRange means First/Last Section described an empty or inverted range.
	KindInvalidRange
	// KindFirstImageUnreadable means the first slice file could not be opened
	// to determine bit depth.
	KindFirstImageUnreadable
	// KindDecode means a source image failed to decode.
	KindDecode
	// KindWrite means persisting a generated thumbnail to disk failed.
	KindWrite
	// KindMissingSource means a source slice file named by the manifest did
	// not exist on disk.
	KindMissingSource
	// KindCancelled means the build was cancelled before completion.
	KindCancelled
	// KindStalled is informational: the pool detected no forward progress
	// for longer than the configured threshold. It never aborts a build.
	KindStalled
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingLog:
		return "missing reconstruction log"
	case KindMissingKey:
		return "missing manifest key"
	case KindInvalidRange:
		return "invalid slice range"
	case KindFirstImageUnreadable:
		return "first image unreadable"
	case KindDecode:
		return "image decode error"
	case KindWrite:
		return "thumbnail write error"
	case KindMissingSource:
		return "missing source slice"
	case KindCancelled:
		return "build cancelled"
	case KindStalled:
		return "pool stalled"
	default:
		return "unknown error"
	}
}

// Fatal reports whether errors of this kind abort the whole build rather
// than being recorded against a single task and tolerated.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindMissingLog, KindMissingKey, KindInvalidRange, KindFirstImageUnreadable:
		return true
	default:
		return false
	}
}

// CoreError is the main error type for manifest-level and task-local failures.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// TaskError wraps a CoreError with the output index and path it happened on,
// so a pool can report exactly which thumbnail failed.
type TaskError struct {
	OutputIndex int
	Path        string
	*CoreError
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s): %s", e.OutputIndex, e.Path, e.CoreError.Error())
}

func (e *TaskError) Unwrap() error {
	return e.CoreError
}

// NewMissingLogError reports that no reconstruction log was found in dir.
func NewMissingLogError(dir string) *CoreError {
	return &CoreError{Kind: KindMissingLog, Message: fmt.Sprintf("no reconstruction log found in %s", dir)}
}

// NewMissingKeyError reports that key was absent from the reconstruction log.
func NewMissingKeyError(key string) *CoreError {
	return &CoreError{Kind: KindMissingKey, Message: fmt.Sprintf("missing required key %q", key)}
}

// NewInvalidRangeError reports that first/last section describe an empty or inverted range.
func NewInvalidRangeError(first, last int) *CoreError {
	return &CoreError{Kind: KindInvalidRange, Message: fmt.Sprintf("invalid slice range [%d, %d]", first, last)}
}

// NewFirstImageUnreadableError reports that the first slice could not be opened.
func NewFirstImageUnreadableError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindFirstImageUnreadable, Message: fmt.Sprintf("cannot read %s", path), Underlying: underlying}
}

// NewDecodeError reports that a source image failed to decode.
func NewDecodeError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindDecode, Message: fmt.Sprintf("cannot decode %s", path), Underlying: underlying}
}

// NewWriteError reports that a generated thumbnail failed to persist.
func NewWriteError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindWrite, Message: fmt.Sprintf("cannot write %s", path), Underlying: underlying}
}

// NewMissingSourceError reports that a manifest-named slice file was absent.
func NewMissingSourceError(path string) *CoreError {
	return &CoreError{Kind: KindMissingSource, Message: fmt.Sprintf("missing source slice %s", path)}
}

// NewCancelledError reports that the build was cancelled.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "build was cancelled"}
}

// NewTaskError attaches output index and path context to a CoreError.
func NewTaskError(outputIndex int, path string, err *CoreError) *TaskError {
	return &TaskError{OutputIndex: outputIndex, Path: path, CoreError: err}
}

// IsKind checks whether err is (or wraps) a CoreError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled reports whether err represents a cancellation.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}
