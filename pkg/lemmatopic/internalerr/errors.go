package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Per-document, recoverable: the document contributes no chunks.
	ErrRead       = errors.New("read error")
	ErrAnnotation = errors.New("annotation error")

	// Fatal: the run is abandoned.
	ErrConfiguration = errors.New("configuration error")
	ErrFitting       = errors.New("fitting error")
)

// DocumentError ties a recoverable failure to the file that caused it.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Stage names used in StageError.
const (
	StageRead      = "read"
	StageAnnotate  = "annotate"
	StageChunk     = "chunk"
	StageAssemble  = "assemble"
	StageFit       = "fit"
	StageInspect   = "inspect"
	StagePersist   = "persist"
	StageConfigure = "configure"
)

// StageError is a fatal error naming the pipeline stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Stage wraps err in a StageError unless it is nil or already one.
func Stage(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// IsRecoverable reports whether err only affects a single document.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrRead) || errors.Is(err, ErrAnnotation)
}
