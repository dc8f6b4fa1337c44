// Package apperrors defines the structured error type surfaced by every
// pipeline stage, following the teacher's convention of wrapping errors with
// %w and attaching fields a structured logger can pick up.
package apperrors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Kind enumerates the error kinds named in spec.md §7. TempoLowConfidence
// and EventsDroppedOutsideLookahead are intentionally absent: both are
// recovered locally and surfaced as result fields, never as errors.
type Kind string

const (
	UnsupportedFormat Kind = "UnsupportedFormat"
	Truncated         Kind = "Truncated"
	ChunkMismatch     Kind = "ChunkMismatch"
	TooShort          Kind = "TooShort"
	NoOnsets          Kind = "NoOnsets"
	TemplateUnknown   Kind = "TemplateUnknown"
	ThemeUnknown      Kind = "ThemeUnknown"
	Cancelled         Kind = "Cancelled"
)

// StageError is the structured error returned by any stage that fails.
type StageError struct {
	Stage     string
	Kind      Kind
	InputHash string
	Message   string
	Err       error
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// HashPCM computes the SHA-256 content hash of a PCM byte slice, the same
// content-identity idiom the teacher uses for track hashing
// (internal/scanner.hashFile, internal/analyzer/fallback.go hashFile).
func HashPCM(pcm []byte) string {
	sum := sha256.Sum256(pcm)
	return hex.EncodeToString(sum[:])
}

// New builds a StageError, computing the input hash from pcm (pass nil if
// the stage runs after decoding and the hash is already known upstream —
// callers should prefer NewWithHash in that case).
func New(stage string, kind Kind, pcm []byte, message string, err error) *StageError {
	return &StageError{
		Stage:     stage,
		Kind:      kind,
		InputHash: HashPCM(pcm),
		Message:   message,
		Err:       err,
	}
}

// NewNoHash builds a StageError for stages that run after decoding and
// don't have (or need) the original PCM bytes handy, such as the arranger
// rejecting an unknown theme or template name.
func NewNoHash(stage string, kind Kind, message string, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Message: message, Err: err}
}

// NewWithHash builds a StageError from an already-computed input hash, to
// avoid re-hashing the PCM buffer at every stage boundary.
func NewWithHash(stage string, kind Kind, inputHash, message string, err error) *StageError {
	return &StageError{
		Stage:     stage,
		Kind:      kind,
		InputHash: inputHash,
		Message:   message,
		Err:       err,
	}
}
