// Package apperror defines the error taxonomy shared by ingestion, retrieval and
// evaluation. Each kind is a struct carrying the failed operation and the cause,
// and matches its sentinel through errors.Is.
package apperror

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrExtraction: no text could be obtained from a source document.
	ErrExtraction = errors.New("text extraction failed")
	// ErrLLMCall: the LLM provider kept failing after retries.
	ErrLLMCall = errors.New("llm call failed")
	// ErrParse: the LLM answered with something that is not the expected JSON.
	ErrParse = errors.New("llm response parse failed")
	// ErrStorage: a document store backend failed.
	ErrStorage = errors.New("storage failure")
)

type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("extract %s: no text extracted", e.Source)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// LLMCallError is returned once the retry budget for a provider call is spent.
type LLMCallError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *LLMCallError) Error() string {
	return fmt.Sprintf("%s call failed after %d attempt(s): %v", e.Provider, e.Attempts, e.Err)
}

func (e *LLMCallError) Unwrap() error { return e.Err }

func (e *LLMCallError) Is(target error) bool { return target == ErrLLMCall }

type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Code classifies err for structured logs.
func Code(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancel"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrLLMCall):
		return "llm"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "unknown"
	}
}
