package domain

import "errors"

var (
	// ErrExtractionFailure the model call failed or returned an unusable result
	ErrExtractionFailure = errors.New("extraction failure")
	// ErrContentEmpty note content is empty
	ErrContentEmpty = errors.New("note content is empty")
	// ErrNoteNotFound note does not exist
	ErrNoteNotFound = errors.New("note not found")
)
