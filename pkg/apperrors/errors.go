package apperrors

import "errors"

var (
	ErrEmptyIndex         = errors.New("schema embedding index is empty")
	ErrMetadataMisaligned = errors.New("embedding metadata misaligned with vectors")
	ErrNoRelevantColumns  = errors.New("no relevant columns retrieved for question")
	ErrEmptyCompletion    = errors.New("completion response contained no output text")
)
