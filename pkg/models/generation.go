package models

import "github.com/google/uuid"

// GenerationOutcome is the terminal state of a generation request.
type GenerationOutcome string

const (
	// OutcomeSuccess means the final query passed schema validation.
	OutcomeSuccess GenerationOutcome = "success"
	// OutcomeExhausted means the attempt bound was reached without a
	// valid query; the last query is still returned.
	OutcomeExhausted GenerationOutcome = "exhausted"
)

// GenerationResult is the outcome of one generate-validate-repair run.
// ValidationErrors accumulates the errors of every failed validation pass,
// in order; on success after repairs it still holds the earlier failures.
type GenerationResult struct {
	RequestID        uuid.UUID         `json:"request_id"`
	Question         string            `json:"question"`
	SchemaBlock      string            `json:"schema_block"`
	RawResponse      string            `json:"raw_response"`
	SQL              string            `json:"sql"`
	Attempts         int               `json:"attempts"`
	Outcome          GenerationOutcome `json:"outcome"`
	ValidationErrors []string          `json:"validation_errors,omitempty"`
	LastValidation   ValidationResult  `json:"last_validation"`
}
