package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("ai: api key not configured")

	// ErrEmptyResponse is returned when the model produced no choices or no text.
	ErrEmptyResponse = errors.New("ai: empty response from model")

	// ErrEmptyEmbedding is returned when the embedding endpoint returned no vector.
	ErrEmptyEmbedding = errors.New("ai: empty embedding")
)

// ModelFormatError is returned when a JSON answer was required and the model
// produced something else. Raw keeps the untouched output for diagnosis.
type ModelFormatError struct {
	Raw string
	Err error
}

func (e *ModelFormatError) Error() string {
	return fmt.Sprintf("ai: model returned invalid JSON: %v", e.Err)
}

func (e *ModelFormatError) Unwrap() error {
	return e.Err
}
