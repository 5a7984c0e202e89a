package imaging

import (
	"errors"
	"fmt"
)

// Static errors for image operations.
var (
	// ErrEmptyInput is returned when a combine operation gets no images.
	ErrEmptyInput = errors.New("at least one input image is required")
	// ErrInvalidMode is returned for an unrecognized combine mode.
	ErrInvalidMode = errors.New("invalid combine mode, use horizontal or vertical")
	// ErrInvalidFilter is returned for an unrecognized filter name.
	ErrInvalidFilter = errors.New("invalid filter type, use grayscale, brightness, contrast or blur")
	// ErrInvalidShape is returned for an unrecognized shape name.
	ErrInvalidShape = errors.New("invalid shape type, use circle, square or rounded")
	// ErrInvalidImage is returned when an image has no pixels.
	ErrInvalidImage = errors.New("image width and height must be positive")
)

// OpError records the operation and offending value that caused a failure.
type OpError struct {
	Op    string // operation name, e.g. "combine" or "filter"
	Value string // offending value, may be empty
	Err   error
}

func (e *OpError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Value, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
