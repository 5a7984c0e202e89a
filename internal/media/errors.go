package media

import (
	"errors"
	"strings"
)

// Static errors for media operations.
var (
	// ErrTranscode is returned when the transcoder exits unsuccessfully.
	ErrTranscode = errors.New("transcode failure")
	// ErrNoInputs is returned when an operation gets an empty input list.
	ErrNoInputs = errors.New("at least one input file is required")
	// ErrTooFewInputs is returned when stacking videos gets a single input.
	ErrTooFewInputs = errors.New("stacking requires at least two input files")
	// ErrInvalidMode is returned for an unrecognized video combine mode.
	ErrInvalidMode = errors.New("invalid combine mode, use horizontal, vertical or overlay")
	// ErrOverlayInputs is returned when overlay mode does not get exactly two inputs.
	ErrOverlayInputs = errors.New("overlay mode requires exactly two input files")
	// ErrUnsupportedAudio is returned when a duration cannot be measured.
	ErrUnsupportedAudio = errors.New("unsupported audio container")
	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// TranscodeError is a failed transcoder run. Its message is the tool's
// diagnostic output, verbatim.
type TranscodeError struct {
	Args       []string
	Diagnostic string
	Err        error // exit error from the process, may be nil
}

func (e *TranscodeError) Error() string {
	diag := strings.TrimRight(e.Diagnostic, "\n")
	if diag == "" && e.Err != nil {
		diag = e.Err.Error()
	}
	return "ffmpeg error: " + diag
}

func (e *TranscodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTranscode}
	}
	return []error{ErrTranscode, e.Err}
}
