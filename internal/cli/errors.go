package cli

import "errors"

// Static errors for command handling.
var (
	// ErrUsage is returned for unknown commands and missing or malformed flags.
	ErrUsage = errors.New("usage error")
	// ErrNoOutput is returned when no output path was given or entered.
	ErrNoOutput = errors.New("no output file selected")
	// ErrUnsupportedFileType is returned for a path whose extension is not
	// a known video, image or audio type.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
