package codec

import (
	"fmt"

	"github.com/pkg/errors"
)

// Static errors for the codec boundary.
var (
	// ErrDecode is returned when bytes cannot be decoded into an image.
	ErrDecode = errors.New("decode failure")
	// ErrEncode is returned when an image cannot be encoded.
	ErrEncode = errors.New("encode failure")
	// ErrUnsupportedFormat is returned for extensions with no known container.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Error is a codec failure. It matches both its Kind sentinel and the
// underlying library error with errors.Is.
type Error struct {
	Kind error  // ErrDecode, ErrEncode or ErrUnsupportedFormat
	Path string // location being read or written, may be empty
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// withPath returns err with its Path set when it is a codec *Error.
func withPath(err error, path string) error {
	var cerr *Error
	if errors.As(err, &cerr) && cerr.Path == "" {
		cp := *cerr
		cp.Path = path
		return &cp
	}
	return err
}
