package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user for an output path when none was given on the
// command line.
type Prompter interface {
	PromptPath(ctx context.Context, kind FileKind) (string, error)
}

// LinePrompter reads the path as one line of text.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter that prints its question to out
// and reads the answer from in.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// PromptPath implements Prompter. An empty answer yields ErrNoOutput and
// a path of another kind yields ErrUnsupportedFileType.
func (p *LinePrompter) PromptPath(ctx context.Context, kind FileKind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(p.out, "Output %s file (%s): ", kind, strings.Join(kind.Extensions(), ", "))

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read output path: %w", err)
	}

	path := strings.TrimSpace(line)
	if path == "" {
		return "", ErrNoOutput
	}

	got, err := FileKindFromPath(path)
	if err != nil {
		return "", err
	}
	if got != kind {
		return "", fmt.Errorf("%s is a %s file, want %s: %w", path, got, kind, ErrUnsupportedFileType)
	}
	return path, nil
}
