package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Runner runs the external transcoder with the given argument list.
// A non-zero exit is reported as a *TranscodeError.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// Prober measures the duration of a media file in seconds. Runners that
// can also probe implement it.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// FFmpegRunner implements Runner and Prober with the ffmpeg and ffprobe CLIs.
type FFmpegRunner struct {
	ffmpegPath  string
	ffprobePath string
	logger      *slog.Logger
}

// NewFFmpegRunner creates an FFmpegRunner. Empty paths default to "ffmpeg"
// and "ffprobe" found via PATH. A nil logger discards output.
func NewFFmpegRunner(ffmpegPath, ffprobePath string, logger *slog.Logger) *FFmpegRunner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FFmpegRunner{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, logger: logger}
}

// Run executes ffmpeg and returns a *TranscodeError carrying its stderr
// if the command fails.
func (r *FFmpegRunner) Run(ctx context.Context, args []string) error {
	r.logger.Debug("running transcoder", "binary", r.ffmpegPath, "args", args)

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &TranscodeError{
			Args:       args,
			Diagnostic: stderr.String(),
			Err:        err,
		}
	}
	return nil
}

// Probe returns the container duration reported by ffprobe.
func (r *FFmpegRunner) Probe(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	r.logger.Debug("running probe", "binary", r.ffprobePath, "args", args)

	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, r.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, &TranscodeError{Args: args, Diagnostic: stderr.String(), Err: err}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}
