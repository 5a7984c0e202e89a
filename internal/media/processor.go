// Package media builds argument lists for audio and video operations and
// hands them to an injected transcoder Runner.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ironsheep/media-utils/internal/codec"
	"github.com/ironsheep/media-utils/internal/imaging"
)

// TempStore hands out scratch files for multi-step operations.
// storage.LocalStorage satisfies it.
type TempStore interface {
	SaveTemp(ctx context.Context, pattern string, data io.Reader) (string, error)
	TempPath(ctx context.Context, pattern string) (string, error)
	CleanupTemp(ctx context.Context, paths []string) error
}

// Processor implements the audio/video operations on top of a Runner.
type Processor struct {
	runner   Runner
	temp     TempStore
	validate *validator.Validate
}

var timecodePattern = regexp.MustCompile(`^(\d+(\.\d+)?|\d{1,2}:\d{2}:\d{2}(\.\d+)?)$`)

// NewProcessor creates a Processor. temp provides the scratch files used by
// Cut and CreateVideoFromImage.
func NewProcessor(runner Runner, temp TempStore) *Processor {
	return &Processor{runner: runner, temp: temp, validate: newValidator()}
}

// newValidator returns a validator that knows the "timecode" tag. It
// panics if the tag cannot be registered.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("timecode", validTimecode); err != nil {
		panic(fmt.Sprintf("media: register timecode validation: %v", err))
	}
	return v
}

// validTimecode accepts seconds ("12.5") or HH:MM:SS[.fff].
func validTimecode(fl validator.FieldLevel) bool {
	return timecodePattern.MatchString(fl.Field().String())
}

func (p *Processor) check(req any) error {
	if err := p.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// ConvertRequest re-encodes Input into the container implied by Output.
type ConvertRequest struct {
	Input  string   `validate:"required"`
	Output string   `validate:"required"`
	Extra  []string // extra ffmpeg arguments placed before Output
}

// Convert runs: -i in -y [extra...] out
func (p *Processor) Convert(ctx context.Context, req ConvertRequest) error {
	if err := p.check(req); err != nil {
		return err
	}
	args := []string{"-i", req.Input, "-y"}
	args = append(args, req.Extra...)
	args = append(args, req.Output)
	return p.runner.Run(ctx, args)
}

// IORequest names one input and one output file.
type IORequest struct {
	Input  string `validate:"required"`
	Output string `validate:"required"`
}

// ExtractAudio drops the video stream. The audio encoder follows the
// output extension, falling back to stream copy.
func (p *Processor) ExtractAudio(ctx context.Context, req IORequest) error {
	if err := p.check(req); err != nil {
		return err
	}
	codecName := audioCodecFor(req.Output, "copy")
	args := []string{"-i", req.Input, "-vn", "-acodec", codecName, "-y"}
	if codecName == PCMCodec {
		args = append(args, pcmArgs...)
	}
	args = append(args, req.Output)
	return p.runner.Run(ctx, args)
}

// Mute drops the audio stream and copies the video stream.
func (p *Processor) Mute(ctx context.Context, req IORequest) error {
	if err := p.check(req); err != nil {
		return err
	}
	return p.runner.Run(ctx, []string{"-i", req.Input, "-an", "-c:v", "copy", "-y", req.Output})
}

// TrimRequest keeps the part of Input between Start and End. Either bound
// may be empty.
type TrimRequest struct {
	Input  string `validate:"required"`
	Output string `validate:"required"`
	Start  string `validate:"omitempty,timecode"`
	End    string `validate:"omitempty,timecode"`
}

// Trim runs: -i in [-ss start] [-to end] -c copy -y out
func (p *Processor) Trim(ctx context.Context, req TrimRequest) error {
	if err := p.check(req); err != nil {
		return err
	}
	args := []string{"-i", req.Input}
	if req.Start != "" {
		args = append(args, "-ss", req.Start)
	}
	if req.End != "" {
		args = append(args, "-to", req.End)
	}
	args = append(args, "-c", "copy", "-y", req.Output)
	return p.runner.Run(ctx, args)
}

// CutRequest removes the part of Input between Start and End.
type CutRequest struct {
	Input  string `validate:"required"`
	Output string `validate:"required"`
	Start  string `validate:"required,timecode"`
	End    string `validate:"required,timecode"`
}

// Cut writes the head (up to Start) and the tail (from End) of Input to
// scratch files with Input's extension, then joins them with the concat
// demuxer. Scratch files are removed on return.
func (p *Processor) Cut(ctx context.Context, req CutRequest) (err error) {
	if err := p.check(req); err != nil {
		return err
	}

	ext := filepath.Ext(req.Input)
	if ext == "" {
		ext = ".mp4"
	}

	var scratch []string
	defer func() {
		if cerr := p.temp.CleanupTemp(context.WithoutCancel(ctx), scratch); cerr != nil && err == nil {
			err = cerr
		}
	}()

	head, err := p.temp.TempPath(ctx, "cut_head_*"+ext)
	if err != nil {
		return err
	}
	scratch = append(scratch, head)

	tail, err := p.temp.TempPath(ctx, "cut_tail_*"+ext)
	if err != nil {
		return err
	}
	scratch = append(scratch, tail)

	if err := p.runner.Run(ctx, []string{"-i", req.Input, "-t", req.Start, "-c", "copy", "-y", head}); err != nil {
		return err
	}
	if err := p.runner.Run(ctx, []string{"-i", req.Input, "-ss", req.End, "-c", "copy", "-y", tail}); err != nil {
		return err
	}

	list, err := concatList([]string{head, tail})
	if err != nil {
		return err
	}
	listFile, err := p.temp.SaveTemp(ctx, "concat_*.txt", strings.NewReader(list))
	if err != nil {
		return err
	}
	scratch = append(scratch, listFile)

	return p.runner.Run(ctx, []string{"-f", "concat", "-safe", "0", "-i", listFile, "-c", "copy", "-y", req.Output})
}

// concatList renders paths in the format read by ffmpeg's concat demuxer.
func concatList(paths []string) (string, error) {
	var b strings.Builder
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("get absolute path for %s: %w", path, err)
		}
		// Escape single quotes in path
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(absPath, "'", "'\\''"))
	}
	return b.String(), nil
}

// ReplaceAudioRequest swaps the audio track of Video for Audio.
type ReplaceAudioRequest struct {
	Video  string `validate:"required"`
	Audio  string `validate:"required"`
	Output string `validate:"required"`
}

// ReplaceAudio copies the first video stream of Video and encodes the
// first audio stream of Audio, stopping at the shorter of the two.
func (p *Processor) ReplaceAudio(ctx context.Context, req ReplaceAudioRequest) error {
	if err := p.check(req); err != nil {
		return err
	}
	codecName := audioCodecFor(req.Audio, "aac")
	args := []string{
		"-i", req.Video,
		"-i", req.Audio,
		"-c:v", "copy",
		"-c:a", codecName,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
	}
	if codecName == PCMCodec {
		args = append(args, pcmArgs...)
	} else {
		args = append(args, "-b:a", "192k")
	}
	args = append(args, "-y", req.Output)
	return p.runner.Run(ctx, args)
}

// VideoCombineMode selects how CombineVideos lays out its inputs.
type VideoCombineMode int

const (
	StackHorizontal VideoCombineMode = iota + 1
	StackVertical
	OverlayVideos
)

func (m VideoCombineMode) String() string {
	switch m {
	case StackHorizontal:
		return "horizontal"
	case StackVertical:
		return "vertical"
	case OverlayVideos:
		return "overlay"
	default:
		return fmt.Sprintf("VideoCombineMode(%d)", int(m))
	}
}

// ParseVideoCombineMode resolves a mode name.
func ParseVideoCombineMode(name string) (VideoCombineMode, error) {
	switch name {
	case "horizontal":
		return StackHorizontal, nil
	case "vertical":
		return StackVertical, nil
	case "overlay":
		return OverlayVideos, nil
	default:
		return 0, fmt.Errorf("%q: %w", name, ErrInvalidMode)
	}
}

// CombineVideosRequest merges several videos into one.
type CombineVideosRequest struct {
	Inputs []string `validate:"dive,required"`
	Output string   `validate:"required"`
	Mode   VideoCombineMode
}

// CombineVideos stacks the inputs side by side or top to bottom, or
// overlays the second input on the first, and mixes all audio tracks.
func (p *Processor) CombineVideos(ctx context.Context, req CombineVideosRequest) error {
	if len(req.Inputs) == 0 {
		return ErrNoInputs
	}
	if err := p.check(req); err != nil {
		return err
	}

	n := len(req.Inputs)
	var video string
	switch req.Mode {
	case StackHorizontal, StackVertical:
		if n < 2 {
			return ErrTooFewInputs
		}
		video = stackFilter(n, req.Mode)
	case OverlayVideos:
		if n != 2 {
			return ErrOverlayInputs
		}
		video = "[0:v][1:v]overlay=0:0[v]"
	default:
		return fmt.Errorf("%s: %w", req.Mode, ErrInvalidMode)
	}

	var audio strings.Builder
	for i := range n {
		fmt.Fprintf(&audio, "[%d:a]", i)
	}
	fmt.Fprintf(&audio, "amix=inputs=%d:duration=longest[a]", n)

	var args []string
	for _, in := range req.Inputs {
		args = append(args, "-i", in)
	}
	args = append(args,
		"-filter_complex", video+";"+audio.String(),
		"-map", "[v]",
		"-map", "[a]",
		"-y", req.Output,
	)
	return p.runner.Run(ctx, args)
}

// stackFilter scales every input to keep its aspect ratio along the
// stacking axis and then stacks them.
func stackFilter(n int, mode VideoCombineMode) string {
	scale, stack := "scale=-1:ih", "hstack"
	if mode == StackVertical {
		scale, stack = "scale=iw:-1", "vstack"
	}

	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "[%d:v]%s[v%d];", i, scale, i)
	}
	for i := range n {
		fmt.Fprintf(&b, "[v%d]", i)
	}
	fmt.Fprintf(&b, "%s=inputs=%d[v]", stack, n)
	return b.String()
}

// CombineAudioRequest concatenates audio files in order.
type CombineAudioRequest struct {
	Inputs []string `validate:"dive,required"`
	Output string   `validate:"required"`
}

// CombineAudio joins the inputs end to end with the concat filter.
func (p *Processor) CombineAudio(ctx context.Context, req CombineAudioRequest) error {
	if len(req.Inputs) == 0 {
		return ErrNoInputs
	}
	if err := p.check(req); err != nil {
		return err
	}

	args := []string{"-y"}
	var filter strings.Builder
	for i, in := range req.Inputs {
		args = append(args, "-i", in)
		fmt.Fprintf(&filter, "[%d:a]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[out]", len(req.Inputs))

	args = append(args, "-filter_complex", filter.String(), "-map", "[out]", req.Output)
	return p.runner.Run(ctx, args)
}

// VolumeRequest scales the loudness of Input by Factor.
type VolumeRequest struct {
	Input  string  `validate:"required"`
	Output string  `validate:"required"`
	Factor float64 `validate:"gte=0"`
}

// Volume runs: -i in -filter:a volume=<factor> -y out
func (p *Processor) Volume(ctx context.Context, req VolumeRequest) error {
	if err := p.check(req); err != nil {
		return err
	}
	factor := strconv.FormatFloat(req.Factor, 'f', -1, 64)
	return p.runner.Run(ctx, []string{"-i", req.Input, "-filter:a", "volume=" + factor, "-y", req.Output})
}

// CreateVideoRequest loops a still image into a video.
type CreateVideoRequest struct {
	Image   *imaging.Image `validate:"required"`
	Output  string         `validate:"required"`
	Seconds uint           `validate:"gt=0"`
}

// CreateVideoFromImage encodes the frame as PNG into a scratch file and
// runs: -loop 1 -i frame.png -c:v libx264 -t N -pix_fmt yuv420p -y out
func (p *Processor) CreateVideoFromImage(ctx context.Context, req CreateVideoRequest) (err error) {
	if err := p.check(req); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, req.Image, codec.PNG, codec.DefaultOptions()); err != nil {
		return err
	}

	frame, err := p.temp.SaveTemp(ctx, "frame_*.png", &buf)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.temp.CleanupTemp(context.WithoutCancel(ctx), []string{frame}); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return p.runner.Run(ctx, []string{
		"-loop", "1",
		"-i", frame,
		"-c:v", "libx264",
		"-t", strconv.FormatUint(uint64(req.Seconds), 10),
		"-pix_fmt", "yuv420p",
		"-y", req.Output,
	})
}

// AudioDuration measures the playing time of the file at path. WAV files
// are read natively; other containers need a Runner that implements Prober.
func (p *Processor) AudioDuration(ctx context.Context, path string) (time.Duration, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		f, err := os.Open(path) // #nosec G304 - path comes from the command line
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return WAVDuration(f)
	}

	prober, ok := p.runner.(Prober)
	if !ok {
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedAudio)
	}
	seconds, err := prober.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
