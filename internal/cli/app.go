// Package cli parses media-utils command lines and runs them.
//
// Named variants (combine modes, filters, shapes) are resolved here, once,
// before any file is read. When a command that writes a file is given no
// -o flag, the output path is asked for through a Prompter.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/ironsheep/media-utils/internal/imaging"
	"github.com/ironsheep/media-utils/internal/media"
	"github.com/ironsheep/media-utils/internal/service"
)

// App dispatches command lines to the image service, the media processor
// and the protocol server.
type App struct {
	Images   *service.ImageService
	Media    *media.Processor
	Prompter Prompter                        // nil disables prompting
	Serve    func(ctx context.Context) error // runs "serve"
	Stdout   io.Writer
	Stderr   io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, args []string) error
}

// Run executes one command line, without the program name. Asking for
// help is not an error.
func (a *App) Run(ctx context.Context, args []string) error {
	err := a.run(ctx, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

func (a *App) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	switch args[0] {
	case "image":
		return a.dispatch(ctx, "image", args[1:], a.imageCommands())
	case "video":
		return a.dispatch(ctx, "video", args[1:], a.videoCommands())
	case "audio":
		return a.dispatch(ctx, "audio", args[1:], a.audioCommands())
	case "convert":
		return a.convert(ctx, args[1:])
	case "serve":
		if a.Serve == nil {
			return fmt.Errorf("%w: serve is not available", ErrUsage)
		}
		return a.Serve(ctx)
	case "-h", "-help", "--help", "help":
		a.usage()
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func (a *App) dispatch(ctx context.Context, group string, args []string, cmds map[string]command) error {
	if len(args) == 0 {
		a.groupUsage(group, cmds)
		return fmt.Errorf("%w: missing %s command", ErrUsage, group)
	}
	switch args[0] {
	case "-h", "-help", "--help", "help":
		a.groupUsage(group, cmds)
		return nil
	}

	cmd, ok := cmds[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown %s command %q", ErrUsage, group, args[0])
	}
	return cmd.run(ctx, args[1:])
}

func (a *App) usage() {
	fmt.Fprint(a.stderr(), `Usage:
  media-utils image <command> [options]    Overlay, combine, filter, reshape and inspect images
  media-utils video <command> [options]    Edit video files with ffmpeg
  media-utils audio <command> [options]    Edit audio files with ffmpeg
  media-utils convert -i <in> -o <out>     Convert between container formats
  media-utils serve                        Serve the image tools over MCP on stdin/stdout

Run "media-utils <group> help" for the commands of a group.
`)
}

func (a *App) groupUsage(group string, cmds map[string]command) {
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	slices.Sort(names)

	w := a.stderr()
	fmt.Fprintf(w, "Usage: media-utils %s <command> [options]\n\nCommands:\n", group)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, cmds[name].summary)
	}
}

func (a *App) stdout() io.Writer {
	if a.Stdout == nil {
		return os.Stdout
	}
	return a.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Stderr == nil {
		return os.Stderr
	}
	return a.Stderr
}

// output returns given, or asks for a path of kind when it is empty.
func (a *App) output(ctx context.Context, given string, kind FileKind) (string, error) {
	if given != "" {
		return given, nil
	}
	if a.Prompter == nil {
		return "", ErrNoOutput
	}
	return a.Prompter.PromptPath(ctx, kind)
}

func (a *App) report(res *service.Result) {
	fmt.Fprintf(a.stdout(), "%s: %dx%d %s\n", res.Output, res.Width, res.Height, res.Format)
}

// stringList collects a repeated flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr())
	return fs
}

// stringFlag registers a short and a long name for the same string.
func stringFlag(fs *flag.FlagSet, p *string, short, long, usage string) {
	fs.StringVar(p, short, "", usage)
	fs.StringVar(p, long, "", usage)
}

func listFlag(fs *flag.FlagSet, p *stringList, short, long, usage string) {
	fs.Var(p, short, usage)
	fs.Var(p, long, usage)
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

func required(flagName, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrUsage, flagName)
	}
	return nil
}

// === image ===

func (a *App) imageCommands() map[string]command {
	return map[string]command{
		"overlay":      {"Overlay one image on top of another", a.imageOverlay},
		"combine":      {"Combine images side by side or vertically", a.imageCombine},
		"filter":       {"Apply a color filter to an image", a.imageFilter},
		"reshape":      {"Mask an image to a circle, square or rounded rectangle", a.imageReshape},
		"create-video": {"Create a video from a still image", a.imageCreateVideo},
		"inspect":      {"Print size, format and colors of an image as JSON", a.imageInspect},
	}
}

func (a *App) imageOverlay(ctx context.Context, args []string) error {
	fs := a.newFlagSet("image overlay")
	var in, top, out string
	var x, y int
	stringFlag(fs, &in, "i", "input", "base image")
	stringFlag(fs, &top, "l", "overlay", "image placed on top")
	stringFlag(fs, &out, "o", "output", "output image (asked for when omitted)")
	fs.IntVar(&x, "x", 0, "X position for overlay")
	fs.IntVar(&y, "y", 0, "Y position for overlay")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("-i", in); err != nil {
		return err
	}
	if err := required("-l", top); err != nil {
		return err
	}

	out, err := a.output(ctx, out, Image)
	if err != nil {
		return err
	}
	res, err := a.Images.Overlay(ctx, service.OverlayRequest{Base: in, Top: top, Output: out, X: x, Y: y})
	if err != nil {
		return err
	}
	a.report(res)
	return nil
}

func (a *App) imageCombine(ctx context.Context, args []string) error {
	fs := a.newFlagSet("image combine")
	var inputs stringList
	var out, modeName string
	listFlag(fs, &inputs, "i", "inputs", "input image, repeat for each")
	stringFlag(fs, &out, "o", "output", "output image (asked for when omitted)")
	stringFlag(fs, &modeName, "m", "mode", "combine mode: horizontal or vertical")
	if err := parse(fs, args); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return &imaging.OpError{Op: "combine", Err: imaging.ErrEmptyInput}
	}
	mode, err := imaging.ParseCombineMode(modeName)
	if err != nil {
		return err
	}

	out, err = a.output(ctx, out, Image)
	if err != nil {
		return err
	}
	res, err := a.Images.Combine(ctx, service.CombineRequest{Inputs: inputs, Output: out, Mode: mode})
	if err != nil {
		return err
	}
	a.report(res)
	return nil
}

func (a *App) imageFilter(ctx context.Context, args []string) error {
	fs := a.newFlagSet("image filter")
	var in, out, name string
	var intensity float64
	stringFlag(fs, &in, "i", "input", "input image")
	stringFlag(fs, &out, "o", "output", "output image (asked for when omitted)")
	stringFlag(fs, &name, "f", "filter", "filter type: grayscale, brightness, contrast, blur")
	fs.Float64Var(&intensity, "intensity", 1.0, "filter intensity (for brightness, contrast, blur)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("-i", in); err != nil {
		return err
	}
	filter, err := imaging.ParseFilter(name, intensity)
	if err != nil {
		return err
	}

	out, err = a.output(ctx, out, Image)
	if err != nil {
		return err
	}
	res, err := a.Images.Filter(ctx, service.FilterRequest{Input: in, Output: out, Filter: filter})
	if err != nil {
		return err
	}
	a.report(res)
	return nil
}

func (a *App) imageReshape(ctx context.Context, args []string) error {
	fs := a.newFlagSet("image reshape")
	var in, out, name string
	var radius uint
	stringFlag(fs, &in, "i", "input", "input image")
	stringFlag(fs, &out, "o", "output", "output image (asked for when omitted)")
	fs.StringVar(&name, "shape", "", "shape type: circle, square, rounded")
	fs.UintVar(&radius, "radius", 30, "border radius for rounded shape")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("-i", in); err != nil {
		return err
	}
	if radius > math.MaxUint32 {
		return fmt.Errorf("%w: -radius %d is too large", ErrUsage, radius)
	}
	shape, err := imaging.ParseShape(name, uint32(radius))
	if err != nil {
		return err
	}

	out, err = a.output(ctx, out, Image)
	if err != nil {
		return err
	}
	res, err := a.Images.Reshape(ctx, service.ReshapeRequest{Input: in, Output: out, Shape: shape})
	if err != nil {
		return err
	}
	a.report(res)
	return nil
}

func (a *App) imageCreateVideo(ctx context.Context, args []string) error {
	fs := a.newFlagSet("image create-video")
	var in, out string
	var seconds uint
	stringFlag(fs, &in, "i", "input", "input image")
	stringFlag(fs, &out, "o", "output", "output video (asked for when omitted)")
	fs.UintVar(&seconds, "duration", 0, "duration of the video in seconds")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("-i", in); err != nil {
		return err
	}
	if seconds == 0 {
		return fmt.Errorf("%w: -duration must be positive", ErrUsage)
	}

	img, err := a.Images.Load(ctx, in)
	if err != nil {
		return err
	}
	out, err = a.output(ctx, out, Video)
	if err != nil {
		return err
	}
	return a.Media.CreateVideoFromImage(ctx, media.CreateVideoRequest{Image: img, Output: out, Seconds: seconds})
}

func (a *App) imageInspect(ctx context.Context, args []string) error {
	fs := a.newFlagSet("image inspect")
	var in string
	var colors int
	stringFlag(fs, &in, "i", "input", "input image")
	fs.IntVar(&colors, "colors", service.DefaultColorCount, "number of dominant colors to report")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("-i", in); err != nil {
		return err
	}

	info, err := a.Images.Inspect(ctx, service.InspectRequest{Input: in, Colors: colors})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.stdout())
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

// === video ===

func (a *App) videoCommands() map[string]command {
	return map[string]command{
		"extract-audio": {"Extract the audio track of a video", a.videoExtractAudio},
		"mute":          {"Remove the audio track of a video", a.videoMute},
		"trim":          {"Keep the part of a video between two points", a.videoTrim},
		"cut":           {"Remove the part of a video between two points", a.videoCut},
		"replace-audio": {"Replace the audio track of a video", a.videoReplaceAudio},
		"combine":       {"Stack or overlay videos", a.videoCombine},
	}
}

// ioFlags parses the -i/-o pair shared by single-input commands.
func (a *App) ioFlags(ctx context.Context, name string, args []string, kind FileKind, extra func(fs *flag.FlagSet)) (media.IORequest, error) {
	fs := a.newFlagSet(name)
	var req media.IORequest
	stringFlag(fs, &req.Input, "i", "input", "input file")
	stringFlag(fs, &req.Output, "o", "output", "output file (asked for when omitted)")
	if extra != nil {
		extra(fs)
	}
	if err := parse(fs, args); err != nil {
		return req, err
	}
	if err := required("-i", req.Input); err != nil {
		return req, err
	}
	out, err := a.output(ctx, req.Output, kind)
	if err != nil {
		return req, err
	}
	req.Output = out
	return req, nil
}

func (a *App) videoExtractAudio(ctx context.Context, args []string) error {
	req, err := a.ioFlags(ctx, "video extract-audio", args, Audio, nil)
	if err != nil {
		return err
	}
	return a.Media.ExtractAudio(ctx, req)
}

func (a *App) videoMute(ctx context.Context, args []string) error {
	req, err := a.ioFlags(ctx, "video mute", args, Video, nil)
	if err != nil {
		return err
	}
	return a.Media.Mute(ctx, req)
}

func (a *App) videoTrim(ctx context.Context, args []string) error {
	var start, end string
	req, err := a.ioFlags(ctx, "video trim", args, Video, func(fs *flag.FlagSet) {
		stringFlag(fs, &start, "s", "start", "start time in seconds or HH:MM:SS format")
		stringFlag(fs, &end, "e", "end", "end time in seconds or HH:MM:SS format")
	})
	if err != nil {
		return err
	}
	return a.Media.Trim(ctx, media.TrimRequest{Input: req.Input, Output: req.Output, Start: start, End: end})
}

func (a *App) videoCut(ctx context.Context, args []string) error {
	var start, end string
	req, err := a.ioFlags(ctx, "video cut", args, Video, func(fs *flag.FlagSet) {
		stringFlag(fs, &start, "s", "start", "start cut point in seconds or HH:MM:SS format")
		stringFlag(fs, &end, "e", "end", "end cut point in seconds or HH:MM:SS format")
	})
	if err != nil {
		return err
	}
	return a.Media.Cut(ctx, media.CutRequest{Input: req.Input, Output: req.Output, Start: start, End: end})
}

func (a *App) videoReplaceAudio(ctx context.Context, args []string) error {
	fs := a.newFlagSet("video replace-audio")
	var req media.ReplaceAudioRequest
	stringFlag(fs, &req.Video, "v", "video", "input video")
	stringFlag(fs, &req.Audio, "a", "audio", "replacement audio")
	stringFlag(fs, &req.Output, "o", "output", "output video (asked for when omitted)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("-v", req.Video); err != nil {
		return err
	}
	if err := required("-a", req.Audio); err != nil {
		return err
	}

	out, err := a.output(ctx, req.Output, Video)
	if err != nil {
		return err
	}
	req.Output = out
	return a.Media.ReplaceAudio(ctx, req)
}

func (a *App) videoCombine(ctx context.Context, args []string) error {
	fs := a.newFlagSet("video combine")
	var inputs stringList
	var out, modeName string
	listFlag(fs, &inputs, "i", "inputs", "input video, repeat for each")
	stringFlag(fs, &out, "o", "output", "output video (asked for when omitted)")
	stringFlag(fs, &modeName, "m", "mode", "combine mode: horizontal, vertical, or overlay")
	if err := parse(fs, args); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return media.ErrNoInputs
	}
	mode, err := media.ParseVideoCombineMode(modeName)
	if err != nil {
		return err
	}

	out, err = a.output(ctx, out, Video)
	if err != nil {
		return err
	}
	return a.Media.CombineVideos(ctx, media.CombineVideosRequest{Inputs: inputs, Output: out, Mode: mode})
}

// === audio ===

func (a *App) audioCommands() map[string]command {
	return map[string]command{
		"combine":  {"Join audio files end to end", a.audioCombine},
		"volume":   {"Change audio volume", a.audioVolume},
		"duration": {"Print the duration of an audio file in seconds", a.audioDuration},
	}
}

func (a *App) audioCombine(ctx context.Context, args []string) error {
	fs := a.newFlagSet("audio combine")
	var inputs stringList
	var out string
	listFlag(fs, &inputs, "i", "inputs", "input audio file, repeat for each")
	stringFlag(fs, &out, "o", "output", "output file (asked for when omitted)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return media.ErrNoInputs
	}

	out, err := a.output(ctx, out, Audio)
	if err != nil {
		return err
	}
	return a.Media.CombineAudio(ctx, media.CombineAudioRequest{Inputs: inputs, Output: out})
}

func (a *App) audioVolume(ctx context.Context, args []string) error {
	var factor float64
	req, err := a.ioFlags(ctx, "audio volume", args, Audio, func(fs *flag.FlagSet) {
		fs.Float64Var(&factor, "v", 1.0, "volume multiplier (e.g. 0.5 for half volume, 2.0 for double)")
		fs.Float64Var(&factor, "volume", 1.0, "volume multiplier")
	})
	if err != nil {
		return err
	}
	return a.Media.Volume(ctx, media.VolumeRequest{Input: req.Input, Output: req.Output, Factor: factor})
}

func (a *App) audioDuration(ctx context.Context, args []string) error {
	fs := a.newFlagSet("audio duration")
	var in string
	stringFlag(fs, &in, "i", "input", "input audio file")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("-i", in); err != nil {
		return err
	}

	d, err := a.Media.AudioDuration(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout(), "%.3f\n", d.Seconds())
	return nil
}

// === convert ===

func (a *App) convert(ctx context.Context, args []string) error {
	fs := a.newFlagSet("convert")
	var req media.ConvertRequest
	var extra string
	stringFlag(fs, &req.Input, "i", "input", "input file")
	stringFlag(fs, &req.Output, "o", "output", "output file (asked for when omitted)")
	stringFlag(fs, &extra, "e", "extra-args", "additional ffmpeg parameters")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required("-i", req.Input); err != nil {
		return err
	}

	if req.Output == "" {
		kind, err := FileKindFromPath(req.Input)
		if err != nil {
			return err
		}
		if req.Output, err = a.output(ctx, "", kind); err != nil {
			return err
		}
	}
	req.Extra = strings.Fields(extra)
	return a.Media.Convert(ctx, req)
}
