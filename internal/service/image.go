// Package service runs image commands end to end: load the inputs through
// storage, apply one transform, encode for the output path and save.
//
// Nothing is written until the result has been encoded in memory, so a
// failing command never leaves a partial output behind.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/ironsheep/media-utils/internal/codec"
	"github.com/ironsheep/media-utils/internal/imaging"
	"github.com/ironsheep/media-utils/internal/storage"
)

// DefaultColorCount is the number of dominant colors Inspect reports when
// a request does not say.
const DefaultColorCount = 5

// ErrInvalidRequest is returned when a request fails validation.
var ErrInvalidRequest = errors.New("invalid request")

// Result describes a saved output image.
type Result struct {
	Output string `json:"output"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"` // file format, e.g. "png"
}

// ImageService executes image commands against a storage backend.
type ImageService struct {
	store    storage.Storage
	loader   *codec.Loader
	opts     codec.Options
	logger   *slog.Logger
	validate *validator.Validate
}

// NewImageService creates an ImageService. Decoded inputs are cached for
// the life of the service. A nil logger discards output.
func NewImageService(store storage.Storage, opts codec.Options, logger *slog.Logger) *ImageService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ImageService{
		store:    store,
		loader:   codec.NewLoader(store),
		opts:     opts,
		logger:   logger,
		validate: validator.New(),
	}
}

func (s *ImageService) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Load decodes the image at location.
func (s *ImageService) Load(ctx context.Context, location string) (*imaging.Image, error) {
	return s.loader.Load(ctx, location)
}

// save encodes img for output's extension and stores it.
func (s *ImageService) save(ctx context.Context, op string, img *imaging.Image, output string) (*Result, error) {
	format, err := codec.FormatFromPath(output)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, img, format, s.opts); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, output, &buf); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	// A later command may read the output back.
	s.loader.Evict(output)

	res := &Result{Output: output, Width: img.Width, Height: img.Height, Format: format.String()}
	s.logger.Info("image saved", "op", op, "output", output,
		"width", res.Width, "height", res.Height, "format", res.Format)
	return res, nil
}

// OverlayRequest pastes Top onto Base with its top-left corner at (X, Y).
type OverlayRequest struct {
	Base   string `json:"base" validate:"required"`
	Top    string `json:"top" validate:"required"`
	Output string `json:"output" validate:"required"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// Overlay runs an OverlayRequest.
func (s *ImageService) Overlay(ctx context.Context, req OverlayRequest) (*Result, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	s.logger.Debug("overlay", "base", req.Base, "top", req.Top, "x", req.X, "y", req.Y)

	base, err := s.loader.Load(ctx, req.Base)
	if err != nil {
		return nil, err
	}
	top, err := s.loader.Load(ctx, req.Top)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, "overlay", imaging.Overlay(base, top, req.X, req.Y), req.Output)
}

// CombineRequest lays Inputs out in a row or a column.
type CombineRequest struct {
	Inputs []string            `json:"inputs" validate:"dive,required"`
	Output string              `json:"output" validate:"required"`
	Mode   imaging.CombineMode `json:"mode"`
}

// Combine runs a CombineRequest.
func (s *ImageService) Combine(ctx context.Context, req CombineRequest) (*Result, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	s.logger.Debug("combine", "inputs", req.Inputs, "mode", req.Mode.String())

	images := make([]*imaging.Image, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		img, err := s.loader.Load(ctx, in)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	out, err := imaging.Combine(req.Mode, images)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, "combine", out, req.Output)
}

// FilterRequest applies one color filter to Input.
type FilterRequest struct {
	Input  string         `json:"input" validate:"required"`
	Output string         `json:"output" validate:"required"`
	Filter imaging.Filter `json:"filter"`
}

// Filter runs a FilterRequest.
func (s *ImageService) Filter(ctx context.Context, req FilterRequest) (*Result, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	s.logger.Debug("filter", "input", req.Input, "filter", req.Filter.String())

	img, err := s.loader.Load(ctx, req.Input)
	if err != nil {
		return nil, err
	}
	out, err := imaging.ApplyFilter(img, req.Filter)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, "filter", out, req.Output)
}

// ReshapeRequest masks Input to a shape.
type ReshapeRequest struct {
	Input  string        `json:"input" validate:"required"`
	Output string        `json:"output" validate:"required"`
	Shape  imaging.Shape `json:"shape"`
}

// Reshape runs a ReshapeRequest. Outputs in formats without alpha lose
// the transparent area to black.
func (s *ImageService) Reshape(ctx context.Context, req ReshapeRequest) (*Result, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	s.logger.Debug("reshape", "input", req.Input, "shape", req.Shape.String())

	img, err := s.loader.Load(ctx, req.Input)
	if err != nil {
		return nil, err
	}
	out, err := imaging.Reshape(img, req.Shape)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, "reshape", out, req.Output)
}

// InspectRequest asks for a summary of Input.
type InspectRequest struct {
	Input  string `json:"input" validate:"required"`
	Colors int    `json:"colors" validate:"gte=0,lte=256"` // 0 means DefaultColorCount
}

// Inspect runs an InspectRequest.
func (s *ImageService) Inspect(ctx context.Context, req InspectRequest) (*imaging.Info, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	count := req.Colors
	if count == 0 {
		count = DefaultColorCount
	}

	img, err := s.loader.Load(ctx, req.Input)
	if err != nil {
		return nil, err
	}
	info := imaging.Inspect(img, count)
	s.logger.Debug("inspect", "input", req.Input, "width", info.Width, "height", info.Height)
	return &info, nil
}
