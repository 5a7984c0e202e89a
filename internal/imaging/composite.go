package imaging

import (
	"image/color"
	"math"
)

// Overlay draws top onto a copy of base with its top-left corner at (x, y)
// using source-over blending and returns the copy.
//
// Offsets may be negative or push top past base's edges; only the
// overlapping rectangle is blended. The result is RGBA8 if either image has
// alpha, RGB8 otherwise. For an opaque base each channel becomes
//
//	out = top*topAlpha + base*(1-topAlpha)
//
// and over a translucent base the color is divided by the resulting alpha
// topAlpha + baseAlpha*(1-topAlpha), so translucent layers keep their hue.
//
// Parameters:
//   - base: The background. Neither image is modified.
//   - top: The image drawn over base.
//   - x, y: Position of top's top-left corner in base's coordinates.
//
// Returns:
//   - *Image: A new image with base's size. When top does not overlap base
//     at all it is a plain copy of base, promoted to RGBA8 if top has alpha.
func Overlay(base, top *Image, x, y int) *Image {
	dst := convert(base, promotedFormat(base, top))
	paste(dst, top, x, y)
	return dst
}

// CombineHorizontal lays the images out left to right on a new canvas that
// is as wide as all of them together and as tall as the tallest one.
//
// Every image is top-aligned. Rows below a shorter image keep the canvas
// fill: transparent for RGBA8 results, black for RGB8 results.
//
// Parameters:
//   - images: The inputs in left-to-right order. They are not modified.
//
// Returns:
//   - *Image: RGBA8 if any input has alpha, RGB8 otherwise.
//   - error: Non-nil if the list is empty or holds an empty image.
//
// # Errors
//
//   - ErrEmptyInput when images is empty
//   - ErrInvalidImage when an entry is nil or has no pixels
func CombineHorizontal(images []*Image) (*Image, error) {
	if err := checkInputs("combine horizontal", images); err != nil {
		return nil, err
	}

	width, height := 0, 0
	for _, img := range images {
		width += img.Width
		height = max(height, img.Height)
	}

	canvas := NewImage(width, height, promotedFormat(images...))
	offset := 0
	for _, img := range images {
		paste(canvas, img, offset, 0)
		offset += img.Width
	}
	return canvas, nil
}

// CombineVertical stacks the images top to bottom, each left-aligned, on a
// canvas as wide as the widest image and as tall as all of them together.
func CombineVertical(images []*Image) (*Image, error) {
	if err := checkInputs("combine vertical", images); err != nil {
		return nil, err
	}

	width, height := 0, 0
	for _, img := range images {
		width = max(width, img.Width)
		height += img.Height
	}

	canvas := NewImage(width, height, promotedFormat(images...))
	offset := 0
	for _, img := range images {
		paste(canvas, img, 0, offset)
		offset += img.Height
	}
	return canvas, nil
}

// Combine dispatches to CombineHorizontal or CombineVertical. An unknown
// mode fails with ErrInvalidMode.
func Combine(mode CombineMode, images []*Image) (*Image, error) {
	switch mode {
	case Horizontal:
		return CombineHorizontal(images)
	case Vertical:
		return CombineVertical(images)
	default:
		return nil, &OpError{Op: "combine", Value: mode.String(), Err: ErrInvalidMode}
	}
}

func checkInputs(op string, images []*Image) error {
	if len(images) == 0 {
		return &OpError{Op: op, Err: ErrEmptyInput}
	}
	for _, img := range images {
		if img == nil || img.Width <= 0 || img.Height <= 0 {
			return &OpError{Op: op, Err: ErrInvalidImage}
		}
	}
	return nil
}

// paste blends src onto dst in place at offset (x, y), clipped to dst.
func paste(dst, src *Image, x, y int) {
	startX := max(0, x)
	startY := max(0, y)
	endX := min(dst.Width, x+src.Width)
	endY := min(dst.Height, y+src.Height)

	if startX >= endX || startY >= endY {
		return
	}

	for py := startY; py < endY; py++ {
		for px := startX; px < endX; px++ {
			blendOver(dst, px, py, src.NRGBAAt(px-x, py-y))
		}
	}
}

// blendOver composites top over pixel (x, y) of dst. RGB8 destinations are
// treated as opaque.
func blendOver(dst *Image, x, y int, top color.NRGBA) {
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+dst.Format.Channels()]

	switch top.A {
	case 0:
		return
	case 255:
		p[0], p[1], p[2] = top.R, top.G, top.B
		if dst.Format == RGBA8 {
			p[3] = 255
		}
		return
	}

	ta := float64(top.A) / 255
	ba := 1.0
	if dst.Format == RGBA8 {
		ba = float64(p[3]) / 255
	}
	outA := ta + ba*(1-ta)

	for c, tc := range [3]uint8{top.R, top.G, top.B} {
		v := (float64(tc)*ta + float64(p[c])*ba*(1-ta)) / outA
		p[c] = uint8(math.Round(v))
	}
	if dst.Format == RGBA8 {
		p[3] = uint8(math.Round(outA * 255))
	}
}

// applyMask scales the alpha of every pixel of img by the alpha of the
// matching mask pixel. Pixels under mask alpha 0 are cleared to transparent
// black. Both images must be RGBA8 with equal dimensions.
func applyMask(img, mask *Image) {
	for i := 0; i < len(img.Pix); i += 4 {
		switch m := mask.Pix[i+3]; m {
		case 255:
		case 0:
			img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
		default:
			img.Pix[i+3] = uint8((uint32(img.Pix[i+3])*uint32(m) + 127) / 255)
		}
	}
}
