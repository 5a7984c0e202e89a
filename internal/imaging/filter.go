package imaging

import (
	"github.com/anthonynsimon/bild/math/f64"
	"github.com/disintegration/imaging"
)

// Grayscale replaces every pixel's color with its luma (0.299R + 0.587G + 0.114B,
// rounded) and leaves alpha unchanged. The format is preserved and applying
// it twice gives the same result as applying it once.
func Grayscale(img *Image) *Image {
	return fromNRGBA(imaging.Grayscale(img.NRGBA()), img.Format)
}

// Brightness multiplies the three color channels by factor and clamps them
// to [0, 255]. A factor of 1.0 returns an identical copy.
func Brightness(img *Image, factor float64) *Image {
	return mapColor(img, func(c float64) float64 {
		return c * factor
	})
}

// Contrast stretches the color channels around the midpoint 128:
//
//	c' = clamp((c - 128) * factor + 128, 0, 255)
//
// A factor of 1.0 returns an identical copy.
func Contrast(img *Image, factor float64) *Image {
	return mapColor(img, func(c float64) float64 {
		return (c-128)*factor + 128
	})
}

// Blur applies a Gaussian blur with standard deviation sigma. The result is
// always RGBA8, whatever the input format.
func Blur(img *Image, sigma float64) *Image {
	return fromNRGBA(imaging.Blur(img.NRGBA(), sigma), RGBA8)
}

// ApplyFilter runs the selected filter on a copy of img.
//
// Parameters:
//   - img: The source image. It is not modified.
//   - filter: The kind and its amount, usually built by ParseFilter.
//
// Returns:
//   - *Image: Same size as img. Blur always yields RGBA8; the other
//     filters keep img's format.
//   - error: ErrInvalidFilter (wrapped in *OpError) for an unknown kind.
func ApplyFilter(img *Image, filter Filter) (*Image, error) {
	switch filter.Kind {
	case FilterGrayscale:
		return Grayscale(img), nil
	case FilterBrightness:
		return Brightness(img, filter.Amount), nil
	case FilterContrast:
		return Contrast(img, filter.Amount), nil
	case FilterBlur:
		return Blur(img, filter.Amount), nil
	default:
		return nil, &OpError{Op: "filter", Value: filter.Kind.String(), Err: ErrInvalidFilter}
	}
}

// mapColor applies fn to the red, green and blue bytes of a copy of img.
// Results are clamped to [0, 255] and truncated; alpha is not touched.
func mapColor(img *Image, fn func(float64) float64) *Image {
	dst := img.Clone()
	n := dst.Format.Channels()
	for i := 0; i < len(dst.Pix); i += n {
		for c := 0; c < 3; c++ {
			dst.Pix[i+c] = uint8(f64.Clamp(fn(float64(dst.Pix[i+c])), 0, 255))
		}
	}
	return dst
}
