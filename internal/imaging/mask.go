package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// ReshapeCircle center-crops img to a size×size square, size being the
// shorter side, and clears every pixel whose center lies farther than
// size/2 from the center of the square. The result is RGBA8.
func ReshapeCircle(img *Image) *Image {
	size := min(img.Width, img.Height)
	dst := centerCrop(img, size)
	applyMask(dst, circleMask(size))
	return dst
}

// ReshapeSquare center-crops img to a size×size square, size being the
// shorter side. The result is RGBA8.
func ReshapeSquare(img *Image) *Image {
	return centerCrop(img, min(img.Width, img.Height))
}

// ReshapeRounded clears the pixels outside a rounded outline at full size.
//
// A pixel (x, y) is kept only if each of its four mirror images
// (x, y), (x, H-1-y), (W-1-x, y) and (W-1-x, H-1-y) lies within radius of
// the point (radius, radius). The same test is used for every quadrant, so
// on non-square images the outline is not stretched to the longer side.
// The result is RGBA8.
func ReshapeRounded(img *Image, radius uint32) *Image {
	dst := ToRGBA8(img)
	applyMask(dst, roundedMask(img.Width, img.Height, float64(radius)))
	return dst
}

// Reshape runs the selected shape mask.
//
// Parameters:
//   - img: The source image. It is not modified.
//   - shape: The kind and, for ShapeRounded, the corner radius.
//
// Returns:
//   - *Image: Always RGBA8. Circle and square results are square; rounded
//     keeps img's size.
//   - error: ErrInvalidShape (wrapped in *OpError) for an unknown kind.
func Reshape(img *Image, shape Shape) (*Image, error) {
	switch shape.Kind {
	case ShapeCircle:
		return ReshapeCircle(img), nil
	case ShapeSquare:
		return ReshapeSquare(img), nil
	case ShapeRounded:
		return ReshapeRounded(img, shape.Radius), nil
	default:
		return nil, &OpError{Op: "reshape", Value: shape.Kind.String(), Err: ErrInvalidShape}
	}
}

// centerCrop extracts the centered size×size square of img as RGBA8.
func centerCrop(img *Image, size int) *Image {
	x := (img.Width - size) / 2
	y := (img.Height - size) / 2
	return fromNRGBA(imaging.Crop(img.NRGBA(), image.Rect(x, y, x+size, y+size)), RGBA8)
}

// circleMask builds a size×size mask that is opaque inside the inscribed circle.
func circleMask(size int) *Image {
	mask := NewImage(size, size, RGBA8)
	center := float64(size) / 2
	r2 := center * center

	for y := 0; y < size; y++ {
		dy := float64(y) + 0.5 - center
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - center
			if dx*dx+dy*dy <= r2 {
				setOpaque(mask, x, y)
			}
		}
	}
	return mask
}

// roundedMask builds a width×height mask using the mirrored-corner test
// described on ReshapeRounded.
func roundedMask(width, height int, radius float64) *Image {
	mask := NewImage(width, height, RGBA8)
	r2 := radius * radius

	outside := func(cx, cy int) bool {
		dx := float64(cx) - radius
		dy := float64(cy) - radius
		return dx*dx+dy*dy > r2
	}

	for y := 0; y < height; y++ {
		my := height - 1 - y
		for x := 0; x < width; x++ {
			mx := width - 1 - x
			if outside(x, y) || outside(x, my) || outside(mx, y) || outside(mx, my) {
				continue
			}
			setOpaque(mask, x, y)
		}
	}
	return mask
}

func setOpaque(mask *Image, x, y int) {
	i := mask.PixOffset(x, y)
	mask.Pix[i+0], mask.Pix[i+1], mask.Pix[i+2], mask.Pix[i+3] = 255, 255, 255, 255
}
