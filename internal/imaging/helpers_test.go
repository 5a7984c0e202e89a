package imaging

import (
	"image/color"
	"testing"
)

// createInMemoryImage creates a single-color test image
func createInMemoryImage(width, height int, format Format, c color.NRGBA) *Image {
	img := NewImage(width, height, format)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int, format Format) *Image {
	img := NewImage(width, height, format)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.NRGBA{255, 255, 255, 255} // White bottom-right
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// createGradientImage creates an image whose channels vary with position
func createGradientImage(width, height int, format Format) *Image {
	img := NewImage(width, height, format)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, width-1)),
				G: uint8(y * 255 / max(1, height-1)),
				B: uint8((x + y) % 256),
				A: uint8(128 + (x*7+y*3)%128),
			})
		}
	}
	return img
}

func assertPixel(t *testing.T, img *Image, x, y int, want color.NRGBA) {
	t.Helper()
	if got := img.NRGBAAt(x, y); got != want {
		t.Errorf("pixel (%d,%d): got %v, want %v", x, y, got, want)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
