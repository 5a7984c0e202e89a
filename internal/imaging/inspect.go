package imaging

import (
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit components.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex  string    `json:"hex"` // "#rrggbb", alpha excluded
	RGBA RGBAColor `json:"rgba"`
	HSL  HSLColor  `json:"hsl"`
}

// ColorFrequency is a quantized color and the share of pixels it covers.
type ColorFrequency struct {
	Color      ColorResult `json:"color"`
	Percentage float64     `json:"percentage"` // 0-100
}

// Info summarizes an image.
type Info struct {
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Format         string           `json:"format"`
	HasAlpha       bool             `json:"has_alpha"`
	Transparent    float64          `json:"transparent_percentage"` // pixels with alpha 0, 0-100
	AverageColor   ColorResult      `json:"average_color"`
	DominantColors []ColorFrequency `json:"dominant_colors"`
}

// Inspect reports the dimensions, format, average color and up to count
// dominant colors of img.
//
// The average is taken over pixels that are not fully transparent and
// weights each one equally. Dominant colors are found by quantizing every
// channel to a multiple of 16, so visually close colors share a bucket;
// fully transparent pixels are skipped there too. Ties are broken by color
// value so the result is deterministic.
//
// Parameters:
//   - img: The image to analyze.
//   - count: Maximum number of dominant colors. A negative count keeps
//     every bucket.
//
// Returns:
//   - Info: Dimensions, format name, share of fully transparent pixels,
//     the average color and the dominant colors, most frequent first.
func Inspect(img *Image, count int) Info {
	info := Info{
		Width:    img.Width,
		Height:   img.Height,
		Format:   img.Format.String(),
		HasAlpha: img.HasAlpha(),
	}

	type bucket struct{ r, g, b uint8 }
	buckets := make(map[bucket]int)
	var sumR, sumG, sumB, sumA float64
	visible, transparent := 0, 0

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.NRGBAAt(x, y)
			if c.A == 0 {
				transparent++
				continue
			}
			visible++
			sumR += float64(c.R)
			sumG += float64(c.G)
			sumB += float64(c.B)
			sumA += float64(c.A)
			buckets[bucket{c.R / 16 * 16, c.G / 16 * 16, c.B / 16 * 16}]++
		}
	}

	total := img.Width * img.Height
	if total > 0 {
		info.Transparent = float64(transparent) / float64(total) * 100
	}
	if visible == 0 {
		info.AverageColor = newColorResult(RGBAColor{})
		info.DominantColors = []ColorFrequency{}
		return info
	}

	n := float64(visible)
	info.AverageColor = newColorResult(RGBAColor{
		R: uint8(math.Round(sumR / n)),
		G: uint8(math.Round(sumG / n)),
		B: uint8(math.Round(sumB / n)),
		A: uint8(math.Round(sumA / n)),
	})

	keys := make([]bucket, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if buckets[a] != buckets[b] {
			return buckets[a] > buckets[b]
		}
		if a.r != b.r {
			return a.r < b.r
		}
		if a.g != b.g {
			return a.g < b.g
		}
		return a.b < b.b
	})
	if count >= 0 && len(keys) > count {
		keys = keys[:count]
	}

	info.DominantColors = make([]ColorFrequency, 0, len(keys))
	for _, k := range keys {
		info.DominantColors = append(info.DominantColors, ColorFrequency{
			Color:      newColorResult(RGBAColor{R: k.r, G: k.g, B: k.b, A: 255}),
			Percentage: float64(buckets[k]) / n * 100,
		})
	}
	return info
}

func newColorResult(c RGBAColor) ColorResult {
	col := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, l := col.Hsl()
	return ColorResult{
		Hex:  col.Hex(),
		RGBA: c,
		HSL:  HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
	}
}
