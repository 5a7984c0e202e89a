package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Format is the pixel layout tag of an Image.
type Format int

const (
	// RGB8 stores 3 bytes per pixel: red, green, blue.
	RGB8 Format = iota + 1
	// RGBA8 stores 4 bytes per pixel: red, green, blue, non-premultiplied alpha.
	RGBA8
)

// Channels returns the number of bytes per pixel for the format.
func (f Format) Channels() int {
	if f == RGBA8 {
		return 4
	}
	return 3
}

func (f Format) String() string {
	switch f {
	case RGB8:
		return "RGB8"
	case RGBA8:
		return "RGBA8"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Image is a fixed-size, fully decoded pixel grid.
//
// Pix holds Height rows of Width pixels, row-major, with Format.Channels()
// bytes per pixel and no padding between rows. Every transform in this
// package returns a new Image or works on a private clone, so an Image
// handed to a transform is never modified.
type Image struct {
	Format Format
	Width  int
	Height int
	Pix    []uint8
}

// NewImage allocates a zeroed image: black for RGB8, fully transparent for RGBA8.
//
// Parameters:
//   - width, height: Size in pixels. Both must be non-negative.
//   - format: RGB8 (3 bytes per pixel) or RGBA8 (4 bytes per pixel).
//
// Returns:
//   - *Image: A new image whose Pix holds width*height*format.Channels()
//     bytes in row-major order.
func NewImage(width, height int, format Format) *Image {
	return &Image{
		Format: format,
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*format.Channels()),
	}
}

// Stride returns the number of bytes in one row.
func (img *Image) Stride() int {
	return img.Width * img.Format.Channels()
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (img *Image) PixOffset(x, y int) int {
	return y*img.Stride() + x*img.Format.Channels()
}

// HasAlpha reports whether the image carries an alpha channel.
func (img *Image) HasAlpha() bool {
	return img.Format == RGBA8
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{Format: img.Format, Width: img.Width, Height: img.Height, Pix: pix}
}

// NRGBAAt returns the color of pixel (x, y). RGB8 pixels report alpha 255.
func (img *Image) NRGBAAt(x, y int) color.NRGBA {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+img.Format.Channels()]
	if img.Format == RGBA8 {
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: 255}
}

// SetNRGBA sets pixel (x, y). The alpha component is ignored for RGB8 images.
func (img *Image) SetNRGBA(x, y int, c color.NRGBA) {
	i := img.PixOffset(x, y)
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	if img.Format == RGBA8 {
		img.Pix[i+3] = c.A
	}
}

// FromImage copies a decoded image into an Image.
//
// The pixel format follows the channel layout the decoder reported, not
// the pixel values:
//   - *image.NRGBA and *image.NRGBA64 (PNG with an alpha channel or a
//     tRNS chunk, 32-bit BMP) become RGBA8 even when every pixel is opaque.
//   - *image.RGBA and *image.RGBA64 are what the PNG decoder returns for
//     plain truecolor, so they become RGB8 unless a pixel is translucent,
//     which only happens with premultiplied (associated alpha) TIFF.
//   - *image.Paletted becomes RGBA8 when the palette has an entry with
//     alpha below 255, RGB8 otherwise.
//   - Gray, YCbCr and CMYK images become RGB8.
//
// Any other image type is RGBA8 if some pixel is not fully opaque.
//
// # Errors
//
//   - ErrInvalidImage (wrapped in *OpError) when src has no pixels
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &OpError{Op: "decode", Value: fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), Err: ErrInvalidImage}
	}

	format := RGB8
	if sourceHasAlpha(src) {
		format = RGBA8
	}
	dst := NewImage(b.Dx(), b.Dy(), format)

	if nrgba, ok := src.(*image.NRGBA); ok && format == RGBA8 {
		for y := 0; y < dst.Height; y++ {
			i := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride():(y+1)*dst.Stride()], nrgba.Pix[i:i+dst.Stride()])
		}
		return dst, nil
	}

	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst, nil
}

func sourceHasAlpha(src image.Image) bool {
	switch m := src.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA, *image.Alpha, *image.Alpha16:
		return true
	case *image.RGBA:
		return !m.Opaque()
	case *image.RGBA64:
		return !m.Opaque()
	case *image.Paletted:
		return paletteHasAlpha(m.Palette)
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	}
	return !scanOpaque(src)
}

func paletteHasAlpha(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}

func scanOpaque(src image.Image) bool {
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := src.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// NRGBA returns the image as a standard library *image.NRGBA with bounds
// starting at (0, 0). RGB8 images become fully opaque.
func (img *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	if img.Format == RGBA8 {
		copy(dst.Pix, img.Pix)
		return dst
	}
	for si, di := 0, 0; si < len(img.Pix); si, di = si+3, di+4 {
		dst.Pix[di+0] = img.Pix[si+0]
		dst.Pix[di+1] = img.Pix[si+1]
		dst.Pix[di+2] = img.Pix[si+2]
		dst.Pix[di+3] = 255
	}
	return dst
}

// fromNRGBA converts an *image.NRGBA back into an Image of the given format.
// Converting to RGB8 drops alpha without touching the color values.
func fromNRGBA(src *image.NRGBA, format Format) *Image {
	b := src.Bounds()
	dst := NewImage(b.Dx(), b.Dy(), format)
	for y := 0; y < dst.Height; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		if format == RGBA8 {
			copy(dst.Pix[y*dst.Stride():(y+1)*dst.Stride()], row[:dst.Stride()])
			continue
		}
		for x := 0; x < dst.Width; x++ {
			di := dst.PixOffset(x, y)
			dst.Pix[di+0] = row[x*4+0]
			dst.Pix[di+1] = row[x*4+1]
			dst.Pix[di+2] = row[x*4+2]
		}
	}
	return dst
}
