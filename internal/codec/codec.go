package codec

import (
	"bytes"
	"image"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	core "github.com/ironsheep/media-utils/internal/imaging"
)

// Options tunes the lossy encoders. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	JPEGQuality  int     // 1-100
	WebPQuality  float32 // 0-100, ignored when WebPLossless is set
	WebPLossless bool
}

// DefaultOptions returns the encoder settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		JPEGQuality:  90,
		WebPQuality:  90,
		WebPLossless: true,
	}
}

// Decode reads a PNG, JPEG, WEBP, GIF, BMP or TIFF stream.
//
// The pixel format comes from the file's channel layout (see
// core.FromImage): an RGBA PNG is RGBA8 even when it is fully opaque. JPEG
// EXIF orientation is applied so the pixels come out upright, and a JPEG
// is always RGB8.
//
// # Errors
//
//   - *Error of kind ErrDecode when the stream is not a supported image
func Decode(r io.Reader) (*core.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: ErrDecode, Err: errors.Wrap(err, "read image")}
	}

	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: ErrDecode, Err: errors.Wrap(err, "image.DecodeConfig")}
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &Error{Kind: ErrDecode, Err: errors.Wrap(err, "image.Decode")}
	}
	img, err := core.FromImage(src)
	if err != nil {
		return nil, &Error{Kind: ErrDecode, Err: err}
	}

	// A rotated JPEG comes back as *image.NRGBA.
	if name == "jpeg" && img.HasAlpha() {
		img = core.ToRGB8(img)
	}
	return img, nil
}

// stdImage returns img in the standard library type that encoders write
// without an alpha channel when img is RGB8.
func stdImage(img *core.Image) image.Image {
	n := img.NRGBA()
	if img.HasAlpha() {
		return n
	}
	// Fully opaque, so the premultiplied bytes are the same.
	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}

// PrepareForSave applies the save policy for format: an image with alpha
// headed for PNG or WEBP is returned unchanged; every other combination is
// reduced to RGB8 so no alpha reaches a container that would drop or
// mangle it.
func PrepareForSave(img *core.Image, format Format) *core.Image {
	if !img.HasAlpha() || format.KeepsAlpha() {
		return img
	}
	return core.ToRGB8(img)
}

// Encode writes img to w in the given container format after applying
// PrepareForSave.
func Encode(w io.Writer, img *core.Image, format Format, opts Options) error {
	prepared := PrepareForSave(img, format)

	if format == WEBP {
		err := webp.Encode(w, prepared.NRGBA(), &webp.Options{
			Lossless: opts.WebPLossless,
			Quality:  opts.WebPQuality,
			Exact:    true,
		})
		if err != nil {
			return &Error{Kind: ErrEncode, Err: errors.Wrap(err, "webp.Encode")}
		}
		return nil
	}

	f, ok := format.imagingFormat()
	if !ok {
		return &Error{Kind: ErrUnsupportedFormat, Err: errors.Errorf("format %s", format)}
	}
	if err := imaging.Encode(w, stdImage(prepared), f, imaging.JPEGQuality(opts.JPEGQuality)); err != nil {
		return &Error{Kind: ErrEncode, Err: errors.Wrapf(err, "%s encoder", format)}
	}
	return nil
}

// EncodeFor resolves the format from path and encodes img for it. Path is
// only used for its extension and for error messages.
func EncodeFor(w io.Writer, img *core.Image, path string, opts Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return withPath(Encode(w, img, format, opts), path)
}
