package codec

import (
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Format is an image container format.
type Format int

// Supported container formats.
const (
	PNG Format = iota + 1
	JPEG
	WEBP
	GIF
	BMP
	TIFF
)

var formatNames = map[Format]string{
	PNG:  "png",
	JPEG: "jpeg",
	WEBP: "webp",
	GIF:  "gif",
	BMP:  "bmp",
	TIFF: "tiff",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// KeepsAlpha reports whether the container stores an alpha channel faithfully.
// GIF's one-bit transparency and TIFF's alpha support vary between readers,
// so only PNG and WEBP qualify.
func (f Format) KeepsAlpha() bool {
	return f == PNG || f == WEBP
}

// imagingFormat maps f onto the encoder set handled by disintegration/imaging.
func (f Format) imagingFormat() (imaging.Format, bool) {
	switch f {
	case PNG:
		return imaging.PNG, true
	case JPEG:
		return imaging.JPEG, true
	case GIF:
		return imaging.GIF, true
	case BMP:
		return imaging.BMP, true
	case TIFF:
		return imaging.TIFF, true
	default:
		return 0, false
	}
}

// FormatFromPath picks the container format implied by the extension of
// path. Matching is case-insensitive; "jpg" and "tif" are accepted as aliases.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "webp" {
		return WEBP, nil
	}

	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return 0, &Error{Kind: ErrUnsupportedFormat, Path: path, Err: errors.Wrapf(err, "extension %q", ext)}
	}
	switch f {
	case imaging.PNG:
		return PNG, nil
	case imaging.JPEG:
		return JPEG, nil
	case imaging.GIF:
		return GIF, nil
	case imaging.BMP:
		return BMP, nil
	case imaging.TIFF:
		return TIFF, nil
	}
	return 0, &Error{Kind: ErrUnsupportedFormat, Path: path, Err: errors.Errorf("extension %q", ext)}
}
