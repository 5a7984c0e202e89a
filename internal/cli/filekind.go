package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// FileKind is the broad media category of a path, decided by its extension.
type FileKind int

const (
	Video FileKind = iota + 1
	Image
	Audio
)

func (k FileKind) String() string {
	switch k {
	case Video:
		return "video"
	case Image:
		return "image"
	case Audio:
		return "audio"
	default:
		return fmt.Sprintf("FileKind(%d)", int(k))
	}
}

var kindByExt = map[string]FileKind{
	"mp4": Video, "webm": Video, "mkv": Video, "avi": Video, "mov": Video, "mpeg": Video, "mpegts": Video,

	"jpg": Image, "jpeg": Image, "png": Image, "webp": Image, "gif": Image, "bmp": Image,
	"tiff": Image, "tif": Image, "svg": Image, "ico": Image, "icns": Image,

	"mp3": Audio, "wav": Audio, "aac": Audio, "flac": Audio, "ogg": Audio, "opus": Audio, "m4a": Audio,
}

// Extensions lists the extensions of kind, sorted.
func (k FileKind) Extensions() []string {
	var exts []string
	for ext, kind := range kindByExt {
		if kind == k {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}

// FileKindFromPath classifies path by its extension, ignoring case.
func FileKindFromPath(path string) (FileKind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if kind, ok := kindByExt[ext]; ok {
		return kind, nil
	}
	return 0, fmt.Errorf("%q: %w", ext, ErrUnsupportedFileType)
}
