package media

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/wav"
)

// PCMCodec is the codec chosen for .wav outputs; it gets explicit sample
// rate and channel arguments.
const PCMCodec = "pcm_s16le"

var audioCodecs = map[string]string{
	"mp3":  "libmp3lame",
	"wav":  PCMCodec,
	"aac":  "aac",
	"flac": "flac",
	"ogg":  "libvorbis",
	"opus": "libopus",
	"m4a":  "alac",
}

// AudioCodecByExt returns the ffmpeg audio encoder for a file extension,
// with or without the leading dot. Matching is case-insensitive.
func AudioCodecByExt(ext string) (string, bool) {
	codec, ok := audioCodecs[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return codec, ok
}

// audioCodecFor picks the encoder for path's extension, or fallback.
func audioCodecFor(path, fallback string) string {
	if codec, ok := AudioCodecByExt(filepath.Ext(path)); ok {
		return codec
	}
	return fallback
}

// pcmArgs are appended for 16-bit PCM outputs.
var pcmArgs = []string{"-ar", "44100", "-ac", "2"}

// WAVDuration reads a WAV header from r and returns the playing time of
// its data chunk.
func WAVDuration(r io.Reader) (time.Duration, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnsupportedAudio, err)
	}
	defer s.Close()

	return format.SampleRate.D(s.Len()), nil
}
