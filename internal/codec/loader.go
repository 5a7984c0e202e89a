package codec

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	core "github.com/ironsheep/media-utils/internal/imaging"
)

// Opener opens a stored object for reading. storage.Storage satisfies it.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// ModTimer reports when a stored object last changed. storage.Router
// satisfies it.
type ModTimer interface {
	ModTime(ctx context.Context, location string) (time.Time, error)
}

type cacheEntry struct {
	img *core.Image
	mod time.Time
}

// Loader provides thread-safe caching of decoded images keyed by location.
//
// Load hands out a fresh clone of the cached image on every call, so a
// caller can transform its copy freely without affecting other callers.
//
// When the source also implements ModTimer, every Load compares the
// object's modification time with the one recorded at decode time and
// rereads the object when they differ. A source without ModTimer is read
// once per location until Evict or Clear.
type Loader struct {
	mu     sync.RWMutex
	src    Opener
	images map[string]cacheEntry
}

// NewLoader creates an empty cache reading through src.
func NewLoader(src Opener) *Loader {
	return &Loader{
		src:    src,
		images: make(map[string]cacheEntry),
	}
}

// Load returns the image at location, reading and decoding it on first use
// or when the stored object has changed since it was cached.
//
// Parameters:
//   - ctx: Cancels the read. Decoding itself is not interruptible.
//   - location: Local path or s3:// URI, passed unchanged to the source.
//
// Returns:
//   - *core.Image: A private copy of the decoded image, RGB8 or RGBA8.
//   - error: Non-nil if the object cannot be opened or decoded.
//
// The cache is keyed by the exact location string; two spellings of the
// same file are cached separately. If the modification time cannot be
// read the object is decoded again and the result is not cached.
//
// # Errors
//
//   - "failed to open image: ..." wrapping the source's error
//   - ErrDecode naming the location when the bytes are not a supported image
func (l *Loader) Load(ctx context.Context, location string) (*core.Image, error) {
	mod, fresh := l.modTime(ctx, location)

	if fresh {
		l.mu.RLock()
		entry, ok := l.images[location]
		l.mu.RUnlock()
		if ok && entry.mod.Equal(mod) {
			return entry.img.Clone(), nil
		}
	}

	rc, err := l.src.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer rc.Close()

	img, err := Decode(rc)
	if err != nil {
		return nil, withPath(err, location)
	}

	l.mu.Lock()
	if fresh {
		l.images[location] = cacheEntry{img: img, mod: mod}
	} else {
		delete(l.images, location)
	}
	l.mu.Unlock()

	return img.Clone(), nil
}

// modTime reports the object's modification time and whether the cache
// may be used for it. Sources without ModTimer always allow the cache with
// a zero time.
func (l *Loader) modTime(ctx context.Context, location string) (time.Time, bool) {
	mt, ok := l.src.(ModTimer)
	if !ok {
		return time.Time{}, true
	}
	mod, err := mt.ModTime(ctx, location)
	if err != nil {
		return time.Time{}, false
	}
	return mod, true
}

// Evict removes the image cached for location, if any.
func (l *Loader) Evict(location string) {
	l.mu.Lock()
	delete(l.images, location)
	l.mu.Unlock()
}

// Clear removes all cached images.
func (l *Loader) Clear() {
	l.mu.Lock()
	l.images = make(map[string]cacheEntry)
	l.mu.Unlock()
}

// Len returns the number of cached images.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.images)
}
