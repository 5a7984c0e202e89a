package service

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/media-utils/internal/codec"
	"github.com/ironsheep/media-utils/internal/imaging"
	"github.com/ironsheep/media-utils/internal/storage"
)

// memStore is an in-memory storage.Storage.
type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
	opens int
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	data, ok := m.files[location]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", location, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Save(_ context.Context, location string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[location] = data
	return nil
}

func (m *memStore) has(location string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[location]
	return ok
}

func solid(width, height int, format imaging.Format, c color.NRGBA) *imaging.Image {
	img := imaging.NewImage(width, height, format)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func (m *memStore) put(t *testing.T, location string, img *imaging.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, codec.EncodeFor(&buf, img, location, codec.DefaultOptions()))
	require.NoError(t, m.Save(context.Background(), location, &buf))
}

func (m *memStore) get(t *testing.T, location string) *imaging.Image {
	t.Helper()
	m.mu.Lock()
	data, ok := m.files[location]
	m.mu.Unlock()
	require.True(t, ok, "no output at %s", location)

	img, err := codec.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

var (
	red  = color.NRGBA{255, 0, 0, 255}
	blue = color.NRGBA{0, 0, 255, 255}
)

func newTestService(t *testing.T) (*ImageService, *memStore) {
	t.Helper()
	store := newMemStore()
	return NewImageService(store, codec.DefaultOptions(), nil), store
}

func TestImageService_Overlay(t *testing.T) {
	svc, store := newTestService(t)
	store.put(t, "base.png", solid(4, 4, imaging.RGB8, red))
	store.put(t, "top.png", solid(2, 2, imaging.RGBA8, color.NRGBA{0, 0, 255, 128}))

	res, err := svc.Overlay(context.Background(), OverlayRequest{Base: "base.png", Top: "top.png", Output: "out.png", X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, &Result{Output: "out.png", Width: 4, Height: 4, Format: "png"}, res)

	out := store.get(t, "out.png")
	assert.Equal(t, red, out.NRGBAAt(0, 0))
	assert.Equal(t, red, out.NRGBAAt(3, 3))

	mixed := out.NRGBAAt(1, 1)
	assert.InDelta(t, 127, int(mixed.R), 1)
	assert.InDelta(t, 128, int(mixed.B), 1)
	assert.Equal(t, uint8(255), mixed.A)
}

func TestImageService_Combine(t *testing.T) {
	svc, store := newTestService(t)
	store.put(t, "a.png", solid(3, 2, imaging.RGB8, red))
	store.put(t, "b.png", solid(2, 4, imaging.RGB8, blue))

	res, err := svc.Combine(context.Background(), CombineRequest{
		Inputs: []string{"a.png", "b.png", "a.png"},
		Output: "row.bmp",
		Mode:   imaging.Horizontal,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Width)
	assert.Equal(t, 4, res.Height)
	assert.Equal(t, "bmp", res.Format)
	assert.Equal(t, 2, store.opens, "repeated inputs are decoded once")

	out := store.get(t, "row.bmp")
	assert.Equal(t, blue, out.NRGBAAt(3, 3))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(0, 3), "unfilled area of an opaque canvas is black")
}

func TestImageService_CombineErrors(t *testing.T) {
	svc, store := newTestService(t)
	store.put(t, "a.png", solid(1, 1, imaging.RGB8, red))
	ctx := context.Background()

	_, err := svc.Combine(ctx, CombineRequest{Output: "out.png", Mode: imaging.Vertical})
	assert.ErrorIs(t, err, imaging.ErrEmptyInput)

	_, err = svc.Combine(ctx, CombineRequest{Inputs: []string{"a.png"}, Output: "out.png"})
	assert.ErrorIs(t, err, imaging.ErrInvalidMode)

	_, err = svc.Combine(ctx, CombineRequest{Inputs: []string{"a.png", ""}, Output: "out.png", Mode: imaging.Vertical})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.False(t, store.has("out.png"))
}

func TestImageService_Filter(t *testing.T) {
	svc, store := newTestService(t)
	store.put(t, "in.png", solid(5, 3, imaging.RGB8, color.NRGBA{200, 100, 50, 255}))

	filter, err := imaging.ParseFilter("grayscale", 1)
	require.NoError(t, err)

	res, err := svc.Filter(context.Background(), FilterRequest{Input: "in.png", Output: "gray.png", Filter: filter})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Width)

	px := store.get(t, "gray.png").NRGBAAt(2, 1)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.G, px.B)
}

func TestImageService_Reshape(t *testing.T) {
	svc, store := newTestService(t)
	store.put(t, "photo.png", solid(10, 6, imaging.RGB8, red))
	shape, err := imaging.ParseShape("circle", 0)
	require.NoError(t, err)

	t.Run("png keeps transparency", func(t *testing.T) {
		res, err := svc.Reshape(context.Background(), ReshapeRequest{Input: "photo.png", Output: "round.png", Shape: shape})
		require.NoError(t, err)
		assert.Equal(t, 6, res.Width)
		assert.Equal(t, 6, res.Height)

		out := store.get(t, "round.png")
		assert.Equal(t, imaging.RGBA8, out.Format)
		assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
		assert.Equal(t, red, out.NRGBAAt(3, 3))
	})

	t.Run("jpeg drops alpha", func(t *testing.T) {
		_, err := svc.Reshape(context.Background(), ReshapeRequest{Input: "photo.png", Output: "round.jpg", Shape: shape})
		require.NoError(t, err)

		out := store.get(t, "round.jpg")
		assert.Equal(t, imaging.RGB8, out.Format)
		assert.False(t, out.HasAlpha())
	})
}

func TestImageService_OutputReplacesCachedInput(t *testing.T) {
	svc, store := newTestService(t)
	store.put(t, "a.png", solid(4, 2, imaging.RGB8, red))
	ctx := context.Background()

	info, err := svc.Inspect(ctx, InspectRequest{Input: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, 4, info.Width)

	_, err = svc.Reshape(ctx, ReshapeRequest{Input: "a.png", Output: "a.png", Shape: imaging.Shape{Kind: imaging.ShapeSquare}})
	require.NoError(t, err)

	info, err = svc.Inspect(ctx, InspectRequest{Input: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, 2, info.Width)
}

func TestImageService_ExternalRewriteIsReloaded(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewImageService(storage.NewRouter(local, nil), codec.DefaultOptions(), nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "in.png")

	write := func(img *imaging.Image, mod time.Time) {
		var buf bytes.Buffer
		require.NoError(t, codec.EncodeFor(&buf, img, path, codec.DefaultOptions()))
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
		require.NoError(t, os.Chtimes(path, mod, mod))
	}

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	write(solid(4, 2, imaging.RGB8, red), stamp)
	info, err := svc.Inspect(ctx, InspectRequest{Input: path})
	require.NoError(t, err)
	assert.Equal(t, 4, info.Width)

	write(solid(7, 3, imaging.RGB8, red), stamp.Add(time.Minute))
	info, err = svc.Inspect(ctx, InspectRequest{Input: path})
	require.NoError(t, err)
	assert.Equal(t, 7, info.Width)
	assert.Equal(t, 3, info.Height)
}

func TestImageService_Inspect(t *testing.T) {
	svc, store := newTestService(t)
	img := solid(4, 4, imaging.RGBA8, red)
	img.SetNRGBA(0, 0, color.NRGBA{})
	store.put(t, "in.png", img)

	info, err := svc.Inspect(context.Background(), InspectRequest{Input: "in.png"})
	require.NoError(t, err)

	assert.Equal(t, "RGBA8", info.Format)
	assert.True(t, info.HasAlpha)
	assert.InDelta(t, 6.25, info.Transparent, 1e-9)
	assert.Equal(t, "#ff0000", info.AverageColor.Hex)
	require.Len(t, info.DominantColors, 1)
	assert.InDelta(t, 100, info.DominantColors[0].Percentage, 1e-9)
}

func TestImageService_Errors(t *testing.T) {
	svc, store := newTestService(t)
	store.put(t, "in.png", solid(2, 2, imaging.RGB8, red))
	ctx := context.Background()

	t.Run("missing input", func(t *testing.T) {
		_, err := svc.Filter(ctx, FilterRequest{Input: "nope.png", Output: "out.png", Filter: imaging.Filter{Kind: imaging.FilterGrayscale}})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported output format writes nothing", func(t *testing.T) {
		_, err := svc.Filter(ctx, FilterRequest{Input: "in.png", Output: "out.xyz", Filter: imaging.Filter{Kind: imaging.FilterGrayscale}})
		assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)
		assert.False(t, store.has("out.xyz"))
	})

	t.Run("unknown filter kind", func(t *testing.T) {
		_, err := svc.Filter(ctx, FilterRequest{Input: "in.png", Output: "out.png"})
		assert.ErrorIs(t, err, imaging.ErrInvalidFilter)
		assert.False(t, store.has("out.png"))
	})

	t.Run("missing output", func(t *testing.T) {
		_, err := svc.Overlay(ctx, OverlayRequest{Base: "in.png", Top: "in.png"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("negative color count", func(t *testing.T) {
		_, err := svc.Inspect(ctx, InspectRequest{Input: "in.png", Colors: -1})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}
