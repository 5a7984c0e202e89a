package imaging

import (
	"errors"
	"image/color"
	"testing"
)

func TestGrayscale(t *testing.T) {
	img := createInMemoryImage(3, 3, RGBA8, color.NRGBA{255, 0, 0, 77})
	out := Grayscale(img)

	// 0.299 * 255 + 0.5 rounds to 76
	assertPixel(t, out, 1, 1, color.NRGBA{76, 76, 76, 77})
	if out.Format != RGBA8 {
		t.Errorf("Format: got %v, want RGBA8", out.Format)
	}
}

func TestGrayscale_Idempotent(t *testing.T) {
	for _, format := range []Format{RGB8, RGBA8} {
		t.Run(format.String(), func(t *testing.T) {
			img := createGradientImage(16, 9, format)
			once := Grayscale(img)
			twice := Grayscale(once)
			if string(once.Pix) != string(twice.Pix) {
				t.Error("grayscale(grayscale(x)) != grayscale(x)")
			}
			if once.Format != format {
				t.Errorf("Format: got %v, want %v", once.Format, format)
			}
		})
	}
}

func TestBrightnessContrast_Identity(t *testing.T) {
	for _, format := range []Format{RGB8, RGBA8} {
		img := createGradientImage(12, 7, format)

		if out := Brightness(img, 1.0); string(out.Pix) != string(img.Pix) {
			t.Errorf("%v: brightness(img, 1.0) != img", format)
		}
		if out := Contrast(img, 1.0); string(out.Pix) != string(img.Pix) {
			t.Errorf("%v: contrast(img, 1.0) != img", format)
		}
	}
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		name   string
		in     color.NRGBA
		factor float64
		want   color.NRGBA
	}{
		{"double", color.NRGBA{10, 100, 200, 50}, 2.0, color.NRGBA{20, 200, 255, 50}},
		{"half", color.NRGBA{10, 101, 200, 255}, 0.5, color.NRGBA{5, 50, 100, 255}},
		{"zero", color.NRGBA{10, 100, 200, 9}, 0, color.NRGBA{0, 0, 0, 9}},
		{"negative clamps", color.NRGBA{10, 100, 200, 255}, -1, color.NRGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(2, 2, RGBA8, tt.in)
			assertPixel(t, Brightness(img, tt.factor), 0, 0, tt.want)
		})
	}
}

func TestContrast(t *testing.T) {
	tests := []struct {
		name   string
		in     color.NRGBA
		factor float64
		want   color.NRGBA
	}{
		{"stretch", color.NRGBA{100, 128, 150, 255}, 2.0, color.NRGBA{72, 128, 172, 255}},
		{"clamp", color.NRGBA{0, 200, 255, 255}, 3.0, color.NRGBA{0, 255, 255, 255}},
		{"flatten", color.NRGBA{0, 200, 255, 40}, 0, color.NRGBA{128, 128, 128, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(2, 2, RGB8, tt.in)
			out := Contrast(img, tt.factor)
			want := tt.want
			want.A = 255 // RGB8 reports opaque
			assertPixel(t, out, 1, 1, want)
			if out.Format != RGB8 {
				t.Errorf("Format: got %v, want RGB8", out.Format)
			}
		})
	}
}

func TestBlur_AlwaysRGBA8(t *testing.T) {
	img := createPatternImage(20, 20, RGB8)
	out := Blur(img, 2.0)

	if out.Format != RGBA8 {
		t.Fatalf("Format: got %v, want RGBA8", out.Format)
	}
	if out.Width != 20 || out.Height != 20 {
		t.Errorf("size: got %dx%d, want 20x20", out.Width, out.Height)
	}
	// The boundary between red and green gets mixed.
	c := out.NRGBAAt(10, 5)
	if c.R == 255 || c.G == 0 {
		t.Errorf("pixel at quadrant boundary not blurred: %v", c)
	}
	// Far from any boundary the color is preserved.
	if c := out.NRGBAAt(0, 0); c.R < 200 || c.G > 55 {
		t.Errorf("corner pixel drifted too far: %v", c)
	}
}

func TestBlur_UniformImageUnchanged(t *testing.T) {
	img := createInMemoryImage(10, 10, RGB8, color.NRGBA{40, 80, 120, 255})
	out := Blur(img, 3.0)
	assertPixel(t, out, 5, 5, color.NRGBA{40, 80, 120, 255})
}

func TestApplyFilter(t *testing.T) {
	img := createGradientImage(6, 6, RGB8)

	for _, name := range []string{"grayscale", "brightness", "contrast", "blur"} {
		t.Run(name, func(t *testing.T) {
			f, err := ParseFilter(name, 1.0)
			if err != nil {
				t.Fatalf("ParseFilter failed: %v", err)
			}
			if _, err := ApplyFilter(img, f); err != nil {
				t.Errorf("ApplyFilter failed: %v", err)
			}
		})
	}

	_, err := ApplyFilter(img, Filter{Kind: FilterKind(99)})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("got %v, want ErrInvalidFilter", err)
	}
}
