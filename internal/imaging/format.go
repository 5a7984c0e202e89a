package imaging

// HasAlpha reports whether any of the images is RGBA8.
func HasAlpha(images ...*Image) bool {
	for _, img := range images {
		if img != nil && img.Format == RGBA8 {
			return true
		}
	}
	return false
}

// promotedFormat is the result format of compositing the given images:
// RGBA8 as soon as one member has alpha, RGB8 otherwise.
func promotedFormat(images ...*Image) Format {
	if HasAlpha(images...) {
		return RGBA8
	}
	return RGB8
}

// ToRGB8 returns a copy of img without its alpha channel. Color values are kept as-is.
func ToRGB8(img *Image) *Image {
	if img.Format == RGB8 {
		return img.Clone()
	}
	dst := NewImage(img.Width, img.Height, RGB8)
	for si, di := 0, 0; si < len(img.Pix); si, di = si+4, di+3 {
		dst.Pix[di+0] = img.Pix[si+0]
		dst.Pix[di+1] = img.Pix[si+1]
		dst.Pix[di+2] = img.Pix[si+2]
	}
	return dst
}

// ToRGBA8 returns a copy of img with a fully opaque alpha channel appended
// when it has none.
func ToRGBA8(img *Image) *Image {
	if img.Format == RGBA8 {
		return img.Clone()
	}
	dst := NewImage(img.Width, img.Height, RGBA8)
	for si, di := 0, 0; si < len(img.Pix); si, di = si+3, di+4 {
		dst.Pix[di+0] = img.Pix[si+0]
		dst.Pix[di+1] = img.Pix[si+1]
		dst.Pix[di+2] = img.Pix[si+2]
		dst.Pix[di+3] = 255
	}
	return dst
}

// convert returns a copy of img in the requested format.
func convert(img *Image, format Format) *Image {
	if format == RGBA8 {
		return ToRGBA8(img)
	}
	return ToRGB8(img)
}
