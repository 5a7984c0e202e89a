// Package imaging holds the pixel-level image operations behind media-utils:
// overlay, combine, filters, shape masks and inspection.
//
// All operations work on Image, a packed 8-bit buffer in RGB8 or RGBA8
// layout, and never modify their inputs. Decoding and encoding live in the
// codec package; nothing here touches files.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Overlay offsets may be
// negative; pixels that land outside the base are clipped.
//
// # Alpha
//
// Blending is normalized source-over: the top pixel's alpha weighs its
// color against the base, and the result alpha is a + b*(1-a). An output is
// RGBA8 whenever an input carries alpha or the operation introduces it
// (blur and the shape masks); otherwise it keeps the input's format.
//
// # Variants
//
// Combine modes, filters and shapes are closed sets. Parse them from user
// input with ParseCombineMode, ParseFilter and ParseShape; unknown names
// fail with ErrInvalidMode, ErrInvalidFilter or ErrInvalidShape wrapped in
// an *OpError that names the rejected value.
//
// # Thread Safety
//
// Operations are stateless and can be called concurrently, including on the
// same input image.
package imaging
