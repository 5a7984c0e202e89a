package server

import "github.com/ironsheep/media-utils/internal/service"

// Tool describes one callable tool to MCP clients.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type toolsListResult struct {
	Tools []Tool `json:"tools"`
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": description}
}

func defaultedProp(kind, description string, def any) map[string]any {
	return map[string]any{"type": kind, "description": description, "default": def}
}

const outputDescription = "Where to write the result (path or s3:// URI); the extension picks the format"

// GetToolDefinitions returns the tools served by tools/list, in a stable
// order.
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "image_overlay",
			Description: "Paste one image on top of another at an offset, blending by the top image's alpha. " +
				"The result keeps the base image's size; parts of the overlay that fall outside are clipped.",
			InputSchema: objectSchema(map[string]any{
				"base":    stringProp("Path or s3:// URI of the base image"),
				"overlay": stringProp("Path or s3:// URI of the image placed on top"),
				"output":  stringProp(outputDescription),
				"x":       defaultedProp("integer", "X position of the overlay's top-left corner, may be negative", 0),
				"y":       defaultedProp("integer", "Y position of the overlay's top-left corner, may be negative", 0),
			}, "base", "overlay", "output"),
		},
		{
			Name: "image_combine",
			Description: "Place images side by side (horizontal) or stacked (vertical), aligned to the top-left. " +
				"Empty canvas area is black, or transparent when any input has alpha.",
			InputSchema: objectSchema(map[string]any{
				"inputs": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Input images in layout order",
				},
				"output": stringProp(outputDescription),
				"mode":   enumProp("Layout direction", "horizontal", "vertical"),
			}, "inputs", "output", "mode"),
		},
		{
			Name: "image_filter",
			Description: "Apply a color filter: grayscale, brightness (multiply channels), " +
				"contrast (scale around mid-gray) or blur (Gaussian, intensity is sigma).",
			InputSchema: objectSchema(map[string]any{
				"input":     stringProp("Path or s3:// URI of the input image"),
				"output":    stringProp(outputDescription),
				"filter":    enumProp("Filter to apply", "grayscale", "brightness", "contrast", "blur"),
				"intensity": defaultedProp("number", "Strength for brightness, contrast and blur", 1.0),
			}, "input", "output", "filter"),
		},
		{
			Name: "image_reshape",
			Description: "Mask an image to a shape. circle and square center-crop to the shorter side first; " +
				"rounded keeps the size and clears the corners. Use a PNG or WEBP output to keep the transparency.",
			InputSchema: objectSchema(map[string]any{
				"input":  stringProp("Path or s3:// URI of the input image"),
				"output": stringProp(outputDescription),
				"shape":  enumProp("Mask shape", "circle", "square", "rounded"),
				"radius": defaultedProp("integer", "Corner radius for the rounded shape", defaultRadius),
			}, "input", "output", "shape"),
		},
		{
			Name: "image_inspect",
			Description: "Report an image's dimensions, pixel format, share of transparent pixels, " +
				"average color and most frequent colors (quantized to steps of 16).",
			InputSchema: objectSchema(map[string]any{
				"input":  stringProp("Path or s3:// URI of the image"),
				"colors": defaultedProp("integer", "Number of dominant colors to return", service.DefaultColorCount),
			}, "input"),
		},
	}
}
