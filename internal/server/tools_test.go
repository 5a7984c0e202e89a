package server

import (
	"slices"
	"testing"
)

func TestGetToolDefinitions_MatchHandlers(t *testing.T) {
	tools := GetToolDefinitions()
	if len(tools) != len(toolHandlers) {
		t.Errorf("got %d tools and %d handlers", len(tools), len(toolHandlers))
	}

	seen := make(map[string]bool)
	for _, tool := range tools {
		if seen[tool.Name] {
			t.Errorf("duplicate tool name: %s", tool.Name)
		}
		seen[tool.Name] = true

		if _, ok := toolHandlers[tool.Name]; !ok {
			t.Errorf("tool %s has no handler", tool.Name)
		}
	}
}

func TestToolDefinitions_Schemas(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]any)
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok || len(required) == 0 {
				t.Fatal("InputSchema required should be a non-empty string slice")
			}
			for _, field := range required {
				if _, ok := props[field]; !ok {
					t.Errorf("required field %q has no property definition", field)
				}
			}
		})
	}
}

func TestToolDefinitions_Enums(t *testing.T) {
	want := map[string]map[string][]string{
		"image_combine": {"mode": {"horizontal", "vertical"}},
		"image_filter":  {"filter": {"grayscale", "brightness", "contrast", "blur"}},
		"image_reshape": {"shape": {"circle", "square", "rounded"}},
	}

	for _, tool := range GetToolDefinitions() {
		fields, ok := want[tool.Name]
		if !ok {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]any)
		for field, values := range fields {
			prop, _ := props[field].(map[string]any)
			got, _ := prop["enum"].([]string)
			if !slices.Equal(got, values) {
				t.Errorf("%s.%s enum: got %v, want %v", tool.Name, field, got, values)
			}
		}
	}
}
