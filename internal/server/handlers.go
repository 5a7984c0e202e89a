package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/media-utils/internal/imaging"
	"github.com/ironsheep/media-utils/internal/service"
)

// Defaults for optional tool arguments, matching the command line.
const (
	defaultIntensity = 1.0
	defaultRadius    = 30
)

// ToolCallParams are the params of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolResult wraps a tool's output in MCP's content format:
//
//	{"content": [{"type": "text", "text": "<JSON result>"}]}
type toolResult struct {
	Content []toolContent `json:"content"`
}

type toolHandler func(s *Server, ctx context.Context, args json.RawMessage) (any, error)

var toolHandlers = map[string]toolHandler{
	"image_overlay": (*Server).imageOverlay,
	"image_combine": (*Server).imageCombine,
	"image_filter":  (*Server).imageFilter,
	"image_reshape": (*Server).imageReshape,
	"image_inspect": (*Server).imageInspect,
}

// handleToolsCall runs the named tool. Malformed params are -32602; any
// failure inside the tool is -32000 with the error text as data.
func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newError(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	out, err := s.callTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return newError(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return newError(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	return newResult(req.ID, toolResult{Content: []toolContent{{Type: "text", Text: string(text)}}})
}

func (s *Server) callTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	handler, ok := toolHandlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return handler(s, ctx, args)
}

// decodeArgs unmarshals tool arguments into T. Absent arguments decode as
// an empty object.
func decodeArgs[T any](raw json.RawMessage) (T, error) {
	var args T
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

type overlayArgs struct {
	Base    string `json:"base"`
	Overlay string `json:"overlay"`
	Output  string `json:"output"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

func (s *Server) imageOverlay(ctx context.Context, raw json.RawMessage) (any, error) {
	a, err := decodeArgs[overlayArgs](raw)
	if err != nil {
		return nil, err
	}
	return s.images.Overlay(ctx, service.OverlayRequest{
		Base:   a.Base,
		Top:    a.Overlay,
		Output: a.Output,
		X:      a.X,
		Y:      a.Y,
	})
}

type combineArgs struct {
	Inputs []string `json:"inputs"`
	Output string   `json:"output"`
	Mode   string   `json:"mode"`
}

func (s *Server) imageCombine(ctx context.Context, raw json.RawMessage) (any, error) {
	a, err := decodeArgs[combineArgs](raw)
	if err != nil {
		return nil, err
	}
	mode, err := imaging.ParseCombineMode(a.Mode)
	if err != nil {
		return nil, err
	}
	return s.images.Combine(ctx, service.CombineRequest{Inputs: a.Inputs, Output: a.Output, Mode: mode})
}

type filterArgs struct {
	Input     string   `json:"input"`
	Output    string   `json:"output"`
	Filter    string   `json:"filter"`
	Intensity *float64 `json:"intensity"`
}

func (s *Server) imageFilter(ctx context.Context, raw json.RawMessage) (any, error) {
	a, err := decodeArgs[filterArgs](raw)
	if err != nil {
		return nil, err
	}
	intensity := defaultIntensity
	if a.Intensity != nil {
		intensity = *a.Intensity
	}
	filter, err := imaging.ParseFilter(a.Filter, intensity)
	if err != nil {
		return nil, err
	}
	return s.images.Filter(ctx, service.FilterRequest{Input: a.Input, Output: a.Output, Filter: filter})
}

type reshapeArgs struct {
	Input  string  `json:"input"`
	Output string  `json:"output"`
	Shape  string  `json:"shape"`
	Radius *uint32 `json:"radius"`
}

func (s *Server) imageReshape(ctx context.Context, raw json.RawMessage) (any, error) {
	a, err := decodeArgs[reshapeArgs](raw)
	if err != nil {
		return nil, err
	}
	radius := uint32(defaultRadius)
	if a.Radius != nil {
		radius = *a.Radius
	}
	shape, err := imaging.ParseShape(a.Shape, radius)
	if err != nil {
		return nil, err
	}
	return s.images.Reshape(ctx, service.ReshapeRequest{Input: a.Input, Output: a.Output, Shape: shape})
}

type inspectArgs struct {
	Input  string `json:"input"`
	Colors int    `json:"colors"`
}

func (s *Server) imageInspect(ctx context.Context, raw json.RawMessage) (any, error) {
	a, err := decodeArgs[inspectArgs](raw)
	if err != nil {
		return nil, err
	}
	return s.images.Inspect(ctx, service.InspectRequest{Input: a.Input, Colors: a.Colors})
}
