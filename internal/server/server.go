package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ironsheep/media-utils/internal/service"
)

const (
	jsonrpcVersion  = "2.0"
	protocolVersion = "2024-11-05"
	serverName      = "media-utils"

	// maxLineSize bounds a single request line.
	maxLineSize = 1 << 20
)

// JSON-RPC error codes used by the server.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// Server answers MCP requests with the image service's tools.
type Server struct {
	images  *service.ImageService
	logger  *slog.Logger
	version string
}

// Request is an incoming JSON-RPC request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing JSON-RPC response. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is the error member of a Response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

func newResult(id, result any) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

func newError(id any, code int, message string, data any) *Response {
	return &Response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	}
}

// New creates a server backed by images. version is reported to clients
// during the handshake. A nil logger discards output.
func New(images *service.ImageService, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		images:  images,
		logger:  logger,
		version: version,
	}
}

// Run reads one request per line from r and writes one response per line
// to w. It returns nil when r is exhausted and ctx.Err() once ctx is
// cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp := s.handleLine(ctx, scanner.Bytes())
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

// handleLine decodes and answers one line. Blank lines and notifications
// yield nil.
func (s *Server) handleLine(ctx context.Context, line []byte) *Response {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("failed to parse request", "error", err)
		return newError(nil, codeParseError, "Parse error", err.Error())
	}
	return s.handleRequest(ctx, &req)
}

func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	// Notifications never get a response.
	if strings.HasPrefix(req.Method, "notifications/") {
		return nil
	}

	switch req.Method {
	case "initialize":
		return newResult(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: serverName, Version: s.version},
		})
	case "ping":
		return newResult(req.ID, map[string]any{})
	case "tools/list":
		return newResult(req.ID, toolsListResult{Tools: GetToolDefinitions()})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return newError(req.ID, codeMethodNotFound, "Method not found: "+req.Method, nil)
	}
}
