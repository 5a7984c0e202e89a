package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ironsheep/media-utils/internal/codec"
	"github.com/ironsheep/media-utils/internal/service"
	"github.com/ironsheep/media-utils/internal/storage"
)

// newTestServer returns a server reading and writing the local filesystem.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	images := service.NewImageService(storage.NewRouter(local, nil), codec.DefaultOptions(), nil)
	return New(images, "test", nil)
}

// runLines feeds lines to Run and decodes every response written.
func runLines(t *testing.T, s *Server, lines ...string) []Response {
	t.Helper()

	var out bytes.Buffer
	if err := s.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var resps []Response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r Response
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		resps = append(resps, r)
	}
	return resps
}

func TestNew_DefaultsLogger(t *testing.T) {
	s := newTestServer(t)
	if s.images == nil {
		t.Fatal("New() did not keep the image service")
	}
	if s.logger == nil {
		t.Fatal("New() did not default the logger")
	}
}

func TestRequest_IDTypes(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		wantID any
	}{
		{"string id", `{"jsonrpc":"2.0","id":"a-1","method":"ping"}`, "a-1"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42)}, // JSON numbers decode as float64
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"ping"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resps := runLines(t, newTestServer(t), tt.json)
			if len(resps) != 1 {
				t.Fatalf("got %d responses, want 1", len(resps))
			}
			if resps[0].ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", resps[0].ID, resps[0].ID, tt.wantID, tt.wantID)
			}
			if resps[0].JSONRPC != "2.0" {
				t.Errorf("JSONRPC: got %s, want 2.0", resps[0].JSONRPC)
			}
		})
	}
}

func TestResponse_OmitsEmptyMembers(t *testing.T) {
	ok, _ := json.Marshal(newResult(1, map[string]any{}))
	if strings.Contains(string(ok), `"error"`) {
		t.Errorf("success response carries an error member: %s", ok)
	}

	failed, _ := json.Marshal(newError(1, codeMethodNotFound, "Method not found", nil))
	if strings.Contains(string(failed), `"result"`) || strings.Contains(string(failed), `"data"`) {
		t.Errorf("error response carries extra members: %s", failed)
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result, ok := resp.Result.(initializeResult)
	if !ok {
		t.Fatalf("Result: got %T, want initializeResult", resp.Result)
	}
	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocolVersion: got %s", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "media-utils" || result.ServerInfo.Version != "test" {
		t.Errorf("serverInfo: got %+v", result.ServerInfo)
	}
	if _, ok := result.Capabilities["tools"]; !ok {
		t.Error("capabilities should advertise tools")
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result, ok := resp.Result.(toolsListResult)
	if !ok {
		t.Fatalf("Result: got %T, want toolsListResult", resp.Result)
	}
	if len(result.Tools) != 5 {
		t.Errorf("Expected 5 tools, got %d", len(result.Tools))
	}
}

func TestHandleRequest_Notifications(t *testing.T) {
	s := newTestServer(t)
	for _, method := range []string{"notifications/initialized", "notifications/cancelled"} {
		if resp := s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", Method: method}); resp != nil {
			t.Errorf("%s: notifications get no response, got %+v", method, resp)
		}
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 1, Method: "resources/list"})

	if resp == nil || resp.Error == nil {
		t.Fatal("Expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "resources/list") {
		t.Errorf("message should name the method, got %q", resp.Error.Message)
	}
}

func TestRun_LineProtocol(t *testing.T) {
	resps := runLines(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`   `,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)

	if len(resps) != 3 {
		t.Fatalf("got %d responses, want 3", len(resps))
	}
	if resps[1].Error == nil || resps[1].Error.Code != -32700 {
		t.Errorf("second response should be a parse error, got %+v", resps[1])
	}
	if resps[1].ID != nil {
		t.Errorf("parse error ID: got %v, want null", resps[1].ID)
	}
	if resps[2].ID != float64(2) || resps[2].Error != nil {
		t.Errorf("ping response: got %+v", resps[2])
	}
}

func TestRun_Cancelled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Run(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run: got %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("no response expected after cancellation, got %s", out.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestRun_WriteFailure(t *testing.T) {
	s := newTestServer(t)
	err := s.Run(context.Background(), strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`), failingWriter{})
	if err == nil || !strings.Contains(err.Error(), "write response") {
		t.Errorf("Run: got %v, want a write error", err)
	}
}
