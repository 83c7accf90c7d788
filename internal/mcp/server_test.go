package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleRequest(t *testing.T) {
	s := NewServer("http://localhost:8317", "")

	t.Run("initialize", func(t *testing.T) {
		resp := s.handleRequest(&Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})
		if resp == nil {
			t.Fatal("expected a response")
		}
		result, ok := resp.Result.(InitializeResult)
		if !ok {
			t.Fatalf("result type = %T, want InitializeResult", resp.Result)
		}
		if result.ProtocolVersion != protocolVersion {
			t.Errorf("protocol version = %q, want %q", result.ProtocolVersion, protocolVersion)
		}
		if result.ServerInfo.Name != "timebox" {
			t.Errorf("server name = %q, want timebox", result.ServerInfo.Name)
		}
		if result.Capabilities.Tools == nil {
			t.Error("expected tools capability")
		}
	})

	t.Run("initialized notification gets no response", func(t *testing.T) {
		for _, method := range []string{"initialized", "notifications/initialized"} {
			if resp := s.handleRequest(&Request{JSONRPC: "2.0", Method: method}); resp != nil {
				t.Errorf("%s: expected nil response, got %+v", method, resp)
			}
		}
	})

	t.Run("tools/list names every tool", func(t *testing.T) {
		resp := s.handleRequest(&Request{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
		result, ok := resp.Result.(ToolsListResult)
		if !ok {
			t.Fatalf("result type = %T, want ToolsListResult", resp.Result)
		}

		names := map[string]bool{}
		for _, tool := range result.Tools {
			names[tool.Name] = true
			if tool.Description == "" {
				t.Errorf("tool %s has no description", tool.Name)
			}
		}
		for _, want := range []string{"start_timer", "stop_timer", "get_status", "get_history"} {
			if !names[want] {
				t.Errorf("missing tool %s", want)
			}
		}
	})

	t.Run("start_timer schema bounds the duration", func(t *testing.T) {
		for _, tool := range ToolDefinitions() {
			if tool.Name != "start_timer" {
				continue
			}
			prop, ok := tool.InputSchema.Properties["duration_minutes"]
			if !ok {
				t.Fatal("start_timer missing duration_minutes property")
			}
			if prop.Minimum == nil || *prop.Minimum != 1 {
				t.Errorf("duration_minutes minimum = %v, want 1", prop.Minimum)
			}
			if prop.Maximum == nil || *prop.Maximum != 1440 {
				t.Errorf("duration_minutes maximum = %v, want 1440", prop.Maximum)
			}
			return
		}
		t.Fatal("start_timer tool not defined")
	})

	t.Run("ping", func(t *testing.T) {
		resp := s.handleRequest(&Request{JSONRPC: "2.0", ID: 3, Method: "ping"})
		if resp == nil || resp.Error != nil {
			t.Fatalf("ping response = %+v, want a success", resp)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := s.handleRequest(&Request{JSONRPC: "2.0", ID: 4, Method: "resources/list"})
		if resp.Error == nil || resp.Error.Code != -32601 {
			t.Errorf("error = %+v, want code -32601", resp.Error)
		}
	})
}

func TestDispatchTool(t *testing.T) {
	t.Run("start_timer posts with agent origin", func(t *testing.T) {
		var captured struct {
			DurationMinutes int    `json:"duration_minutes"`
			Label           string `json:"label"`
			Origin          string `json:"origin"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/timer/start" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("decode body: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"s1"}`))
		}))
		defer srv.Close()

		s := NewServer(srv.URL, "")
		result, isError := s.dispatchTool("start_timer", map[string]interface{}{
			"duration_minutes": float64(25),
			"label":            "review PRs",
		})
		if isError {
			t.Fatalf("dispatchTool() isError = true: %s", result)
		}
		if captured.DurationMinutes != 25 || captured.Label != "review PRs" {
			t.Errorf("forwarded body = %+v", captured)
		}
		if captured.Origin != "agent" {
			t.Errorf("origin = %q, want agent", captured.Origin)
		}
		if !strings.Contains(result, "s1") {
			t.Errorf("result = %q, want the daemon response body", result)
		}
	})

	t.Run("daemon errors come back as tool errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"a timer is already running"}`))
		}))
		defer srv.Close()

		s := NewServer(srv.URL, "")
		result, isError := s.dispatchTool("stop_timer", nil)
		if !isError {
			t.Error("expected isError for a 4xx response")
		}
		if !strings.Contains(result, "already running") {
			t.Errorf("result = %q, want the daemon error text", result)
		}
	})

	t.Run("get_history forwards date filters", func(t *testing.T) {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Write([]byte(`{"sessions":[]}`))
		}))
		defer srv.Close()

		s := NewServer(srv.URL, "")
		_, isError := s.dispatchTool("get_history", map[string]interface{}{
			"start_date": "2026-08-01",
			"end_date":   "2026-08-30",
		})
		if isError {
			t.Fatal("dispatchTool() isError = true")
		}
		if !strings.Contains(gotQuery, "start_date=2026-08-01") || !strings.Contains(gotQuery, "end_date=2026-08-30") {
			t.Errorf("query = %q, want both date filters", gotQuery)
		}
	})

	t.Run("get_status sends the api key", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"is_running":false}`))
		}))
		defer srv.Close()

		s := NewServer(srv.URL, "secret")
		if _, isError := s.dispatchTool("get_status", nil); isError {
			t.Fatal("dispatchTool() isError = true")
		}
		if gotAuth != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		s := NewServer("http://localhost:8317", "")
		result, isError := s.dispatchTool("delete_everything", nil)
		if !isError {
			t.Error("expected isError for an unknown tool")
		}
		if !strings.Contains(result, "unknown tool") {
			t.Errorf("result = %q", result)
		}
	})

	t.Run("unreachable daemon reports a hint", func(t *testing.T) {
		s := NewServer("http://127.0.0.1:1", "")
		result, isError := s.dispatchTool("get_status", nil)
		if !isError {
			t.Error("expected isError when the daemon is down")
		}
		if !strings.Contains(result, "daemon running") {
			t.Errorf("result = %q, want a hint about the daemon", result)
		}
	})
}

func TestToolsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"is_running":false}`))
	}))
	defer srv.Close()

	s := NewServer(srv.URL, "")
	resp := s.handleRequest(&Request{
		JSONRPC: "2.0",
		ID:      7,
		Method:  "tools/call",
		Params:  map[string]interface{}{"name": "get_status"},
	})
	result, ok := resp.Result.(CallToolResult)
	if !ok {
		t.Fatalf("result type = %T, want CallToolResult", resp.Result)
	}
	if result.IsError {
		t.Error("IsError = true, want false")
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("content = %+v, want one text block", result.Content)
	}
	if !strings.Contains(result.Content[0].Text, "is_running") {
		t.Errorf("text = %q", result.Content[0].Text)
	}
}

func TestGetArgHelpers(t *testing.T) {
	args := map[string]interface{}{
		"count": float64(25),
		"name":  "focus",
		"wrong": []int{1},
	}
	if got := getInt(args, "count", 0); got != 25 {
		t.Errorf("getInt = %d, want 25", got)
	}
	if got := getInt(args, "missing", 7); got != 7 {
		t.Errorf("getInt fallback = %d, want 7", got)
	}
	if got := getString(args, "name"); got != "focus" {
		t.Errorf("getString = %q, want focus", got)
	}
	if got := getString(args, "wrong"); got != "" {
		t.Errorf("getString on non-string = %q, want empty", got)
	}
}
