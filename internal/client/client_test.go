package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devkyu/opencode-bridge/internal/api"
	"github.com/devkyu/opencode-bridge/internal/opencode"
)

func TestClient_StartServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/server/start" {
			t.Errorf("예상치 못한 요청: %s %s", r.Method, r.URL.Path)
		}

		var req api.StartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("요청 파싱 실패: %v", err)
		}
		if req.ProjectPath != "/tmp/proj" {
			t.Errorf("ProjectPath = %q, want /tmp/proj", req.ProjectPath)
		}
		if req.Provider == nil || req.Provider.Provider != "anthropic" {
			t.Errorf("Provider가 전달되지 않음: %+v", req.Provider)
		}

		_ = json.NewEncoder(w).Encode(opencode.ServerInfo{
			Port:        4096,
			URL:         "http://127.0.0.1:4096",
			ProjectPath: req.ProjectPath,
			Running:     true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	info, err := c.StartServer(context.Background(), "/tmp/proj", &api.ProviderParams{
		Provider: "anthropic",
		Model:    "claude-sonnet-4-5",
		APIKey:   "sk-ant-test",
	})
	if err != nil {
		t.Fatalf("StartServer() error: %v", err)
	}
	if info.Port != 4096 {
		t.Errorf("Port = %d, want 4096", info.Port)
	}
	if !info.Running {
		t.Error("Running = false, want true")
	}
}

func TestClient_StopServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/server/stop" {
			t.Errorf("예상치 못한 경로: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.StopServer(context.Background()); err != nil {
		t.Fatalf("StopServer() error: %v", err)
	}
}

func TestClient_ServerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.StatusResponse{Running: false})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.ServerStatus(context.Background())
	if err != nil {
		t.Fatalf("ServerStatus() error: %v", err)
	}
	if resp.Running {
		t.Error("Running = true, want false")
	}
}

func TestClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "프로세스 시작 실패"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.StartServer(context.Background(), "/tmp/proj", nil)
	if err == nil {
		t.Fatal("에러가 기대되었으나 nil")
	}
	if !strings.Contains(err.Error(), "프로세스 시작 실패") {
		t.Errorf("에러에 데몬 메시지가 없음: %v", err)
	}
}

func TestClient_DaemonUnreachable(t *testing.T) {
	// 즉시 닫힌 서버로 연결 실패 유도
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL)
	if err := c.Ping(context.Background()); err == nil {
		t.Error("도달 불가 데몬에 대해 에러가 기대되었으나 nil")
	}
}

func TestNew_AddrNormalization(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"127.0.0.1:7777", "http://127.0.0.1:7777"},
		{"http://127.0.0.1:7777", "http://127.0.0.1:7777"},
		{"http://127.0.0.1:7777/", "http://127.0.0.1:7777"},
	}
	for _, tt := range tests {
		c := New(tt.addr)
		if c.baseURL != tt.want {
			t.Errorf("New(%q).baseURL = %q, want %q", tt.addr, c.baseURL, tt.want)
		}
	}
}
