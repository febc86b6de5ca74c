package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/devkyu/opencode-bridge/internal/metrics"
	"github.com/devkyu/opencode-bridge/internal/opencode"
	"github.com/devkyu/opencode-bridge/internal/provider"
)

// stubPlanner는 opencode 대신 오래 잠드는 프로세스를 계획합니다.
type stubPlanner struct {
	hostname string
}

func (p *stubPlanner) Plan(cfg *provider.Config) (*opencode.Plan, error) {
	planner := &opencode.Planner{Binary: "sleep", Hostname: p.hostname}
	port, err := planner.PickPort()
	if err != nil {
		return nil, err
	}
	return &opencode.Plan{
		Binary:   "sleep",
		Args:     []string{"30"},
		Env:      planner.BuildEnv(cfg),
		Port:     port,
		Hostname: p.hostname,
	}, nil
}

func newTestServer(t *testing.T) (*Server, *opencode.Supervisor) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("sleep 기반 테스트는 유닉스 계열에서만 실행")
	}

	sup := opencode.NewSupervisor(&stubPlanner{hostname: "127.0.0.1"}, 3*time.Second)
	t.Cleanup(sup.Cleanup)

	m := metrics.New()
	probe := opencode.NewProbe("echo")
	srv := NewServer("127.0.0.1:0", sup, probe, m, zerolog.Nop())
	return srv, sup
}

func postStart(t *testing.T, h http.Handler, projectPath string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(StartRequest{ProjectPath: projectPath})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/server/start", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Start(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	t.Run("정상 시작", func(t *testing.T) {
		rec := postStart(t, h, "/tmp/proj-a")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
		}

		var info opencode.ServerInfo
		if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
			t.Fatalf("응답 파싱 실패: %v", err)
		}
		if !info.Running {
			t.Error("Running = false, want true")
		}
		if info.Port == 0 {
			t.Error("Port = 0, want nonzero")
		}
		if info.ProjectPath != "/tmp/proj-a" {
			t.Errorf("ProjectPath = %q, want /tmp/proj-a", info.ProjectPath)
		}
	})

	t.Run("빈 project_path는 400", func(t *testing.T) {
		rec := postStart(t, h, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		var errResp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
			t.Fatalf("에러 응답 파싱 실패: %v", err)
		}
		if errResp.Error == "" {
			t.Error("에러 메시지가 비어 있음")
		}
	})

	t.Run("잘못된 본문은 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/server/start", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestServer_StartMetricsAttribution(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// 최초 시작
	if rec := postStart(t, h, "/tmp/proj-a"); rec.Code != http.StatusOK {
		t.Fatalf("첫 시작 실패: %d", rec.Code)
	}
	// 동일 경로: 재사용
	if rec := postStart(t, h, "/tmp/proj-a"); rec.Code != http.StatusOK {
		t.Fatalf("재사용 시작 실패: %d", rec.Code)
	}
	// 다른 경로: 교체
	if rec := postStart(t, h, "/tmp/proj-b"); rec.Code != http.StatusOK {
		t.Fatalf("교체 시작 실패: %d", rec.Code)
	}

	snap := srv.metrics.TakeSnapshot()
	if snap.ServersStarted != 2 {
		t.Errorf("ServersStarted = %d, want 2", snap.ServersStarted)
	}
	if snap.ServersReused != 1 {
		t.Errorf("ServersReused = %d, want 1", snap.ServersReused)
	}
	if snap.ServersReplaced != 1 {
		t.Errorf("ServersReplaced = %d, want 1", snap.ServersReplaced)
	}
}

func TestServer_Stop(t *testing.T) {
	srv, sup := newTestServer(t)
	h := srv.Handler()

	t.Run("빈 슬롯 종료는 성공", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/server/stop", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("실행 중 서버 종료", func(t *testing.T) {
		if rec := postStart(t, h, "/tmp/proj-a"); rec.Code != http.StatusOK {
			t.Fatalf("시작 실패: %d", rec.Code)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/server/stop", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}

		if _, ok := sup.Status(); ok {
			t.Error("종료 후에도 슬롯이 차 있음")
		}
		if got := srv.metrics.TakeSnapshot().ServersStopped; got != 1 {
			t.Errorf("ServersStopped = %d, want 1", got)
		}
	})
}

func TestServer_Status(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	t.Run("빈 슬롯", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/server/status", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp StatusResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("응답 파싱 실패: %v", err)
		}
		if resp.Running {
			t.Error("Running = true, want false")
		}
		if resp.Server != nil {
			t.Error("Server != nil, want nil")
		}
	})

	t.Run("실행 중", func(t *testing.T) {
		if rec := postStart(t, h, "/tmp/proj-a"); rec.Code != http.StatusOK {
			t.Fatalf("시작 실패: %d", rec.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/server/status", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var resp StatusResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("응답 파싱 실패: %v", err)
		}
		if !resp.Running || resp.Server == nil {
			t.Fatalf("실행 중 상태가 아님: %+v", resp)
		}
		if resp.Server.URL == "" {
			t.Error("URL이 비어 있음")
		}
	})
}

func TestServer_OpenCodeInfo(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// Probe 바이너리가 echo이므로 --version이 그대로 출력됨
	req := httptest.NewRequest(http.MethodGet, "/api/v1/opencode", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info OpenCodeInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("응답 파싱 실패: %v", err)
	}
	if !info.Installed {
		t.Error("Installed = false, want true")
	}
	if info.Version != "--version" {
		t.Errorf("Version = %q, want --version", info.Version)
	}
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("응답 파싱 실패: %v", err)
	}
}

func TestServer_RequestID(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/server/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id 헤더가 없음")
	}
}

func TestServer_EventsWebSocket(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket 연결 실패: %v", err)
	}
	defer conn.Close()

	// 구독자 등록이 반영될 때까지 대기
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("구독자가 등록되지 않음")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if rec := postStart(t, srv.Handler(), "/tmp/proj-a"); rec.Code != http.StatusOK {
		t.Fatalf("시작 실패: %d", rec.Code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev opencode.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("이벤트 수신 실패: %v", err)
	}
	if ev.Type != opencode.EventStarted {
		t.Errorf("Type = %q, want %q", ev.Type, opencode.EventStarted)
	}
	if !ev.Server.Running {
		t.Error("이벤트의 Server.Running = false, want true")
	}
}

func TestHub_BroadcastRemovesDeadClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket 연결 실패: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("구독자가 등록되지 않음")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	// 종료된 연결은 읽기 루프 또는 다음 브로드캐스트에서 제거됨
	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		hub.Broadcast(opencode.Event{Type: opencode.EventStopped, At: time.Now()})
		if time.Now().After(deadline) {
			t.Fatalf("죽은 구독자가 제거되지 않음: %d명 남음", hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
