// Package api는 호스트 애플리케이션이 사용하는 로컬 HTTP 바운더리를 제공합니다.
// 브리지 코어(Supervisor/Planner/Probe)에 대한 요청/응답 인터페이스와
// 라이프사이클 이벤트 WebSocket 푸시를 포함합니다.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/devkyu/opencode-bridge/internal/metrics"
	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// Server는 브리지 HTTP API 서버입니다.
type Server struct {
	sup     *opencode.Supervisor
	probe   *opencode.Probe
	metrics *metrics.Metrics
	hub     *Hub
	logger  zerolog.Logger

	httpServer *http.Server
}

// NewServer는 새 API 서버를 생성하고 라우트를 등록합니다.
// Supervisor의 라이프사이클 이벤트는 WebSocket 허브로 전달됩니다.
func NewServer(addr string, sup *opencode.Supervisor, probe *opencode.Probe, m *metrics.Metrics, logger zerolog.Logger) *Server {
	s := &Server{
		sup:     sup,
		probe:   probe,
		metrics: m,
		hub:     NewHub(logger),
		logger:  logger.With().Str("component", "api").Logger(),
	}

	// 이벤트 푸시 연결
	sup.SetNotify(s.hub.Broadcast)

	router := mux.NewRouter().StrictSlash(true)
	router.Use(s.requestIDMiddleware)

	router.Methods(http.MethodPost).Path("/api/v1/server/start").HandlerFunc(s.handleStart)
	router.Methods(http.MethodPost).Path("/api/v1/server/stop").HandlerFunc(s.handleStop)
	router.Methods(http.MethodGet).Path("/api/v1/server/status").HandlerFunc(s.handleStatus)
	router.Methods(http.MethodGet).Path("/api/v1/opencode").HandlerFunc(s.handleOpenCode)
	router.Methods(http.MethodGet).Path("/api/v1/metrics").HandlerFunc(s.handleMetrics)
	router.Methods(http.MethodGet).Path("/api/v1/events").HandlerFunc(s.hub.ServeWS)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler는 등록된 라우터를 반환합니다 (테스트용).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe는 API 서버를 시작합니다. 종료까지 블로킹됩니다.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("브리지 API 서버 시작")
	return s.httpServer.ListenAndServe()
}

// Shutdown은 API 서버를 정상 종료합니다.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// requestIDMiddleware는 요청마다 추적용 ID를 부여합니다.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("요청 수신")

		next.ServeHTTP(w, r)
	})
}

// handleStart는 서버 시작 요청을 처리합니다.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "요청 본문 파싱 실패: "+err.Error())
		return
	}
	if req.ProjectPath == "" {
		s.writeError(w, http.StatusBadRequest, "project_path가 비어 있습니다")
		return
	}

	// 재사용/교체 판별을 위해 시작 전 슬롯 상태를 기록
	prev, hadPrev := s.sup.Status()

	info, err := s.sup.Start(req.ProjectPath, req.Provider.ToConfig())
	if err != nil {
		if errors.Is(err, opencode.ErrSpawnFailed) {
			s.metrics.SpawnFailures.Add(1)
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch {
	case hadPrev && prev.ProjectPath == req.ProjectPath:
		s.metrics.ServersReused.Add(1)
	case hadPrev:
		s.metrics.ServersReplaced.Add(1)
		s.metrics.RecordStart()
	default:
		s.metrics.RecordStart()
	}

	s.writeJSON(w, http.StatusOK, info)
}

// handleStop은 서버 종료 요청을 처리합니다.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	_, hadServer := s.sup.Status()

	if err := s.sup.Stop(); err != nil {
		s.metrics.TerminationFailures.Add(1)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hadServer {
		s.metrics.ServersStopped.Add(1)
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleStatus는 현재 서버 상태 스냅샷을 반환합니다.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info, ok := s.sup.Status()
	if !ok {
		s.writeJSON(w, http.StatusOK, StatusResponse{Running: false})
		return
	}
	s.writeJSON(w, http.StatusOK, StatusResponse{Running: true, Server: &info})
}

// handleOpenCode는 opencode 바이너리 설치 상태를 반환합니다.
func (s *Server) handleOpenCode(w http.ResponseWriter, r *http.Request) {
	resp := OpenCodeInfo{}
	if version, err := s.probe.Version(); err == nil {
		resp.Installed = true
		resp.Version = version
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleMetrics는 운영 지표 스냅샷을 반환합니다.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.TakeSnapshot())
}

// writeJSON은 JSON 응답을 기록합니다.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("응답 직렬화 실패")
	}
}

// writeError는 에러 응답을 기록합니다.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.logger.Error().Int("status", status).Str("error", msg).Msg("요청 처리 실패")
	s.writeJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: w.Header().Get("X-Request-Id"),
	})
}
