// events.go는 서버 라이프사이클 이벤트의 WebSocket 푸시를 구현합니다.
// 호스트 GUI는 /api/v1/events에 연결하여 started/stopped/replaced
// 이벤트를 실시간으로 수신합니다.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// writeTimeout은 느린 구독자에 허용하는 최대 쓰기 시간입니다.
const writeTimeout = 5 * time.Second

// Hub는 이벤트 구독자 집합을 관리합니다.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	closed   bool
}

// NewHub는 새 이벤트 허브를 생성합니다.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			// 로컬 전용 바운더리이므로 Origin 검사를 하지 않음
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// ServeWS는 HTTP 연결을 WebSocket으로 업그레이드하고 구독자로 등록합니다.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket 업그레이드 실패")
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("subscribers", count).Msg("이벤트 구독자 연결")

	// 구독자는 전송만 받으므로 읽기 루프는 연결 종료 감지용입니다
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

// Broadcast는 모든 구독자에게 이벤트를 전달합니다.
// 쓰기에 실패한 구독자는 제거됩니다.
func (h *Hub) Broadcast(ev opencode.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debug().Err(err).Msg("이벤트 전송 실패, 구독자 제거")
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount는 현재 구독자 수를 반환합니다.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close는 모든 구독자 연결을 닫습니다.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for conn := range h.clients {
		_ = conn.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
}

// remove는 구독자를 제거합니다.
func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; ok {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
