// provider.go implements DataProvider backed by the live bridge daemon:
// status and metrics are polled over HTTP, lifecycle events are streamed
// over the daemon's events WebSocket.
package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/devkyu/opencode-bridge/internal/client"
	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// maxEventHistory bounds the event list kept in memory.
const maxEventHistory = 50

// BridgeDataProvider fetches dashboard data from a running bridge daemon.
type BridgeDataProvider struct {
	client *client.Client
	wsURL  string
	logger zerolog.Logger

	mu     sync.Mutex
	events []EventEntry

	cancel context.CancelFunc
}

// NewBridgeDataProvider creates a provider for the daemon at addr
// (e.g. "127.0.0.1:7777") and starts the background event stream.
func NewBridgeDataProvider(addr string, logger zerolog.Logger) *BridgeDataProvider {
	wsURL := addr
	wsURL = strings.TrimPrefix(wsURL, "http://")
	wsURL = strings.TrimPrefix(wsURL, "https://")

	ctx, cancel := context.WithCancel(context.Background())
	p := &BridgeDataProvider{
		client: client.New(addr),
		wsURL:  "ws://" + strings.TrimRight(wsURL, "/") + "/api/v1/events",
		logger: logger.With().Str("component", "dashboard").Logger(),
		cancel: cancel,
	}
	go p.streamEvents(ctx)
	return p
}

// Close stops the background event stream.
func (p *BridgeDataProvider) Close() {
	p.cancel()
}

// FetchData implements DataProvider.
func (p *BridgeDataProvider) FetchData() DashboardData {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data := DashboardData{
		State:  DaemonUnreachable,
		Events: p.snapshotEvents(),
	}

	status, err := p.client.ServerStatus(ctx)
	if err != nil {
		return data
	}

	if status.Running && status.Server != nil {
		data.State = DaemonServerRunning
		data.ServerURL = status.Server.URL
		data.ProjectPath = status.Server.ProjectPath
		data.Port = status.Server.Port
	} else {
		data.State = DaemonServerStopped
	}

	if info, err := p.client.OpenCodeInfo(ctx); err == nil {
		data.Installed = info.Installed
		data.Version = info.Version
	}

	if snap, err := p.client.Metrics(ctx); err == nil {
		data.ServersStarted = snap.ServersStarted
		data.ServersReused = snap.ServersReused
		data.ServersReplaced = snap.ServersReplaced
		data.ServersStopped = snap.ServersStopped
		data.SpawnFailures = snap.SpawnFailures
		data.TerminationFailures = snap.TerminationFailures
		if d, err := time.ParseDuration(snap.Uptime); err == nil {
			data.DaemonUptime = d
		}
	}

	return data
}

// streamEvents keeps a WebSocket subscription to the daemon's event
// stream, reconnecting with a fixed backoff while the context lives.
func (p *BridgeDataProvider) streamEvents(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.wsURL, nil)
		if err != nil {
			p.logger.Debug().Err(err).Msg("event stream dial failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				continue
			}
		}

		p.readEvents(ctx, conn)
		_ = conn.Close()
	}
}

// readEvents consumes events from one connection until it fails.
func (p *BridgeDataProvider) readEvents(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var ev opencode.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		p.appendEvent(ev)
	}
}

// appendEvent prepends the event to the bounded history (newest first).
func (p *BridgeDataProvider) appendEvent(ev opencode.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := EventEntry{
		Type:        ev.Type,
		Port:        ev.Server.Port,
		ProjectPath: ev.Server.ProjectPath,
		Time:        ev.At,
	}
	p.events = append([]EventEntry{entry}, p.events...)
	if len(p.events) > maxEventHistory {
		p.events = p.events[:maxEventHistory]
	}
}

// snapshotEvents returns a copy of the current event history.
func (p *BridgeDataProvider) snapshotEvents() []EventEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]EventEntry, len(p.events))
	copy(out, p.events)
	return out
}
