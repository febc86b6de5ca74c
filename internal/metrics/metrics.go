// Package metrics provides operational metrics tracking for the bridge.
// Counters cover server lifecycle operations so the host can observe
// spawn/termination behavior through the status boundary.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks operational metrics for the bridge.
// All fields are thread-safe for concurrent access.
type Metrics struct {
	// Server lifecycle metrics
	ServersStarted  atomic.Int64
	ServersReused   atomic.Int64
	ServersReplaced atomic.Int64
	ServersStopped  atomic.Int64

	// Failure metrics
	SpawnFailures       atomic.Int64
	TerminationFailures atomic.Int64

	// Timing metrics
	startTime     time.Time
	lastStartedAt atomic.Value // time.Time

	mu sync.RWMutex
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Timestamp           time.Time `json:"timestamp"`
	Uptime              string    `json:"uptime"`
	ServersStarted      int64     `json:"servers_started"`
	ServersReused       int64     `json:"servers_reused"`
	ServersReplaced     int64     `json:"servers_replaced"`
	ServersStopped      int64     `json:"servers_stopped"`
	SpawnFailures       int64     `json:"spawn_failures"`
	TerminationFailures int64     `json:"termination_failures"`
	LastStartedAt       string    `json:"last_started_at,omitempty"`
}

// New creates a new Metrics instance with the start time set to now.
func New() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// RecordStart records a successful server spawn.
func (m *Metrics) RecordStart() {
	m.ServersStarted.Add(1)
	m.lastStartedAt.Store(time.Now())
}

// Uptime returns the duration since the metrics instance was created.
func (m *Metrics) Uptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Since(m.startTime)
}

// TakeSnapshot returns a point-in-time copy of all metrics.
func (m *Metrics) TakeSnapshot() Snapshot {
	snap := Snapshot{
		Timestamp:           time.Now(),
		Uptime:              m.Uptime().Round(time.Millisecond).String(),
		ServersStarted:      m.ServersStarted.Load(),
		ServersReused:       m.ServersReused.Load(),
		ServersReplaced:     m.ServersReplaced.Load(),
		ServersStopped:      m.ServersStopped.Load(),
		SpawnFailures:       m.SpawnFailures.Load(),
		TerminationFailures: m.TerminationFailures.Load(),
	}

	if v := m.lastStartedAt.Load(); v != nil {
		if t, ok := v.(time.Time); ok && !t.IsZero() {
			snap.LastStartedAt = t.Format(time.RFC3339)
		}
	}

	return snap
}

// ToJSON returns a JSON-encoded representation of the current snapshot.
func (m *Metrics) ToJSON() ([]byte, error) {
	return json.Marshal(m.TakeSnapshot())
}

// Reset resets all counters to zero and restarts the uptime clock.
func (m *Metrics) Reset() {
	m.ServersStarted.Store(0)
	m.ServersReused.Store(0)
	m.ServersReplaced.Store(0)
	m.ServersStopped.Store(0)
	m.SpawnFailures.Store(0)
	m.TerminationFailures.Store(0)
	m.lastStartedAt.Store(time.Time{})

	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}
