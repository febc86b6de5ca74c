package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// staticProvider returns a fixed DashboardData for tests.
type staticProvider struct {
	data DashboardData
}

func (p *staticProvider) FetchData() DashboardData {
	return p.data
}

func runningData() DashboardData {
	return DashboardData{
		State:       DaemonServerRunning,
		ServerURL:   "http://127.0.0.1:4096",
		ProjectPath: "/tmp/proj-a",
		Port:        4096,
		Installed:   true,
		Version:     "opencode 0.5.1",
		Events: []EventEntry{
			{Type: opencode.EventStarted, Port: 4096, ProjectPath: "/tmp/proj-a", Time: time.Now()},
			{Type: opencode.EventReplaced, Port: 4090, ProjectPath: "/tmp/proj-b", Time: time.Now().Add(-time.Minute)},
			{Type: opencode.EventStopped, Port: 4080, ProjectPath: "/tmp/proj-c", Time: time.Now().Add(-2 * time.Minute)},
		},
		ServersStarted: 3,
		ServersStopped: 2,
		DaemonUptime:   90 * time.Second,
	}
}

func TestNewModel(t *testing.T) {
	m := NewModel(&staticProvider{data: runningData()})

	if m.activePanel != PanelServer {
		t.Errorf("activePanel = %v, want PanelServer", m.activePanel)
	}
	if m.data.State != DaemonServerRunning {
		t.Errorf("State = %v, want DaemonServerRunning", m.data.State)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m := NewModel(&staticProvider{data: runningData()})

			var msg tea.KeyMsg
			if key == "ctrl+c" {
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			} else {
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
			}

			updated, cmd := m.Update(msg)
			if cmd == nil {
				t.Fatal("quit command expected, got nil")
			}
			um := updated.(Model)
			if !um.quitting {
				t.Error("quitting = false after quit key")
			}
		})
	}
}

func TestModel_TabCyclesPanels(t *testing.T) {
	m := NewModel(&staticProvider{data: runningData()})

	tab := tea.KeyMsg{Type: tea.KeyTab}
	expected := []Panel{PanelEvents, PanelMetrics, PanelServer}
	for _, want := range expected {
		updated, _ := m.Update(tab)
		m = updated.(Model)
		if m.activePanel != want {
			t.Fatalf("activePanel = %v, want %v", m.activePanel, want)
		}
	}
}

func TestModel_EventNavigation(t *testing.T) {
	m := NewModel(&staticProvider{data: runningData()})
	m.activePanel = PanelEvents

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	updated, _ := m.Update(down)
	m = updated.(Model)
	if m.selectedEvent != 1 {
		t.Errorf("selectedEvent = %d after down, want 1", m.selectedEvent)
	}

	updated, _ = m.Update(up)
	m = updated.(Model)
	if m.selectedEvent != 0 {
		t.Errorf("selectedEvent = %d after up, want 0", m.selectedEvent)
	}

	// 맨 위에서 up은 그대로
	updated, _ = m.Update(up)
	m = updated.(Model)
	if m.selectedEvent != 0 {
		t.Errorf("selectedEvent = %d, want 0", m.selectedEvent)
	}
}

func TestModel_ViewContainsPanels(t *testing.T) {
	m := NewModel(&staticProvider{data: runningData()})
	m.width = 100
	m.height = 40

	view := m.View()
	for _, want := range []string{"Server", "Events", "Metrics", "Dashboard"} {
		if !strings.Contains(view, want) {
			t.Errorf("View()에 %q 가 없음", want)
		}
	}
	if !strings.Contains(view, "/tmp/proj-a") {
		t.Error("View()에 프로젝트 경로가 없음")
	}
}

func TestModel_ViewUnreachable(t *testing.T) {
	m := NewModel(&staticProvider{data: DashboardData{State: DaemonUnreachable}})
	m.width = 100

	if !strings.Contains(m.View(), "unreachable") {
		t.Error("View()에 도달 불가 상태가 표시되지 않음")
	}
}

func TestModel_TickRefreshesData(t *testing.T) {
	p := &staticProvider{data: DashboardData{State: DaemonServerStopped}}
	m := NewModel(p)

	p.data = runningData()
	updated, cmd := m.Update(tickMsg(time.Now()))
	m = updated.(Model)

	if m.data.State != DaemonServerRunning {
		t.Error("tick 이후 데이터가 갱신되지 않음")
	}
	if cmd == nil {
		t.Error("tick은 다음 tick 명령을 반환해야 함")
	}
}

func TestDaemonState_String(t *testing.T) {
	tests := []struct {
		state DaemonState
		want  string
	}{
		{DaemonServerRunning, "Running"},
		{DaemonServerStopped, "Stopped"},
		{DaemonUnreachable, "Daemon unreachable"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "--"},
		{500 * time.Millisecond, "500ms"},
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m 0s"},
		{25 * time.Hour, "1d 1h 0m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"/very/long/project/path", 10, "/very/l..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestBridgeDataProvider_EventHistory(t *testing.T) {
	p := NewBridgeDataProvider("127.0.0.1:1", zerolog.Nop())
	defer p.Close()

	for i := 0; i < maxEventHistory+10; i++ {
		p.appendEvent(opencode.Event{
			Type:   opencode.EventStarted,
			Server: opencode.ServerInfo{Port: uint16(4000 + i), ProjectPath: "/tmp/p"},
			At:     time.Now(),
		})
	}

	events := p.snapshotEvents()
	if len(events) != maxEventHistory {
		t.Errorf("이벤트 수 = %d, want %d", len(events), maxEventHistory)
	}
	// 최신 이벤트가 맨 앞에 와야 함
	if events[0].Port != uint16(4000+maxEventHistory+9) {
		t.Errorf("최신 이벤트 포트 = %d, want %d", events[0].Port, 4000+maxEventHistory+9)
	}
}
