// Package tui provides a Bubble Tea TUI dashboard for the OpenCode Bridge.
// model.go implements the main Bubble Tea model with three panels:
// server status, lifecycle event history, and bridge metrics.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devkyu/opencode-bridge/internal/branding"
	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// Panel represents which dashboard panel is currently focused.
type Panel int

const (
	// PanelServer is the server status panel (top).
	PanelServer Panel = iota
	// PanelEvents is the lifecycle event history panel (middle).
	PanelEvents
	// PanelMetrics is the bridge metrics panel (bottom).
	PanelMetrics

	panelCount = 3
)

// DaemonState represents reachability of the bridge daemon.
type DaemonState int

const (
	DaemonUnreachable DaemonState = iota
	DaemonServerStopped
	DaemonServerRunning
)

// String returns a human-readable daemon state label.
func (s DaemonState) String() string {
	switch s {
	case DaemonServerRunning:
		return "Running"
	case DaemonServerStopped:
		return "Stopped"
	default:
		return "Daemon unreachable"
	}
}

// EventEntry represents a single lifecycle event in the history.
type EventEntry struct {
	Type        opencode.EventType
	Port        uint16
	ProjectPath string
	Time        time.Time
}

// DashboardData holds all data displayed on the dashboard.
// This struct is populated externally so the TUI can be connected
// to the live bridge daemon.
type DashboardData struct {
	// Server panel data
	State       DaemonState
	ServerURL   string
	ProjectPath string
	Port        uint16
	Installed   bool
	Version     string

	// Event history panel data
	Events []EventEntry

	// Metrics panel data
	ServersStarted      int64
	ServersReused       int64
	ServersReplaced     int64
	ServersStopped      int64
	SpawnFailures       int64
	TerminationFailures int64
	DaemonUptime        time.Duration
}

// DataProvider is an interface for fetching dashboard data.
type DataProvider interface {
	// FetchData returns the current dashboard data snapshot.
	FetchData() DashboardData
}

// tickMsg signals a periodic data refresh.
type tickMsg time.Time

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	// data holds the current dashboard snapshot.
	data DashboardData
	// provider fetches fresh data on each tick.
	provider DataProvider
	// activePanel tracks the currently focused panel.
	activePanel Panel
	// selectedEvent tracks the selected event row index.
	selectedEvent int
	// eventScrollOffset tracks the scroll offset for the event list.
	eventScrollOffset int
	// width and height store the terminal dimensions.
	width  int
	height int
	// quitting signals the program should exit.
	quitting bool
}

// NewModel creates a new dashboard Model with the given DataProvider.
func NewModel(provider DataProvider) Model {
	return Model{
		data:        provider.FetchData(),
		provider:    provider,
		activePanel: PanelServer,
	}
}

// Init implements tea.Model. It starts the auto-refresh ticker.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tickMsg every 2 seconds.
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model. It processes messages and updates state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.data = m.provider.FetchData()
		return m, tickCmd()
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "r":
		m.data = m.provider.FetchData()
		return m, nil

	case "tab":
		m.activePanel = (m.activePanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
		return m, nil

	case "up", "k":
		if m.activePanel == PanelEvents && len(m.data.Events) > 0 {
			if m.selectedEvent > 0 {
				m.selectedEvent--
			}
			if m.selectedEvent < m.eventScrollOffset {
				m.eventScrollOffset = m.selectedEvent
			}
		}
		return m, nil

	case "down", "j":
		if m.activePanel == PanelEvents && len(m.data.Events) > 0 {
			if m.selectedEvent < len(m.data.Events)-1 {
				m.selectedEvent++
			}
			// show max 5 visible rows
			maxVisible := 5
			if m.selectedEvent >= m.eventScrollOffset+maxVisible {
				m.eventScrollOffset = m.selectedEvent - maxVisible + 1
			}
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model. It renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return branding.AppName + " dashboard closed.\n"
	}

	// Use sensible defaults if window size is not yet reported.
	w := m.width
	if w == 0 {
		w = 80
	}
	contentWidth := w - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	header := m.renderHeader(contentWidth)
	serverPanel := m.renderServerPanel(contentWidth)
	eventPanel := m.renderEventPanel(contentWidth)
	metricsPanel := m.renderMetricsPanel(contentWidth)
	footer := m.renderFooter(contentWidth)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		serverPanel,
		eventPanel,
		metricsPanel,
		footer,
	)
}

// renderHeader returns the dashboard title bar.
func (m Model) renderHeader(width int) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(branding.ColorWhite)).
		Background(lipgloss.Color(branding.ColorDeepIndigo)).
		Padding(0, 1).
		Width(width).
		Render(branding.AppName + " Dashboard")
}

// renderFooter returns the keyboard shortcut help bar.
func (m Model) renderFooter(width int) string {
	keys := []struct {
		key  string
		desc string
	}{
		{"q", "quit"},
		{"r", "refresh"},
		{"tab", "switch panel"},
		{"up/down", "scroll events"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts,
			helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc),
		)
	}

	help := strings.Join(parts, helpStyle.Render("  |  "))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(help)
}

// renderServerPanel renders the server status panel.
func (m Model) renderServerPanel(width int) string {
	statusText := m.formatDaemonState()

	url := m.data.ServerURL
	if url == "" {
		url = "--"
	}
	project := m.data.ProjectPath
	if project == "" {
		project = "--"
	}

	installStr := "not installed"
	if m.data.Installed {
		installStr = m.data.Version
		if installStr == "" {
			installStr = "installed"
		}
	}

	lines := []string{
		labelStyle.Render("Status:") + " " + statusText,
		labelStyle.Render("URL:") + " " + valueStyle.Render(url),
		labelStyle.Render("Project:") + " " + valueStyle.Render(project),
		labelStyle.Render("opencode:") + " " + valueStyle.Render(installStr),
	}
	content := strings.Join(lines, "\n")

	style := m.getPanelStyle(PanelServer, width)
	title := titleStyle.Render(" Server ")
	return title + "\n" + style.Render(content)
}

// renderEventPanel renders the lifecycle event history panel.
func (m Model) renderEventPanel(width int) string {
	colType := 10
	colPort := 6
	colProject := 32
	colTime := 10

	header := headerStyle.Render(
		fmt.Sprintf("%-*s %-*s %-*s %-*s",
			colType, "Event",
			colPort, "Port",
			colProject, "Project",
			colTime, "Time",
		),
	)

	var rows []string
	rows = append(rows, header)

	if len(m.data.Events) == 0 {
		rows = append(rows, normalRowStyle.Render("  No events yet"))
	} else {
		maxVisible := 5
		end := m.eventScrollOffset + maxVisible
		if end > len(m.data.Events) {
			end = len(m.data.Events)
		}

		for i := m.eventScrollOffset; i < end; i++ {
			ev := m.data.Events[i]
			row := fmt.Sprintf("%-*s %-*d %-*s %-*s",
				colType, m.formatEventType(ev.Type),
				colPort, ev.Port,
				colProject, truncate(ev.ProjectPath, colProject),
				colTime, ev.Time.Format("15:04:05"),
			)

			if i == m.selectedEvent && m.activePanel == PanelEvents {
				rows = append(rows, selectedRowStyle.Render(row))
			} else {
				rows = append(rows, normalRowStyle.Render(row))
			}
		}

		if len(m.data.Events) > maxVisible {
			indicator := fmt.Sprintf("  [%d/%d events]", m.selectedEvent+1, len(m.data.Events))
			rows = append(rows, helpStyle.Render(indicator))
		}
	}

	content := strings.Join(rows, "\n")
	style := m.getPanelStyle(PanelEvents, width)
	title := titleStyle.Render(" Events ")
	return title + "\n" + style.Render(content)
}

// renderMetricsPanel renders the bridge metrics panel.
func (m Model) renderMetricsPanel(width int) string {
	lines := []string{
		labelStyle.Render("Started:") + " " + valueStyle.Render(fmt.Sprintf("%d", m.data.ServersStarted)) +
			"  " + labelStyle.Render("Reused:") + " " + valueStyle.Render(fmt.Sprintf("%d", m.data.ServersReused)),
		labelStyle.Render("Replaced:") + " " + valueStyle.Render(fmt.Sprintf("%d", m.data.ServersReplaced)) +
			"  " + labelStyle.Render("Stopped:") + " " + valueStyle.Render(fmt.Sprintf("%d", m.data.ServersStopped)),
		labelStyle.Render("Spawn fails:") + " " + valueStyle.Render(fmt.Sprintf("%d", m.data.SpawnFailures)) +
			"  " + labelStyle.Render("Term fails:") + " " + valueStyle.Render(fmt.Sprintf("%d", m.data.TerminationFailures)),
		labelStyle.Render("Daemon uptime:") + " " + valueStyle.Render(formatDuration(m.data.DaemonUptime)),
	}
	content := strings.Join(lines, "\n")

	style := m.getPanelStyle(PanelMetrics, width)
	title := titleStyle.Render(" Metrics ")
	return title + "\n" + style.Render(content)
}

// getPanelStyle returns the appropriate panel style based on focus state.
func (m Model) getPanelStyle(panel Panel, width int) lipgloss.Style {
	if m.activePanel == panel {
		return activePanelStyle.Width(width - 2)
	}
	return panelStyle.Width(width - 2)
}

// formatDaemonState returns a color-coded daemon state string.
func (m Model) formatDaemonState() string {
	switch m.data.State {
	case DaemonServerRunning:
		return statusRunning.Render("Running")
	case DaemonServerStopped:
		return statusStopped.Render("Stopped")
	default:
		return statusUnreachable.Render("Daemon unreachable")
	}
}

// formatEventType returns a color-coded event type string.
func (m Model) formatEventType(t opencode.EventType) string {
	switch t {
	case opencode.EventStarted:
		return eventStarted.Render(string(t))
	case opencode.EventStopped:
		return eventStopped.Render(string(t))
	case opencode.EventReplaced:
		return eventReplaced.Render(string(t))
	default:
		return string(t)
	}
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	totalSeconds := int(d.Seconds())
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// truncate shortens a string to maxLen, adding an ellipsis if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
