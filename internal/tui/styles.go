// Package tui provides a Bubble Tea TUI dashboard for the OpenCode Bridge.
// styles.go defines lipgloss styles for the dashboard panels and status indicators.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/devkyu/opencode-bridge/internal/branding"
)

// Panel border and title styles.
var (
	// panelStyle defines the base panel with a rounded border.
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(branding.ColorBorderGray)).
			Padding(0, 1)

	// activePanelStyle highlights the currently focused panel.
	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(branding.ColorPrimary)).
				Padding(0, 1)

	// titleStyle formats panel titles.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(branding.ColorWhite)).
			Background(lipgloss.Color(branding.ColorDeepIndigo)).
			Padding(0, 1)
)

// Status color styles for the server state.
var (
	// statusRunning renders teal text when a server is running.
	statusRunning = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorTeal)).
			Bold(true)

	// statusStopped renders muted gray text when no server is running.
	statusStopped = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorMutedGray)).
			Bold(true)

	// statusUnreachable renders coral text when the daemon cannot be reached.
	statusUnreachable = lipgloss.NewStyle().
				Foreground(lipgloss.Color(branding.ColorCoral)).
				Bold(true)
)

// Table formatting styles.
var (
	// headerStyle formats table column headers.
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(branding.ColorWhite)).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(branding.ColorPrimary))

	// selectedRowStyle highlights the currently selected table row.
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(branding.ColorDeepIndigo)).
				Foreground(lipgloss.Color(branding.ColorWhite))

	// normalRowStyle formats a normal (unselected) table row.
	normalRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(branding.ColorLightGray))
)

// Label and value styles for key-value pairs.
var (
	// labelStyle formats labels in key-value displays.
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorLightGray)).
			Width(16)

	// valueStyle formats values in key-value displays.
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorWhite))
)

// Event type indicator styles.
var (
	// eventStarted renders teal text for started events.
	eventStarted = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorTeal))

	// eventStopped renders muted gray text for stopped events.
	eventStopped = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorMutedGray))

	// eventReplaced renders amber text for replaced events.
	eventReplaced = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorAmber))
)

// Footer and help styles.
var (
	// helpStyle renders keyboard shortcut hints in the footer.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorMutedGray))

	// helpKeyStyle renders keyboard shortcut keys.
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorTeal)).
			Bold(true)
)
