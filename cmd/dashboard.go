// dashboard.go implements the TUI dashboard command.
package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/devkyu/opencode-bridge/internal/config"
	"github.com/devkyu/opencode-bridge/internal/logger"
	"github.com/devkyu/opencode-bridge/internal/tui"
)

// dashboardCmd opens the interactive TUI dashboard.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open TUI dashboard for monitoring",
	Long: `Opens an interactive TUI dashboard showing the opencode server
status, lifecycle event history, and bridge metrics in real-time.

Requires a running bridge daemon ('ocbridge serve').

Panels:
  - Server: daemon reachability, server URL, project, opencode version
  - Events: recent lifecycle events (started/stopped/replaced)
  - Metrics: lifecycle counters and daemon uptime

Keyboard shortcuts:
  q          quit dashboard
  r          manual refresh
  tab        switch between panels
  up/down    scroll event list`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard initializes and runs the Bubble Tea TUI program.
func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	provider := tui.NewBridgeDataProvider(cfg.Bridge.ListenAddr, logger.WithComponent("dashboard"))
	defer provider.Close()

	model := tui.NewModel(provider)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}

	return nil
}
