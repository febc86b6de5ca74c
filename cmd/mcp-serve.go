package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/devkyu/opencode-bridge/internal/config"
	"github.com/devkyu/opencode-bridge/internal/mcpserver"
	"github.com/devkyu/opencode-bridge/internal/metrics"
	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// mcpServeCmd는 MCP 서버를 시작하는 Cobra 서브커맨드입니다.
var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Start OpenCode Bridge MCP server (stdio transport)",
	Long: `OpenCode Bridge MCP 서버를 stdio 트랜스포트로 시작합니다.
MCP 호환 에이전트가 opencode 서버 라이프사이클을 도구/리소스로
조작할 수 있도록 합니다. Supervisor를 인프로세스로 구동하므로
별도 브리지 데몬이 필요 없습니다.

사용 예시 (MCP 클라이언트 설정):
  {
    "mcpServers": {
      "ocbridge": {
        "command": "ocbridge",
        "args": ["mcp-serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	rootCmd.AddCommand(mcpServeCmd)
}

// runMCPServe는 MCP 서버를 시작합니다.
func runMCPServe(cmd *cobra.Command, args []string) error {
	// 로거 초기화 (stderr로 출력, stdout은 MCP stdio에서 사용)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Str("component", "mcp-serve").
		Logger()

	logger.Info().Msg("OpenCode Bridge MCP 서버를 시작합니다...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	// 코어 조립: stdio 뒤에서 Supervisor가 프로세스 슬롯을 소유
	planner := opencode.NewPlanner(cfg.OpenCode.GetBinary(), cfg.OpenCode.GetHostname())
	sup := opencode.NewSupervisor(planner, cfg.OpenCode.GetShutdownGrace())
	probe := opencode.NewProbe(cfg.OpenCode.GetBinary())

	srv := mcpserver.NewServer(sup, probe, metrics.New(), logger)

	// 시그널 핸들링: MCP 서버가 내려가면 opencode 서버도 정리
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("종료 시그널 수신, MCP 서버를 종료합니다")
		srv.Cleanup()
		os.Exit(0)
	}()

	// MCP 서버 시작 (stdio, 블로킹)
	logger.Info().
		Str("binary", cfg.OpenCode.GetBinary()).
		Msg("MCP 서버 준비 완료, stdio 대기 중...")

	if err := srv.Start(); err != nil {
		srv.Cleanup()
		return fmt.Errorf("MCP 서버 실행 실패: %w", err)
	}

	srv.Cleanup()
	return nil
}
