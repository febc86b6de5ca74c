package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devkyu/opencode-bridge/internal/api"
	"github.com/devkyu/opencode-bridge/internal/branding"
	"github.com/devkyu/opencode-bridge/internal/config"
	"github.com/devkyu/opencode-bridge/internal/logger"
	"github.com/devkyu/opencode-bridge/internal/metrics"
	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// serveCmd는 브리지 데몬을 시작하는 명령어입니다.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "브리지 데몬을 시작합니다",
	Long: `opencode 서버 라이프사이클을 관리하는 브리지 데몬을 시작합니다.

호스트 애플리케이션은 로컬 HTTP API(기본 127.0.0.1:7777)를 통해
서버 시작/종료/상태 조회를 요청하고, WebSocket으로 라이프사이클
이벤트를 수신합니다.

데몬 종료 시 관리 중인 opencode 서버 프로세스도 함께 정리됩니다.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "HTTP API 바인딩 주소 (기본값: 설정 파일의 bridge.listen_addr)")
}

// runServe는 브리지 데몬을 구동합니다.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("설정 검증 실패: %w", err)
	}

	listenAddr := cfg.Bridge.ListenAddr
	if flagAddr, _ := cmd.Flags().GetString("listen"); flagAddr != "" {
		listenAddr = flagAddr
	}

	fmt.Println(branding.StartupBanner())

	log := logger.WithComponent("serve")

	// 코어 조립: Planner → Supervisor → HTTP 바운더리
	planner := opencode.NewPlanner(cfg.OpenCode.GetBinary(), cfg.OpenCode.GetHostname())
	sup := opencode.NewSupervisor(planner, cfg.OpenCode.GetShutdownGrace())
	probe := opencode.NewProbe(cfg.OpenCode.GetBinary())
	m := metrics.New()

	if !probe.IsInstalled() {
		log.Warn().
			Str("binary", cfg.OpenCode.GetBinary()).
			Msg("opencode 바이너리를 찾을 수 없습니다. 서버 시작 요청은 실패합니다")
	}

	srv := api.NewServer(listenAddr, sup, probe, m, log)

	// 시그널 핸들링 (graceful shutdown)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("종료 시그널 수신, 데몬을 종료합니다")
	case err := <-errCh:
		if err != nil {
			sup.Cleanup()
			return fmt.Errorf("API 서버 실행 실패: %w", err)
		}
		return nil
	}

	// 데몬이 내려가면 관리 중인 서버도 반드시 정리
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("API 서버 정상 종료 실패")
	}
	sup.Cleanup()

	log.Info().Msg("데몬 종료 완료")
	return nil
}
