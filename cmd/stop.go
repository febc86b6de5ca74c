package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devkyu/opencode-bridge/internal/client"
	"github.com/devkyu/opencode-bridge/internal/config"
)

// stopCmd는 opencode 서버 종료를 요청하는 명령어입니다.
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "실행 중인 opencode 서버를 종료합니다",
	Long: `실행 중인 브리지 데몬에 opencode 서버 종료를 요청합니다.

실행 중인 서버가 없으면 아무것도 하지 않고 성공합니다.`,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

// runStop은 stop 명령의 실행 로직입니다.
func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.New(cfg.Bridge.ListenAddr)
	if err := c.StopServer(ctx); err != nil {
		return err
	}

	fmt.Println("opencode 서버 종료 완료")
	return nil
}
