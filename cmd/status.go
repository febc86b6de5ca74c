// status.go는 브리지 데몬과 opencode 서버 상태 확인 명령을 구현합니다.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devkyu/opencode-bridge/internal/client"
	"github.com/devkyu/opencode-bridge/internal/config"
)

// StatusInfo는 status 명령의 출력 정보를 담는 구조체입니다.
type StatusInfo struct {
	// DaemonReachable은 브리지 데몬 도달 가능 여부입니다.
	DaemonReachable bool `json:"daemon_reachable"`
	// Running은 opencode 서버 실행 여부입니다.
	Running bool `json:"running"`
	// URL은 실행 중인 서버의 접속 주소입니다.
	URL string `json:"url,omitempty"`
	// Port는 실행 중인 서버의 포트입니다.
	Port uint16 `json:"port,omitempty"`
	// ProjectPath는 서버의 작업 디렉토리입니다.
	ProjectPath string `json:"project_path,omitempty"`
	// Installed는 opencode 바이너리 설치 여부입니다.
	Installed bool `json:"opencode_installed"`
	// Version은 opencode 버전 문자열입니다.
	Version string `json:"opencode_version,omitempty"`
}

var statusJSON bool

// statusCmd는 현재 상태를 확인하는 명령어입니다.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "브리지와 opencode 서버 상태를 확인합니다",
	Long: `브리지 데몬 도달 가능 여부, opencode 서버 실행 상태,
opencode 바이너리 설치 여부를 표시합니다.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "JSON 형식으로 출력")
}

// runStatus는 status 명령의 실행 로직입니다.
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	status := collectStatus(cfg)

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	printStatus(cfg, status)
	return nil
}

// collectStatus는 데몬에서 상태 정보를 수집합니다.
// 데몬에 도달할 수 없으면 DaemonReachable=false로 반환합니다.
func collectStatus(cfg *config.Config) *StatusInfo {
	status := &StatusInfo{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := client.New(cfg.Bridge.ListenAddr)

	resp, err := c.ServerStatus(ctx)
	if err != nil {
		return status
	}
	status.DaemonReachable = true

	if resp.Running && resp.Server != nil {
		status.Running = true
		status.URL = resp.Server.URL
		status.Port = resp.Server.Port
		status.ProjectPath = resp.Server.ProjectPath
	}

	if info, err := c.OpenCodeInfo(ctx); err == nil {
		status.Installed = info.Installed
		status.Version = info.Version
	}

	return status
}

// printStatus는 사람이 읽기 좋은 형식으로 상태를 출력합니다.
func printStatus(cfg *config.Config, status *StatusInfo) {
	if !status.DaemonReachable {
		fmt.Printf("브리지 데몬: 도달 불가 (%s)\n", cfg.Bridge.ListenAddr)
		fmt.Println("  'ocbridge serve'로 데몬을 시작하세요")
		return
	}

	fmt.Printf("브리지 데몬: 실행 중 (%s)\n", cfg.Bridge.ListenAddr)

	if status.Installed {
		fmt.Printf("opencode:    %s\n", status.Version)
	} else {
		fmt.Println("opencode:    설치되지 않음")
	}

	if status.Running {
		fmt.Println("서버:        실행 중")
		fmt.Printf("  URL:     %s\n", status.URL)
		fmt.Printf("  Port:    %d\n", status.Port)
		fmt.Printf("  Project: %s\n", status.ProjectPath)
	} else {
		fmt.Println("서버:        중지됨")
	}
}
