// start.go는 opencode 서버 시작 명령을 구현합니다.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/devkyu/opencode-bridge/internal/api"
	"github.com/devkyu/opencode-bridge/internal/client"
	"github.com/devkyu/opencode-bridge/internal/config"
	"github.com/devkyu/opencode-bridge/internal/provider"
)

var (
	startProvider string
	startModel    string
	startJSON     bool
)

// startCmd는 opencode 서버 시작을 요청하는 명령어입니다.
var startCmd = &cobra.Command{
	Use:   "start [project-path]",
	Short: "opencode 서버를 시작합니다",
	Long: `실행 중인 브리지 데몬에 opencode 서버 시작을 요청합니다.

project-path를 생략하면 현재 디렉토리를 사용합니다.
동일한 프로젝트의 서버가 이미 실행 중이면 기존 서버를 재사용하고,
다른 프로젝트의 서버가 실행 중이면 교체합니다.

프로바이더를 지정하면 해당 API 키가 환경변수에서 조회되어
서버 프로세스에 주입됩니다. 키는 어디에도 저장되지 않습니다.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVarP(&startProvider, "provider", "p", "",
		"AI 프로바이더 (openrouter, anthropic, openai, google)")
	startCmd.Flags().StringVarP(&startModel, "model", "m", "",
		"사용할 모델 (생략 시 프로바이더 기본 모델)")
	startCmd.Flags().BoolVar(&startJSON, "json", false, "JSON 형식으로 출력")
}

// runStart는 start 명령의 실행 로직입니다.
func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	projectPath, err := resolveProjectPath(args)
	if err != nil {
		return err
	}

	params, err := buildProviderParams(cfg, startProvider, startModel)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.New(cfg.Bridge.ListenAddr)
	info, err := c.StartServer(ctx, projectPath, params)
	if err != nil {
		return err
	}

	if startJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("opencode 서버 실행 중\n")
	fmt.Printf("  URL:     %s\n", info.URL)
	fmt.Printf("  Port:    %d\n", info.Port)
	fmt.Printf("  Project: %s\n", info.ProjectPath)
	return nil
}

// resolveProjectPath는 인자 또는 현재 디렉토리에서 절대 경로를 구합니다.
func resolveProjectPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("프로젝트 경로 확인 실패: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("프로젝트 디렉토리가 존재하지 않습니다: %s", abs)
	}
	return abs, nil
}

// buildProviderParams는 플래그와 설정으로부터 프로바이더 파라미터를 만듭니다.
// 프로바이더를 지정하지 않으면 nil을 반환합니다 (키 주입 없음).
func buildProviderParams(cfg *config.Config, name, model string) (*api.ProviderParams, error) {
	if name == "" {
		return nil, nil
	}

	p := provider.Parse(name)
	if p == provider.Other {
		return nil, fmt.Errorf("알 수 없는 프로바이더: %s (openrouter, anthropic, openai, google 중 하나)", name)
	}

	pc := cfg.GetProviderConfig(string(p))
	if pc == nil {
		return nil, fmt.Errorf("프로바이더 설정을 찾을 수 없습니다: %s", name)
	}

	if model == "" {
		model = pc.DefaultModel
	}

	apiKey := pc.GetAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("API 키가 없습니다. 환경변수 %s를 설정하세요", pc.APIKeyEnv)
	}

	return &api.ProviderParams{
		Provider: string(p),
		Model:    model,
		APIKey:   apiKey,
	}, nil
}
