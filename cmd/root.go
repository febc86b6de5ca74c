// Package cmd는 OpenCode Bridge CLI의 명령어를 정의합니다.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devkyu/opencode-bridge/internal/config"
	"github.com/devkyu/opencode-bridge/internal/logger"
)

var (
	// 전역 플래그
	cfgFile string
	verbose bool

	// 버전 정보 (main에서 주입)
	appVersion   string
	appCommit    string
	appBuildDate string
)

// rootCmd는 CLI의 루트 명령어입니다.
var rootCmd = &cobra.Command{
	Use:   "ocbridge",
	Short: "OpenCode Bridge CLI",
	Long: `OpenCode Bridge는 외부 opencode 서버 프로세스의 라이프사이클을
호스트 애플리케이션 대신 관리합니다.

포트 선택, 프로바이더 API 키 환경변수 주입, 프로세스 추적과
확실한 종료까지 단일 서버 슬롯 정책으로 처리합니다.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 로거 초기화
		return initLogger()
	},
}

// Execute는 루트 명령어를 실행합니다.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo는 버전 정보를 설정합니다.
func SetVersionInfo(version, commit, buildDate string) {
	appVersion = version
	appCommit = commit
	appBuildDate = buildDate
}

// GetVersionInfo는 버전 정보를 반환합니다.
func GetVersionInfo() (version, commit, buildDate string) {
	return appVersion, appCommit, appBuildDate
}

func init() {
	cobra.OnInitialize(initConfig)

	// 전역 플래그 정의
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"설정 파일 경로 (기본값: ~/.config/ocbridge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"상세 로그 출력 (debug 레벨)")
}

// initConfig는 설정 파일을 초기화합니다.
// 설정 우선순위: 환경변수 > 설정파일 > 기본값
func initConfig() {
	if cfgFile != "" {
		// 명시적 설정 파일 사용
		viper.SetConfigFile(cfgFile)
	} else {
		// 기본 설정 경로: ~/.config/ocbridge/config.yaml
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "홈 디렉토리를 찾을 수 없습니다: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "ocbridge")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// 환경변수 자동 바인딩 (OCB_ 접두사)
	viper.SetEnvPrefix("OCB")
	viper.AutomaticEnv()

	// 기본값 설정
	setDefaults()

	// 설정 파일 읽기 (없어도 오류 아님)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// 설정 파일이 있지만 읽기 실패한 경우만 오류
			fmt.Fprintf(os.Stderr, "설정 파일 읽기 실패: %v\n", err)
		}
	}
}

// setDefaults는 기본 설정값을 정의합니다.
func setDefaults() {
	// 브리지 데몬 설정
	viper.SetDefault("bridge.listen_addr", "127.0.0.1:7777")
	viper.SetDefault("bridge.timeout_seconds", 30)

	// opencode 프로세스 설정
	viper.SetDefault("opencode.binary", "opencode")
	viper.SetDefault("opencode.hostname", "127.0.0.1")
	viper.SetDefault("opencode.shutdown_grace_seconds", 5)

	// OpenRouter 프로바이더 설정
	viper.SetDefault("providers.openrouter.api_key_env", "OPENROUTER_API_KEY")
	viper.SetDefault("providers.openrouter.default_model", "anthropic/claude-sonnet-4")

	// Anthropic 프로바이더 설정
	viper.SetDefault("providers.anthropic.api_key_env", "ANTHROPIC_API_KEY")
	viper.SetDefault("providers.anthropic.default_model", "claude-sonnet-4-20250514")

	// OpenAI 프로바이더 설정
	viper.SetDefault("providers.openai.api_key_env", "OPENAI_API_KEY")
	viper.SetDefault("providers.openai.default_model", "gpt-4o")

	// Google 프로바이더 설정
	viper.SetDefault("providers.google.api_key_env", "GOOGLE_API_KEY")
	viper.SetDefault("providers.google.default_model", "gemini-2.0-flash")

	// 로깅 설정
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.file", "")
}

// initLogger는 로거를 초기화합니다.
func initLogger() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	// verbose 플래그가 설정되면 debug 레벨로 오버라이드
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger.Setup(cfg.Logging)
	return nil
}
