// config.go는 설정 관리 명령을 구현합니다.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/devkyu/opencode-bridge/internal/config"
)

// configCmd는 설정 관리를 위한 상위 명령어입니다.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정을 관리합니다",
	Long: `설정 파일의 값을 조회하거나 수정합니다.

설정 파일 위치: ~/.config/ocbridge/config.yaml

주의: API 키는 환경변수로 설정하는 것을 권장합니다.
  - OPENROUTER_API_KEY: OpenRouter API 키
  - ANTHROPIC_API_KEY: Anthropic API 키
  - OPENAI_API_KEY: OpenAI API 키
  - GOOGLE_API_KEY: Google API 키`,
}

// configSetCmd는 설정 값을 저장하는 명령어입니다.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "설정 값을 저장합니다",
	Long: `설정 파일에 값을 저장합니다.

키는 점(.)으로 구분된 경로를 사용합니다.
예시:
  ocbridge config set opencode.binary /usr/local/bin/opencode
  ocbridge config set logging.level debug
  ocbridge config set bridge.listen_addr 127.0.0.1:8800

지원하는 설정 키:
  bridge.listen_addr               - 브리지 HTTP API 주소
  bridge.timeout_seconds           - API 요청 타임아웃(초)
  opencode.binary                  - opencode 바이너리 경로
  opencode.hostname                - 서버 바인딩 호스트
  opencode.shutdown_grace_seconds  - 종료 정리 대기 시간(초)
  logging.level                    - 로그 레벨 (debug, info, warn, error)
  logging.format                   - 로그 포맷 (json, text)
  logging.file                     - 로그 파일 경로 (비어있으면 stdout)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// configGetCmd는 설정 값을 조회하는 명령어입니다.
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "설정 값을 조회합니다",
	Long: `설정 파일에서 특정 키의 값을 조회합니다.

키는 점(.)으로 구분된 경로를 사용합니다.
예시:
  ocbridge config get opencode.binary
  ocbridge config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configListCmd는 전체 설정을 출력하는 명령어입니다.
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "전체 설정을 출력합니다",
	Long: `현재 적용된 모든 설정을 YAML 포맷으로 출력합니다.

API 키 관련 환경변수 설정 여부도 함께 표시됩니다.
민감한 정보(API 키)는 마스킹 처리되어 표시됩니다.`,
	RunE: runConfigList,
}

// configPathCmd는 설정 파일 경로를 출력하는 명령어입니다.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "설정 파일 경로를 출력합니다",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.DefaultConfigPath())
		return nil
	},
}

// configInitCmd는 기본 설정 파일을 생성하는 명령어입니다.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "기본 설정 파일을 생성합니다",
	Long: `기본 설정 파일을 ~/.config/ocbridge/config.yaml에 생성합니다.

이미 파일이 존재하면 덮어쓰지 않습니다.
강제로 덮어쓰려면 --force 플래그를 사용하세요.`,
	RunE: runConfigInit,
}

var forceInit bool

func init() {
	rootCmd.AddCommand(configCmd)

	// 하위 명령 등록
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)

	// init 명령 플래그
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "기존 파일을 덮어씁니다")
}

// runConfigSet은 설정 값을 저장합니다.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// 유효한 키인지 확인
	if !isValidConfigKey(key) {
		return fmt.Errorf("알 수 없는 설정 키: %s", key)
	}

	// 값 변환 (숫자, 불리언 등)
	parsedValue := parseConfigValue(value)

	// viper에 설정
	viper.Set(key, parsedValue)

	// 설정 디렉토리 확인/생성
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("설정 디렉토리 생성 실패: %w", err)
	}

	// 설정 파일 저장
	configPath := config.DefaultConfigPath()
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("설정 파일 저장 실패: %w", err)
	}

	fmt.Printf("%s = %v\n", key, parsedValue)
	fmt.Printf("설정이 저장되었습니다: %s\n", configPath)
	return nil
}

// runConfigGet은 설정 값을 조회합니다.
func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	value := viper.Get(key)
	if value == nil {
		return fmt.Errorf("설정 키를 찾을 수 없습니다: %s", key)
	}

	// API 키 관련 값은 마스킹 처리
	if strings.Contains(key, "api_key") {
		if strVal, ok := value.(string); ok && strVal != "" {
			// 환경변수 이름이면 그대로 출력, 아니면 마스킹
			if !strings.HasSuffix(strVal, "_KEY") {
				value = maskSensitiveValue(strVal)
			}
		}
	}

	fmt.Printf("%s = %v\n", key, value)
	return nil
}

// runConfigList는 전체 설정을 출력합니다.
func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	// 설정 파일 경로 출력
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		fmt.Printf("# 설정 파일: %s\n", configFile)
	} else {
		fmt.Printf("# 설정 파일: (기본값 사용 중)\n")
	}
	fmt.Println()

	// YAML로 직렬화
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("YAML 직렬화 실패: %w", err)
	}

	fmt.Println(string(yamlData))

	// API 키 환경변수 상태 출력
	fmt.Println("# 환경변수 상태:")
	printEnvStatus("OpenRouter", cfg.Providers.OpenRouter.APIKeyEnv)
	printEnvStatus("Anthropic", cfg.Providers.Anthropic.APIKeyEnv)
	printEnvStatus("OpenAI", cfg.Providers.OpenAI.APIKeyEnv)
	printEnvStatus("Google", cfg.Providers.Google.APIKeyEnv)

	return nil
}

// runConfigInit은 기본 설정 파일을 생성합니다.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultConfigPath()

	// 기존 파일 확인
	if !forceInit {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("설정 파일이 이미 존재합니다: %s\n--force 플래그로 덮어쓸 수 있습니다", configPath)
		}
	}

	// 설정 디렉토리 생성
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("설정 디렉토리 생성 실패: %w", err)
	}

	// 기본 설정 파일 내용
	defaultConfig := `# OpenCode Bridge 설정 파일
# 생성됨: ocbridge config init

bridge:
  listen_addr: "127.0.0.1:7777"
  timeout_seconds: 30

opencode:
  binary: "opencode"
  hostname: "127.0.0.1"
  shutdown_grace_seconds: 5

providers:
  openrouter:
    # API 키는 환경변수로 설정하세요 (OPENROUTER_API_KEY)
    api_key_env: "OPENROUTER_API_KEY"
    default_model: "anthropic/claude-sonnet-4"
  anthropic:
    # API 키는 환경변수로 설정하세요 (ANTHROPIC_API_KEY)
    api_key_env: "ANTHROPIC_API_KEY"
    default_model: "claude-sonnet-4-20250514"
  openai:
    # API 키는 환경변수로 설정하세요 (OPENAI_API_KEY)
    api_key_env: "OPENAI_API_KEY"
    default_model: "gpt-4o"
  google:
    # API 키는 환경변수로 설정하세요 (GOOGLE_API_KEY)
    api_key_env: "GOOGLE_API_KEY"
    default_model: "gemini-2.0-flash"

logging:
  level: "info"    # debug, info, warn, error
  format: "json"   # json, text
  file: ""         # 비어있으면 stdout
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0600); err != nil {
		return fmt.Errorf("설정 파일 생성 실패: %w", err)
	}

	fmt.Printf("설정 파일이 생성되었습니다: %s\n", configPath)
	fmt.Println("\n사용할 프로바이더의 환경변수를 설정하세요:")
	fmt.Println("  export OPENROUTER_API_KEY=<your-openrouter-api-key>")
	fmt.Println("  export ANTHROPIC_API_KEY=<your-anthropic-api-key>")
	fmt.Println("  export OPENAI_API_KEY=<your-openai-api-key>")
	fmt.Println("  export GOOGLE_API_KEY=<your-google-api-key>")
	return nil
}

// isValidConfigKey는 유효한 설정 키인지 확인합니다.
func isValidConfigKey(key string) bool {
	validKeys := map[string]bool{
		"bridge.listen_addr":                 true,
		"bridge.timeout_seconds":             true,
		"opencode.binary":                    true,
		"opencode.hostname":                  true,
		"opencode.shutdown_grace_seconds":    true,
		"providers.openrouter.api_key_env":   true,
		"providers.openrouter.default_model": true,
		"providers.anthropic.api_key_env":    true,
		"providers.anthropic.default_model":  true,
		"providers.openai.api_key_env":       true,
		"providers.openai.default_model":     true,
		"providers.google.api_key_env":       true,
		"providers.google.default_model":     true,
		"logging.level":                      true,
		"logging.format":                     true,
		"logging.file":                       true,
	}
	return validKeys[key]
}

// parseConfigValue는 문자열 값을 적절한 타입으로 변환합니다.
func parseConfigValue(value string) interface{} {
	// 불리언
	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}

	// 정수
	var intVal int
	if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
		// 소수점이 없으면 정수로 처리
		if !strings.Contains(value, ".") {
			return intVal
		}
	}

	// 실수
	var floatVal float64
	if _, err := fmt.Sscanf(value, "%f", &floatVal); err == nil {
		return floatVal
	}

	// 기본: 문자열
	return value
}

// maskSensitiveValue는 민감한 값을 마스킹합니다.
func maskSensitiveValue(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:4] + "***" + value[len(value)-4:]
}

// printEnvStatus는 환경변수 설정 상태를 출력합니다.
func printEnvStatus(displayName, envVar string) {
	value := os.Getenv(envVar)
	if value != "" {
		masked := maskSensitiveValue(value)
		fmt.Printf("  %s (%s): 설정됨 (%s)\n", displayName, envVar, masked)
	} else {
		fmt.Printf("  %s (%s): 설정되지 않음\n", displayName, envVar)
	}
}
