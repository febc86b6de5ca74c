// Package config는 OpenCode Bridge의 설정 관리를 담당합니다.
// 설정 우선순위: 환경변수 > 설정파일 > 기본값
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config는 전체 애플리케이션 설정을 나타냅니다.
type Config struct {
	Bridge    BridgeConfig    `yaml:"bridge" mapstructure:"bridge"`
	OpenCode  OpenCodeConfig  `yaml:"opencode" mapstructure:"opencode"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// BridgeConfig는 브리지 데몬의 HTTP 바운더리 설정입니다.
type BridgeConfig struct {
	// ListenAddr은 호스트 애플리케이션이 접속하는 로컬 주소입니다.
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr"`
	// TimeoutSeconds는 브리지 API 요청 타임아웃(초)입니다.
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// OpenCodeConfig는 관리 대상 opencode 서버 프로세스 설정입니다.
type OpenCodeConfig struct {
	// Binary는 opencode 바이너리 이름 또는 경로입니다.
	// 기본값: "opencode" (PATH에서 검색)
	Binary string `yaml:"binary" mapstructure:"binary"`
	// Hostname은 opencode 서버가 바인딩할 호스트입니다.
	// 로컬 전용 서버이므로 기본값은 127.0.0.1입니다.
	Hostname string `yaml:"hostname" mapstructure:"hostname"`
	// ShutdownGraceSeconds는 호스트 종료 시 프로세스 정리에
	// 허용하는 최대 대기 시간(초)입니다.
	ShutdownGraceSeconds int `yaml:"shutdown_grace_seconds" mapstructure:"shutdown_grace_seconds"`
}

// ProvidersConfig는 AI 프로바이더별 설정입니다.
type ProvidersConfig struct {
	OpenRouter ProviderConfig `yaml:"openrouter" mapstructure:"openrouter"`
	Anthropic  ProviderConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     ProviderConfig `yaml:"openai" mapstructure:"openai"`
	Google     ProviderConfig `yaml:"google" mapstructure:"google"`
}

// ProviderConfig는 개별 AI 프로바이더 설정입니다.
type ProviderConfig struct {
	// APIKeyEnv는 API 키를 가져올 환경변수 이름입니다.
	// API 키를 평문으로 파일에 저장하지 않습니다.
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`
	// DefaultModel은 기본 사용 모델입니다.
	DefaultModel string `yaml:"default_model" mapstructure:"default_model"`
}

// LoggingConfig는 로깅 설정입니다.
type LoggingConfig struct {
	// Level은 로그 레벨입니다 (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`
	// Format은 로그 포맷입니다 (json, text).
	Format string `yaml:"format" mapstructure:"format"`
	// File은 로그 파일 경로입니다. 비어있으면 stdout으로 출력합니다.
	File string `yaml:"file" mapstructure:"file"`
}

// Load는 설정을 로드하고 Config 구조체를 반환합니다.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("설정 파싱 실패: %w", err)
	}

	// 홈 디렉토리 경로 확장
	cfg.Logging.File = expandPath(cfg.Logging.File)

	return &cfg, nil
}

// GetAPIKey는 환경변수에서 API 키를 가져옵니다.
func (p *ProviderConfig) GetAPIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// HasAPIKey는 API 키가 설정되어 있는지 확인합니다.
func (p *ProviderConfig) HasAPIKey() bool {
	return p.GetAPIKey() != ""
}

// GetBinary는 opencode 바이너리 경로를 반환합니다.
// 설정되지 않은 경우 기본값 "opencode"를 반환합니다.
func (o *OpenCodeConfig) GetBinary() string {
	if o.Binary == "" {
		return "opencode"
	}
	return o.Binary
}

// GetHostname은 opencode 서버 바인딩 호스트를 반환합니다.
// 설정되지 않은 경우 기본값 127.0.0.1을 반환합니다.
func (o *OpenCodeConfig) GetHostname() string {
	if o.Hostname == "" {
		return "127.0.0.1"
	}
	return o.Hostname
}

// GetShutdownGrace는 종료 정리 대기 시간을 반환합니다.
// 설정되지 않은 경우 기본값 5초를 반환합니다.
func (o *OpenCodeConfig) GetShutdownGrace() time.Duration {
	if o.ShutdownGraceSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(o.ShutdownGraceSeconds) * time.Second
}

// GetProviderConfig는 프로바이더 이름으로 설정을 조회합니다.
// 알 수 없는 이름이면 nil을 반환합니다.
func (c *Config) GetProviderConfig(name string) *ProviderConfig {
	switch strings.ToLower(name) {
	case "openrouter":
		return &c.Providers.OpenRouter
	case "anthropic":
		return &c.Providers.Anthropic
	case "openai":
		return &c.Providers.OpenAI
	case "google":
		return &c.Providers.Google
	default:
		return nil
	}
}

// Validate는 설정의 유효성을 검사합니다.
func (c *Config) Validate() error {
	if c.Bridge.ListenAddr == "" {
		return fmt.Errorf("bridge.listen_addr이 비어 있습니다")
	}

	// 브리지는 로컬 호스트 전용 바운더리입니다
	host := c.Bridge.ListenAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	if host != "127.0.0.1" && host != "localhost" && host != "" {
		return fmt.Errorf("bridge.listen_addr은 로컬 주소여야 합니다: %s", c.Bridge.ListenAddr)
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("유효하지 않은 로그 레벨: %s (debug, info, warn, error 중 하나)", c.Logging.Level)
	}

	validFormats := map[string]bool{"": true, "json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("유효하지 않은 로그 포맷: %s (json, text 중 하나)", c.Logging.Format)
	}

	return nil
}

// expandPath는 ~로 시작하는 경로를 홈 디렉토리로 확장합니다.
func expandPath(path string) string {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// EnsureConfigDir은 설정 디렉토리가 존재하도록 보장합니다.
func EnsureConfigDir() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("홈 디렉토리 확인 실패: %w", err)
	}
	return os.MkdirAll(filepath.Join(home, ".config", "ocbridge"), 0700)
}

// DefaultConfigPath는 기본 설정 파일 경로를 반환합니다.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ocbridge", "config.yaml")
}
