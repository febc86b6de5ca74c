package config

import (
	"testing"
	"time"
)

// TestProviderConfig_GetAPIKey는 환경변수에서 API 키를 가져오는 기능을 테스트합니다.
func TestProviderConfig_GetAPIKey(t *testing.T) {
	testKey := "test-api-key-12345"
	t.Setenv("TEST_API_KEY", testKey)

	tests := []struct {
		name      string
		apiKeyEnv string
		expected  string
	}{
		{
			name:      "환경변수가 설정된 경우",
			apiKeyEnv: "TEST_API_KEY",
			expected:  testKey,
		},
		{
			name:      "환경변수가 없는 경우",
			apiKeyEnv: "NONEXISTENT_KEY",
			expected:  "",
		},
		{
			name:      "환경변수 이름이 빈 문자열인 경우",
			apiKeyEnv: "",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ProviderConfig{APIKeyEnv: tt.apiKeyEnv}
			result := p.GetAPIKey()
			if result != tt.expected {
				t.Errorf("GetAPIKey() = %q, want %q", result, tt.expected)
			}
		})
	}
}

// TestOpenCodeConfig_Defaults는 opencode 설정 기본값을 테스트합니다.
func TestOpenCodeConfig_Defaults(t *testing.T) {
	o := &OpenCodeConfig{}

	if got := o.GetBinary(); got != "opencode" {
		t.Errorf("GetBinary() = %q, want %q", got, "opencode")
	}
	if got := o.GetHostname(); got != "127.0.0.1" {
		t.Errorf("GetHostname() = %q, want %q", got, "127.0.0.1")
	}
	if got := o.GetShutdownGrace(); got != 5*time.Second {
		t.Errorf("GetShutdownGrace() = %v, want 5s", got)
	}

	// 명시적 설정이 기본값을 덮어쓰는지 확인
	o = &OpenCodeConfig{
		Binary:               "/usr/local/bin/opencode",
		Hostname:             "127.0.0.1",
		ShutdownGraceSeconds: 10,
	}
	if got := o.GetBinary(); got != "/usr/local/bin/opencode" {
		t.Errorf("GetBinary() = %q, want custom path", got)
	}
	if got := o.GetShutdownGrace(); got != 10*time.Second {
		t.Errorf("GetShutdownGrace() = %v, want 10s", got)
	}
}

// TestConfig_GetProviderConfig는 프로바이더 이름 조회를 테스트합니다.
func TestConfig_GetProviderConfig(t *testing.T) {
	cfg := &Config{
		Providers: ProvidersConfig{
			Anthropic:  ProviderConfig{APIKeyEnv: "ANTHROPIC_API_KEY"},
			OpenRouter: ProviderConfig{APIKeyEnv: "OPENROUTER_API_KEY"},
			OpenAI:     ProviderConfig{APIKeyEnv: "OPENAI_API_KEY"},
			Google:     ProviderConfig{APIKeyEnv: "GOOGLE_API_KEY"},
		},
	}

	tests := []struct {
		name     string
		provider string
		wantEnv  string
	}{
		{"anthropic 조회", "anthropic", "ANTHROPIC_API_KEY"},
		{"대소문자 무시", "Anthropic", "ANTHROPIC_API_KEY"},
		{"openrouter 조회", "openrouter", "OPENROUTER_API_KEY"},
		{"openai 조회", "openai", "OPENAI_API_KEY"},
		{"google 조회", "google", "GOOGLE_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cfg.GetProviderConfig(tt.provider)
			if p == nil {
				t.Fatalf("GetProviderConfig(%q) = nil", tt.provider)
			}
			if p.APIKeyEnv != tt.wantEnv {
				t.Errorf("APIKeyEnv = %q, want %q", p.APIKeyEnv, tt.wantEnv)
			}
		})
	}

	// 알 수 없는 프로바이더는 nil
	if p := cfg.GetProviderConfig("unknown"); p != nil {
		t.Errorf("GetProviderConfig(unknown) = %v, want nil", p)
	}
}

// TestConfig_Validate는 설정 검증을 테스트합니다.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "유효한 설정",
			cfg: Config{
				Bridge:  BridgeConfig{ListenAddr: "127.0.0.1:8901"},
				Logging: LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: false,
		},
		{
			name:    "listen_addr이 비어 있는 경우",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "로컬이 아닌 listen_addr",
			cfg: Config{
				Bridge: BridgeConfig{ListenAddr: "0.0.0.0:8901"},
			},
			wantErr: true,
		},
		{
			name: "유효하지 않은 로그 레벨",
			cfg: Config{
				Bridge:  BridgeConfig{ListenAddr: "127.0.0.1:8901"},
				Logging: LoggingConfig{Level: "trace"},
			},
			wantErr: true,
		},
		{
			name: "유효하지 않은 로그 포맷",
			cfg: Config{
				Bridge:  BridgeConfig{ListenAddr: "127.0.0.1:8901"},
				Logging: LoggingConfig{Format: "xml"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestExpandPath는 홈 디렉토리 경로 확장을 테스트합니다.
func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/testuser")

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"틸드 경로", "~/logs/bridge.log", "/home/testuser/logs/bridge.log"},
		{"절대 경로는 그대로", "/var/log/bridge.log", "/var/log/bridge.log"},
		{"빈 경로", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.path)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}
