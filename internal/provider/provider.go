// Package provider는 AI 프로바이더 식별과 환경변수 매핑을 제공합니다.
// opencode 서버는 프로바이더 API 키를 환경변수로 전달받으므로,
// 브리지는 프로바이더 이름을 정확한 환경변수 이름으로 변환해야 합니다.
package provider

import "strings"

// Provider는 opencode가 지원하는 AI 프로바이더 식별자입니다.
type Provider string

// 지원 프로바이더 목록
const (
	OpenRouter Provider = "openrouter"
	Anthropic  Provider = "anthropic"
	OpenAI     Provider = "openai"
	Google     Provider = "google"
	Other      Provider = "other"
)

// envVarTable은 프로바이더별 API 키 환경변수 이름의 고정 매핑입니다.
// 알 수 없는 프로바이더는 매핑이 없으며, 이 경우 환경변수를 설정하지 않습니다.
var envVarTable = map[Provider]string{
	OpenRouter: "OPENROUTER_API_KEY",
	Anthropic:  "ANTHROPIC_API_KEY",
	OpenAI:     "OPENAI_API_KEY",
	Google:     "GOOGLE_API_KEY",
}

// Config는 launch 요청에 포함되는 프로바이더 설정입니다.
// 요청 처리 중에만 존재하며 어디에도 저장되지 않습니다.
type Config struct {
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`
	APIKey   string   `json:"api_key,omitempty"`
}

// Parse는 프로바이더 이름 문자열을 Provider로 변환합니다.
// 알려지지 않은 이름은 Other로 분류됩니다.
func Parse(name string) Provider {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openrouter":
		return OpenRouter
	case "anthropic":
		return Anthropic
	case "openai":
		return OpenAI
	case "google":
		return Google
	default:
		return Other
	}
}

// EnvVar는 프로바이더의 API 키 환경변수 이름을 반환합니다.
// 매핑이 없는 프로바이더는 빈 문자열과 false를 반환합니다.
func (p Provider) EnvVar() (string, bool) {
	name, ok := envVarTable[p]
	return name, ok
}

// Known은 고정 매핑 테이블에 등록된 프로바이더인지 확인합니다.
func (p Provider) Known() bool {
	_, ok := envVarTable[p]
	return ok
}

// String은 프로바이더 이름을 반환합니다.
func (p Provider) String() string {
	return string(p)
}

// All은 매핑 테이블에 등록된 전체 프로바이더 목록을 반환합니다.
func All() []Provider {
	return []Provider{OpenRouter, Anthropic, OpenAI, Google}
}
