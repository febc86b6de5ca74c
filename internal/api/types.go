package api

import (
	"github.com/devkyu/opencode-bridge/internal/opencode"
	"github.com/devkyu/opencode-bridge/internal/provider"
)

// StartRequest는 서버 시작 요청 본문입니다.
type StartRequest struct {
	// ProjectPath는 opencode 서버의 작업 디렉토리입니다.
	ProjectPath string `json:"project_path"`
	// Provider는 선택적 프로바이더 설정입니다.
	Provider *ProviderParams `json:"provider,omitempty"`
}

// ProviderParams는 요청에 포함되는 프로바이더 파라미터입니다.
// 처리 중에만 존재하며 저장되지 않습니다.
type ProviderParams struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key,omitempty"`
}

// ToConfig는 요청 파라미터를 provider.Config로 변환합니다.
func (p *ProviderParams) ToConfig() *provider.Config {
	if p == nil {
		return nil
	}
	return &provider.Config{
		Provider: provider.Parse(p.Provider),
		Model:    p.Model,
		APIKey:   p.APIKey,
	}
}

// StatusResponse는 서버 상태 조회 응답입니다.
// 슬롯이 비어 있으면 Server는 null입니다.
type StatusResponse struct {
	Running bool                 `json:"running"`
	Server  *opencode.ServerInfo `json:"server,omitempty"`
}

// OpenCodeInfo는 opencode 바이너리 설치 상태 응답입니다.
type OpenCodeInfo struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
}

// ErrorResponse는 모든 실패 응답의 공통 형식입니다.
// 에러는 사람이 읽을 수 있는 문자열로 동기 반환됩니다.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
