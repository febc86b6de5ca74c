package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// BridgeStatus는 ocbridge://status 리소스로 노출되는 상태 정보입니다.
type BridgeStatus struct {
	ServerName string               `json:"server_name"`
	Version    string               `json:"version"`
	Installed  bool                 `json:"opencode_installed"`
	Running    bool                 `json:"running"`
	Server     *opencode.ServerInfo `json:"server,omitempty"`
}

// newTextResource는 텍스트 리소스 콘텐츠를 생성하는 헬퍼입니다.
func newTextResource(uri, text, mimeType string) mcp.TextResourceContents {
	return mcp.TextResourceContents{
		URI:      uri,
		MIMEType: mimeType,
		Text:     text,
	}
}

// handleStatusResource는 ocbridge://status 리소스 핸들러입니다.
// opencode 설치 여부와 서버 슬롯 상태를 함께 반환합니다.
func (s *Server) handleStatusResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	status := BridgeStatus{
		ServerName: ServerName,
		Version:    ServerVersion,
		Installed:  s.probe.IsInstalled(),
	}
	if info, ok := s.sup.Status(); ok {
		status.Running = true
		status.Server = &info
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("상태 직렬화 실패: %w", err)
	}
	return []mcp.ResourceContents{
		newTextResource(request.Params.URI, string(data), "application/json"),
	}, nil
}

// handleMetricsResource는 ocbridge://metrics 리소스 핸들러입니다.
func (s *Server) handleMetricsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.metrics.TakeSnapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("지표 직렬화 실패: %w", err)
	}
	return []mcp.ResourceContents{
		newTextResource(request.Params.URI, string(data), "application/json"),
	}, nil
}
