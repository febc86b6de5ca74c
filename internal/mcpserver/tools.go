package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devkyu/opencode-bridge/internal/opencode"
	"github.com/devkyu/opencode-bridge/internal/provider"
)

// handleStartServer는 start_server 도구 핸들러입니다.
// projectPath에 대한 opencode 서버를 시작하고 접속 정보를 반환합니다.
func (s *Server) handleStartServer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath, err := request.RequireString("project_path")
	if err != nil {
		return mcp.NewToolResultError("required parameter 'project_path' is missing or invalid"), nil
	}

	var cfg *provider.Config
	if name := request.GetString("provider", ""); name != "" {
		cfg = &provider.Config{
			Provider: provider.Parse(name),
			Model:    request.GetString("model", ""),
			APIKey:   request.GetString("api_key", ""),
		}
	}

	s.logger.Info().
		Str("project", projectPath).
		Msg("서버 시작 요청")

	prev, hadPrev := s.sup.Status()

	info, err := s.sup.Start(projectPath, cfg)
	if err != nil {
		if errors.Is(err, opencode.ErrSpawnFailed) {
			s.metrics.SpawnFailures.Add(1)
		}
		s.logger.Error().Err(err).Msg("서버 시작 실패")
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start server: %s", err.Error())), nil
	}

	switch {
	case hadPrev && prev.ProjectPath == projectPath:
		s.metrics.ServersReused.Add(1)
	case hadPrev:
		s.metrics.ServersReplaced.Add(1)
		s.metrics.RecordStart()
	default:
		s.metrics.RecordStart()
	}

	result, err := json.Marshal(info)
	if err != nil {
		return mcp.NewToolResultError("Failed to serialize response"), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// handleStopServer는 stop_server 도구 핸들러입니다.
// 서버가 없으면 no-op으로 성공합니다.
func (s *Server) handleStopServer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, hadServer := s.sup.Status()

	s.logger.Info().Msg("서버 종료 요청")

	if err := s.sup.Stop(); err != nil {
		s.metrics.TerminationFailures.Add(1)
		s.logger.Error().Err(err).Msg("서버 종료 실패")
		return mcp.NewToolResultError(fmt.Sprintf("Failed to stop server: %s", err.Error())), nil
	}
	if hadServer {
		s.metrics.ServersStopped.Add(1)
	}

	return mcp.NewToolResultText(`{"stopped":true}`), nil
}

// handleGetServerStatus는 get_server_status 도구 핸들러입니다.
func (s *Server) handleGetServerStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, ok := s.sup.Status()
	if !ok {
		return mcp.NewToolResultText(`{"running":false}`), nil
	}

	result, err := json.Marshal(info)
	if err != nil {
		return mcp.NewToolResultError("Failed to serialize response"), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// handleCheckInstalled는 check_installed 도구 핸들러입니다.
func (s *Server) handleCheckInstalled(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	installed := s.probe.IsInstalled()
	return mcp.NewToolResultText(fmt.Sprintf(`{"installed":%t}`, installed)), nil
}

// handleGetVersion은 get_version 도구 핸들러입니다.
// opencode가 설치되어 있지 않으면 도구 에러를 반환합니다.
func (s *Server) handleGetVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	version, err := s.probe.Version()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get version: %s", err.Error())), nil
	}

	result, err := json.Marshal(map[string]string{"version": version})
	if err != nil {
		return mcp.NewToolResultError("Failed to serialize response"), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}
