// Package mcpserver는 opencode 서버 라이프사이클을 MCP 도구로 노출합니다.
// mark3labs/mcp-go를 사용하여 stdio 기반 MCP 프로토콜을 처리하며,
// MCP 호환 에이전트가 브리지를 직접 조작할 수 있게 합니다.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/devkyu/opencode-bridge/internal/metrics"
	"github.com/devkyu/opencode-bridge/internal/opencode"
)

const (
	// ServerName은 MCP 서버 이름입니다.
	ServerName = "opencode-bridge"
	// ServerVersion은 MCP 서버 버전입니다.
	ServerVersion = "0.1.0"
)

// Server는 브리지 MCP 서버입니다.
// 인프로세스 Supervisor를 직접 구동하므로 별도 데몬이 필요 없습니다.
type Server struct {
	mcpServer *server.MCPServer
	sup       *opencode.Supervisor
	probe     *opencode.Probe
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewServer는 새 MCP 서버를 생성합니다.
func NewServer(sup *opencode.Supervisor, probe *opencode.Probe, m *metrics.Metrics, logger zerolog.Logger) *Server {
	s := &Server{
		sup:     sup,
		probe:   probe,
		metrics: m,
		logger:  logger.With().Str("component", "mcpserver").Logger(),
	}

	s.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.registerTools()
	s.registerResources()

	s.logger.Info().
		Str("name", ServerName).
		Str("version", ServerVersion).
		Msg("MCP 서버 초기화 완료")

	return s
}

// Start는 stdio 기반 MCP 서버를 시작합니다.
// 이 함수는 서버가 종료될 때까지 블로킹됩니다.
func (s *Server) Start() error {
	s.logger.Info().Msg("MCP 서버 시작 (stdio 트랜스포트)")
	return server.ServeStdio(s.mcpServer)
}

// Cleanup은 MCP 서버 종료 시 opencode 서버를 정리합니다.
func (s *Server) Cleanup() {
	s.sup.Cleanup()
}

// registerTools는 모든 MCP 도구를 등록합니다.
func (s *Server) registerTools() {
	// 1. start_server - opencode 서버 시작
	startServerTool := mcp.NewTool("start_server",
		mcp.WithDescription("Start an opencode server for a project directory. If a server is already running for the same project it is reused; a server for a different project is replaced."),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Absolute path of the project directory the server should work in"),
		),
		mcp.WithString("provider",
			mcp.Description("AI provider to configure (openrouter, anthropic, openai, google)"),
		),
		mcp.WithString("model",
			mcp.Description("Model identifier to use with the provider"),
		),
		mcp.WithString("api_key",
			mcp.Description("API key for the provider (passed to the server process, never stored)"),
		),
	)
	s.mcpServer.AddTool(startServerTool, s.handleStartServer)

	// 2. stop_server - opencode 서버 종료
	stopServerTool := mcp.NewTool("stop_server",
		mcp.WithDescription("Stop the running opencode server. Succeeds even if no server is running."),
	)
	s.mcpServer.AddTool(stopServerTool, s.handleStopServer)

	// 3. get_server_status - 서버 상태 조회
	getStatusTool := mcp.NewTool("get_server_status",
		mcp.WithDescription("Get the status of the opencode server. Returns port, URL and project path when running."),
	)
	s.mcpServer.AddTool(getStatusTool, s.handleGetServerStatus)

	// 4. check_installed - opencode 설치 확인
	checkInstalledTool := mcp.NewTool("check_installed",
		mcp.WithDescription("Check whether the opencode binary is installed and executable on this machine."),
	)
	s.mcpServer.AddTool(checkInstalledTool, s.handleCheckInstalled)

	// 5. get_version - opencode 버전 조회
	getVersionTool := mcp.NewTool("get_version",
		mcp.WithDescription("Get the version string of the installed opencode binary."),
	)
	s.mcpServer.AddTool(getVersionTool, s.handleGetVersion)

	s.logger.Debug().Msg("MCP 도구 5개 등록 완료")
}

// registerResources는 모든 MCP 리소스를 등록합니다.
func (s *Server) registerResources() {
	// 1. ocbridge://status - 서버 상태
	statusResource := mcp.NewResource(
		"ocbridge://status",
		"Server Status",
		mcp.WithResourceDescription("Current opencode server status: running flag, port, URL and project path"),
		mcp.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(statusResource, s.handleStatusResource)

	// 2. ocbridge://metrics - 운영 지표
	metricsResource := mcp.NewResource(
		"ocbridge://metrics",
		"Bridge Metrics",
		mcp.WithResourceDescription("Operational counters of the bridge: starts, reuses, replacements, stops, failures"),
		mcp.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(metricsResource, s.handleMetricsResource)

	s.logger.Debug().Msg("MCP 리소스 2개 등록 완료")
}
