// Package client는 실행 중인 브리지 데몬의 HTTP API를 호출하는
// 클라이언트를 제공합니다. CLI의 단발성 명령(start/stop/status)이
// 이 패키지를 통해 데몬과 통신합니다.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devkyu/opencode-bridge/internal/api"
	"github.com/devkyu/opencode-bridge/internal/metrics"
	"github.com/devkyu/opencode-bridge/internal/opencode"
)

// httpTimeout는 HTTP 요청 타임아웃입니다.
const httpTimeout = 30 * time.Second

// Client는 브리지 데몬 API 클라이언트입니다.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New는 주어진 주소의 데몬을 향한 클라이언트를 생성합니다.
// addr은 "127.0.0.1:7777" 또는 "http://127.0.0.1:7777" 형식을 허용합니다.
func New(addr string) *Client {
	baseURL := addr
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: httpTimeout,
		},
	}
}

// StartServer는 projectPath에 대한 opencode 서버 시작을 요청합니다.
func (c *Client) StartServer(ctx context.Context, projectPath string, prov *api.ProviderParams) (*opencode.ServerInfo, error) {
	reqBody := api.StartRequest{ProjectPath: projectPath, Provider: prov}

	var info opencode.ServerInfo
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/server/start", reqBody, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// StopServer는 실행 중인 서버의 종료를 요청합니다.
// 서버가 없어도 성공으로 처리됩니다.
func (c *Client) StopServer(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/server/stop", nil, nil)
}

// ServerStatus는 현재 서버 상태를 조회합니다.
func (c *Client) ServerStatus(ctx context.Context) (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/server/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OpenCodeInfo는 opencode 바이너리 설치 상태를 조회합니다.
func (c *Client) OpenCodeInfo(ctx context.Context) (*api.OpenCodeInfo, error) {
	var info api.OpenCodeInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/opencode", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Metrics는 데몬의 운영 지표 스냅샷을 조회합니다.
func (c *Client) Metrics(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/metrics", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Ping은 데몬 도달 가능 여부를 확인합니다.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ServerStatus(ctx)
	return err
}

// doJSON은 JSON 요청/응답을 처리하는 공통 경로입니다.
// out이 nil이면 응답 본문을 버립니다.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("요청 직렬화 실패: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("요청 생성 실패: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("브리지 데몬 연결 실패 (%s): %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("응답 파싱 실패: %w", err)
	}
	return nil
}

// decodeError는 에러 응답 본문을 사람이 읽을 수 있는 에러로 변환합니다.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp api.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("데몬 에러 (HTTP %d): %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("데몬 에러 (HTTP %d)", resp.StatusCode)
}
