// Package opencode는 opencode 서버 프로세스의 라이프사이클 관리를 제공합니다.
// 단일 프로세스 슬롯을 소유하는 Supervisor와, 포트·환경변수·인자 벡터를
// 결정적으로 계산하는 Planner로 구성됩니다.
package opencode

import (
	"fmt"
	"net"
	"strconv"

	"github.com/devkyu/opencode-bridge/internal/provider"
)

// Plan은 한 번의 launch에 필요한 모든 스폰 파라미터입니다.
type Plan struct {
	// Binary는 실행할 바이너리 이름 또는 경로입니다.
	Binary string
	// Args는 고정 인자 벡터입니다.
	Args []string
	// Env는 추가로 주입할 환경변수입니다 (프로바이더 API 키).
	Env map[string]string
	// Port는 서버가 바인딩할 포트입니다.
	Port uint16
	// Hostname은 서버가 바인딩할 호스트입니다.
	Hostname string
}

// Planner는 launch 계획을 계산하는 무상태 헬퍼입니다.
// 호출 간에 어떤 상태도 유지하지 않습니다.
type Planner struct {
	// Binary는 opencode 바이너리 이름 또는 경로입니다.
	Binary string
	// Hostname은 서버 바인딩 호스트입니다 (기본 127.0.0.1).
	Hostname string
}

// NewPlanner는 새로운 Planner를 생성합니다.
func NewPlanner(binary, hostname string) *Planner {
	if binary == "" {
		binary = "opencode"
	}
	if hostname == "" {
		hostname = "127.0.0.1"
	}
	return &Planner{Binary: binary, Hostname: hostname}
}

// PickPort는 OS가 할당하는 임시 TCP 포트를 요청합니다.
// 포트 고갈 또는 권한 문제로 실패하면 ErrNoPortAvailable을 반환합니다.
func (p *Planner) PickPort() (uint16, error) {
	// 포트 0으로 리스닝하면 커널이 빈 포트를 골라줍니다.
	// 리스너는 즉시 닫고 번호만 사용합니다.
	ln, err := net.Listen("tcp", net.JoinHostPort(p.Hostname, "0"))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoPortAvailable, err)
	}
	defer ln.Close() //nolint:errcheck

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, ErrNoPortAvailable
	}
	return uint16(addr.Port), nil
}

// BuildEnv는 프로바이더 설정으로부터 추가 환경변수를 계산합니다.
// API 키가 있는 알려진 프로바이더만 정확히 하나의 변수를 설정합니다.
// 알 수 없는 프로바이더는 아무것도 설정하지 않습니다 (에러 아님).
func (p *Planner) BuildEnv(cfg *provider.Config) map[string]string {
	env := make(map[string]string)
	if cfg == nil || cfg.APIKey == "" {
		return env
	}

	if envVar, ok := cfg.Provider.EnvVar(); ok {
		env[envVar] = cfg.APIKey
	}
	return env
}

// BuildArgv는 고정 인자 벡터를 반환합니다.
func (p *Planner) BuildArgv(port uint16) []string {
	return []string{"serve", "--port", strconv.Itoa(int(port)), "--hostname", p.Hostname}
}

// Plan은 포트를 고르고 전체 스폰 계획을 만듭니다.
func (p *Planner) Plan(cfg *provider.Config) (*Plan, error) {
	port, err := p.PickPort()
	if err != nil {
		return nil, err
	}

	return &Plan{
		Binary:   p.Binary,
		Args:     p.BuildArgv(port),
		Env:      p.BuildEnv(cfg),
		Port:     port,
		Hostname: p.Hostname,
	}, nil
}
