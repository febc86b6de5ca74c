package opencode

import (
	"fmt"
	"sync"
	"time"

	"github.com/devkyu/opencode-bridge/internal/provider"
	"github.com/rs/zerolog/log"
)

// ServerInfo는 호출자에게 전달되는 서버 상태 스냅샷입니다.
// 프로세스 핸들의 순수 투영이며 독립적으로 변경되지 않습니다.
type ServerInfo struct {
	Port        uint16 `json:"port"`
	URL         string `json:"url"`
	ProjectPath string `json:"project_path"`
	Running     bool   `json:"running"`
}

// EventType은 서버 라이프사이클 이벤트 종류입니다.
type EventType string

// 라이프사이클 이벤트 목록
const (
	EventStarted  EventType = "started"
	EventStopped  EventType = "stopped"
	EventReplaced EventType = "replaced"
)

// Event는 호스트에 푸시되는 라이프사이클 이벤트입니다.
type Event struct {
	Type   EventType  `json:"type"`
	Server ServerInfo `json:"server"`
	At     time.Time  `json:"at"`
}

// LaunchPlanner는 Supervisor가 사용하는 launch 계획 인터페이스입니다.
type LaunchPlanner interface {
	Plan(cfg *provider.Config) (*Plan, error)
}

// Supervisor는 단일 opencode 서버 프로세스 슬롯을 소유합니다.
// 슬롯은 비어 있거나 정확히 하나의 실행 중 프로세스를 담습니다.
// 모든 연산은 뮤텍스를 연산 전체 동안 보유하므로 서로 교차하지 않습니다.
type Supervisor struct {
	mu      sync.Mutex
	current *ServerProcess

	planner LaunchPlanner
	grace   time.Duration
	notify  func(Event)
}

// NewSupervisor는 새로운 Supervisor를 생성합니다.
// grace는 호스트 종료 시 프로세스 회수에 허용하는 최대 대기 시간입니다.
func NewSupervisor(planner LaunchPlanner, grace time.Duration) *Supervisor {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Supervisor{
		planner: planner,
		grace:   grace,
	}
}

// SetNotify는 라이프사이클 이벤트 콜백을 등록합니다.
// 콜백은 별도 고루틴에서 호출되므로 Supervisor 연산을 막지 않습니다.
func (s *Supervisor) SetNotify(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// Start는 projectPath에 대한 opencode 서버를 시작합니다.
//
// 동일한 projectPath의 서버가 이미 실행 중이면 기존 ServerInfo를
// 그대로 반환합니다 (재시작이 아닌 명시적 재사용 정책).
// 다른 projectPath의 서버가 실행 중이면 무조건 종료한 뒤 진행하며,
// 종료 실패는 새 요청을 막지 않도록 무시됩니다.
func (s *Supervisor) Start(projectPath string, cfg *provider.Config) (ServerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		if s.current.ProjectPath == projectPath {
			// 동일 프로젝트: 기존 서버 재사용
			log.Debug().
				Str("project", projectPath).
				Uint16("port", s.current.Port).
				Msg("[opencode] 동일 프로젝트 서버 재사용")
			return s.infoLocked(), nil
		}

		// 다른 프로젝트: 기존 서버를 먼저 정리
		old := s.current
		s.current = nil
		oldInfo := serverInfo(old)
		if err := old.kill(); err != nil {
			log.Warn().Err(err).
				Str("project", old.ProjectPath).
				Msg("[opencode] 이전 서버 kill 실패 (무시)")
		}
		if err := old.wait(); err != nil {
			log.Warn().Err(err).
				Str("project", old.ProjectPath).
				Msg("[opencode] 이전 서버 회수 실패 (무시)")
		}
		s.emit(Event{Type: EventReplaced, Server: oldInfo, At: time.Now()})
	}

	plan, err := s.planner.Plan(cfg)
	if err != nil {
		return ServerInfo{}, err
	}

	proc, err := spawn(plan, projectPath)
	if err != nil {
		// 실패 시 슬롯은 빈 상태를 유지
		return ServerInfo{}, err
	}

	s.current = proc
	info := s.infoLocked()

	log.Info().
		Str("project", projectPath).
		Uint16("port", info.Port).
		Int("pid", proc.PID()).
		Msg("[opencode] 서버 시작 완료")

	s.emit(Event{Type: EventStarted, Server: info, At: time.Now()})
	return info, nil
}

// Stop은 실행 중인 서버를 종료합니다.
// 슬롯이 비어 있으면 no-op으로 성공합니다.
// kill 또는 회수 실패는 ErrTerminationFailed로 보고되며,
// 어느 경우든 슬롯은 빈 상태로 끝납니다.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	proc := s.current
	s.current = nil
	info := serverInfo(proc)

	if err := proc.kill(); err != nil {
		return fmt.Errorf("%w: kill: %v", ErrTerminationFailed, err)
	}
	if err := proc.wait(); err != nil {
		return fmt.Errorf("%w: wait: %v", ErrTerminationFailed, err)
	}

	log.Info().
		Str("project", info.ProjectPath).
		Uint16("port", info.Port).
		Msg("[opencode] 서버 종료 완료")

	s.emit(Event{Type: EventStopped, Server: info, At: time.Now()})
	return nil
}

// Status는 현재 슬롯의 읽기 전용 스냅샷을 반환합니다.
// 슬롯이 차 있으면 Running은 항상 true입니다 — 종료는 언제나
// 슬롯을 즉시 비우므로 죽은 핸들이 남지 않습니다.
func (s *Supervisor) Status() (ServerInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ServerInfo{}, false
	}
	return s.infoLocked(), true
}

// Cleanup은 호스트 종료 시 호출되는 정리 경로입니다.
// Stop과 같은 효과를 내되 모든 에러를 무시하고,
// 회수 대기는 grace 시간으로 제한하여 호스트 종료를 막지 않습니다.
func (s *Supervisor) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}

	proc := s.current
	s.current = nil

	_ = proc.kill()
	if !proc.waitTimeout(s.grace) {
		log.Warn().
			Str("project", proc.ProjectPath).
			Dur("grace", s.grace).
			Msg("[opencode] 종료 정리 대기 시간 초과, 회수 포기")
	}
}

// infoLocked는 현재 슬롯의 ServerInfo를 만듭니다. 잠금 보유 상태에서 호출합니다.
func (s *Supervisor) infoLocked() ServerInfo {
	return serverInfo(s.current)
}

// serverInfo는 프로세스 핸들에서 ServerInfo 투영을 만듭니다.
func serverInfo(p *ServerProcess) ServerInfo {
	if p == nil {
		return ServerInfo{}
	}
	return ServerInfo{
		Port:        p.Port,
		URL:         fmt.Sprintf("http://127.0.0.1:%d", p.Port),
		ProjectPath: p.ProjectPath,
		Running:     true,
	}
}

// emit은 등록된 콜백에 이벤트를 비동기로 전달합니다.
func (s *Supervisor) emit(ev Event) {
	if s.notify != nil {
		go s.notify(ev)
	}
}
