package opencode

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ServerProcess는 실행 중인 opencode 서버 프로세스의 핸들입니다.
// 핸들은 Supervisor가 배타적으로 소유하며, 외부에는 ServerInfo
// 스냅샷만 전달됩니다.
type ServerProcess struct {
	// ID는 인스턴스 식별용 UUID입니다.
	ID string
	// Port는 서버가 바인딩한 포트입니다.
	Port uint16
	// ProjectPath는 프로세스의 작업 디렉토리입니다.
	ProjectPath string
	// StartedAt은 프로세스 시작 시각입니다.
	StartedAt time.Time

	cmd *exec.Cmd
}

// spawn은 계획에 따라 opencode 서버 프로세스를 시작합니다.
// 시작 실패는 ErrSpawnFailed로 래핑되며, 이 경우 핸들은 생성되지 않습니다.
func spawn(plan *Plan, projectPath string) (*ServerProcess, error) {
	cmd := exec.Command(plan.Binary, plan.Args...)
	cmd.Dir = projectPath

	// 환경 변수: 부모 환경에 프로바이더 키를 덧붙입니다
	cmd.Env = os.Environ()
	for k, v := range plan.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	// 프로세스 그룹 설정 (자식 프로세스도 함께 종료)
	cmd.SysProcAttr = setSysProcAttr()

	// stdout/stderr 캡처: 파이프를 통해 로그로 흘립니다
	cmd.Stdout = &streamWriter{project: projectPath, stream: "stdout"}
	cmd.Stderr = &streamWriter{project: projectPath, stream: "stderr"}

	log.Info().
		Str("binary", plan.Binary).
		Strs("args", plan.Args).
		Str("project", projectPath).
		Uint16("port", plan.Port).
		Msg("[opencode] 서버 프로세스 시작")

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	return &ServerProcess{
		ID:          uuid.NewString(),
		Port:        plan.Port,
		ProjectPath: projectPath,
		StartedAt:   time.Now(),
		cmd:         cmd,
	}, nil
}

// PID는 프로세스 ID를 반환합니다.
func (p *ServerProcess) PID() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// IsRunning은 프로세스가 아직 살아 있는지 확인합니다.
func (p *ServerProcess) IsRunning() bool {
	if p.cmd == nil || p.cmd.Process == nil {
		return false
	}
	return checkProcessAlive(p.cmd.Process)
}

// kill은 프로세스에 kill 시그널을 전송합니다.
func (p *ServerProcess) kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// wait는 프로세스의 종료 상태를 회수합니다.
// kill 이후의 wait는 시그널 종료를 에러로 보고하므로,
// 그 경우는 정상 회수로 취급합니다.
func (p *ServerProcess) wait() error {
	if p.cmd == nil {
		return nil
	}
	err := p.cmd.Wait()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// 비정상 종료 코드는 회수 자체의 실패가 아님
			return nil
		}
		return err
	}
	return nil
}

// waitTimeout은 종료 상태 회수를 제한 시간 내로 시도합니다.
// 제한 시간을 넘기면 false를 반환합니다 (호스트 종료 경로 전용).
func (p *ServerProcess) waitTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		_ = p.wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

// streamWriter는 서버 프로세스의 stdout/stderr를 zerolog로 전달합니다.
type streamWriter struct {
	project string
	stream  string
}

func (w *streamWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if w.stream == "stderr" {
		log.Warn().Str("project", w.project).Str("stream", w.stream).Msg(msg)
	} else {
		log.Debug().Str("project", w.project).Str("stream", w.stream).Msg(msg)
	}
	return len(p), nil
}
