package opencode

import (
	"errors"
	"testing"
	"time"
)

// sleepPlan은 테스트용으로 오래 실행되는 프로세스 계획을 만듭니다.
func sleepPlan(port uint16) *Plan {
	return &Plan{
		Binary:   "sleep",
		Args:     []string{"30"},
		Env:      map[string]string{},
		Port:     port,
		Hostname: "127.0.0.1",
	}
}

// TestSpawn은 프로세스 시작과 핸들 생성을 테스트합니다.
func TestSpawn(t *testing.T) {
	proc, err := spawn(sleepPlan(40001), t.TempDir())
	if err != nil {
		t.Fatalf("spawn() error: %v", err)
	}
	defer func() {
		_ = proc.kill()
		_ = proc.wait()
	}()

	if proc.PID() <= 0 {
		t.Errorf("PID() = %d, want > 0", proc.PID())
	}
	if proc.ID == "" {
		t.Error("ID is empty, want uuid")
	}
	if proc.Port != 40001 {
		t.Errorf("Port = %d, want 40001", proc.Port)
	}
	if !proc.IsRunning() {
		t.Error("IsRunning() = false for live process, want true")
	}
}

// TestSpawn_BinaryMissing은 존재하지 않는 바이너리의 시작 실패를 테스트합니다.
func TestSpawn_BinaryMissing(t *testing.T) {
	plan := sleepPlan(40002)
	plan.Binary = "definitely-not-a-real-binary-xyz"

	_, err := spawn(plan, t.TempDir())
	if err == nil {
		t.Fatal("spawn() expected error for missing binary, got nil")
	}
	if !errors.Is(err, ErrSpawnFailed) {
		t.Errorf("spawn() error = %v, want ErrSpawnFailed", err)
	}
}

// TestProcess_KillWait는 kill과 종료 상태 회수를 테스트합니다.
func TestProcess_KillWait(t *testing.T) {
	proc, err := spawn(sleepPlan(40003), t.TempDir())
	if err != nil {
		t.Fatalf("spawn() error: %v", err)
	}

	if err := proc.kill(); err != nil {
		t.Fatalf("kill() error: %v", err)
	}
	// 시그널 종료는 정상 회수로 취급됨
	if err := proc.wait(); err != nil {
		t.Fatalf("wait() error: %v", err)
	}

	if proc.IsRunning() {
		t.Error("IsRunning() = true after kill+wait, want false")
	}
}

// TestProcess_WaitTimeout은 제한 시간 회수를 테스트합니다.
func TestProcess_WaitTimeout(t *testing.T) {
	// 살아 있는 프로세스는 제한 시간 내에 회수되지 않음
	live, err := spawn(sleepPlan(40004), t.TempDir())
	if err != nil {
		t.Fatalf("spawn() error: %v", err)
	}
	if live.waitTimeout(100 * time.Millisecond) {
		t.Error("waitTimeout() = true for live process, want false")
	}
	_ = live.kill()

	// kill 이후에는 즉시 회수됨
	killed, err := spawn(sleepPlan(40005), t.TempDir())
	if err != nil {
		t.Fatalf("spawn() error: %v", err)
	}
	_ = killed.kill()
	if !killed.waitTimeout(5 * time.Second) {
		t.Error("waitTimeout() = false after kill, want true")
	}
}
