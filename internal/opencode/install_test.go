package opencode

import (
	"errors"
	"testing"
)

// TestProbe_IsInstalled_Missing은 바이너리가 없을 때
// false를 반환하는지 테스트합니다 (절대 panic하지 않음).
func TestProbe_IsInstalled_Missing(t *testing.T) {
	probe := NewProbe("definitely-not-a-real-binary-xyz")

	if probe.IsInstalled() {
		t.Error("IsInstalled() = true for missing binary, want false")
	}
}

// TestProbe_IsInstalled_Present는 실행 가능한 바이너리에 대해
// true를 반환하는지 테스트합니다.
func TestProbe_IsInstalled_Present(t *testing.T) {
	// echo --version은 인자를 그대로 출력하고 0으로 종료함
	probe := NewProbe("echo")

	if !probe.IsInstalled() {
		t.Error("IsInstalled() = false for echo, want true")
	}
}

// TestProbe_Version은 버전 문자열 조회를 테스트합니다.
func TestProbe_Version(t *testing.T) {
	probe := NewProbe("echo")

	version, err := probe.Version()
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	// echo는 인자를 그대로 돌려주므로 trim된 출력 확인
	if version != "--version" {
		t.Errorf("Version() = %q, want %q", version, "--version")
	}
}

// TestProbe_Version_Missing은 바이너리 부재 시 ErrBinaryNotFound를
// 반환하는지 테스트합니다.
func TestProbe_Version_Missing(t *testing.T) {
	probe := NewProbe("definitely-not-a-real-binary-xyz")

	_, err := probe.Version()
	if err == nil {
		t.Fatal("Version() expected error for missing binary, got nil")
	}
	if !errors.Is(err, ErrBinaryNotFound) {
		t.Errorf("Version() error = %v, want ErrBinaryNotFound", err)
	}
}

// TestNewProbe_Default는 기본 바이너리 이름을 테스트합니다.
func TestNewProbe_Default(t *testing.T) {
	probe := NewProbe("")
	if probe.Binary != "opencode" {
		t.Errorf("Binary = %q, want %q", probe.Binary, "opencode")
	}
}
