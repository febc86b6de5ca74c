package opencode

import (
	"fmt"
	"os/exec"
	"strings"
)

// Probe는 opencode 바이너리의 설치 여부와 버전을 확인합니다.
type Probe struct {
	// Binary는 확인할 바이너리 이름 또는 경로입니다.
	Binary string
}

// NewProbe는 새로운 설치 확인 Probe를 생성합니다.
func NewProbe(binary string) *Probe {
	if binary == "" {
		binary = "opencode"
	}
	return &Probe{Binary: binary}
}

// IsInstalled는 opencode가 설치되어 있는지 확인합니다.
// 바이너리 부재, 실행 실패, 0이 아닌 종료 코드 모두 false입니다.
// 절대 panic하지 않습니다.
func (p *Probe) IsInstalled() bool {
	_, err := exec.Command(p.Binary, "--version").Output()
	return err == nil
}

// Version은 opencode 버전 문자열을 반환합니다.
// 성공 시 stdout의 앞뒤 공백을 제거한 텍스트를 반환하고,
// 실행 실패 또는 0이 아닌 종료 코드는 ErrBinaryNotFound로 보고합니다.
func (p *Probe) Version() (string, error) {
	out, err := exec.Command(p.Binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
	}
	return strings.TrimSpace(string(out)), nil
}
