//go:build windows

package opencode

import (
	"os"
	"syscall"
)

// setSysProcAttr는 Windows에서 프로세스 속성을 반환합니다.
// Windows에서는 프로세스 그룹 설정이 불필요합니다.
func setSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

// checkProcessAlive는 프로세스가 실행 중인지 확인합니다 (Windows).
// FindProcess는 Windows에서 항상 성공하므로 존재 확인으로 간주합니다.
func checkProcessAlive(process *os.Process) bool {
	p, err := os.FindProcess(process.Pid)
	if err != nil {
		return false
	}
	_ = p
	return true
}
