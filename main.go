// Package main은 OpenCode Bridge CLI의 진입점입니다.
// 호스트 애플리케이션을 대신하여 opencode 서버 프로세스의 라이프사이클을 관리합니다.
package main

import (
	"os"

	"github.com/devkyu/opencode-bridge/cmd"
)

// 빌드 시 ldflags로 주입되는 버전 정보
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// 버전 정보를 root 패키지에 설정
	cmd.SetVersionInfo(version, commit, buildDate)

	// CLI 실행
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
