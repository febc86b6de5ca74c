package opencode

import "errors"

// 라이프사이클 관련 에러 정의
var (
	// ErrNoPortAvailable은 OS가 임시 포트를 내주지 못했을 때 반환됩니다.
	ErrNoPortAvailable = errors.New("사용 가능한 포트가 없습니다")

	// ErrSpawnFailed는 opencode 서버 프로세스 시작이 실패했을 때 반환됩니다.
	ErrSpawnFailed = errors.New("opencode 서버 시작 실패")

	// ErrTerminationFailed는 실행 중인 프로세스 종료가 실패했을 때 반환됩니다.
	ErrTerminationFailed = errors.New("opencode 프로세스 종료 실패")

	// ErrBinaryNotFound는 opencode 바이너리를 찾거나 실행할 수 없을 때 반환됩니다.
	ErrBinaryNotFound = errors.New("opencode 바이너리를 찾을 수 없습니다")
)
