// Package branding은 OpenCode Bridge의 브랜드 상수를 중앙 관리합니다.
// 애플리케이션 이름, 브랜드 컬러, ASCII 아트 자산을 포함합니다.
package branding

// 애플리케이션 식별 상수
const (
	AppName    = "OpenCode Bridge"
	CLIName    = "OpenCode Bridge"
	BinaryName = "ocbridge"
)

// Lipgloss 트루컬러 지원을 위한 브랜드 컬러 (hex)
const (
	// ColorPrimary는 메인 브랜드 컬러입니다 (Indigo).
	ColorPrimary = "#6366F1"
	// ColorDeepIndigo는 배경과 강조에 쓰이는 어두운 인디고입니다.
	ColorDeepIndigo = "#312E81"
	// ColorTeal은 보조 브랜드 컬러입니다 (실행 중 상태 표시).
	ColorTeal = "#14B8A6"
	// ColorCoral은 오류/위험 컬러입니다.
	ColorCoral = "#E11D48"
	// ColorAmber는 경고 컬러입니다.
	ColorAmber = "#F59E0B"
	// ColorWhite는 순수 흰색입니다.
	ColorWhite = "#FFFFFF"
	// ColorLightGray는 레이블용 밝은 회색입니다.
	ColorLightGray = "#A1A1AA"
	// ColorMutedGray는 도움말 텍스트용 회색입니다.
	ColorMutedGray = "#71717A"
	// ColorBorderGray는 비활성 패널 테두리 회색입니다.
	ColorBorderGray = "#52525B"
)

// Banner는 CLI 시작 화면에 표시되는 컴팩트한 ASCII 아트입니다.
// 터미널 창과 연결 브리지를 형상화했습니다.
const Banner = `
  ____  ____
 | <> |=| >_ |
 |____|=|____|
    ||___||`

// StartupBanner는 ASCII 아트 아래에 애플리케이션 이름을 붙인
// 전체 시작 배너를 반환합니다.
func StartupBanner() string {
	return Banner + "\n" +
		"  " + CLIName + "\n"
}
