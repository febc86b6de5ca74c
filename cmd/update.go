// update.go는 CLI 자동 업데이트 명령을 구현합니다.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devkyu/opencode-bridge/internal/updater"
)

// githubRepo는 릴리스를 배포하는 GitHub 저장소입니다.
const githubRepo = "devkyu/opencode-bridge"

var updateCheckOnly bool

// updateCmd는 CLI를 최신 버전으로 업데이트하는 명령어입니다.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "CLI를 최신 버전으로 업데이트합니다",
	Long: `GitHub Releases에서 최신 릴리스를 확인하고 현재 바이너리를 교체합니다.

체크섬 파일이 릴리스에 포함되어 있으면 SHA256 무결성 검증을 수행합니다.
dev 빌드는 업데이트 대상이 아닙니다.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "업데이트 확인만 수행 (설치하지 않음)")
}

// runUpdate는 update 명령의 실행 로직입니다.
func runUpdate(cmd *cobra.Command, args []string) error {
	version, _, _ := GetVersionInfo()
	u := updater.New(version, githubRepo)

	fmt.Printf("현재 버전: %s\n", version)
	fmt.Println("최신 릴리스 확인 중...")

	release, hasUpdate, err := u.CheckForUpdate()
	if err != nil {
		return err
	}

	if !hasUpdate {
		fmt.Println("이미 최신 버전입니다")
		return nil
	}

	fmt.Printf("새 버전 발견: %s (%s)\n", release.Version, release.HTMLURL)

	if updateCheckOnly {
		fmt.Println("'ocbridge update'로 설치할 수 있습니다")
		return nil
	}

	fmt.Println("다운로드 및 설치 중...")
	if err := u.Apply(release); err != nil {
		return err
	}

	fmt.Printf("업데이트 완료: %s\n", release.Version)
	return nil
}
