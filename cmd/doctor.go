// doctor.go는 브리지 실행 환경 진단 명령을 구현합니다.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devkyu/opencode-bridge/internal/client"
	"github.com/devkyu/opencode-bridge/internal/config"
	"github.com/devkyu/opencode-bridge/internal/logger"
	"github.com/devkyu/opencode-bridge/internal/opencode"
	"github.com/devkyu/opencode-bridge/internal/provider"
)

var doctorValidateKeys bool

// doctorCmd는 실행 환경을 진단하는 명령어입니다.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "브리지 실행 환경을 진단합니다",
	Long: `opencode 설치 여부, 설정 유효성, 데몬 도달 가능 여부,
프로바이더 API 키 존재 여부를 순서대로 확인합니다.

--validate-keys를 지정하면 환경변수에 설정된 각 API 키를
실제 프로바이더 API에 질의하여 유효성을 확인합니다.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVar(&doctorValidateKeys, "validate-keys", false,
		"프로바이더 API에 질의하여 키 유효성 확인")
}

// runDoctor는 doctor 명령의 실행 로직입니다.
func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	failures := 0

	// 1. 설정 유효성
	if err := cfg.Validate(); err != nil {
		printCheck(false, fmt.Sprintf("설정: %v", err))
		failures++
	} else {
		printCheck(true, "설정: 유효함")
	}

	// 2. opencode 설치 확인
	probe := opencode.NewProbe(cfg.OpenCode.GetBinary())
	if version, err := probe.Version(); err == nil {
		printCheck(true, fmt.Sprintf("opencode: %s", version))
	} else {
		printCheck(false, fmt.Sprintf("opencode: 설치되지 않음 (%s)", cfg.OpenCode.GetBinary()))
		failures++
	}

	// 3. 데몬 도달 가능 여부
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.New(cfg.Bridge.ListenAddr).Ping(ctx); err == nil {
		printCheck(true, fmt.Sprintf("데몬: 실행 중 (%s)", cfg.Bridge.ListenAddr))
	} else {
		// 데몬 미실행은 실패가 아닌 안내
		printCheck(true, fmt.Sprintf("데몬: 실행되지 않음 ('%s serve'로 시작)", rootCmd.Use))
	}

	// 4. 프로바이더 API 키
	for _, p := range provider.All() {
		pc := cfg.GetProviderConfig(string(p))
		if pc == nil {
			continue
		}

		apiKey := pc.GetAPIKey()
		if apiKey == "" {
			printCheck(true, fmt.Sprintf("%s: 키 없음 (%s 미설정)", p, pc.APIKeyEnv))
			continue
		}

		if !doctorValidateKeys {
			printCheck(true, fmt.Sprintf("%s: 키 있음 (%s)", p, logger.MaskSensitive(apiKey)))
			continue
		}

		if err := validateProviderKey(p, apiKey); err != nil {
			printCheck(false, fmt.Sprintf("%s: %v", p, err))
			failures++
		} else {
			printCheck(true, fmt.Sprintf("%s: 키 유효함", p))
		}
	}

	if failures > 0 {
		return fmt.Errorf("진단 실패 %d건", failures)
	}
	fmt.Println("\n모든 진단을 통과했습니다")
	return nil
}

// validateProviderKey는 프로바이더 API에 질의하여 키를 검증합니다.
func validateProviderKey(p provider.Provider, apiKey string) error {
	v, ok := provider.ValidatorFor(p)
	if !ok {
		return provider.ErrValidationUnsupported
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := v.ValidateKey(ctx, apiKey); err != nil {
		if errors.Is(err, provider.ErrInvalidAPIKey) {
			return err
		}
		return fmt.Errorf("검증 중 오류: %w", err)
	}
	return nil
}

// printCheck는 진단 결과 한 줄을 출력합니다.
func printCheck(ok bool, msg string) {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	fmt.Printf("  %s %s\n", mark, msg)
}
