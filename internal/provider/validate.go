// validate.go는 프로바이더 API 키의 유효성 검증을 제공합니다.
// 검증은 doctor 명령에서만 사용됩니다. 서버 시작 경로는 키를 검증하지 않고
// 환경변수로 전달만 합니다.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// 검증 관련 에러 정의
var (
	// ErrInvalidAPIKey는 프로바이더가 API 키를 거부했을 때 반환됩니다.
	ErrInvalidAPIKey = errors.New("API 키가 유효하지 않습니다")

	// ErrValidationUnsupported는 검증을 지원하지 않는 프로바이더입니다.
	ErrValidationUnsupported = errors.New("API 키 검증을 지원하지 않는 프로바이더입니다")
)

// 검증용 REST 엔드포인트
// 테스트에서 httptest 서버로 대체할 수 있도록 변수로 둡니다.
var (
	openAIModelsURL  = "https://api.openai.com/v1/models"
	openRouterKeyURL = "https://openrouter.ai/api/v1/key"
)

const validateTimeout = 15 * time.Second

// KeyValidator는 프로바이더 API에 대해 API 키를 검증합니다.
type KeyValidator interface {
	// ValidateKey는 키가 유효하면 nil을 반환합니다.
	// 키 거부는 ErrInvalidAPIKey로 래핑됩니다.
	ValidateKey(ctx context.Context, apiKey string) error
}

// ValidatorFor는 프로바이더에 맞는 KeyValidator를 반환합니다.
// 검증을 지원하지 않는 프로바이더는 false를 반환합니다.
func ValidatorFor(p Provider) (KeyValidator, bool) {
	switch p {
	case Anthropic:
		return &anthropicValidator{}, true
	case Google:
		return &googleValidator{}, true
	case OpenAI:
		return &bearerProbeValidator{url: openAIModelsURL}, true
	case OpenRouter:
		return &bearerProbeValidator{url: openRouterKeyURL}, true
	default:
		return nil, false
	}
}

// anthropicValidator는 Anthropic SDK의 모델 목록 API로 키를 검증합니다.
type anthropicValidator struct{}

func (v *anthropicValidator) ValidateKey(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	client := anthropic.NewClient(
		anthropicopt.WithAPIKey(apiKey),
	)

	_, err := client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("%w: anthropic이 키를 거부했습니다", ErrInvalidAPIKey)
		}
		return fmt.Errorf("anthropic 키 검증 실패: %w", err)
	}
	return nil
}

// googleValidator는 Gemini SDK의 모델 목록 API로 키를 검증합니다.
type googleValidator struct{}

func (v *googleValidator) ValidateKey(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return fmt.Errorf("google 클라이언트 생성 실패: %w", err)
	}
	defer client.Close() //nolint:errcheck

	// 모델을 하나라도 나열할 수 있으면 키가 유효한 것으로 판단
	it := client.ListModels(ctx)
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("%w: google이 키를 거부했습니다", ErrInvalidAPIKey)
	}
	return nil
}

// bearerProbeValidator는 Bearer 인증 GET 요청으로 키를 검증합니다.
// OpenAI와 OpenRouter는 전용 SDK 없이 REST 엔드포인트로 확인합니다.
type bearerProbeValidator struct {
	url string
}

func (v *bearerProbeValidator) ValidateKey(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return fmt.Errorf("검증 요청 생성 실패: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("검증 요청 실패: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", ErrInvalidAPIKey, resp.StatusCode)
	default:
		return fmt.Errorf("예기치 않은 검증 응답: HTTP %d", resp.StatusCode)
	}
}
