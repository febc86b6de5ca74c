package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestValidatorFor는 프로바이더별 검증기 매핑을 테스트합니다.
func TestValidatorFor(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		wantOK   bool
	}{
		{"anthropic 검증기", Anthropic, true},
		{"google 검증기", Google, true},
		{"openai 검증기", OpenAI, true},
		{"openrouter 검증기", OpenRouter, true},
		{"other는 검증 불가", Other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ValidatorFor(tt.provider)
			if ok != tt.wantOK {
				t.Fatalf("ValidatorFor(%v) ok = %v, want %v", tt.provider, ok, tt.wantOK)
			}
			if ok && v == nil {
				t.Fatal("ValidatorFor() returned nil validator with ok=true")
			}
		})
	}
}

// TestBearerProbeValidator는 REST 기반 키 검증을 테스트합니다.
func TestBearerProbeValidator(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
		invalidKey bool
	}{
		{"유효한 키 (200)", http.StatusOK, false, false},
		{"거부된 키 (401)", http.StatusUnauthorized, true, true},
		{"금지된 키 (403)", http.StatusForbidden, true, true},
		{"서버 오류 (500)", http.StatusInternalServerError, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			v := &bearerProbeValidator{url: srv.URL}
			err := v.ValidateKey(context.Background(), "test-key-123")

			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.invalidKey && !errors.Is(err, ErrInvalidAPIKey) {
				t.Errorf("ValidateKey() error = %v, want ErrInvalidAPIKey", err)
			}
			if gotAuth != "Bearer test-key-123" {
				t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer test-key-123")
			}
		})
	}
}
