package updater

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{" v0.5.0 ", "0.5.0"},
		{"dev", "dev"},
	}
	for _, tt := range tests {
		if got := normalizeVersion(tt.in); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.0.1", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0-rc1", "1.0.0", 0},
		{"1.2", "1.2.0", 0},
	}
	for _, tt := range tests {
		if got := compareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheckForUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/devkyu/opencode-bridge/releases/latest" {
			t.Errorf("예상치 못한 경로: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"tag_name":"v1.2.0","assets":[]}`))
	}))
	defer srv.Close()

	t.Run("업데이트 있음", func(t *testing.T) {
		u := New("1.0.0", "devkyu/opencode-bridge")
		u.apiBase = srv.URL

		release, hasUpdate, err := u.CheckForUpdate()
		if err != nil {
			t.Fatalf("CheckForUpdate() error: %v", err)
		}
		if !hasUpdate {
			t.Error("hasUpdate = false, want true")
		}
		if release.Version != "v1.2.0" {
			t.Errorf("Version = %q, want v1.2.0", release.Version)
		}
	})

	t.Run("최신 상태", func(t *testing.T) {
		u := New("1.2.0", "devkyu/opencode-bridge")
		u.apiBase = srv.URL

		_, hasUpdate, err := u.CheckForUpdate()
		if err != nil {
			t.Fatalf("CheckForUpdate() error: %v", err)
		}
		if hasUpdate {
			t.Error("hasUpdate = true, want false")
		}
	})

	t.Run("dev 빌드는 업데이트 제외", func(t *testing.T) {
		u := New("dev", "devkyu/opencode-bridge")
		u.apiBase = srv.URL

		_, hasUpdate, err := u.CheckForUpdate()
		if err != nil {
			t.Fatalf("CheckForUpdate() error: %v", err)
		}
		if hasUpdate {
			t.Error("dev 빌드에 업데이트가 있다고 판단함")
		}
	})
}

func TestCheckForUpdate_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	u := New("1.0.0", "devkyu/opencode-bridge")
	u.apiBase = srv.URL

	if _, _, err := u.CheckForUpdate(); err == nil {
		t.Error("404 응답에 에러가 기대되었으나 nil")
	}
}

func TestVerifyChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binary")
	content := []byte("fake binary content")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	sum := sha256.Sum256(content)
	valid := hex.EncodeToString(sum[:])

	if err := verifyChecksum(path, valid); err != nil {
		t.Errorf("유효한 체크섬이 거부됨: %v", err)
	}
	if err := verifyChecksum(path, "deadbeef"); err == nil {
		t.Error("잘못된 체크섬이 통과됨")
	}
}

func TestFindPlatformAsset(t *testing.T) {
	release := &Release{
		Assets: []Asset{
			{Name: "ocbridge_linux_amd64.tar.gz"},
			{Name: "ocbridge_linux_arm64.tar.gz"},
			{Name: "ocbridge_darwin_amd64.tar.gz"},
			{Name: "ocbridge_darwin_arm64.tar.gz"},
			{Name: "ocbridge_windows_amd64.zip"},
			{Name: "checksums.txt"},
		},
	}

	asset, err := findPlatformAsset(release)
	if err != nil {
		t.Fatalf("findPlatformAsset() error: %v", err)
	}
	if asset.Name == "checksums.txt" {
		t.Error("체크섬 파일이 바이너리로 선택됨")
	}
}

func TestFindPlatformAsset_NoMatch(t *testing.T) {
	release := &Release{
		Assets: []Asset{{Name: "ocbridge_plan9_mips.tar.gz"}},
	}
	if _, err := findPlatformAsset(release); err == nil {
		t.Error("매칭 없는 릴리스에 에러가 기대되었으나 nil")
	}
}
