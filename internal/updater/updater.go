// Package updater는 CLI 자동 업데이트 기능을 제공합니다.
// GitHub Releases에서 최신 릴리스를 조회하고 현재 바이너리를
// 체크섬 검증 후 원자적으로 교체합니다.
package updater

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	// githubAPIBase는 GitHub API 기본 URL입니다.
	githubAPIBase = "https://api.github.com"
	// httpTimeout는 HTTP 요청 타임아웃입니다.
	httpTimeout = 30 * time.Second
)

// Updater는 자동 업데이트를 관리하는 구조체입니다.
type Updater struct {
	currentVersion string
	githubRepo     string
	apiBase        string
	httpClient     *http.Client
}

// Release는 GitHub Release 정보를 나타냅니다.
type Release struct {
	Version     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
}

// Asset는 GitHub Release의 첨부 파일 정보를 나타냅니다.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// New는 새로운 Updater를 생성합니다.
func New(currentVersion, githubRepo string) *Updater {
	return &Updater{
		currentVersion: currentVersion,
		githubRepo:     githubRepo,
		apiBase:        githubAPIBase,
		httpClient: &http.Client{
			Timeout: httpTimeout,
		},
	}
}

// CheckForUpdate는 최신 릴리스를 확인하고 업데이트 여부를 반환합니다.
// dev 빌드는 업데이트 대상이 아닙니다.
func (u *Updater) CheckForUpdate() (*Release, bool, error) {
	release, err := u.fetchLatestRelease()
	if err != nil {
		return nil, false, fmt.Errorf("최신 릴리스 확인 실패: %w", err)
	}

	current := normalizeVersion(u.currentVersion)
	if current == "dev" || current == "" {
		return release, false, nil
	}

	latest := normalizeVersion(release.Version)
	return release, compareVersions(latest, current) > 0, nil
}

// Apply는 릴리스의 플랫폼 바이너리를 다운로드하고 현재 바이너리를 교체합니다.
// 체크섬 파일이 있으면 SHA256을 검증하며, 교체는 rename으로 원자적으로 수행됩니다.
func (u *Updater) Apply(release *Release) error {
	asset, err := findPlatformAsset(release)
	if err != nil {
		return err
	}

	tmpFile, err := u.downloadAsset(asset)
	if err != nil {
		return fmt.Errorf("바이너리 다운로드 실패: %w", err)
	}
	defer os.Remove(tmpFile) //nolint:errcheck

	if expected, err := u.fetchChecksum(release, asset.Name); err == nil {
		if err := verifyChecksum(tmpFile, expected); err != nil {
			return fmt.Errorf("체크섬 검증 실패: %w", err)
		}
	}

	return replaceCurrentBinary(tmpFile)
}

// fetchLatestRelease는 GitHub API에서 최신 릴리스 정보를 가져옵니다.
func (u *Updater) fetchLatestRelease() (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", u.apiBase, u.githubRepo)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "ocbridge/"+u.currentVersion)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GitHub API 요청 실패: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("GitHub API 요청 한도 초과. 잠시 후 다시 시도하세요")
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("릴리스를 찾을 수 없습니다: %s", u.githubRepo)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GitHub API 응답 오류 (HTTP %d)", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("릴리스 정보 파싱 실패: %w", err)
	}
	return &release, nil
}

// downloadAsset는 에셋을 임시 파일로 다운로드하고 경로를 반환합니다.
func (u *Updater) downloadAsset(asset *Asset) (string, error) {
	resp, err := u.httpClient.Get(asset.BrowserDownloadURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("다운로드 실패 (HTTP %d)", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "ocbridge-update-*")
	if err != nil {
		return "", err
	}
	defer tmp.Close() //nolint:errcheck

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", err
	}
	return tmp.Name(), nil
}

// fetchChecksum는 릴리스의 체크섬 파일에서 에셋의 SHA256 해시를 찾습니다.
func (u *Updater) fetchChecksum(release *Release, assetName string) (string, error) {
	var checksumAsset *Asset
	for i := range release.Assets {
		name := strings.ToLower(release.Assets[i].Name)
		if strings.Contains(name, "checksums") || strings.Contains(name, "sha256sums") {
			checksumAsset = &release.Assets[i]
			break
		}
	}
	if checksumAsset == nil {
		return "", fmt.Errorf("체크섬 파일이 없습니다")
	}

	resp, err := u.httpClient.Get(checksumAsset.BrowserDownloadURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("체크섬 파일 다운로드 실패 (HTTP %d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// 형식: <hash>  <filename> (바이너리 모드는 파일명 앞에 *)
	for _, line := range strings.Split(string(body), "\n") {
		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) < 2 {
			continue
		}
		if strings.TrimPrefix(parts[len(parts)-1], "*") == assetName {
			return parts[0], nil
		}
	}
	return "", fmt.Errorf("에셋 '%s'의 체크섬을 찾을 수 없습니다", assetName)
}

// findPlatformAsset는 현재 OS/아키텍처에 맞는 에셋을 찾습니다.
func findPlatformAsset(release *Release) (*Asset, error) {
	osName := runtime.GOOS
	archName := runtime.GOARCH

	archAliases := map[string][]string{
		"amd64": {"amd64", "x86_64", "x64"},
		"arm64": {"arm64", "aarch64"},
	}
	aliases, ok := archAliases[archName]
	if !ok {
		aliases = []string{archName}
	}

	for i := range release.Assets {
		name := strings.ToLower(release.Assets[i].Name)
		if !strings.Contains(name, osName) {
			continue
		}
		if strings.HasSuffix(name, ".sha256") || strings.Contains(name, "checksums") {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(name, alias) {
				return &release.Assets[i], nil
			}
		}
	}
	return nil, fmt.Errorf("현재 플랫폼(%s/%s)에 맞는 바이너리를 찾을 수 없습니다", osName, archName)
}

// verifyChecksum는 파일의 SHA256 해시가 기대값과 일치하는지 확인합니다.
func verifyChecksum(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("해시 불일치: expected %s, got %s", expected, actual)
	}
	return nil
}

// replaceCurrentBinary는 현재 실행 바이너리를 새 파일로 교체합니다.
// 기존 바이너리를 백업해 두었다가 실패 시 복원합니다.
func replaceCurrentBinary(newBinary string) error {
	current, err := os.Executable()
	if err != nil {
		return fmt.Errorf("현재 바이너리 경로 확인 실패: %w", err)
	}
	current, err = filepath.EvalSymlinks(current)
	if err != nil {
		return fmt.Errorf("심볼릭 링크 해석 실패: %w", err)
	}

	if err := os.Chmod(newBinary, 0755); err != nil {
		return fmt.Errorf("실행 권한 설정 실패: %w", err)
	}

	backup := current + ".bak"
	if err := os.Rename(current, backup); err != nil {
		return fmt.Errorf("기존 바이너리 백업 실패: %w", err)
	}
	if err := os.Rename(newBinary, current); err != nil {
		// 실패 시 백업 복원
		_ = os.Rename(backup, current)
		return fmt.Errorf("새 바이너리 설치 실패: %w", err)
	}
	_ = os.Remove(backup)

	return nil
}

// normalizeVersion은 버전 문자열의 v 접두사와 공백을 제거합니다.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// compareVersions는 두 semver 문자열을 비교합니다.
// a > b면 1, a < b면 -1, 같으면 0을 반환합니다.
func compareVersions(a, b string) int {
	aParts := strings.SplitN(strings.SplitN(a, "-", 2)[0], ".", 3)
	bParts := strings.SplitN(strings.SplitN(b, "-", 2)[0], ".", 3)

	for i := 0; i < 3; i++ {
		var aNum, bNum int
		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}
		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}
		if aNum > bNum {
			return 1
		}
		if aNum < bNum {
			return -1
		}
	}
	return 0
}
