// Package update checks GitHub releases for a newer version and downloads
// the installer asset.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"
)

const (
	githubRepo      = "conversiontraffic/record-and-transcribe"
	apiTimeout      = 5 * time.Second
	downloadTimeout = 120 * time.Second
)

var apiURL = fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", githubRepo)

// Release describes a newer release found on GitHub.
type Release struct {
	Version   string
	AssetName string
	AssetURL  string
}

type githubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// Check queries GitHub for the latest release. It returns nil when the
// current version is up to date or the release carries no installer.
func Check(ctx context.Context, current string, log zerolog.Logger) (*Release, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "RecordAndTranscribe-UpdateChecker")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query latest release: HTTP %d", resp.StatusCode)
	}

	var rel githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	if !IsNewer(current, rel.TagName) {
		log.Debug().Str("current", current).Str("latest", rel.TagName).Msg("No newer release")
		return nil, nil
	}

	for _, a := range rel.Assets {
		name := strings.ToLower(a.Name)
		if strings.Contains(name, "setup") && strings.HasSuffix(name, ".exe") {
			return &Release{
				Version:   rel.TagName,
				AssetName: a.Name,
				AssetURL:  a.BrowserDownloadURL,
			}, nil
		}
	}
	log.Warn().Str("version", rel.TagName).Msg("Newer release has no installer asset")
	return nil, nil
}

// IsNewer reports whether remote is a strictly newer semantic version
// than current. Unparseable versions compare as not newer.
func IsNewer(current, remote string) bool {
	c := "v" + strings.TrimPrefix(strings.TrimSpace(current), "v")
	r := "v" + strings.TrimPrefix(strings.TrimSpace(remote), "v")
	if !semver.IsValid(c) || !semver.IsValid(r) {
		return false
	}
	return semver.Compare(r, c) > 0
}

// Download fetches the release installer into the temp directory,
// reporting integer-percent progress, and returns the downloaded path.
func Download(ctx context.Context, rel *Release, onProgress func(percent int)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rel.AssetURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download installer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download installer: HTTP %d", resp.StatusCode)
	}

	destPath := filepath.Join(os.TempDir(), rel.AssetName)
	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	var w io.Writer = out
	if resp.ContentLength > 0 && onProgress != nil {
		w = io.MultiWriter(out, &progressWriter{total: resp.ContentLength, onProgress: onProgress})
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("write installer: %w", err)
	}
	return destPath, nil
}

// progressWriter converts bytes written into percentage callbacks.
type progressWriter struct {
	total      int64
	written    int64
	last       int
	onProgress func(percent int)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.written += int64(len(p))
	percent := int(pw.written * 100 / pw.total)
	if percent > 100 {
		percent = 100
	}
	if percent != pw.last {
		pw.last = percent
		pw.onProgress(percent)
	}
	return len(p), nil
}
