package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"bootstrap-mac/internal/config"
	"bootstrap-mac/internal/logger"
	"bootstrap-mac/internal/system"
)

// githubRelease is the subset of the GitHub release JSON response needed to
// locate a downloadable asset.
type githubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// archiveSuffixes are the formats the extractor can route.
var archiveSuffixes = []string{".zip", ".7z", ".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".tar"}

const downloadAttempts = 2

// downloadBackoff is a variable so tests do not have to wait out the delay.
var downloadBackoff = 3 * time.Second

// FontArchive installs fonts that ship as downloadable archives rather than
// as casks. The entry's SourceRef is either a direct archive URL or a GitHub
// release reference of the form "owner/repo@tag"; the archive's font files
// are extracted flat into the user font directory.
type FontArchive struct {
	sys *system.Context
}

func NewFontArchive(sys *system.Context) *FontArchive {
	return &FontArchive{sys: sys}
}

// normalizeFontName lowercases and strips separators so "JetBrainsMono-Bold.ttf"
// matches the entry id "jetbrains-mono".
func normalizeFontName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == ' ' {
			return -1
		}
		return r
	}, strings.ToLower(name))
}

// CheckPresence reports whether any installed font file under the user font
// directory matches the entry id.
func (f *FontArchive) CheckPresence(_ context.Context, e config.Entry) (bool, error) {
	entries, err := afero.ReadDir(f.sys.Fs, f.sys.FontsDir())
	if err != nil {
		// Missing font directory simply means nothing is installed yet.
		return false, nil
	}
	want := normalizeFontName(e.ID)
	for _, fi := range entries {
		if fi.IsDir() || !isFontFile(fi.Name()) {
			continue
		}
		if strings.Contains(normalizeFontName(fi.Name()), want) {
			logger.Debug("[DEBUG] Font %s already present as %s\n", e.ID, fi.Name())
			return true, nil
		}
	}
	return false, nil
}

// Install resolves the archive URL, downloads it with a bounded retry, and
// extracts the font files into the user font directory.
func (f *FontArchive) Install(ctx context.Context, e config.Entry) error {
	url, err := f.resolveURL(ctx, e)
	if err != nil {
		return &InstallError{Entry: e.Key(), Reason: "cannot resolve font source", Err: err}
	}

	tmpDir, err := os.MkdirTemp("", "font-*")
	if err != nil {
		return &InstallError{Entry: e.Key(), Reason: "cannot create temp dir", Err: err}
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, path.Base(url))
	if err := downloadWithRetry(ctx, url, archivePath); err != nil {
		return &InstallError{Entry: e.Key(), Reason: "download failed", Err: err}
	}

	installed, err := extractFontFiles(f.sys.Fs, archivePath, f.sys.FontsDir())
	if err != nil {
		return &InstallError{Entry: e.Key(), Reason: "extraction failed", Err: err}
	}
	if len(installed) == 0 {
		return &InstallError{Entry: e.Key(), Reason: fmt.Sprintf("no font files found in %s", path.Base(url))}
	}
	logger.Info("[INFO] Installed %d font file(s) for %s\n", len(installed), e.ID)
	return nil
}

// resolveURL turns the entry's SourceRef into a concrete archive URL. Direct
// URLs pass through; "owner/repo@tag" references are resolved against the
// GitHub release API by picking the first asset in a supported archive format.
func (f *FontArchive) resolveURL(ctx context.Context, e config.Entry) (string, error) {
	ref := e.SourceRef
	if strings.Contains(ref, "://") {
		return ref, nil
	}

	repo, tag, ok := strings.Cut(ref, "@")
	if !ok {
		return "", fmt.Errorf("font source %q is neither a URL nor an owner/repo@tag release reference", ref)
	}

	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/releases/tags/%s", repo, tag)
	logger.Debug("[DEBUG] Fetching GitHub release from URL: %s\n", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP GET error fetching release %s: %w", ref, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub release fetch failed for %s: HTTP status %d", ref, resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to decode GitHub release JSON for %s: %w", ref, err)
	}
	logger.Debug("[DEBUG] Release tag: %s with %d assets\n", release.TagName, len(release.Assets))

	for _, asset := range release.Assets {
		lower := strings.ToLower(asset.Name)
		for _, suffix := range archiveSuffixes {
			if strings.HasSuffix(lower, suffix) {
				logger.Debug("[DEBUG] Found matching asset: %s\n", asset.Name)
				return asset.BrowserDownloadURL, nil
			}
		}
	}
	return "", fmt.Errorf("no archive asset found in release %s of %s", release.TagName, repo)
}

// downloadWithRetry fetches url into destPath, retrying once on failure.
func downloadWithRetry(ctx context.Context, url, destPath string) error {
	var err error
	for i := 0; i < downloadAttempts; i++ {
		if i > 0 {
			logger.Warn("[WARN] Download of %s failed, retrying in %s...\n", url, downloadBackoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(downloadBackoff):
			}
		}
		if err = downloadFile(ctx, url, destPath); err == nil {
			return nil
		}
	}
	return err
}

// downloadFile saves the content at url to destPath on the real filesystem
// (the archive readers need seekable files).
func downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close response body: %s\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close destination file: %s\n", cerr)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write response to file: %w", err)
	}
	logger.Debug("[DEBUG] Downloaded archive to: %s\n", destPath)
	return nil
}
