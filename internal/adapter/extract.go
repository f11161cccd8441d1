package adapter

import (
	"archive/tar"    // .tar archives
	"archive/zip"    // .zip archives
	"compress/bzip2" // .bz2 compressed data
	"compress/gzip"  // .gz compressed data
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // .7z archives
	"github.com/spf13/afero"
	"github.com/xi2/xz" // .xz compressed data

	"bootstrap-mac/internal/logger"
)

// isFontFile reports whether an archive member is an installable font.
// Resource-fork junk from macOS-built zips (__MACOSX, dotfiles) is skipped.
func isFontFile(name string) bool {
	if strings.Contains(name, "__MACOSX") {
		return false
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".ttf", ".otf", ".ttc":
		return true
	}
	return false
}

// extractFontFiles extracts every font file from the archive at src into
// destDir on fs, flattening any directory structure. It routes by archive
// extension and returns the installed file paths.
func extractFontFiles(fs afero.Fs, src, destDir string) ([]string, error) {
	switch {
	case strings.HasSuffix(src, ".zip"):
		logger.Debug("[DEBUG] Archive type is zip\n")
		return extractZipFonts(fs, src, destDir)
	case strings.HasSuffix(src, ".7z"):
		logger.Debug("[DEBUG] Archive type is 7z\n")
		return extract7zFonts(fs, src, destDir)
	case strings.HasSuffix(src, ".tar"), strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"),
		strings.HasSuffix(src, ".tar.bz2"), strings.HasSuffix(src, ".tar.xz"):
		logger.Debug("[DEBUG] Archive type is tar\n")
		return extractTarFonts(fs, src, destDir)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", src)
	}
}

// installFont writes one archive member into destDir under its base name.
func installFont(fs afero.Fs, destDir, member string, r io.Reader) (string, error) {
	target := filepath.Join(destDir, filepath.Base(member))
	if err := afero.WriteReader(fs, target, r); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	logger.Debug("[DEBUG] Extracted font %s\n", target)
	return target, nil
}

func extractZipFonts(fs afero.Fs, src, destDir string) ([]string, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var installed []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isFontFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		target, err := installFont(fs, destDir, f.Name, rc)
		rc.Close()
		if err != nil {
			return installed, err
		}
		installed = append(installed, target)
	}
	return installed, nil
}

func extract7zFonts(fs afero.Fs, src, destDir string) ([]string, error) {
	zr, err := sevenzip.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var installed []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isFontFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		target, err := installFont(fs, destDir, f.Name, rc)
		rc.Close()
		if err != nil {
			return installed, err
		}
		installed = append(installed, target)
	}
	return installed, nil
}

func extractTarFonts(fs afero.Fs, src, destDir string) ([]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return nil, err
		}
		reader = xzr
	}

	var installed []string
	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return installed, err
		}
		if hdr.Typeflag != tar.TypeReg || !isFontFile(hdr.Name) {
			continue
		}
		target, err := installFont(fs, destDir, hdr.Name, tr)
		if err != nil {
			return installed, err
		}
		installed = append(installed, target)
	}
	return installed, nil
}
