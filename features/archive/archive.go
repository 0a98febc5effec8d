// Package archive extracts image archives (e.g. the zip of a NovelAI batch download) for import.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagan/zip"
	log "github.com/sirupsen/logrus"
	"golift.io/xtractr"

	"github.com/sagan/naimeta/util/pathutil"
	"github.com/sagan/naimeta/util/stringutil"
)

// See https://superuser.com/questions/104500/ .
const MACOS_RUBBISH_FOLDER = "__MACOSX"

// Extensions of supported archive files.
var Extensions = []string{".zip", ".7z", ".rar", ".tar", ".tgz", ".tar.gz"}

// IsArchive reports whether name has a supported archive extension.
func IsArchive(name string) bool {
	return stringutil.HasAnySuffixI(name, Extensions...)
}

// DefaultOutputDir is the dir an archive is extracted to if not specified: a sibling dir
// named after the archive without ext ("photos/batch.zip" => "photos/batch").
func DefaultOutputDir(archivePath string) string {
	base := filepath.Base(archivePath)
	lower := strings.ToLower(base)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	return filepath.Join(filepath.Dir(archivePath), base)
}

// Extract extracts archivePath into outputDir, which is created if not exists.
// Zip files are handled natively, with legacy (e.g. Shift_JIS) file names detected and converted.
// Other formats are delegated to xtractr.
func Extract(archivePath, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to mkdir %q: %w", outputDir, err)
	}
	if stringutil.HasAnySuffixI(archivePath, ".zip") {
		return ExtractZip(archivePath, outputDir)
	}
	_, files, _, err := xtractr.ExtractFile(&xtractr.XFile{
		FilePath:  archivePath,
		OutputDir: outputDir,
		FileMode:  0644,
		DirMode:   0755,
	})
	if err != nil {
		return err
	}
	log.Debugf("extracted %d files from %s", len(files), archivePath)
	return nil
}

// ExtractZip extracts a zip file. Encrypted entries are not supported.
func ExtractZip(archivePath, outputDir string) error {
	zipFile, err := zip.OpenReader(archivePath)
	if err == zip.ErrInsecurePath {
		// Entry names are sanitized by CleanFilePath below.
		log.Debugf("%s: %v", archivePath, err)
	} else if err != nil {
		return err
	}
	defer zipFile.Close()
	var rawNames [][]byte
	for _, f := range zipFile.File {
		if f.NonUTF8 {
			rawNames = append(rawNames, []byte(f.Name))
		}
	}
	encoding := "UTF-8"
	if len(rawNames) > 0 {
		if encoding, err = stringutil.DetectCjkCharset(rawNames...); err != nil {
			return fmt.Errorf("failed to detect file name encoding: %w", err)
		}
		log.Debugf("detected zip file name encoding: %s", encoding)
	}

	extracted := map[string]struct{}{}
	for _, f := range zipFile.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.IsEncrypted() {
			return fmt.Errorf("zip entry %q is encrypted", f.Name)
		}
		name := f.Name
		if f.NonUTF8 && encoding != "UTF-8" {
			decoded, err := stringutil.DecodeText([]byte(name), encoding, false)
			if err != nil {
				return fmt.Errorf("failed to convert zip file name %q to %s", f.Name, encoding)
			}
			name = string(decoded)
		}
		name = pathutil.CleanFilePath(name)
		if name == "" || name == MACOS_RUBBISH_FOLDER || strings.HasPrefix(name, MACOS_RUBBISH_FOLDER+"/") {
			continue
		}
		if _, ok := extracted[name]; ok {
			return fmt.Errorf("duplicate file name in archive: %q", name)
		}
		extracted[name] = struct{}{}
		outputPath := filepath.Join(outputDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return fmt.Errorf("failed to mkdir %q: %w", filepath.Dir(outputPath), err)
		}
		if err := writeZipFile(f, outputPath); err != nil {
			return fmt.Errorf("failed to extract zip file %q: %w", f.Name, err)
		}
	}
	return nil
}

func writeZipFile(f *zip.File, outputPath string) error {
	zFile, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip file: %w", err)
	}
	defer zFile.Close()
	fout, err := os.OpenFile(outputPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open target file %q: %w", outputPath, err)
	}
	defer fout.Close()
	if _, err := io.Copy(fout, zFile); err != nil {
		return fmt.Errorf("failed to copy zip file to %q: %w", outputPath, err)
	}
	return nil
}
