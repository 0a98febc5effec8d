package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/util/helper"
	"github.com/sagan/naimeta/util/stringutil"
)

// IgnoreFilenames and IgnoreFilenameSuffixes are skipped while collecting.
// These are common temporary or system-generated files.

var IgnoreFilenames = []string{
	".DS_Store",   // macOS directory metadata
	"Thumbs.db",   // Windows thumbnail cache
	"desktop.ini", // Windows folder customization
}

var IgnoreFilenameSuffixes = []string{
	".partial",     // rclone transfer temporary file
	".fuse_hidden", // fuse filesystem temporary file
	".crdownload",  // Chrome partial download
	".part",        // Firefox partial download
	".tmp",         // Temporary file
	".aria2",       // aria2 downloading file
	".!qB",         // qBittorrent downloading file
}

// ImageExts are the extensions of files the extractor understands.
var ImageExts = []string{".png", ".webp"}

type CollectOptions struct {
	// Only scan the top level of root.
	NoRecursive bool
	// Glob patterns, e.g. "2024-*/**.png". A file is kept if any pattern matches its
	// slash separated path relative to root, or its base name. Empty keeps all images.
	Include []string
	// Sniff keeps files of any extension whose leading bytes are a PNG or RIFF/WEBP signature.
	Sniff bool
}

// sniffSize is the header length DetectFormat needs.
const sniffSize = 12

func shouldIgnore(filename string) bool {
	if strings.HasPrefix(filename, ".") {
		return true
	}
	if slices.Contains(IgnoreFilenames, filename) {
		return true
	}
	return slices.ContainsFunc(IgnoreFilenameSuffixes, func(suffix string) bool {
		return strings.HasSuffix(filename, suffix)
	})
}

func compilePatterns(include []string) ([]glob.Glob, error) {
	var patterns []glob.Glob
	for _, p := range include {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		patterns = append(patterns, g)
	}
	return patterns, nil
}

// Collect walks root and returns the image files in it, in lexical order.
// If root is a file it is returned as is.
func Collect(root string, opts CollectOptions) ([]string, error) {
	patterns, err := compilePatterns(opts.Include)
	if err != nil {
		return nil, err
	}
	return collect(root, patterns, opts)
}

// CollectAll collects every root. A root that can not be walked (e.g. it does not exist) is
// returned as a failed Item and the other roots are still collected. Only an invalid include
// pattern is returned as err. Duplicate files are listed once.
func CollectAll(roots []string, opts CollectOptions) (files []string, failed []*Item, err error) {
	patterns, err := compilePatterns(opts.Include)
	if err != nil {
		return nil, nil, err
	}
	seen := map[string]struct{}{}
	for _, root := range roots {
		list, err := collect(root, patterns, opts)
		if err != nil {
			failed = append(failed, &Item{Path: root, Err: err})
			continue
		}
		for _, file := range list {
			if _, ok := seen[file]; !ok {
				seen[file] = struct{}{}
				files = append(files, file)
			}
		}
	}
	return files, failed, nil
}

func collect(root string, patterns []glob.Glob, opts CollectOptions) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (opts.NoRecursive || shouldIgnore(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			files = append(files, path)
			return nil
		}
		if shouldIgnore(d.Name()) {
			return nil
		}
		if !stringutil.HasAnySuffixI(d.Name(), ImageExts...) {
			if !opts.Sniff {
				return nil
			}
			header, err := helper.ReadFileHeader(path, sniffSize)
			if err != nil || imagemeta.DetectFormat(header) == imagemeta.FormatUnknown {
				return nil
			}
		}
		if len(patterns) > 0 {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if !slices.ContainsFunc(patterns, func(g glob.Glob) bool {
				return g.Match(rel) || g.Match(d.Name())
			}) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
