// functions with side effect
package helper

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/group/all"
	"github.com/gobwas/glob"
	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/sagan/naimeta/util"
)

// Recognize "*.txt" style glob, return parsed filenames.
func ParseFilenameArgs(args ...string) []string {
	names := []string{}
	for _, arg := range args {
		filenames := ParseGlobFilenames(arg)
		if filenames == nil {
			names = append(names, arg)
		} else {
			names = append(names, filenames...)
		}
	}
	names = util.UniqueSlice(names)
	return names
}

// ParseGlobFilenames expands a shell-like glob pattern (e.g. "*.txt") into
// matching filenames on disk.
//
// Notes / behavior:
//   - Returns matches sorted lexicographically.
//   - If there are no matches (or pattern is invalid), returns an empty slice.
//   - For relative patterns, results are relative to the current working dir.
//   - This does NOT implement full bash features (brace expansion, extglob, etc.).
func ParseGlobFilenames(pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	// Expand "~/" (common shell convenience).
	if strings.HasPrefix(pattern, "~/") || pattern == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			if pattern == "~" {
				pattern = home
			} else {
				pattern = filepath.Join(home, pattern[2:])
			}
		}
	}

	// Normalize to slash for matching; use '/' as separator for gobwas/glob.
	patSlash := filepath.ToSlash(pattern)

	g, err := glob.Compile(patSlash, '/')
	if err != nil {
		return nil
	}

	// Choose a walk root: directory portion of the longest non-meta prefix.
	walkRoot := computeWalkRoot(pattern)

	// We'll match either absolute or relative paths depending on how pattern is written.
	isAbs := filepath.IsAbs(pattern)

	var matches []string

	_ = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Ignore unreadable dirs/files.
			return nil
		}
		// Usually globs expand to both files and directories. Keep both.
		// If you only want files, uncomment:
		// if d.IsDir() { return nil }

		var target string
		if isAbs {
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil
			}
			target = filepath.ToSlash(abs)
		} else {
			rel, err := filepath.Rel(".", path)
			if err != nil {
				return nil
			}
			target = filepath.ToSlash(rel)
		}

		// Approximate dotfile behavior: don't match names starting with '.'
		// unless the corresponding pattern segment starts with '.'.
		if !dotfileOK(patSlash, target) {
			return nil
		}

		if g.Match(target) {
			// Return in the same "style" as input: abs stays abs; rel stays rel.
			if isAbs {
				matches = append(matches, filepath.Clean(target))
			} else {
				matches = append(matches, filepath.Clean(filepath.FromSlash(target)))
			}
		}
		return nil
	})

	sort.Strings(matches)
	return matches
}

func computeWalkRoot(pattern string) string {
	// Find the longest prefix before any glob metachar.
	// Metachars: *, ?, [, ] (we treat '{' too, though we don't implement brace expansion).
	const metas = "*?[{"

	p := pattern
	prefix := p
	for i := 0; i < len(p); i++ {
		if strings.ContainsRune(metas, rune(p[i])) {
			prefix = p[:i]
			break
		}
	}

	// Root should be a directory: chop to last separator in the non-meta prefix.
	prefixDir := prefix
	lastSep := strings.LastIndexAny(prefixDir, `/\`)
	if lastSep >= 0 {
		prefixDir = prefixDir[:lastSep+1]
	}

	if prefixDir == "" {
		return "."
	}
	return filepath.Clean(prefixDir)
}

func dotfileOK(patternSlash, targetSlash string) bool {
	// Very small approximation of shell rule:
	// if a path segment begins with '.' then pattern segment should also begin with '.'
	// to match it.
	pSeg := strings.Split(patternSlash, "/")
	tSeg := strings.Split(targetSlash, "/")

	// Align from the end if lengths differ (walkRoot may change the relative prefix),
	// but generally both should align. We'll do a best-effort alignment.
	// If we can't align, fall back to allowing the match check.
	if len(pSeg) != len(tSeg) {
		return true
	}

	for i := range tSeg {
		if strings.HasPrefix(tSeg[i], ".") && !strings.HasPrefix(pSeg[i], ".") {
			return false
		}
	}
	return true
}

// Ask user to confirm an (dangerous) action via typing yes in tty
func AskYesNoConfirm(prompt string) bool {
	if prompt == "" {
		prompt = "Will do the action"
	}
	fmt.Fprintf(os.Stderr, "%s, are you sure? (yes/no): ", prompt)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, `Abort due to stdin is NOT tty. Use a proper flag (like "--force") to skip the prompt`+"\n")
		return false
	}
	for {
		input := ""
		fmt.Scanf("%s\n", &input)
		switch input {
		case "yes", "YES", "Yes":
			return true
		case "n", "N", "no", "NO", "No":
			return false
		default:
			if len(input) > 0 {
				fmt.Fprintf(os.Stderr, "Respond with yes or no (Or use Ctrl+C to abort): ")
			} else {
				return false
			}
		}
	}
}

func ReadFileHeader(name string, size int) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b := make([]byte, size)
	n, err := io.ReadAtLeast(f, b, size)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return b[:n], err
}

// CheckOutput returns an error if output is an existing file and force is false. "-" (stdout) always passes.
func CheckOutput(output string, force bool) error {
	if output == "" || output == "-" {
		return nil
	}
	if exists, err := util.FileExists(output); err != nil || (exists && !force) {
		return fmt.Errorf("output file %q exists or can't access, err=%w", output, err)
	}
	return nil
}

// WriteOutput writes data to stdout if output is "-" (or empty), otherwise atomically to output file.
func WriteOutput(stdout io.Writer, output string, data []byte) error {
	if output == "" || output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return atomic.WriteFile(output, bytes.NewReader(data))
}

var handler *sprout.DefaultHandler

// sprout provided template funcs
var templateFuncs map[string]any

func init() {
	handler = sprout.New()
	handler.AddGroups(all.RegistryGroup())
	templateFuncs = handler.Build()
}

// Simple wrapper on Go text template.Template.
// Add JavaScript exection (eval) ability.
type Template struct {
	*template.Template
	jsvm *goja.Runtime
	mu   sync.Mutex
}

// Execute Go text template and return rendered string.
// It supports a special "eval" function.
// The result string is trim spaced.
func (t *Template) Exec(data any) (string, error) {
	var buf bytes.Buffer
	if t.jsvm != nil && data != nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		if m, ok := data.(map[string]any); ok {
			data = maps.Clone(m)
		}
		t.jsvm.Set("global", data)
	}
	if err := t.Template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Get a Go text template instance from tpl string.
// If tpl starts with "@" char, treat it (the rest part after @) as a file name
// and read template contents from it instead.
func GetTemplate(tpl string, strict bool) (*Template, error) {
	if strings.HasPrefix(tpl, "@") {
		contents, err := os.ReadFile(tpl[1:])
		if err != nil {
			return nil, err
		}
		tpl = string(contents)
	}
	templateInstance := template.New("template").Funcs(templateFuncs)
	if strict {
		templateInstance = templateInstance.Option("missingkey=error")
	}
	t, err := templateInstance.Parse(tpl)
	var jsvm *goja.Runtime
	if err != nil && strings.Contains(err.Error(), ` function "eval" not defined`) {
		jsvm = goja.New()
		new(require.Registry).Enable(jsvm)
		console.Enable(jsvm)
		templateInstance.Funcs(template.FuncMap{
			"eval": func(input any) any {
				v, e := util.Eval(jsvm, input)
				if e != nil {
					log.Printf("eval error: %v", e)
				}
				return v
			},
		})
		t, err = templateInstance.Parse(tpl)
	}
	if err != nil {
		return nil, err
	}
	return &Template{Template: t, jsvm: jsvm}, nil
}
