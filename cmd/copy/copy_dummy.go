//go:build !windows

// https://github.com/golang-design/clipboard requires CGO or external dependencies on non-Windows platform.

package copy

import (
	"fmt"
	"runtime"
)

func writeClipboard(text string) error {
	return fmt.Errorf("%s is not supported, use --print", runtime.GOOS)
}
