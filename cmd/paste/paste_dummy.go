//go:build !windows

// https://github.com/golang-design/clipboard requires CGO or external dependencies on non-Windows platform.

package paste

import (
	"fmt"
	"runtime"
)

func readClipboardImage() ([]byte, error) {
	return nil, fmt.Errorf("%s is not supported", runtime.GOOS)
}
