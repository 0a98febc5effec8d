//go:build windows

package copy

import (
	"github.com/sagan/naimeta/features/clipboard"
)

func writeClipboard(text string) error {
	return clipboard.CopyString(text)
}
