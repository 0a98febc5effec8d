//go:build windows

package paste

import (
	"github.com/sagan/naimeta/features/clipboard"
)

func readClipboardImage() ([]byte, error) {
	data, isImage, err := clipboard.Get()
	if err != nil {
		return nil, err
	}
	if !isImage {
		return nil, errNotImage
	}
	return data, nil
}
