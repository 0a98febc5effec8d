package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var ErrEmpty = errors.New("clipboard has no image or text data")

var (
	initializeOnce sync.Once
	clipboardError error
)

// Init initializes the clipboard. It's safe to call multiple times.
func Init() error {
	initializeOnce.Do(func() {
		clipboardError = clipboard.Init()
	})
	return clipboardError
}

// CopyString writes str to clipboard as text.
func CopyString(str string) error {
	if err := Init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(str))
	return nil
}

// Get reads clipboard. Image (PNG encoded) data is preferred over text.
func Get() (data []byte, isImage bool, err error) {
	if err = Init(); err != nil {
		return nil, false, err
	}
	if data = clipboard.Read(clipboard.FmtImage); len(data) > 0 {
		return data, true, nil
	} else if data = clipboard.Read(clipboard.FmtText); len(data) > 0 {
		return data, false, nil
	}
	return nil, false, ErrEmpty
}
