package imagemeta

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is the only hard failure of the pipeline.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrMalformedContainer marks a chunk walk that stopped early. It is reported
	// alongside partial results and never aborts the pipeline.
	ErrMalformedContainer = errors.New("malformed container")
)

// UnsupportedFormatError carries the leading bytes of a buffer that matched no known signature.
type UnsupportedFormatError struct {
	Header []byte
}

func (e *UnsupportedFormatError) Error() string {
	if len(e.Header) == 0 {
		return fmt.Sprintf("%v: empty input", ErrUnsupportedFormat)
	}
	return fmt.Sprintf("%v: header % X matches neither the PNG nor the RIFF/WEBP signature",
		ErrUnsupportedFormat, e.Header)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// MalformedError reports where a chunk walk stopped.
type MalformedError struct {
	Format Format
	Offset int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d: %s", ErrMalformedContainer, e.Format, e.Offset, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedContainer
}

func malformed(format Format, offset int, msg string, args ...any) *MalformedError {
	return &MalformedError{Format: format, Offset: offset, Reason: fmt.Sprintf(msg, args...)}
}
