package hextext

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHex is wrapped by a ParseError when a chunk holds a character outside 0-9a-fA-F.
	ErrInvalidHex = errors.New("invalid hex digit")

	// ErrOddLength is wrapped by a ParseError when strict decoding sees an unpaired trailing digit.
	ErrOddLength = errors.New("odd number of hex digits")
)

// ParseError reports where decoding stopped.
// Offset is relative to the normalized string for batch decoding and to the
// raw input for streaming decoding.
type ParseError struct {
	Offset int
	Chunk  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q at offset %d", e.Err, e.Chunk, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
