package upb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrMalformed       = errors.New("upb: malformed wire data")
	ErrDepthLimit      = errors.New("upb: message nesting exceeds depth limit")
	ErrMessageTooLarge = errors.New("upb: message exceeds size limit")
	ErrInvalidUTF8     = errors.New("upb: string field contains invalid UTF-8")
)

// wireError turns a negative protowire length into an ErrMalformed chain.
func wireError(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
}
