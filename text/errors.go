package text

import (
	"errors"
	"fmt"

	"github.com/gogpu/sdfcanvas"
)

// Sentinel errors for the text package.
var (
	// ErrFontNotFound is returned for unknown font references. It also
	// matches sdfcanvas.ErrResourceNotFound.
	ErrFontNotFound = errors.New("text: font not found")

	// ErrInvalidSize is returned for a non-positive or non-finite font size.
	ErrInvalidSize = errors.New("text: font size must be positive")

	// ErrEmptyFontData is returned when registering empty font data.
	ErrEmptyFontData = errors.New("text: empty font data")
)

func fontNotFound(ref sdfcanvas.FontRef) error {
	return fmt.Errorf("%w: %w", ErrFontNotFound,
		&sdfcanvas.ResourceError{Kind: sdfcanvas.ResourceFont, Ref: uint32(ref)})
}

// ParseError reports font data neither parser accepted.
type ParseError struct {
	Parser string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("text: %s: %v", e.Parser, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
