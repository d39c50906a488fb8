package sdfcanvas

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every per-command failure is reported as a Diagnostic
// wrapping one of the first three; none of them aborts a frame.
var (
	// ErrInvalidGeometry reports a degenerate or malformed shape. The command
	// is normalized when possible and dropped when nothing drawable remains.
	ErrInvalidGeometry = errors.New("sdfcanvas: invalid geometry")

	// ErrResourceNotFound reports an unknown font or image reference.
	// The offending command is skipped.
	ErrResourceNotFound = errors.New("sdfcanvas: resource not found")

	// ErrCapacityExceeded reports that the per-frame primitive ceiling was
	// reached. Remaining primitives are truncated.
	ErrCapacityExceeded = errors.New("sdfcanvas: capacity exceeded")

	// ErrInvalidScale is returned when a canvas is given a non-positive scale.
	ErrInvalidScale = errors.New("sdfcanvas: scale factor must be positive")

	// ErrShortBuffer is returned when decoding truncated binary data.
	ErrShortBuffer = errors.New("sdfcanvas: short buffer")
)

// ResourceKind names the kind of external resource a reference points to.
type ResourceKind string

// Resource kinds.
const (
	ResourceImage ResourceKind = "image"
	ResourceFont  ResourceKind = "font"
)

// ResourceError reports a lookup failure for a specific reference.
// It matches ErrResourceNotFound with errors.Is.
type ResourceError struct {
	Kind ResourceKind
	Ref  uint32
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("sdfcanvas: %s %d not found", e.Kind, e.Ref)
}

// Unwrap returns ErrResourceNotFound.
func (e *ResourceError) Unwrap() error { return ErrResourceNotFound }

// NoCommand is the Command index of diagnostics not tied to one command.
const NoCommand = -1

// Diagnostic is a recoverable, per-command problem surfaced to the caller.
type Diagnostic struct {
	// Err is the underlying error; it wraps one of the package sentinels.
	Err error
	// Command is the draw call index in recording order for recorder
	// diagnostics, the index into Canvas.Commands for compile diagnostics,
	// or NoCommand.
	Command int
	// Detail is a short human-readable description.
	Detail string
}

func (d Diagnostic) Error() string {
	if d.Command == NoCommand {
		return fmt.Sprintf("%v: %s", d.Err, d.Detail)
	}
	return fmt.Sprintf("command %d: %v: %s", d.Command, d.Err, d.Detail)
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error { return d.Err }

// MaxDiagnostics bounds the diagnostics kept per frame.
const MaxDiagnostics = 256

// diagnostics collects per-frame diagnostics up to MaxDiagnostics.
type diagnostics struct {
	list    []Diagnostic
	dropped int
}

func (d *diagnostics) add(err error, cmd int, format string, args ...any) {
	if len(d.list) >= MaxDiagnostics {
		d.dropped++
		return
	}
	diag := Diagnostic{Err: err, Command: cmd, Detail: fmt.Sprintf(format, args...)}
	d.list = append(d.list, diag)
	Logger().Warn("sdfcanvas: draw command diagnostic",
		"command", cmd, "err", err, "detail", diag.Detail)
}

func (d *diagnostics) reset() {
	d.list = d.list[:0]
	d.dropped = 0
}
