package echogrid

import (
	"errors"
	"fmt"
)

// Sentinel errors for fatal conditions. The run aborts on any of these.
var (
	// ErrNoChannels indicates a configuration without any acoustic channel.
	ErrNoChannels = errors.New("echogrid: no channels configured")

	// ErrMissingFile indicates a mandatory export file could not be found.
	ErrMissingFile = errors.New("echogrid: mandatory export file not found")

	// ErrEmptyFile indicates an export file with no data rows.
	ErrEmptyFile = errors.New("echogrid: empty export file")

	// ErrMissingHeader indicates an export file without a header line.
	ErrMissingHeader = errors.New("echogrid: missing header line")

	// ErrMissingColumn indicates a mandatory column absent from a header.
	ErrMissingColumn = errors.New("echogrid: missing mandatory column")

	// ErrIntervalOrder indicates the interval sequence went backwards
	// across worksheets, which a misconfigured source worksheet causes.
	ErrIntervalOrder = errors.New("echogrid: interval sequence out of order")

	// ErrNoPositionData indicates no usable latitude/longitude was found
	// anywhere, leaving nothing to compute spatial bounds from.
	ErrNoPositionData = errors.New("echogrid: no position data found")

	// ErrFinalized indicates an operation on a merger that already ran
	// its finalization pass.
	ErrFinalized = errors.New("echogrid: merger already finalized")

	// ErrNotFinalized indicates a grid consumer that requires the
	// finalization pass to have run first.
	ErrNotFinalized = errors.New("echogrid: grid not finalized")
)

// MissingColumnError reports a mandatory column absent from an export
// file's header. It unwraps to ErrMissingColumn.
type MissingColumnError struct {
	File   string
	Column string
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("echogrid: file %s: missing mandatory column %q", e.File, e.Column)
}

// Unwrap makes errors.Is(err, ErrMissingColumn) work.
func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// IntervalOrderError reports a worksheet whose interval range lies before
// the already accumulated timeline in a way the overlap resolution cannot
// explain. It unwraps to ErrIntervalOrder.
type IntervalOrderError struct {
	File       string
	AccumFirst int
	AccumLast  int
	NewFirst   int
	NewLast    int
}

// Error implements the error interface.
func (e *IntervalOrderError) Error() string {
	return fmt.Sprintf("echogrid: file %s: intervals %d-%d precede accumulated range %d-%d",
		e.File, e.NewFirst, e.NewLast, e.AccumFirst, e.AccumLast)
}

// Unwrap makes errors.Is(err, ErrIntervalOrder) work.
func (e *IntervalOrderError) Unwrap() error {
	return ErrIntervalOrder
}
