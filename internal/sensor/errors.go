package sensor

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when there is not enough context to resolve
// a frame yet (no dataset loaded, no sensor selected, no index). Callers
// skip the update; it is not an application error.
var ErrMissingInput = errors.New("missing input")

// ErrMalformedMetadata is returned when a sensor's metadata entry is not
// an ordered timestamp sequence.
var ErrMalformedMetadata = errors.New("malformed sensor metadata")

// ErrIndexOutOfRange is matched by *IndexOutOfRangeError.
var ErrIndexOutOfRange = errors.New("frame index out of range")

// ErrNotFound is returned when no frame is stored for a sensor at a
// timestamp. Frames may simply not have arrived yet.
var ErrNotFound = errors.New("frame not found")

// IndexOutOfRangeError carries the valid index range for display.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("frame index %d out of range: sensor has no frames", e.Index)
	}
	return fmt.Sprintf("frame index %d out of range [0, %d]", e.Index, e.Len-1)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// ValidRange returns the inclusive index bounds. ok is false when the
// sequence is empty and no index is valid.
func (e *IndexOutOfRangeError) ValidRange() (lo, hi int, ok bool) {
	if e.Len == 0 {
		return 0, 0, false
	}
	return 0, e.Len - 1, true
}
