package sensor

import (
	"errors"
	"fmt"
)

// ResolveTimestamp maps a sample index to the timestamp it addresses.
//
// Failures, in checking order:
//   - ErrMissingInput: md is nil, sensorType/sensorName empty, frameIdx nil,
//     or the sensor has no entry yet.
//   - ErrMalformedMetadata: the entry is not a timestamp sequence.
//   - *IndexOutOfRangeError: frameIdx is outside [0, len).
//
// On success the whole sequence is returned as well so callers can do
// further lookups without decoding it again.
func ResolveTimestamp(md Metadata, sensorType Type, sensorName string, frameIdx *int) (Timestamp, []Timestamp, error) {
	if md == nil || sensorType == "" || sensorName == "" || frameIdx == nil {
		return 0, nil, ErrMissingInput
	}

	ts, err := md.Timestamps(sensorType, sensorName)
	if err != nil {
		return 0, nil, err
	}

	idx := *frameIdx
	if idx < 0 || idx >= len(ts) {
		return 0, nil, &IndexOutOfRangeError{Index: idx, Len: len(ts)}
	}
	return ts[idx], ts, nil
}

// ResolveFrame returns the payload a sensor recorded at ts, or ErrNotFound
// when the store, the sensor, its frame map or the timestamp is absent.
func ResolveFrame[P any](store Store[P], sensorName string, ts Timestamp) (P, error) {
	var zero P
	if store == nil {
		return zero, ErrNotFound
	}
	sf := store[sensorName]
	if sf == nil || sf.Frames == nil {
		return zero, fmt.Errorf("sensor %q: %w", sensorName, ErrNotFound)
	}
	p, ok := sf.Frames[ts]
	if !ok {
		return zero, fmt.Errorf("sensor %q at %s: %w", sensorName, ts, ErrNotFound)
	}
	return p, nil
}

// IsTransient reports whether err only means "nothing to draw yet" and the
// caller should skip the update without telling the user.
func IsTransient(err error) bool {
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrNotFound)
}

// Resolver binds a metadata snapshot so one index can drive several
// synchronised sensor panels.
type Resolver struct {
	md Metadata
}

// NewResolver returns a Resolver over md. md is read, never modified.
func NewResolver(md Metadata) *Resolver {
	return &Resolver{md: md}
}

// Timestamp resolves frameIdx for one sensor.
func (r *Resolver) Timestamp(sensorType Type, sensorName string, frameIdx *int) (Timestamp, []Timestamp, error) {
	if r == nil {
		return 0, nil, ErrMissingInput
	}
	return ResolveTimestamp(r.md, sensorType, sensorName, frameIdx)
}

// Metadata returns the bound snapshot.
func (r *Resolver) Metadata() Metadata {
	if r == nil {
		return nil
	}
	return r.md
}

// FrameAt resolves the timestamp for frameIdx and then the frame stored in
// store at that timestamp.
func FrameAt[P any](r *Resolver, store Store[P], sensorType Type, sensorName string, frameIdx *int) (P, Timestamp, error) {
	var zero P
	ts, _, err := r.Timestamp(sensorType, sensorName, frameIdx)
	if err != nil {
		return zero, 0, err
	}
	p, err := ResolveFrame(store, sensorName, ts)
	if err != nil {
		return zero, ts, err
	}
	return p, ts, nil
}
