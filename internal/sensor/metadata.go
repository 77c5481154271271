package sensor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type names a family of sensors sharing a measurement layout.
type Type string

const (
	Camera Type = "camera"
	Imu    Type = "imu"
)

// Metadata maps sensor type → sensor name → encoded timestamp sequence.
//
// The sequences stay encoded the way the loader publishes them; they are
// decoded on every lookup so an entry that is not a sequence surfaces as
// ErrMalformedMetadata instead of being coerced.
type Metadata map[Type]map[string]json.RawMessage

// Set encodes ts as the timestamp sequence for a sensor.
func (m Metadata) Set(sensorType Type, sensorName string, ts []Timestamp) error {
	if ts == nil {
		ts = []Timestamp{}
	}
	raw, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("failed to encode timestamps for %s/%s: %w", sensorType, sensorName, err)
	}
	if m[sensorType] == nil {
		m[sensorType] = make(map[string]json.RawMessage)
	}
	m[sensorType][sensorName] = raw
	return nil
}

// Sensors returns the names registered under a sensor type.
func (m Metadata) Sensors(sensorType Type) []string {
	names := make([]string, 0, len(m[sensorType]))
	for name := range m[sensorType] {
		names = append(names, name)
	}
	return names
}

// Timestamps decodes the sequence for one sensor. A missing or null entry
// yields ErrMissingInput; anything other than an array of integers yields
// ErrMalformedMetadata.
func (m Metadata) Timestamps(sensorType Type, sensorName string) ([]Timestamp, error) {
	byName, ok := m[sensorType]
	if !ok {
		return nil, fmt.Errorf("no %s sensors: %w", sensorType, ErrMissingInput)
	}
	raw, ok := byName[sensorName]
	if !ok {
		return nil, fmt.Errorf("no %s sensor %q: %w", sensorType, sensorName, ErrMissingInput)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%s/%s has no timestamps: %w", sensorType, sensorName, ErrMissingInput)
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%s/%s: expected timestamp array: %w", sensorType, sensorName, ErrMalformedMetadata)
	}

	var ts []Timestamp
	if err := json.Unmarshal(trimmed, &ts); err != nil {
		return nil, fmt.Errorf("%s/%s: %v: %w", sensorType, sensorName, err, ErrMalformedMetadata)
	}
	return ts, nil
}
