package sensor

// SensorFrames holds every frame recorded by one sensor, keyed by the
// exact timestamp.
type SensorFrames[P any] struct {
	Frames map[Timestamp]P
}

// Store maps sensor name → recorded frames. The payload type is owned by
// the loader and opaque here.
type Store[P any] map[string]*SensorFrames[P]

// Put records a payload, creating the sensor entry on first use.
func (s Store[P]) Put(sensorName string, ts Timestamp, payload P) {
	sf := s[sensorName]
	if sf == nil {
		sf = &SensorFrames[P]{}
		s[sensorName] = sf
	}
	if sf.Frames == nil {
		sf.Frames = make(map[Timestamp]P)
	}
	sf.Frames[ts] = payload
}

// Len returns the number of frames stored for a sensor.
func (s Store[P]) Len(sensorName string) int {
	sf := s[sensorName]
	if sf == nil {
		return 0
	}
	return len(sf.Frames)
}
