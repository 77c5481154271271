package sensor

import (
	"bytes"
	"fmt"
	"strconv"
)

// Timestamp is a sensor sample time in nanoseconds since the Unix epoch.
type Timestamp int64

// String returns the decimal representation.
func (t Timestamp) String() string {
	return strconv.FormatInt(int64(t), 10)
}

// MarshalJSON encodes the timestamp as a decimal string so browser-side
// consumers that parse JSON numbers as doubles keep every digit.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, t.String()), nil
}

// UnmarshalJSON accepts a JSON integer or a decimal string. Fractions and
// exponents are rejected rather than rounded.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := bytes.TrimSpace(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unq, err := strconv.Unquote(string(s))
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", s, err)
		}
		s = []byte(unq)
	}
	v, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	*t = Timestamp(v)
	return nil
}
