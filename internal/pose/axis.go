package pose

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidAxisID is returned for an axis name other than x, y or z. It
// signals a caller bug, not bad data.
var ErrInvalidAxisID = errors.New("invalid axis id")

// AxisID selects one basis direction of a rotation.
type AxisID string

const (
	AxisX AxisID = "x"
	AxisY AxisID = "y"
	AxisZ AxisID = "z"
)

// Axes lists the gizmo axes in column order.
var Axes = [3]AxisID{AxisX, AxisY, AxisZ}

// Index returns the matrix column (and gizmo trace) for the axis.
func (a AxisID) Index() (int, error) {
	switch a {
	case AxisX:
		return 0, nil
	case AxisY:
		return 1, nil
	case AxisZ:
		return 2, nil
	}
	return 0, fmt.Errorf("%w %q: must be 'x', 'y', or 'z'", ErrInvalidAxisID, string(a))
}

// ParseAxisID validates a raw axis name.
func ParseAxisID(s string) (AxisID, error) {
	a := AxisID(s)
	if _, err := a.Index(); err != nil {
		return "", err
	}
	return a, nil
}

// AxisEndpoint returns origin displaced by scale along the rotated basis
// direction selected by axis. scale is not clamped.
func AxisEndpoint(origin r3.Vec, rot RotationMatrix, axis AxisID, scale float64) (r3.Vec, error) {
	col, err := axis.Index()
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Add(origin, r3.Scale(scale, rot.Col(col))), nil
}

// Gizmo returns the endpoints of the x, y and z axis lines.
func Gizmo(origin r3.Vec, rot RotationMatrix, scale float64) [3]r3.Vec {
	var ends [3]r3.Vec
	for i := range Axes {
		ends[i] = r3.Add(origin, r3.Scale(scale, rot.Col(i)))
	}
	return ends
}
