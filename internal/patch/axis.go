package patch

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/reprojection.view/internal/pose"
)

// BuildAxisUpdate moves the line trace of one gizmo axis to run from
// origin to endpoint. The trace index is the axis column (x=0, y=1, z=2).
func BuildAxisUpdate(origin, endpoint r3.Vec, axis pose.AxisID) (Op, error) {
	trace, err := axis.Index()
	if err != nil {
		return Op{}, err
	}

	op := Op{Kind: KindAxis}
	op.assign(DataPath(trace, "x"), []float64{origin.X, endpoint.X})
	op.assign(DataPath(trace, "y"), []float64{origin.Y, endpoint.Y})
	op.assign(DataPath(trace, "z"), []float64{origin.Z, endpoint.Z})
	return op, nil
}

// BuildGizmoUpdate moves all three axis traces for a pose drawn at origin
// with orientation rot.
func BuildGizmoUpdate(origin r3.Vec, rot pose.RotationMatrix, scale float64) Op {
	ends := pose.Gizmo(origin, rot, scale)
	op := Op{Kind: KindAxis}
	for i, axis := range pose.Axes {
		// Axes holds only valid ids.
		a, _ := BuildAxisUpdate(origin, ends[i], axis)
		op.Assignments = append(op.Assignments, a.Assignments...)
	}
	return op
}
