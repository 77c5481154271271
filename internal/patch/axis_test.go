package patch

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/reprojection.view/internal/pose"
)

func TestBuildAxisUpdate(t *testing.T) {
	origin := r3.Vec{X: 1, Y: 2, Z: 3}
	end := r3.Vec{X: 1.5, Y: 2, Z: 3}

	tests := []struct {
		axis  pose.AxisID
		trace int
	}{
		{pose.AxisX, 0},
		{pose.AxisY, 1},
		{pose.AxisZ, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.axis), func(t *testing.T) {
			op, err := BuildAxisUpdate(origin, end, tt.axis)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if op.Kind != KindAxis {
				t.Errorf("kind = %s, want axis", op.Kind)
			}

			want := []Assignment{
				{Path: DataPath(tt.trace, "x"), Value: []float64{1, 1.5}},
				{Path: DataPath(tt.trace, "y"), Value: []float64{2, 2}},
				{Path: DataPath(tt.trace, "z"), Value: []float64{3, 3}},
			}
			if diff := cmp.Diff(want, op.Assignments); diff != "" {
				t.Errorf("assignments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildAxisUpdate_InvalidAxis(t *testing.T) {
	_, err := BuildAxisUpdate(r3.Vec{}, r3.Vec{X: 1}, "w")
	if !errors.Is(err, pose.ErrInvalidAxisID) {
		t.Fatalf("expected ErrInvalidAxisID, got %v", err)
	}
}

func TestBuildGizmoUpdate(t *testing.T) {
	rot := pose.ToRotationMatrix(pose.AxisAngle{Z: math.Pi / 2})
	op := BuildGizmoUpdate(r3.Vec{}, rot, 2)

	wantPaths := []string{
		"data.0.x", "data.0.y", "data.0.z",
		"data.1.x", "data.1.y", "data.1.z",
		"data.2.x", "data.2.y", "data.2.z",
	}
	if diff := cmp.Diff(wantPaths, op.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	// x axis rotated onto +y.
	xs, _ := op.Get("data.0.x")
	ys, _ := op.Get("data.0.y")
	gotX := xs.([]float64)
	gotY := ys.([]float64)
	if math.Abs(gotX[1]) > 1e-12 || math.Abs(gotY[1]-2) > 1e-12 {
		t.Errorf("x axis endpoint = (%g, %g), want (0, 2)", gotX[1], gotY[1])
	}
}

func TestOp_Merge(t *testing.T) {
	a, _ := BuildAxisUpdate(r3.Vec{}, r3.Vec{X: 1}, pose.AxisX)
	b, _ := BuildAxisUpdate(r3.Vec{}, r3.Vec{Y: 1}, pose.AxisY)

	m, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(m.Assignments) != 6 {
		t.Errorf("merged %d assignments, want 6", len(m.Assignments))
	}
	if len(a.Assignments) != 3 {
		t.Error("Merge modified its receiver")
	}

	if _, err := a.Merge(BuildCursorUpdate(0, 0)); err == nil {
		t.Error("expected error merging different kinds")
	}
}
