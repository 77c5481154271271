package pose

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Se3 is a rigid transform stored as [rx, ry, rz, x, y, z]: an axis-angle
// rotation followed by a translation.
type Se3 [6]float64

// NewSe3 builds an Se3 from its rotation and translation parts.
func NewSe3(rot AxisAngle, t r3.Vec) Se3 {
	return Se3{rot.X, rot.Y, rot.Z, t.X, t.Y, t.Z}
}

// Rotation returns the axis-angle part.
func (p Se3) Rotation() AxisAngle {
	return AxisAngle{X: p[0], Y: p[1], Z: p[2]}
}

// Translation returns the translation part.
func (p Se3) Translation() r3.Vec {
	return r3.Vec{X: p[3], Y: p[4], Z: p[5]}
}

// Matrix returns the 4×4 homogeneous form [R t; 0 1].
func (p Se3) Matrix() *mat.Dense {
	rot := ToRotationMatrix(p.Rotation())
	t := p.Translation()
	return mat.NewDense(4, 4, []float64{
		rot[0][0], rot[0][1], rot[0][2], t.X,
		rot[1][0], rot[1][1], rot[1][2], t.Y,
		rot[2][0], rot[2][1], rot[2][2], t.Z,
		0, 0, 0, 1,
	})
}

// Invert returns the inverse transform: rotation Rᵀ, translation -Rᵀt.
//
// Calibration stores camera poses as tf_co_w (world points into the
// camera optical frame); world-referenced views need tf_w_co.
func (p Se3) Invert() Se3 {
	rotT := ToRotationMatrix(p.Rotation()).Transpose()
	t := p.Translation()

	var tInv mat.VecDense
	tInv.MulVec(rotT.Dense(), mat.NewVecDense(3, []float64{t.X, t.Y, t.Z}))
	tInv.ScaleVec(-1, &tInv)

	return NewSe3(rotT.AxisAngle(), r3.Vec{X: tInv.AtVec(0), Y: tInv.AtVec(1), Z: tInv.AtVec(2)})
}

// Apply transforms a point: R·p + t.
func (p Se3) Apply(pt r3.Vec) r3.Vec {
	return r3.Add(ToRotationMatrix(p.Rotation()).Apply(pt), p.Translation())
}
