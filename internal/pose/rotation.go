package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the rotation magnitude below which a rotation is treated as
// the identity.
const Epsilon = 1e-8

// AxisAngle is a rotation vector: the direction is the axis and the norm
// is the angle in radians.
type AxisAngle = r3.Vec

// RotationMatrix is a row-major 3×3 orthonormal matrix.
type RotationMatrix [3][3]float64

// Identity returns the identity rotation.
func Identity() RotationMatrix {
	return RotationMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// ToRotationMatrix builds the rotation matrix for aa with Rodrigues'
// formula. Rotations smaller than Epsilon return the identity.
func ToRotationMatrix(aa AxisAngle) RotationMatrix {
	theta := r3.Norm(aa)
	if theta < Epsilon {
		return Identity()
	}

	kx := aa.X / theta
	ky := aa.Y / theta
	kz := aa.Z / theta

	c := math.Cos(theta)
	s := math.Sin(theta)
	v := 1 - c

	return RotationMatrix{
		{kx*kx*v + c, kx*ky*v - kz*s, kx*kz*v + ky*s},
		{ky*kx*v + kz*s, ky*ky*v + c, ky*kz*v - kx*s},
		{kz*kx*v - ky*s, kz*ky*v + kx*s, kz*kz*v + c},
	}
}

// Col returns column i (0, 1 or 2).
func (m RotationMatrix) Col(i int) r3.Vec {
	return r3.Vec{X: m[0][i], Y: m[1][i], Z: m[2][i]}
}

// Transpose returns mᵀ, which is also m⁻¹ for a rotation.
func (m RotationMatrix) Transpose() RotationMatrix {
	var t RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

// Apply returns m·p.
func (m RotationMatrix) Apply(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z,
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z,
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z,
	}
}

// Mul returns m·n.
func (m RotationMatrix) Mul(n RotationMatrix) RotationMatrix {
	var d mat.Dense
	d.Mul(m.Dense(), n.Dense())
	return fromDense(&d)
}

// Dense returns a gonum copy of m.
func (m RotationMatrix) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

func fromDense(d mat.Matrix) RotationMatrix {
	var m RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

// AxisAngle returns the rotation vector of m (the SO(3) log map), with the
// angle in [0, π].
func (m RotationMatrix) AxisAngle() AxisAngle {
	w := r3.Vec{
		X: m[2][1] - m[1][2],
		Y: m[0][2] - m[2][0],
		Z: m[1][0] - m[0][1],
	}
	sinTheta := r3.Norm(w) / 2
	cosTheta := (m[0][0] + m[1][1] + m[2][2] - 1) / 2
	theta := math.Atan2(sinTheta, cosTheta)

	if theta < Epsilon {
		return AxisAngle{}
	}

	// Near π the antisymmetric part vanishes; recover the axis from the
	// symmetric part R = 2kkᵀ - I instead.
	if math.Pi-theta < 1e-6 {
		i := 0
		for j := 1; j < 3; j++ {
			if m[j][j] > m[i][i] {
				i = j
			}
		}
		var k [3]float64
		k[i] = math.Sqrt(math.Max(0, (m[i][i]+1)/2))
		for j := 0; j < 3; j++ {
			if j != i {
				k[j] = (m[i][j] + m[j][i]) / (4 * k[i])
			}
		}
		axis := r3.Unit(r3.Vec{X: k[0], Y: k[1], Z: k[2]})
		return r3.Scale(theta, axis)
	}

	return r3.Scale(theta/(2*sinTheta), w)
}
