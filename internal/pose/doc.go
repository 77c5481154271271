// Package pose converts axis-angle rotations into the geometry a 3D pose
// view needs: rotation matrices, the endpoints of the three drawn axis
// lines, and SE(3) inversion between camera and world frames.
//
// Vectors are gonum spatial/r3 values. Matrices are row-major 3×3 arrays;
// column i of a rotation matrix is the rotated i-th basis direction.
package pose
