// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package aff

// Matrix deals with 3x3 matrices, used here only as an intermediate when
// converting between a quaternion and an orthonormal basis (SnapUpright,
// Realign, Q.SetM). Trimmed from the teacher's vu/math/lin matrix package,
// which also carried a 4x4 M4 type plus the camera/projection surface
// (Ortho, Persp, PerspInv, translate/scale-matrix helpers, transpose,
// inverse, cofactors) used to hand matrices to a GPU — this domain never
// builds a camera or projection matrix, so none of that survived the trim.
//
// Row or Column Major order? No matter the convention, the end result of a
// vector point (x, y, z) multiplied with a rotation matrix must be:
//
//	x' = x*Xx + y*Yx + z*Zx
//	y' = x*Xy + y*Yy + z*Zy
//	z' = x*Xz + y*Yz + z*Zz
//
// Where x, y, z is the original vector and X, Y, Z are the three axes of the
// coordinate system.

// M3 is a 3x3 matrix where the matrix elements are individually addressable.
type M3 struct {
	Xx, Xy, Xz float64 // indices 0, 1, 2  [00, 01, 02]  X-Axis
	Yx, Yy, Yz float64 // indices 3, 4, 5  [10, 11, 12]  Y-Axis
	Zx, Zy, Zz float64 // indices 6, 7, 8  [20, 21, 22]  Z-Axis
}

// SetQ converts a quaternion rotation representation to a matrix
// rotation representation. SetQ updates matrix m to be the rotation
// matrix representing the rotation described by unit-quaternion q.
//
//	                      [ mXx mXy mXz ]
//	[ qx qy qz qw ] => [ mYx mYy mYz ]
//	                      [ mZx mZy mZz ]
//
// The parameter q is unchanged. The updated matrix m is returned.
func (m *M3) SetQ(q *Q) *M3 {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z
	m.Xx, m.Xy, m.Xz = 1-2*(yy+zz), 2*(xy+wz), 2*(xz-wy)
	m.Yx, m.Yy, m.Yz = 2*(xy-wz), 1-2*(xx+zz), 2*(yz+wx)
	m.Zx, m.Zy, m.Zz = 2*(xz+wy), 2*(yz-wx), 1-2*(xx+yy)
	return m
}

// ============================================================================
// convenience functions for allocating matrices. Nothing else should allocate.

// NewM3I creates a new 3x3 identity matrix.
//
//	[ 1 0 0 ]    [ Xx Xy Xz ]
//	[ 0 1 0 ] => [ Yx Yy Yz ]
//	[ 0 0 1 ]    [ Zx Zy Zz ]
func NewM3I() *M3 { return &M3{Xx: 1, Yy: 1, Zz: 1} }
