// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package aff

import "math"

// T is a 3D transform for rotation and translation. It excludes scaling and
// shear information. T is used as a simplification and optimization instead
// of keeping all transform information in a 4x4 matrix.
//
// T supports linear algebra operations that are similar to those supported
// by V3, M3, and Q.  The main ones are:
//      Multiply two transforms together to produce a composite transform.
//      Apply a transform or inverse transform to a vector.
type T struct {
	Loc *V3 // Location (translation, origin).
	Rot *Q  // Rotation (direction, orientation).
}

// Equals (==) returns true of all elements of transform t have the same value as
// the corresponding element of transform a.
func (t *T) Eq(a *T) bool { return t.Rot.Eq(a.Rot) && t.Loc.Eq(a.Loc) }

// Aeq (~=) almost-equals returns true if all the elements in transform t have
// essentially the same value as the corresponding elements in transform a.
// Used where a direct comparison is unlikely to return true due to floats.
func (t *T) Aeq(a *T) bool { return t.Rot.Aeq(a.Rot) && t.Loc.Aeq(a.Loc) }

// Set (=, copy, clone) assigns all the elements values from transform a to the
// corresponding element values in transform t. The updated transform t is returned.
func (t *T) Set(a *T) *T {
	t.Loc.Set(a.Loc)
	t.Rot.Set(a.Rot)
	return t
}

// SetI updates transform t to be the identity transform.
// The updated transform t is returned.
func (t *T) SetI() *T {
	t.Loc.SetS(0, 0, 0)
	t.Rot.Set(QI)
	return t
}

// SetVQ (=) sets the transform t based on the given quaternion rotation and
// translation location. The updated transform t is returned.
func (t *T) SetVQ(loc *V3, rot *Q) *T {
	t.Loc.Set(loc)
	t.Rot.Set(rot)
	return t
}

// SetAa updates transform t to have the rotation specified by the given
// axis and angle in radians. The updated transform t is returned.
func (t *T) SetAa(ax, ay, az, ang float64) *T {
	t.Rot.SetAa(ax, ay, az, ang)
	return t
}

// SetLoc updates transform t to have the location speccified  by lx, ly, lz.
// The updated transform t is returned.
func (t *T) SetLoc(lx, ly, lz float64) *T {
	t.Loc.X, t.Loc.Y, t.Loc.Z = lx, ly, lz
	return t
}

// SetRot updates transform t to have the rotation speccified  by x, y, z, w.
// The updated transform t is returned.
func (t *T) SetRot(x, y, z, w float64) *T {
	t.Rot.X, t.Rot.Y, t.Rot.Z, t.Rot.W = x, y, z, w
	return t
}

// Mult (*) updates the transform t to be the product of the
// transforms a and b. Transform t may be used as one or both of
// the input transforms. The updated transform t is returned.
func (t *T) Mult(a, b *T) *T {
	tx, ty, tz := t.Loc.GetS() // preserve original translation.
	t.Loc.MultvQ(b.Loc, a.Rot) // apply rotation to incoming translation.
	t.Loc.X, t.Loc.Y, t.Loc.Z = t.Loc.X+tx, t.Loc.Y+ty, t.Loc.Z+tz
	t.Rot.Mult(a.Rot, b.Rot)
	return t
}

// App applies its tranform to vector v. The updated vector v is returned.
func (t *T) App(v *V3) *V3 {
	v.MultvQ(v, t.Rot) // apply rotation.
	v.Add(v, t.Loc)    // apply translation.
	return v
}

// AppS applies transform t, rotation then translation, to input scalar
// vector (x,y,z) returning the transformed scalar vector (vx,vy,vz).
func (t *T) AppS(x, y, z float64) (vx, vy, vz float64) {
	vx, vy, vz = MultSQ(x, y, z, t.Rot)             // apply rotation.
	return vx + t.Loc.X, vy + t.Loc.Y, vz + t.Loc.Z // apply translation.
}

// AppR applies just the transform rotation to input vector (x,y,z)
// returning the rotated vector (vx,vy,vz)
func (t *T) AppR(x, y, z float64) (vx, vy, vz float64) {
	return MultSQ(x, y, z, t.Rot) // apply rotation.
}

// Inv updates vector v to be the inverse transform t applied
// to vector a.  The updated vector v is returned.
func (t *T) Inv(v *V3) *V3 {
	v.Sub(v, t.Loc)                            // apply inverse translation.
	ix, iy, iz := -t.Rot.X, -t.Rot.Y, -t.Rot.Z // apply inverse rotation.
	v.X, v.Y, v.Z = multSQ(v.X, v.Y, v.Z, ix, iy, iz, t.Rot.W)
	return v
}

// InvS applies the inverse transform t, inverse translation, then inverse
// rotation, to input vector (x,y,z) returning the transformed vector (vx,vy,vz).
func (t *T) InvS(x, y, z float64) (vx, vy, vz float64) {
	vx, vy, vz = x-t.Loc.X, y-t.Loc.Y, z-t.Loc.Z // apply inverse translation.
	ix, iy, iz := -t.Rot.X, -t.Rot.Y, -t.Rot.Z   // apply inverse rotation.
	return multSQ(vx, vy, vz, ix, iy, iz, t.Rot.W)
}

// Integrate updates transform t to be the linear integration of
// transform a with the given linear velocity linv, and angular velocity angv
// over the given amount of time dt. Transforms t and a must be distinct.
// The input vectors linv, angv are not changed.
// The updated transform t is returned.
//
// Based on bullet physics: btTransformUtil::integrateTransform.
func (t *T) Integrate(a *T, linv, angv *V3, dt float64) *T {

	// add interpolated linear velocity to current velocity.
	t.Loc.X = a.Loc.X + linv.X*dt
	t.Loc.Y = a.Loc.Y + linv.Y*dt
	t.Loc.Z = a.Loc.Z + linv.Z*dt

	// add interpolated angular velocity to current rotation. Google:
	//    "Practical Parameterization of Rotations Using the Exponential Map",
	//    F. Sebastian Grassia
	angularMotionLimit := 0.5 * HalfPi
	angLen := angv.Len()
	if angLen*dt > angularMotionLimit {
		angLen = angularMotionLimit / dt // limit the angular motion
	}
	fac := 0.0
	if angLen < 0.001 {
		// Taylor's expansions of sync function
		fac = 0.5*dt - dt*dt*dt*0.020833333333*angLen*angLen
	} else {
		fac = math.Sin(0.5*angLen*dt) / angLen
	}

	// apply s rotation to existing rotation r
	rx, ry, rz, rw := a.Rot.X, a.Rot.Y, a.Rot.Z, a.Rot.W
	sx, sy, sz, sw := angv.X*fac, angv.Y*fac, angv.Z*fac, math.Cos(angLen*dt*0.5)
	t.Rot.X = rw*sx + rx*sw - ry*sz + rz*sy
	t.Rot.Y = rw*sy + rx*sz + ry*sw - rz*sx
	t.Rot.Z = rw*sz - rx*sy + ry*sx + rz*sw
	t.Rot.W = rw*sw - rx*sx - ry*sy - rz*sz
	t.Rot.Unit()
	return t
}

// ============================================================================
// convenience functions for allocating transforms. Nothing else should allocate.

// NewT creates and returns a transform at the origin with no rotation.
func NewT() *T {
	return &T{&V3{}, &Q{0, 0, 0, 1}}
}

// ============================================================================
// Transform adds non-uniform scale on top of T. Overlays are placed with a
// rotation, a per-axis scale, and a translation, so the engine needs the
// scale carried alongside the rigid transform rather than folded away.

// Transform is a rotation + non-uniform scale + translation. It composes as
// scale-then-rotate-then-translate (v' = v*S*R*T).
type Transform struct {
	Loc   *V3 // translation (origin).
	Rot   *Q  // rotation (direction, orientation).
	Scale *V3 // per-axis scale, defaults to (1,1,1).
}

// NewTransform creates an identity transform: no rotation, unit scale,
// origin location.
func NewTransform() *Transform {
	return &Transform{Loc: &V3{}, Rot: &Q{0, 0, 0, 1}, Scale: &V3{1, 1, 1}}
}

// Eq (==) returns true if all fields of t have the same value as the
// corresponding fields of a.
func (t *Transform) Eq(a *Transform) bool {
	return t.Rot.Eq(a.Rot) && t.Loc.Eq(a.Loc) && t.Scale.Eq(a.Scale)
}

// Aeq (~=) almost-equals, field by field, within float tolerance.
func (t *Transform) Aeq(a *Transform) bool {
	return t.Rot.Aeq(a.Rot) && t.Loc.Aeq(a.Loc) && t.Scale.Aeq(a.Scale)
}

// Set (=, copy) assigns the field values of a to t. The updated t is returned.
func (t *Transform) Set(a *Transform) *Transform {
	t.Loc.Set(a.Loc)
	t.Rot.Set(a.Rot)
	t.Scale.Set(a.Scale)
	return t
}

// Rigid drops the scale and returns the rotation+translation-only transform.
func (t *Transform) Rigid() *T { return &T{Loc: NewV3().Set(t.Loc), Rot: NewQ().Set(t.Rot)} }

// SnapUpright recomputes a world-anchor basis from an HMD pose: it preserves
// the HMD's forward (view) direction but forces the resulting X axis
// perpendicular to world up, unless the HMD is looking nearly straight up or
// down, in which case the HMD's own up vector is kept to avoid a degenerate
// cross product. up is the world up axis (normalized). The returned
// quaternion is a fresh orthonormal rotation; hmd is not modified.
func SnapUpright(hmd *Q, up *V3) *Q {
	fwd := NewV3S(0, 0, -1)
	fwd.MultvQ(fwd, hmd)
	fwd.Unit()

	side := NewV3()
	side.Cross(fwd, up)
	if side.Len() < Epsilon {
		// near-vertical look direction: fall back to the HMD's own
		// up-axis so the basis stays well defined.
		hmdUp := NewV3S(0, 1, 0)
		hmdUp.MultvQ(hmdUp, hmd)
		side.Cross(fwd, hmdUp)
	}
	side.Unit()

	upAxis := NewV3()
	upAxis.Cross(side, fwd)
	upAxis.Unit()

	m := &M3{
		Xx: side.X, Xy: side.Y, Xz: side.Z,
		Yx: upAxis.X, Yy: upAxis.Y, Yz: upAxis.Z,
		Zx: -fwd.X, Zy: -fwd.Y, Zz: -fwd.Z,
	}
	return NewQ().SetM(m)
}

// Realign computes the rotation an overlay takes when grabbed and pointed
// back at the HMD: z' points from the overlay towards the HMD, y' comes from
// world up (or the HMD's own up axis if the overlay is directly above or
// below the HMD), x' completes the right-handed, re-orthogonalized basis.
// A fixed 180 degree yaw is then applied (overlays face the user, they don't
// mirror them) followed by the overlay's own spawn rotation offset. Only
// rotation changes; callers keep the existing scale and translation.
func Realign(overlayLoc, hmdLoc *V3, up *V3, spawnRotation *Q) *Q {
	zAxis := NewV3().Sub(hmdLoc, overlayLoc)
	zAxis.Unit()

	yAxis := NewV3().Set(up)
	xAxis := NewV3().Cross(yAxis, zAxis)
	if xAxis.Len() < Epsilon {
		// overlay is directly above/below the HMD: world up is
		// parallel to the view direction, so derive the basis from a
		// different reference instead.
		yAxis.SetS(0, 0, 1)
		xAxis.Cross(yAxis, zAxis)
	}
	xAxis.Unit()
	yAxis.Cross(zAxis, xAxis)
	yAxis.Unit()

	m := &M3{
		Xx: xAxis.X, Xy: xAxis.Y, Xz: xAxis.Z,
		Yx: yAxis.X, Yy: yAxis.Y, Yz: yAxis.Z,
		Zx: zAxis.X, Zy: zAxis.Y, Zz: zAxis.Z,
	}
	rot := NewQ().SetM(m)

	yaw180 := NewQ().SetAa(0, 1, 0, PI)
	rot.Mult(rot, yaw180)
	if spawnRotation != nil {
		rot.Mult(rot, spawnRotation)
	}
	return rot.Unit()
}
