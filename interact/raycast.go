package interact

import (
	"math"

	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/overlay"
)

// Ray is a world-space ray cast from a pointer's pose along its local -Z
// axis.
type Ray struct {
	Origin *aff.V3
	Dir    *aff.V3 // normalized
}

// RayFromPose builds the ray a pointer casts this frame.
func RayFromPose(pose *aff.Transform) Ray {
	dir := aff.NewV3S(0, 0, -1)
	dir.MultvQ(dir, pose.Rot)
	dir.Unit()
	return Ray{Origin: aff.NewV3().Set(pose.Loc), Dir: dir}
}

// Hit is the result of a successful ray test against one overlay:
// spec.md §4.2.1 "(distance, local-2D)".
type Hit struct {
	OverlayID uint64
	Dist      float64
	LocalU    float64
	LocalV    float64
}

// shapeKind selects which cast function applies to an overlay, mirroring
// physics/caster.go's map[int]cast keyed by shape, generalized from
// {plane, sphere} to {plane, cylinder}.
type shapeKind int

const (
	shapePlane shapeKind = iota
	shapeCylinder
)

// castFn mirrors physics/caster.go's cast function type: given a ray and
// an overlay, report whether it was hit, at what distance, and the
// overlay-local 2D hit coordinates.
type castFn func(r Ray, o *overlay.Overlay) (t float64, localU, localV float64, hit bool)

var castAlgorithms = map[shapeKind]castFn{
	shapePlane:    castRayPlane,
	shapeCylinder: castRayCylinder,
}

func shapeOf(o *overlay.Overlay) shapeKind {
	if o.Placement.HasCurvature() {
		return shapeCylinder
	}
	return shapePlane
}

// castRayPlane implements spec.md §4.2.1's plane branch.
func castRayPlane(r Ray, o *overlay.Overlay) (t, localU, localV float64, hit bool) {
	tr := o.Placement.Transform
	normal := aff.NewV3S(0, 0, -1)
	normal.MultvQ(normal, tr.Rot)

	denom := normal.Dot(r.Dir)
	if aff.AeqZ(denom) {
		return 0, 0, 0, false
	}
	toPlane := aff.NewV3().Sub(tr.Loc, r.Origin)
	t = normal.Dot(toPlane) / denom
	if t < 0 {
		// the plane lies behind the ray origin: t stays negative and CastAll
		// drops the hit. A hit on the plane's back face is not told apart
		// from a front-face hit.
		t = -math.Abs(t)
	}

	world := aff.NewV3().Scale(r.Dir, t)
	world.Add(world, r.Origin)

	rigid := tr.Rigid()
	local := aff.NewV3().Set(world)
	rigid.Inv(local)

	sx, sy := tr.Scale.X, tr.Scale.Y
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return t, local.X / sx, local.Y / sy, true
}

// castRayCylinder implements spec.md §4.2.1's cylinder branch.
func castRayCylinder(r Ray, o *overlay.Overlay) (t, localU, localV float64, hit bool) {
	tr := o.Placement.Transform
	curvature := o.Placement.Curvature
	widthScale := tr.Scale.X
	if widthScale == 0 {
		widthScale = 1
	}
	arcLen := widthScale
	radius := arcLen / (2 * math.Pi * curvature)

	rigid := tr.Rigid()
	localOrigin := aff.NewV3().Set(r.Origin)
	rigid.Inv(localOrigin)
	localDir := rotateInverse(r.Dir, tr.Rot)

	// shift so the cylinder axis sits at local X=0,Z=radius (i.e. ray
	// origin shifted by radius along -Z in the cylinder's own frame).
	ox, oz := localOrigin.X, localOrigin.Z+radius
	dx, dz := localDir.X, localDir.Z

	a := dx*dx + dz*dz
	if aff.AeqZ(a) {
		return 0, 0, 0, false
	}
	b := 2 * (ox*dx + oz*dz)
	c := ox*ox + oz*oz - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, 0, false
	}
	sq := math.Sqrt(disc)
	t1 := (-b + sq) / (2 * a)
	t2 := (-b - sq) / (2 * a)
	tFar := math.Max(t1, t2)

	xLocal := ox + tFar*dx
	zLocal := oz + tFar*dz - radius
	if zLocal > 0 {
		return 0, 0, 0, false
	}

	yLocal := localOrigin.Y + tFar*localDir.Y

	normal := aff.NewV3S(xLocal, 0, zLocal+radius)
	if normal.Len() > aff.Epsilon {
		normal.Unit()
	}
	rayDirAtHit := aff.NewV3S(dx, localDir.Y, dz)
	if rayDirAtHit.Dot(normal) < 0 && tFar > 0 {
		tFar = -tFar
	}

	angleRange := arcLen / radius
	u := math.Asin(clampUnit(xLocal/radius)) / angleRange
	v := yLocal / arcLen
	return tFar, u, v, true
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// rotateInverse rotates v by the inverse of q.
func rotateInverse(v *aff.V3, q *aff.Q) *aff.V3 {
	inv := aff.NewQ().Inv(q)
	out := aff.NewV3().Set(v)
	out.MultvQ(out, inv)
	return out
}

// CandidateOverlays is the set of overlays eligible for raycast this
// frame: every want_visible overlay, per spec.md §4.2 step 2.
func CandidateOverlays(c *overlay.Container) []*overlay.Overlay {
	var out []*overlay.Overlay
	c.Each(func(o *overlay.Overlay) {
		if o.WantVisible {
			out = append(out, o)
		}
	})
	return out
}

// CastAll ray-tests r against every candidate, discarding misses and
// negative-t hits (a plane behind the ray origin, or a cylinder surface
// struck from outside), and returns the survivors sorted by ascending
// distance, implementing the "collect hits, sort by ascending distance"
// step of spec.md §4.2.1.
func CastAll(r Ray, candidates []*overlay.Overlay) []Hit {
	var hits []Hit
	for _, o := range candidates {
		fn := castAlgorithms[shapeOf(o)]
		t, u, v, ok := fn(r, o)
		if !ok || t < 0 {
			continue
		}
		hits = append(hits, Hit{OverlayID: o.ID, Dist: t, LocalU: u, LocalV: v})
	}
	// insertion sort: hit counts per frame are small (a handful of overlays).
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Dist < hits[j-1].Dist; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	return hits
}

// ContentUV maps a Hit's local 2D coordinates through the overlay's
// interaction transform, reporting whether the result lies in [0,1]².
func ContentUV(o *overlay.Overlay, h Hit) (u, v float64, inside bool) {
	u, v = o.Placement.Hit.Apply(h.LocalU, h.LocalV)
	inside = u >= 0 && u <= 1 && v >= 0 && v <= 1
	return u, v, inside
}
