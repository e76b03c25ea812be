package overlay

import "github.com/galister/overlayd/math/aff"

// WorldAnchor is the single affine shared by all AnchorWorld overlays
// (spec.md §3 "World anchor"). It persists across sessions via on-disk
// config; this package only holds the in-memory value and the recompute
// rule, persistence is the config package's job.
type WorldAnchor struct {
	Transform *aff.Transform
	Grabbed   bool // true while a pointer holds grab_anchor.
}

// NewWorldAnchor returns an identity-placed anchor.
func NewWorldAnchor() *WorldAnchor {
	return &WorldAnchor{Transform: aff.NewTransform()}
}

// Recompute implements spec.md §3: "snap_upright(hmd) * translate(0, 0,
// -1)", run on show-all-from-hidden. up is the world up axis.
func (a *WorldAnchor) Recompute(hmd *aff.Transform, up *aff.V3) {
	rot := aff.SnapUpright(hmd.Rot, up)

	// translate(0,0,-1) expressed in the HMD's own frame, then placed at
	// the HMD's location: loc = hmd.Loc + rot*(0,0,-1).
	fwd := aff.NewV3S(0, 0, -1)
	fwd.MultvQ(fwd, rot)

	loc := aff.NewV3().Add(hmd.Loc, fwd)

	a.Transform.Loc.Set(loc)
	a.Transform.Rot.Set(rot)
	a.Transform.Scale.SetS(1, 1, 1)
}
