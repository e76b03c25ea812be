package xr

import (
	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/overlay"
)

// watchLatchCos is the cosine of the half-angle of the cone, centered on
// the HMD's forward axis, within which the head-anchored watch is allowed
// to be visible. spec.md §4.3 step 5 calls for "a configured angular
// range" without naming one; 20 degrees either side of dead-ahead (cos of
// 20deg) approximates the "glance down at your wrist" gesture this is
// modeling. Recorded as an Open Question decision in DESIGN.md.
const watchLatchCos = 0.9397

// autoMovement implements spec.md §4.3 step 5: an overlay anchored to a
// hand (and not currently paused by a grab) follows that hand's smoothed
// pose composed with its saved AnchorOffset; an overlay anchored to the
// head follows the HMD pose the same way, with the watch additionally
// gated by watchLatch so it only shows while the head is turned towards
// it.
func (l *Loop) autoMovement() {
	l.Overlays.Each(func(o *overlay.Overlay) {
		if o.PauseMovement {
			return
		}
		switch o.Anchor {
		case overlay.AnchorHandLeft:
			followAnchor(o, l.Input.Pointers[0].Pose)
		case overlay.AnchorHandRight:
			followAnchor(o, l.Input.Pointers[1].Pose)
		case overlay.AnchorHead:
			followAnchor(o, l.Input.HMD)
			if o.Name == "watch" {
				watchLatch(o, l.Input.HMD)
			}
		}
	})
}

// followAnchor sets o's transform to anchor composed with its saved local
// offset. AnchorOffset defaults to identity the first time an overlay
// follows an anchor with none set.
func followAnchor(o *overlay.Overlay, anchor *aff.Transform) {
	offset := o.AnchorOffset
	if offset == nil {
		offset = aff.NewTransform()
		o.AnchorOffset = offset
	}
	loc := aff.NewV3().Set(offset.Loc)
	loc.MultvQ(loc, anchor.Rot)
	loc.Add(loc, anchor.Loc)
	o.Placement.Transform.Loc.Set(loc)
	o.Placement.Transform.Rot.Mult(anchor.Rot, offset.Rot)
}

// watchLatch shows the watch only while the HMD's forward direction
// projects onto it within watchLatchCos, and hides it otherwise, the same way
// a real wrist display only catches your eye once you turn to look at it.
func watchLatch(o *overlay.Overlay, hmd *aff.Transform) {
	fwd := aff.NewV3S(0, 0, -1)
	fwd.MultvQ(fwd, hmd.Rot)
	toWatch := aff.NewV3().Sub(o.Placement.Transform.Loc, hmd.Loc)
	toWatch.Unit()
	o.WantVisible = fwd.Dot(toWatch) > watchLatchCos
}
