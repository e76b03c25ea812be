package interact

import (
	"math"

	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/overlay"
)

// targetTransform resolves what a grab acts on per spec.md §4.2.2: the
// world anchor if the overlay is Anchored and we are not in edit mode and
// the other pointer isn't already anchor-grabbing; otherwise the
// overlay's own transform.
func (e *Engine) targetTransform(o *overlay.Overlay, otherGrabbed *GrabData) (*aff.Transform, bool) {
	isAnchorGrab := o.Anchor == overlay.AnchorWorld && !e.EditMode
	if isAnchorGrab && otherGrabbed != nil && otherGrabbed.GrabAnchor {
		isAnchorGrab = false
	}
	if isAnchorGrab {
		return e.Anchor.Transform, true
	}
	return o.Placement.Transform, false
}

// inverseCompose computes pose⁻¹ · target, spec.md §4.2.2's offset.
func inverseCompose(pose, target *aff.Transform) *aff.Transform {
	invRot := aff.NewQ().Inv(pose.Rot)
	diff := aff.NewV3().Sub(target.Loc, pose.Loc)
	diff.MultvQ(diff, invRot)
	rot := aff.NewQ().Mult(invRot, target.Rot)
	return &aff.Transform{Loc: diff, Rot: rot, Scale: aff.NewV3().Set(target.Scale)}
}

// composeTransform computes pose · offset, used both for the free-rotation
// grab-follow branch and for testable property 6.
func composeTransform(pose, offset *aff.Transform) *aff.Transform {
	rot := aff.NewQ().Mult(pose.Rot, offset.Rot)
	loc := aff.NewV3().Set(offset.Loc)
	loc.MultvQ(loc, pose.Rot)
	loc.Add(loc, pose.Loc)
	return &aff.Transform{Loc: loc, Rot: rot, Scale: aff.NewV3().Set(offset.Scale)}
}

// grabInitiate implements spec.md §4.2.2.
func (e *Engine) grabInitiate(p *Pointer, o *overlay.Overlay, other *Pointer) {
	target, grabAnchor := e.targetTransform(o, other.Interaction.Grabbed)
	offset := inverseCompose(p.Pose, target)
	p.Interaction.Grabbed = &GrabData{Offset: offset, GrabbedID: o.ID, GrabAnchor: grabAnchor}

	if grabAnchor {
		e.Anchor.Grabbed = true
	}
	if anchorOverlay := e.anchorOverlay(); anchorOverlay != nil {
		anchorOverlay.WantVisible = true
	}
	if e.Config.GrabHelpOverlayName != "" {
		if help := e.overlays.GetByName(e.Config.GrabHelpOverlayName); help != nil {
			help.WantVisible = true
			help.Anchor = handAnchor(p.Index)
		}
	}
}

func handAnchor(index int) overlay.Anchor {
	if index == 0 {
		return overlay.AnchorHandLeft
	}
	return overlay.AnchorHandRight
}

func (e *Engine) anchorOverlay() *overlay.Overlay {
	if e.overlays == nil {
		return nil
	}
	return e.overlays.GetByName("anchor")
}

// grabUpdate implements spec.md §4.2.3, run each frame while now.grab is
// held.
func (e *Engine) grabUpdate(p *Pointer, hmd *aff.Transform) {
	g := p.Interaction.Grabbed
	target := e.grabTarget(g)
	if target == nil {
		// referent destroyed mid-grab: spec.md §7 "Grab referent missing".
		p.Interaction.Grabbed = nil
		return
	}

	dist := aff.NewV3().Sub(target.Loc, p.Pose.Loc).Len()

	switch {
	case p.Now.Click:
		k := clamp(dist*0.25, 0.01, 2)
		factor := 1 + k*p.Analog.ScrollY
		newScale := aff.NewV3().Scale(target.Scale, factor)
		newScale.X = clamp(newScale.X, 0.1, 20)
		newScale.Y = clamp(newScale.Y, 0.1, 20)
		newScale.Z = clamp(newScale.Z, 0.1, 20)
		target.Scale.Set(newScale)
	case e.Config.AllowSliding && !math.IsNaN(p.Analog.ScrollY) && !math.IsInf(p.Analog.ScrollY, 0):
		delta := -p.Analog.ScrollY * 0.02 * dist
		zAxis := aff.NewV3S(0, 0, 1)
		zAxis.MultvQ(zAxis, g.Offset.Rot)
		push := aff.NewV3().Scale(zAxis, delta)
		newOffsetLoc := aff.NewV3().Add(g.Offset.Loc, push)
		if newOffsetLoc.Len() >= 0.05 {
			g.Offset.Loc.Set(newOffsetLoc)
		}
	}

	if p.Now.ClickModifierRight {
		composed := composeTransform(p.Pose, g.Offset)
		target.Loc.Set(composed.Loc)
		target.Rot.Set(composed.Rot)
	} else {
		loc := aff.NewV3().Set(g.Offset.Loc)
		loc.MultvQ(loc, p.Pose.Rot)
		loc.Add(loc, p.Pose.Loc)
		up := aff.NewV3S(0, 1, 0)
		rot := aff.Realign(loc, hmd.Loc, up, targetSpawnRotation(e, g))
		target.Loc.Set(loc)
		target.Rot.Set(rot)
	}

	if !g.GrabAnchor {
		if o := e.overlays.Get(g.GrabbedID); o != nil {
			o.PauseMovement = true
		}
	}
}

func targetSpawnRotation(e *Engine, g *GrabData) *aff.Q {
	if g.GrabAnchor {
		return aff.NewQI()
	}
	if o := e.overlays.Get(g.GrabbedID); o != nil {
		return o.SpawnRotation
	}
	return aff.NewQI()
}

func (e *Engine) grabTarget(g *GrabData) *aff.Transform {
	if g.GrabAnchor {
		return e.Anchor.Transform
	}
	if o := e.overlays.Get(g.GrabbedID); o != nil {
		return o.Placement.Transform
	}
	return nil
}

// releaseGrab implements the release half of spec.md §4.2.3. For an
// anchored overlay (hand or head), it also re-derives AnchorOffset from
// where the grab left the overlay, so the per-frame auto-movement step
// (spec.md §4.3 step 5) picks up from the post-grab pose instead of
// snapping back to the offset that was live before the grab.
func (e *Engine) releaseGrab(p *Pointer, hmd *aff.Transform) {
	g := p.Interaction.Grabbed
	if g == nil {
		return
	}
	if g.GrabAnchor {
		e.Anchor.Grabbed = false
	} else if o := e.overlays.Get(g.GrabbedID); o != nil {
		o.PauseMovement = false
		o.SpawnPoint.Set(o.Placement.Transform.Loc)
		o.SpawnRotation.Set(o.Placement.Transform.Rot)
		if o.Name == "watch" && (o.Anchor == overlay.AnchorHandLeft || o.Anchor == overlay.AnchorHandRight) {
			o.Anchor = handAnchor(p.Index)
		}
		if anchorPose := anchorPoseFor(o.Anchor, p, hmd); anchorPose != nil {
			o.AnchorOffset = inverseCompose(anchorPose, o.Placement.Transform)
		}
		if e.OnPersist != nil {
			e.OnPersist(o)
		}
	}
	if anchorOverlay := e.anchorOverlay(); anchorOverlay != nil {
		anchorOverlay.WantVisible = false
	}
	if e.Config.GrabHelpOverlayName != "" {
		if help := e.overlays.GetByName(e.Config.GrabHelpOverlayName); help != nil {
			help.WantVisible = false
		}
	}
	p.Interaction.Grabbed = nil
}

// anchorPoseFor returns the live pose an anchored overlay follows, or nil
// if anchor isn't a hand or the head (e.g. AnchorNone, AnchorWorld, which
// don't use AnchorOffset).
func anchorPoseFor(anchor overlay.Anchor, p *Pointer, hmd *aff.Transform) *aff.Transform {
	switch anchor {
	case overlay.AnchorHead:
		return hmd
	case overlay.AnchorHandLeft, overlay.AnchorHandRight:
		return p.Pose
	default:
		return nil
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
