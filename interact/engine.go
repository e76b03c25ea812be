package interact

import (
	"math"
	"sort"
	"time"

	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/overlay"
)

// nowFunc is overridable by tests that need deterministic LastClick timing.
var nowFunc = time.Now

// Config holds the user-tunable knobs the interaction engine reads.
type Config struct {
	ScrollScale         float64
	InvertScrollX       bool
	InvertScrollY       bool
	AllowSliding        bool
	GrabHelpOverlayName string
}

// DefaultConfig returns the engine defaults used when no config override
// is present.
func DefaultConfig() Config {
	return Config{ScrollScale: 1, AllowSliding: true}
}

// Engine implements spec.md §4.2's per-frame pointer state machine.
type Engine struct {
	Config   Config
	Anchor   *overlay.WorldAnchor
	EditMode bool

	// OnPersist is called when a grab releases and the overlay's new
	// transform should be written to the saved layout (config package).
	OnPersist func(o *overlay.Overlay)

	overlays *overlay.Container
}

// NewEngine builds an Engine bound to anchor. overlays is (re)bound on
// every Step call so the engine never outlives one container instance.
func NewEngine(cfg Config, anchor *overlay.WorldAnchor) *Engine {
	return &Engine{Config: cfg, Anchor: anchor}
}

// Step runs one frame of the interaction engine over both pointers, in
// last-click-last order (spec.md §4.2 preamble), and returns per-hand
// (ray length, haptics-pending) for the pointer-line pool (§4.5).
func (e *Engine) Step(pointers *[2]*Pointer, overlays *overlay.Container, hmd *aff.Transform) [2]struct {
	Length  float64
	Haptics bool
} {
	e.overlays = overlays

	order := [2]int{0, 1}
	if pointers[0].Interaction.LastClick.After(pointers[1].Interaction.LastClick) {
		order = [2]int{1, 0}
	}

	var result [2]struct {
		Length  float64
		Haptics bool
	}
	for _, idx := range order {
		p := pointers[idx]
		other := pointers[1-idx]
		length, haptics := e.stepHand(p, other, hmd)
		result[idx].Length = length
		result[idx].Haptics = haptics
	}
	return result
}

func (e *Engine) stepHand(p, other *Pointer, hmd *aff.Transform) (rayLen float64, haptics bool) {
	if p.Interaction.Grabbed != nil {
		if !p.Now.Grab {
			e.releaseGrab(p, hmd)
			return 0, false
		}
		e.grabUpdate(p, hmd)
		g := p.Interaction.Grabbed
		if g != nil {
			if target := e.grabTarget(g); target != nil {
				return aff.NewV3().Sub(target.Loc, p.Pose.Loc).Len(), false
			}
		}
		return 0, false
	}

	ray := RayFromPose(p.Pose)
	hits := CastAll(ray, CandidateOverlays(e.overlays))
	hitID, hit, u, v, hover, found := e.resolveHit(hits)

	if !found {
		e.clearHover(p)
		p.Interaction.ClickedID = 0
		return 0, false
	}
	rayLen = hit.Dist

	if hitID != p.Interaction.HoveredID {
		e.clearHover(p)
	}
	p.Interaction.HoveredID = hitID
	o := e.overlays.Get(hitID)
	if o.PrimaryPointer == -1 || p.Index < o.PrimaryPointer {
		o.PrimaryPointer = p.Index
	}

	if p.GrabEdge() && o.Grabbable {
		e.grabInitiate(p, o, other)
		return rayLen, false
	}

	haptics = hover.Haptics

	e.handleScroll(p, other, o)

	if p.ClickEdgeDown() {
		p.Interaction.ClickedID = hitID
		p.Interaction.LastClick = nowFunc()
		if o.Content.Handler != nil {
			o.Content.Handler.OnPointer(true, u, v)
		}
	}
	if p.ClickEdgeUp() {
		if prev := e.overlays.Get(p.Interaction.ClickedID); prev != nil && prev.Content.Handler != nil {
			prev.Content.Handler.OnPointer(false, u, v)
		}
		p.Interaction.ClickedID = 0
	}
	return rayLen, haptics
}

func (e *Engine) clearHover(p *Pointer) {
	if p.Interaction.HoveredID == 0 {
		return
	}
	if old := e.overlays.Get(p.Interaction.HoveredID); old != nil {
		if old.Content.Handler != nil {
			old.Content.Handler.OnLeft()
		}
		if old.PrimaryPointer == p.Index {
			old.PrimaryPointer = -1
		}
	}
	p.Interaction.HoveredID = 0
}

// resolveHit implements the remainder of spec.md §4.2.1: walk the sorted
// hits, querying on_hover on the first inside-[0,1]² hit; if it does not
// consume and the overlay is not in edit mode, continue to the next hit.
// The returned HoverResult is the one OnHover call this frame makes for the
// resolved overlay; callers must reuse it rather than calling OnHover again,
// since a stateful handler (e.g. a button highlight) would otherwise fire
// twice per frame. This is testable property 4 (raycast monotonicity).
func (e *Engine) resolveHit(hits []Hit) (id uint64, hit Hit, u, v float64, hover overlay.HoverResult, found bool) {
	for _, h := range hits {
		o := e.overlays.Get(h.OverlayID)
		if o == nil {
			continue
		}
		cu, cv, inside := ContentUV(o, h)
		if !inside {
			continue
		}
		editMode := e.EditMode || o.EditMode
		if editMode {
			return o.ID, h, cu, cv, overlay.HoverResult{Consume: true}, true
		}
		if o.Content.Handler == nil {
			return o.ID, h, cu, cv, overlay.HoverResult{Consume: true}, true
		}
		res := o.Content.Handler.OnHover(cu, cv)
		if res.Consume {
			return o.ID, h, cu, cv, res, true
		}
		// did not consume: fall through to the next (farther) hit, letting
		// a transparent watch face pass through to a screen behind it.
	}
	return 0, Hit{}, 0, 0, overlay.HoverResult{}, false
}

// handleScroll implements spec.md §4.2 step 7: curvature adjust takes
// precedence over push/pull whenever both could apply (§9 Open Question).
func (e *Engine) handleScroll(p, other *Pointer, o *overlay.Overlay) {
	if math.Abs(p.Analog.ScrollY) <= 0.1 && math.Abs(p.Analog.ScrollX) <= 0.1 {
		return
	}
	widerThanTall := o.Placement.Transform.Scale.X > o.Placement.Transform.Scale.Y
	otherGrabbingThis := other.Interaction.Grabbed != nil && other.Interaction.Grabbed.GrabbedID == o.ID
	if otherGrabbingThis && widerThanTall {
		o.Placement.SetCurvature(o.Placement.Curvature - 0.01*p.Analog.ScrollY)
		return
	}

	dx, dy := p.Analog.ScrollX, p.Analog.ScrollY
	if e.Config.InvertScrollX {
		dx = -dx
	}
	if e.Config.InvertScrollY {
		dy = -dy
	}
	dx *= e.Config.ScrollScale
	dy *= e.Config.ScrollScale
	if o.Content.Handler != nil {
		o.Content.Handler.OnScroll(dx, dy)
	}
}

// sortHits orders hits by ascending distance. Nothing in this module calls
// it; CastAll sorts its own results.
func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Dist < hits[j].Dist })
}
