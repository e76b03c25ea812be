// Package overlay implements the overlay data model and container
// described in spec.md §3 and §4.1: a registry of 3D-anchored 2D surfaces,
// keyed by a stable monotonic id, each carrying placement, visibility,
// anchoring, content, and runtime state. Grounded on the teacher's
// pov.go/part.go scene-list-plus-map pattern (stage.go), generalized from
// a 3D scene graph to a flat overlay registry.
package overlay

import (
	"sync/atomic"

	"github.com/galister/overlayd/math/aff"
)

// Anchor describes what an overlay's placement is relative to.
type Anchor int

const (
	// AnchorNone means the overlay's transform is set directly and never
	// recomputed automatically.
	AnchorNone Anchor = iota
	// AnchorHead follows the HMD pose every frame.
	AnchorHead
	// AnchorHandLeft follows the left hand pose every frame.
	AnchorHandLeft
	// AnchorHandRight follows the right hand pose every frame.
	AnchorHandRight
	// AnchorWorld follows the shared world anchor.
	AnchorWorld
)

// InteractionTransform is the 2D affine mapping a raycast's local hit
// coordinates to content UV. It is purely scale + offset (no shear/rotate
// is needed by any spec.md component), applied as u' = u*Sx+Ox, v' =
// v*Sy+Oy.
type InteractionTransform struct {
	Sx, Sy float64
	Ox, Oy float64
}

// IdentityInteractionTransform returns the transform under which a
// content-UV of (0,0)..(1,1) covers the renderer's full output, matching
// the spec.md §3 invariant.
func IdentityInteractionTransform() InteractionTransform {
	return InteractionTransform{Sx: 1, Sy: 1, Ox: 0.5, Oy: 0.5}
}

// Apply maps local hit coordinates (u,v), each typically in [-0.5,0.5], to
// content UV; the identity transform's 0.5 offsets shift them to [0,1].
func (t InteractionTransform) Apply(u, v float64) (cu, cv float64) {
	return u*t.Sx + t.Ox, v*t.Sy + t.Oy
}

// Placement is an overlay's full spatial configuration: a 3D affine
// (rotation + non-uniform scale + translation), the hit-to-content-UV
// mapping, and optional cylinder curvature.
type Placement struct {
	Transform  *aff.Transform
	Hit        InteractionTransform
	Curvature  float64 // 0 == flat; see SetCurvature for the ε-normalization invariant.
	ContentW   int     // content_size, pixels
	ContentH   int
}

// SetCurvature assigns c, normalizing Some(0) (and anything ≤ ε) down to
// flat (0), per spec.md §3's invariant "curvature = Some(c) requires c >
// ε; Some(0) is normalized to None".
func (p *Placement) SetCurvature(c float64) {
	if c <= aff.Epsilon {
		p.Curvature = 0
		return
	}
	if c > 0.5 {
		c = 0.5
	}
	p.Curvature = c
}

// HasCurvature reports whether the overlay is a curved cylinder rather
// than a flat plane.
func (p *Placement) HasCurvature() bool { return p.Curvature > aff.Epsilon }

// Renderer produces the overlay's current texture view plus its pixel
// content size. Implementations live in the capture and canvas packages;
// this package only depends on the interface (spec.md §3: "Renderer and
// handler are separate capabilities").
type Renderer interface {
	// CurrentTexture returns an opaque handle to the latest sampled
	// texture for this overlay's content, and whether it changed since
	// the last call.
	CurrentTexture() (handle any, changed bool)
	// ContentSize returns the renderer's native pixel size.
	ContentSize() (w, h int)
}

// HoverResult is returned by InteractionHandler.OnHover.
type HoverResult struct {
	Consume bool
	Haptics bool
}

// InteractionHandler receives hover/click/scroll events in content-UV
// coordinates.
type InteractionHandler interface {
	OnHover(u, v float64) HoverResult
	OnLeft()
	OnPointer(pressed bool, u, v float64)
	OnScroll(dx, dy float64)
}

// Content bundles an overlay's renderer and interaction handler. Either
// may be nil (a display-only overlay has no handler; a theoretical
// interaction-only overlay is not expected but not disallowed).
type Content struct {
	Renderer Renderer
	Handler  InteractionHandler
}

// Overlay is the atomic unit of the runtime: spec.md §3.
type Overlay struct {
	ID   uint64
	Name string

	Placement Placement

	WantVisible    bool
	ShowHide       bool
	Grabbable      bool
	Interactable   bool
	Recenter       bool
	RealignOnShow  bool

	Anchor       Anchor
	AnchorOffset *aff.Transform // saved local offset applied on top of the anchor pose (hand or head), per spec.md §4.3 step 5.

	Content Content

	PrimaryPointer int // -1 == none
	Dirty          bool
	SpawnPoint     *aff.V3
	SpawnRotation  *aff.Q

	EditMode      bool // per-overlay edit-mode override; see Engine.InEditMode for the global flag.
	PauseMovement bool // true while a grab is repositioning this overlay, so auto-movement skips it.
}

// NewOverlay allocates an overlay with default runtime state (no primary
// pointer, unit transform, identity hit mapping). The id must be obtained
// from NextID.
func NewOverlay(id uint64, name string) *Overlay {
	return &Overlay{
		ID:   id,
		Name: name,
		Placement: Placement{
			Transform: aff.NewTransform(),
			Hit:       IdentityInteractionTransform(),
		},
		PrimaryPointer: -1,
		SpawnPoint:     aff.NewV3(),
		SpawnRotation:  aff.NewQI(),
	}
}

// ResetToSpawn restores the overlay's transform to its spawn point and
// rotation, preserving current scale.
func (o *Overlay) ResetToSpawn() {
	o.Placement.Transform.Loc.Set(o.SpawnPoint)
	o.Placement.Transform.Rot.Set(o.SpawnRotation)
}

var idCounter uint64

// NextID returns the next monotonic, process-unique overlay/task id.
// Matches the teacher's eid.go pattern of a hand-rolled atomic counter,
// simplified: this runtime never reuses ids, so no edition/generation
// bookkeeping is needed.
func NextID() uint64 { return atomic.AddUint64(&idCounter, 1) }
