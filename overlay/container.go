package overlay

import "github.com/galister/overlayd/math/aff"

// OutputEventKind classifies an OutputEvent.
type OutputEventKind int

const (
	OutputCreate OutputEventKind = iota
	OutputDestroy
	OutputLogical
	OutputPhysical
)

// ScreenInfo is the logical/physical description of one Wayland or X11
// output, as delivered by the external output source (spec.md §6 "Wayland
// output source").
type ScreenInfo struct {
	Handle    uintptr
	Name      string
	X, Y      int
	W, H      int
	Transform int // output transform in degrees (0/90/180/270)
}

// OutputEvent is one change notification from the output source.
type OutputEvent struct {
	Kind   OutputEventKind
	Screen ScreenInfo
}

// OutputSource is the external collaborator that discovers outputs and
// reports their changes; concrete Wayland/X11 discovery is out of scope
// per spec.md §1. Grounded on the teacher's Director dependency-injection
// idiom in eng.go.
type OutputSource interface {
	Outputs() []ScreenInfo
	Events() <-chan OutputEvent
}

// ScreenMeta parallels each physical output with its overlay id, so
// output-change events can map back to overlays (spec.md §4.1).
type ScreenMeta struct {
	Handle      uintptr
	DisplayName string
	OverlayID   uint64
}

// Container is the overlay registry: a map keyed by id plus an
// id-stable iteration order, mirroring the teacher's stage.go
// scene-list-plus-map pattern.
type Container struct {
	overlays map[uint64]*Overlay
	order    []uint64
	screens  []ScreenMeta
	source   OutputSource
}

// NewEmpty builds an empty container with no startup overlays. Exposed
// for tests and for callers that build the startup set themselves.
func NewEmpty(source OutputSource) *Container {
	return &Container{overlays: make(map[uint64]*Overlay), source: source}
}

// New constructs the startup set per spec.md §4.1: one overlay per
// physical screen (from source.Outputs()), one anchor overlay, one watch
// overlay (initially visible), one keyboard overlay (initially hidden).
// shownScreens is the saved-shown set from config; if empty, the first
// screen discovered is shown instead. watchFactory/keyboardFactory build
// the watch/keyboard overlays' Content — they live in the canvas package,
// so they are injected here to avoid an import cycle.
func New(source OutputSource, shownScreens map[string]bool, watchFactory, keyboardFactory, anchorFactory func(id uint64) *Overlay) *Container {
	c := NewEmpty(source)

	outputs := source.Outputs()
	anyShown := false
	for _, info := range outputs {
		id := NextID()
		o := NewOverlay(id, info.Name)
		o.WantVisible = shownScreens[info.Name]
		if o.WantVisible {
			anyShown = true
		}
		o.ShowHide = true
		o.Grabbable = true
		o.Interactable = true
		o.Anchor = AnchorNone
		c.insert(o)
		c.screens = append(c.screens, ScreenMeta{Handle: info.Handle, DisplayName: info.Name, OverlayID: id})
	}
	if !anyShown && len(c.order) > 0 {
		c.overlays[c.order[0]].WantVisible = true
	}

	if anchorFactory != nil {
		anchor := anchorFactory(NextID())
		anchor.Name = "anchor"
		anchor.Anchor = AnchorWorld
		c.insert(anchor)
	}
	if watchFactory != nil {
		watch := watchFactory(NextID())
		watch.Name = "watch"
		watch.WantVisible = true
		watch.ShowHide = true
		watch.Grabbable = true
		watch.Interactable = true
		watch.Anchor = AnchorHead
		watch.AnchorOffset = aff.NewTransform()
		watch.AnchorOffset.Loc.SetS(0.15, -0.25, -0.35)
		watch.AnchorOffset.Rot.SetAa(0, 1, 0, aff.PI)
		c.insert(watch)
	}
	if keyboardFactory != nil {
		kb := keyboardFactory(NextID())
		kb.Name = "keyboard"
		kb.WantVisible = false
		kb.ShowHide = true
		kb.Grabbable = true
		kb.Interactable = true
		c.insert(kb)
	}
	return c
}

func (c *Container) insert(o *Overlay) {
	c.overlays[o.ID] = o
	c.order = append(c.order, o.ID)
}

// Insert adds o to the registry, appending it to iteration order.
func (c *Container) Insert(o *Overlay) { c.insert(o) }

// Remove deletes the overlay with id, returning it (or nil if absent) so
// the caller (e.g. the renderer) can release GPU resources outside the
// container's own borrow.
func (c *Container) Remove(id uint64) *Overlay {
	o, ok := c.overlays[id]
	if !ok {
		return nil
	}
	delete(c.overlays, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	for i, sm := range c.screens {
		if sm.OverlayID == id {
			c.screens = append(c.screens[:i], c.screens[i+1:]...)
			break
		}
	}
	return o
}

// RemoveByName removes the first overlay matching name.
func (c *Container) RemoveByName(name string) *Overlay {
	if o := c.GetByName(name); o != nil {
		return c.Remove(o.ID)
	}
	return nil
}

// Get returns the overlay with id, or nil.
func (c *Container) Get(id uint64) *Overlay { return c.overlays[id] }

// GetByName returns the first overlay (in iteration order) named name, or
// nil. Name uniqueness is not required; selection by name picks the first
// match, per spec.md §3.
func (c *Container) GetByName(name string) *Overlay {
	for _, id := range c.order {
		if o := c.overlays[id]; o.Name == name {
			return o
		}
	}
	return nil
}

// Each calls fn for every overlay in stable iteration order. fn must not
// insert or remove overlays; collect ids first if that is needed
// (two-phase iteration).
func (c *Container) Each(fn func(*Overlay)) {
	for _, id := range c.order {
		fn(c.overlays[id])
	}
}

// IDs returns a snapshot of the current iteration order, safe to range
// over while mutating the container.
func (c *Container) IDs() []uint64 {
	ids := make([]uint64, len(c.order))
	copy(ids, c.order)
	return ids
}

// Len returns the number of overlays currently registered.
func (c *Container) Len() int { return len(c.order) }

// Screens returns the current screen-to-overlay mapping.
func (c *Container) Screens() []ScreenMeta { return c.screens }

// Update drains the output source's event channel and applies each event,
// per spec.md §4.1: new output creates an overlay; destroyed output
// removes and returns the detached overlay; logical geometry change
// replaces the interaction handler (the caller supplies the rebuild via
// onLogicalChange, since geometry→handler construction lives in the
// capture/canvas packages); physical change replaces the renderer via
// onPhysicalChange. Returns the overlays removed this call.
func (c *Container) Update(onCreate func(info ScreenInfo) *Overlay, onLogicalChange, onPhysicalChange func(o *Overlay, info ScreenInfo)) []*Overlay {
	var removed []*Overlay
	if c.source == nil {
		return removed
	}
	events := c.source.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return removed
			}
			switch ev.Kind {
			case OutputCreate:
				if onCreate == nil {
					continue
				}
				o := onCreate(ev.Screen)
				c.insert(o)
				c.screens = append(c.screens, ScreenMeta{Handle: ev.Screen.Handle, DisplayName: ev.Screen.Name, OverlayID: o.ID})
			case OutputDestroy:
				for _, sm := range c.screens {
					if sm.Handle == ev.Screen.Handle {
						if o := c.Remove(sm.OverlayID); o != nil {
							removed = append(removed, o)
						}
						break
					}
				}
			case OutputLogical:
				if onLogicalChange == nil {
					continue
				}
				if o := c.screenOverlay(ev.Screen.Handle); o != nil {
					onLogicalChange(o, ev.Screen)
				}
			case OutputPhysical:
				if onPhysicalChange == nil {
					continue
				}
				if o := c.screenOverlay(ev.Screen.Handle); o != nil {
					onPhysicalChange(o, ev.Screen)
				}
			}
		default:
			return removed
		}
	}
}

func (c *Container) screenOverlay(handle uintptr) *Overlay {
	for _, sm := range c.screens {
		if sm.Handle == handle {
			return c.overlays[sm.OverlayID]
		}
	}
	return nil
}

// AnyShowHideVisible reports whether any show_hide overlay currently has
// want_visible set, the "any shown" test from spec.md §4.1.
func (c *Container) AnyShowHideVisible() bool {
	for _, id := range c.order {
		o := c.overlays[id]
		if o.ShowHide && o.WantVisible {
			return true
		}
	}
	return false
}

// ShowHide toggles the global show-hide set per spec.md §4.1: if any
// show_hide overlay is visible, hide them all; otherwise recompute the
// world anchor from the HMD pose and show them all, resetting spawn pose
// for overlays with RealignOnShow && Recenter.
func (c *Container) ShowHide(anchor *WorldAnchor, hmd *aff.Transform, up *aff.V3) {
	if c.AnyShowHideVisible() {
		for _, id := range c.order {
			o := c.overlays[id]
			if o.ShowHide {
				o.WantVisible = false
			}
		}
		return
	}

	anchor.Recompute(hmd, up)
	for _, id := range c.order {
		o := c.overlays[id]
		if !o.ShowHide {
			continue
		}
		o.WantVisible = true
		if o.RealignOnShow && o.Recenter {
			o.ResetToSpawn()
		}
	}
}
