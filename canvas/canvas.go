// Package canvas implements the Canvas UI model of spec.md §4.7: a
// fixed-size 2D render target plus a list of controls, each with an
// interactive hit-grid for O(1) hover/press resolution. The update/record
// split (walk controls, mark dirty, then a separate render pass) mirrors
// the teacher's overlay.go update()/updateWidget() structure in
// src/vu/overlay.go, generalized here with Go generics for the per-control
// domain (D) and shared canvas state (S) type parameters spec.md asks for.
package canvas

import "image/color"

// Rect is a control's bounds in canvas pixels.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the pixel (x, y) falls inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Control is one interactive element on a Canvas. D is per-control state
// (e.g. a button's label text), S is the canvas-wide shared state threaded
// through every hook (e.g. the watch canvas's current per-screen
// visibility flags).
type Control[D any, S any] struct {
	ID    int
	Rect  Rect
	FG    color.NRGBA
	BG    color.NRGBA
	Text  string
	Size  float64
	Data  D

	OnPress   func(ctrl *Control[D, S], shared *S)
	OnRelease func(ctrl *Control[D, S], shared *S)
	OnScroll  func(ctrl *Control[D, S], shared *S, dx, dy float64)
	OnUpdate  func(ctrl *Control[D, S], shared *S) (dirty bool)

	// TestHighlight reports whether the control should render its
	// highlight pass regardless of hover state (e.g. a pressed toggle).
	TestHighlight func(ctrl *Control[D, S], shared *S) bool

	RenderBG        func(ctrl *Control[D, S])
	RenderHighlight func(ctrl *Control[D, S])
	RenderFG        func(ctrl *Control[D, S])

	hovered bool
	dirty   bool
}

// unclaimed marks a hit-grid cell that no control claims; claimed cells hold
// the index into Canvas.Controls of the last control stamped over them.
const unclaimed = -1

// Canvas is a fixed-size render target plus its controls and the
// downsampled hit grid used to resolve a UV hit to a control in O(1).
type Canvas[D any, S any] struct {
	Width, Height int
	Shared        S
	Controls      []*Control[D, S]

	// hitDownsample is the fixed factor the hit grid is built at: one grid
	// cell covers hitDownsample x hitDownsample canvas pixels.
	hitDownsample int
	gridW, gridH  int
	grid          []int

	bgBaked bool
}

// defaultHitDownsample matches spec.md §4.7's "downsampled by a fixed
// factor" wording; 8px cells keep the grid small while still resolving
// sub-control precision finer than any control's own minimum size.
const defaultHitDownsample = 8

// WatchCanvas, KeyboardCanvas, and AnchorCanvas name the three concrete
// instantiations spec.md §4.7 hardcodes, so callers outside this package
// can hold one without spelling out its (unexported) per-control data
// type.
type (
	WatchCanvas    = Canvas[watchButtonData, WatchState]
	KeyboardCanvas = Canvas[keyButtonData, KeyState]
	AnchorCanvas   = Canvas[anchorData, AnchorState]
)

// New creates an empty canvas of the given pixel size.
func New[D any, S any](width, height int, shared S) *Canvas[D, S] {
	c := &Canvas[D, S]{
		Width: width, Height: height, Shared: shared,
		hitDownsample: defaultHitDownsample,
	}
	c.rebuildGrid()
	return c
}

func (c *Canvas[D, S]) rebuildGrid() {
	c.gridW = (c.Width + c.hitDownsample - 1) / c.hitDownsample
	c.gridH = (c.Height + c.hitDownsample - 1) / c.hitDownsample
	c.grid = make([]int, c.gridW*c.gridH)
	for i := range c.grid {
		c.grid[i] = unclaimed
	}
}

// AddControl appends a control and stamps its hit-grid cells, rebuilding
// the claimed region each time since controls are small in number and
// added once at init.
func (c *Canvas[D, S]) AddControl(ctrl *Control[D, S]) {
	idx := len(c.Controls)
	c.Controls = append(c.Controls, ctrl)
	c.stampGrid(ctrl.Rect, idx)
}

func (c *Canvas[D, S]) stampGrid(r Rect, idx int) {
	x0 := r.X / c.hitDownsample
	y0 := r.Y / c.hitDownsample
	x1 := (r.X + r.W) / c.hitDownsample
	y1 := (r.Y + r.H) / c.hitDownsample
	for gy := y0; gy <= y1 && gy < c.gridH; gy++ {
		if gy < 0 {
			continue
		}
		for gx := x0; gx <= x1 && gx < c.gridW; gx++ {
			if gx < 0 {
				continue
			}
			c.grid[gy*c.gridW+gx] = idx
		}
	}
}

// HitTest resolves a pixel coordinate to the owning control, or nil.
func (c *Canvas[D, S]) HitTest(x, y int) *Control[D, S] {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return nil
	}
	gx, gy := x/c.hitDownsample, y/c.hitDownsample
	if gx >= c.gridW || gy >= c.gridH {
		return nil
	}
	idx := c.grid[gy*c.gridW+gx]
	if idx == unclaimed {
		return nil
	}
	return c.Controls[idx]
}

// Press dispatches a press at a UV-resolved pixel coordinate.
func (c *Canvas[D, S]) Press(x, y int) {
	if ctrl := c.HitTest(x, y); ctrl != nil && ctrl.OnPress != nil {
		ctrl.OnPress(ctrl, &c.Shared)
	}
}

// Release dispatches a release at a UV-resolved pixel coordinate.
func (c *Canvas[D, S]) Release(x, y int) {
	if ctrl := c.HitTest(x, y); ctrl != nil && ctrl.OnRelease != nil {
		ctrl.OnRelease(ctrl, &c.Shared)
	}
}

// Scroll dispatches a scroll at a UV-resolved pixel coordinate.
func (c *Canvas[D, S]) Scroll(x, y int, dx, dy float64) {
	if ctrl := c.HitTest(x, y); ctrl != nil && ctrl.OnScroll != nil {
		ctrl.OnScroll(ctrl, &c.Shared, dx, dy)
	}
}

// SetHover updates the hovered control, used by TestHighlight resolution.
func (c *Canvas[D, S]) SetHover(x, y int) {
	hit := c.HitTest(x, y)
	for _, ctrl := range c.Controls {
		ctrl.hovered = ctrl == hit
	}
}

// Update implements spec.md §4.7 step 1: walk controls, call OnUpdate; any
// control that reports dirty schedules an fg redraw. Returns true if any
// control needs a redraw this frame.
func (c *Canvas[D, S]) Update() (anyDirty bool) {
	for _, ctrl := range c.Controls {
		if ctrl.OnUpdate != nil {
			ctrl.dirty = ctrl.OnUpdate(ctrl, &c.Shared)
			anyDirty = anyDirty || ctrl.dirty
		}
	}
	return anyDirty
}

// Render implements spec.md §4.7 step 2's record sequence: the bg pass is
// baked once, then each control's highlight and (possibly dirty) fg pass
// are drawn. The caller handles the surrounding image-layout transitions;
// Render only walks the control list and invokes hooks in order.
func (c *Canvas[D, S]) Render() {
	if !c.bgBaked {
		for _, ctrl := range c.Controls {
			if ctrl.RenderBG != nil {
				ctrl.RenderBG(ctrl)
			}
		}
		c.bgBaked = true
	}
	for _, ctrl := range c.Controls {
		show := ctrl.hovered
		if ctrl.TestHighlight != nil {
			show = show || ctrl.TestHighlight(ctrl, &c.Shared)
		}
		if show && ctrl.RenderHighlight != nil {
			ctrl.RenderHighlight(ctrl)
		}
		if ctrl.dirty && ctrl.RenderFG != nil {
			ctrl.RenderFG(ctrl)
			ctrl.dirty = false
		}
	}
}
