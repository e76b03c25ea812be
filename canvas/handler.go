package canvas

import "github.com/galister/overlayd/overlay"

// ContentHandler adapts a Canvas to overlay.InteractionHandler: it
// converts the content-UV coordinates a raycast hit resolves to (spec.md
// §3's Placement.Hit mapping) into canvas pixel coordinates and dispatches
// to the hit control. It tracks the pixel a press landed on so the
// matching release (which OnPointer reports with its own, possibly
// drifted, UV) still targets the control that was actually pressed.
type ContentHandler[D any, S any] struct {
	Canvas *Canvas[D, S]

	pressedX, pressedY int
	pressed            bool
}

// NewContentHandler wraps c for use as an overlay's interaction handler.
func NewContentHandler[D any, S any](c *Canvas[D, S]) *ContentHandler[D, S] {
	return &ContentHandler[D, S]{Canvas: c}
}

func (h *ContentHandler[D, S]) toPixels(u, v float64) (int, int) {
	return int(u * float64(h.Canvas.Width)), int(v * float64(h.Canvas.Height))
}

// OnHover updates the hovered control and reports whether the canvas
// claims the point, so the overlay can prioritize it over overlays behind
// it (spec.md §4.2's hover/consume contract).
func (h *ContentHandler[D, S]) OnHover(u, v float64) overlay.HoverResult {
	x, y := h.toPixels(u, v)
	h.Canvas.SetHover(x, y)
	return overlay.HoverResult{Consume: h.Canvas.HitTest(x, y) != nil}
}

// OnLeft clears hover state when the pointer leaves the overlay entirely.
func (h *ContentHandler[D, S]) OnLeft() {
	h.Canvas.SetHover(-1, -1)
}

// OnPointer dispatches a press at the given UV, or a release at the UV the
// matching press landed on.
func (h *ContentHandler[D, S]) OnPointer(pressed bool, u, v float64) {
	if pressed {
		h.pressedX, h.pressedY = h.toPixels(u, v)
		h.pressed = true
		h.Canvas.Press(h.pressedX, h.pressedY)
		return
	}
	if h.pressed {
		h.Canvas.Release(h.pressedX, h.pressedY)
		h.pressed = false
	}
}

// OnScroll routes a scroll gesture to the control under the pixel the last
// press landed on (the canvas origin before any press); the hover position
// is not used.
func (h *ContentHandler[D, S]) OnScroll(dx, dy float64) {
	h.Canvas.Scroll(h.pressedX, h.pressedY, dx, dy)
}
