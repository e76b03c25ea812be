package canvas

// AnchorState is the shared state for the anchor reticle canvas: it has
// no interactive controls, only a highlight driven by whether a grab
// target is currently hovering over it.
type AnchorState struct {
	Hot bool
}

// anchorData is unused; the reticle is a single non-interactive marker.
type anchorData struct{}

// NewAnchorCanvas builds the anchor reticle canvas: a single centered
// crosshair control that highlights when hot, per spec.md §4.7's third
// hardcoded canvas.
func NewAnchorCanvas(size int) *Canvas[anchorData, AnchorState] {
	c := New[anchorData, AnchorState](size, size, AnchorState{})
	reticle := &Control[anchorData, AnchorState]{
		ID:   0,
		Rect: Rect{X: 0, Y: 0, W: size, H: size},
		TestHighlight: func(ctrl *Control[anchorData, AnchorState], shared *AnchorState) bool {
			return shared.Hot
		},
	}
	c.AddControl(reticle)
	return c
}
