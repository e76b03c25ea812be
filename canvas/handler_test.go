package canvas

import "testing"

func TestContentHandlerDispatchesReleaseAtPressUV(t *testing.T) {
	c := New[struct{}, struct{}](100, 100, struct{}{})
	var pressed, released bool
	c.AddControl(&Control[struct{}, struct{}]{
		Rect:      Rect{X: 0, Y: 0, W: 50, H: 50},
		OnPress:   func(*Control[struct{}, struct{}], *struct{}) { pressed = true },
		OnRelease: func(*Control[struct{}, struct{}], *struct{}) { released = true },
	})

	h := NewContentHandler(c)
	h.OnPointer(true, 0.1, 0.1)
	if !pressed {
		t.Fatalf("expected the press to reach the control under the UV")
	}
	// A release reported at a drifted UV outside the control must still
	// target whatever control the press landed on.
	h.OnPointer(false, 0.9, 0.9)
	if !released {
		t.Fatalf("expected the release to target the pressed control, not the drifted UV")
	}
}

func TestContentHandlerOnHoverReportsConsumeWhenHit(t *testing.T) {
	c := New[struct{}, struct{}](100, 100, struct{}{})
	c.AddControl(&Control[struct{}, struct{}]{Rect: Rect{X: 0, Y: 0, W: 50, H: 50}})
	h := NewContentHandler(c)

	if res := h.OnHover(0.1, 0.1); !res.Consume {
		t.Fatalf("expected a hover inside a control's rect to be consumed")
	}
	if res := h.OnHover(0.9, 0.9); res.Consume {
		t.Fatalf("expected a hover outside any control's rect not to be consumed")
	}
}
