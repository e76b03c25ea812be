package overlay

import (
	"testing"

	"github.com/galister/overlayd/math/aff"
)

type fakeSource struct {
	outputs []ScreenInfo
	events  chan OutputEvent
}

func (f *fakeSource) Outputs() []ScreenInfo    { return f.outputs }
func (f *fakeSource) Events() <-chan OutputEvent { return f.events }

func newTestContainer() *Container {
	src := &fakeSource{
		outputs: []ScreenInfo{{Handle: 1, Name: "screen-0"}, {Handle: 2, Name: "screen-1"}},
		events:  make(chan OutputEvent, 4),
	}
	shown := map[string]bool{} // nothing saved-shown -> first screen defaults visible
	return New(src, shown, nil, nil, nil)
}

// Property 3: after ShowHide, either all show_hide overlays are visible or
// none are — never a mixed state.
func TestShowHideNeverMixed(t *testing.T) {
	c := newTestContainer()
	anchor := NewWorldAnchor()
	hmd := aff.NewTransform()
	up := aff.NewV3S(0, 1, 0)

	assertNotMixed := func() {
		t.Helper()
		seenTrue, seenFalse := false, false
		c.Each(func(o *Overlay) {
			if !o.ShowHide {
				return
			}
			if o.WantVisible {
				seenTrue = true
			} else {
				seenFalse = true
			}
		})
		if seenTrue && seenFalse {
			t.Fatalf("mixed show_hide visibility state")
		}
	}

	// S4: starting with screen-0 visible (default), screen-1 hidden: this
	// is itself a mixed starting state from manual control, so first
	// call ShowHide to force a consistent state before asserting.
	c.ShowHide(anchor, hmd, up) // first screen was visible -> hides all
	assertNotMixed()
	allHidden := true
	c.Each(func(o *Overlay) {
		if o.ShowHide && o.WantVisible {
			allHidden = false
		}
	})
	if !allHidden {
		t.Fatalf("expected all show_hide overlays hidden after first toggle")
	}

	c.ShowHide(anchor, hmd, up) // now none visible -> shows all
	assertNotMixed()
	allShown := true
	c.Each(func(o *Overlay) {
		if o.ShowHide && !o.WantVisible {
			allShown = false
		}
	})
	if !allShown {
		t.Fatalf("expected all show_hide overlays visible after second toggle")
	}
}

// S5: screen hot-plug via Update adds one overlay and reports no removed.
func TestUpdateScreenHotplug(t *testing.T) {
	src := &fakeSource{
		outputs: []ScreenInfo{{Handle: 1, Name: "screen-0"}},
		events:  make(chan OutputEvent, 4),
	}
	c := New(src, nil, nil, nil, nil)
	before := c.Len()

	src.events <- OutputEvent{Kind: OutputCreate, Screen: ScreenInfo{Handle: 2, Name: "screen-1"}}
	removed := c.Update(func(info ScreenInfo) *Overlay {
		o := NewOverlay(NextID(), info.Name)
		o.ShowHide = true
		return o
	}, nil, nil)

	if len(removed) != 0 {
		t.Fatalf("expected no removed overlays, got %d", len(removed))
	}
	if c.Len() != before+1 {
		t.Fatalf("expected %d overlays after hotplug, got %d", before+1, c.Len())
	}
	if c.GetByName("screen-1") == nil {
		t.Fatalf("expected new overlay named screen-1")
	}
}

func TestGetByNameFirstMatch(t *testing.T) {
	c := NewEmpty(nil)
	a := NewOverlay(NextID(), "dup")
	b := NewOverlay(NextID(), "dup")
	c.Insert(a)
	c.Insert(b)
	if got := c.GetByName("dup"); got != a {
		t.Fatalf("expected first-inserted overlay to be returned for duplicate name")
	}
}

func TestCurvatureNormalization(t *testing.T) {
	o := NewOverlay(NextID(), "o")
	o.Placement.SetCurvature(0)
	if o.Placement.HasCurvature() {
		t.Fatalf("Some(0) must normalize to flat")
	}
	o.Placement.SetCurvature(0.3)
	if !o.Placement.HasCurvature() || o.Placement.Curvature != 0.3 {
		t.Fatalf("expected curvature 0.3, got %v", o.Placement.Curvature)
	}
	o.Placement.SetCurvature(10)
	if o.Placement.Curvature != 0.5 {
		t.Fatalf("expected curvature clamped to 0.5, got %v", o.Placement.Curvature)
	}
}
