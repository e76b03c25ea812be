package canvas

import "testing"

func TestNewKeyboardCanvasLaysOutRowsByWidth(t *testing.T) {
	layout := Layout{
		Rows: []RowLayout{
			{Keys: []KeyLayout{
				{Label: "a", Width: 1, Class: KeyClassSymbol, Code: 30},
				{Label: "b", Width: 1, Class: KeyClassSymbol, Code: 48},
			}},
		},
	}
	var pressed []uint32
	state := KeyState{OnKey: func(code uint32, down bool) {
		if down {
			pressed = append(pressed, code)
		}
	}}
	c := NewKeyboardCanvas(200, layout, state)

	if len(c.Controls) != 2 {
		t.Fatalf("expected 2 key controls, got %d", len(c.Controls))
	}
	if c.Controls[0].Rect.W != c.Controls[1].Rect.W {
		t.Fatalf("expected equal-width keys for equal layout widths, got %+v and %+v", c.Controls[0].Rect, c.Controls[1].Rect)
	}

	c.Press(10, 10)
	if len(pressed) != 1 || pressed[0] != 30 {
		t.Fatalf("expected key 'a' (code 30) to fire OnKey, got %v", pressed)
	}
}

func TestAltGrLabelSwapsWhenLatched(t *testing.T) {
	layout := Layout{Rows: []RowLayout{{Keys: []KeyLayout{
		{Label: "1", AltGr: "!", Width: 1, Class: KeyClassSymbol, Code: 2},
	}}}}
	state := KeyState{}
	c := NewKeyboardCanvas(100, layout, state)
	c.Shared.AltGrLatched = true
	c.Update()
	if c.Controls[0].Text != "!" {
		t.Fatalf("expected the AltGr label to be shown when latched, got %q", c.Controls[0].Text)
	}
}

func TestShiftModifierTogglesOnPress(t *testing.T) {
	layout := Layout{Rows: []RowLayout{{Keys: []KeyLayout{
		{Label: "Shift", Width: 1, Class: KeyClassModifier},
	}}}}
	c := NewKeyboardCanvas(100, layout, KeyState{})
	c.Press(10, 10)
	if !c.Shared.ShiftLatched {
		t.Fatalf("expected pressing Shift to latch it")
	}
	c.Press(10, 10)
	if c.Shared.ShiftLatched {
		t.Fatalf("expected pressing Shift again to unlatch it")
	}
}
