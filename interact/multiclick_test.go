package interact

import (
	"testing"
	"time"
)

// Round-trip / property: a single click after a period longer than
// CLICK_TIMES[1] produces exactly one single event, zero double, zero
// triple.
func TestMultiClickSingleAfterLongGap(t *testing.T) {
	var m MultiClick
	base := time.Unix(0, 0)
	if got := m.Press(base); got != 1 {
		t.Fatalf("expected first press to register as single, got %d", got)
	}

	later := base.Add(time.Second)
	if got := m.Press(later); got != 1 {
		t.Fatalf("expected press after long gap to register as single, got %d", got)
	}
}

// S3: two "click" presses 300ms apart with the double window at 500ms
// should fire double; two presses 600ms apart should produce two singles.
func TestMultiClickDoubleWithinWindow(t *testing.T) {
	var m MultiClick
	base := time.Unix(100, 0)
	m.Press(base)
	got := m.Press(base.Add(300 * time.Millisecond))
	if got != 2 {
		t.Fatalf("expected double-click at 300ms apart, got %d", got)
	}
}

func TestMultiClickTwoSinglesOutsideWindow(t *testing.T) {
	var m MultiClick
	base := time.Unix(200, 0)
	first := m.Press(base)
	second := m.Press(base.Add(600 * time.Millisecond))
	if first != 1 || second != 1 {
		t.Fatalf("expected two singles 600ms apart, got %d then %d", first, second)
	}
}

func TestMultiClickTriple(t *testing.T) {
	var m MultiClick
	base := time.Unix(300, 0)
	m.Press(base)
	m.Press(base.Add(200 * time.Millisecond))
	got := m.Press(base.Add(400 * time.Millisecond))
	if got != 3 {
		t.Fatalf("expected triple-click within 750ms window, got %d", got)
	}
}
