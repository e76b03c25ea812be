package canvas

import (
	"testing"
	"time"
)

func TestWatchShortPressTogglesScreen(t *testing.T) {
	var now time.Time
	var toggled []string
	state := WatchState{
		Now:           func() time.Time { return now },
		ScreenVisible: map[string]bool{},
		ToggleScreen:  func(name string) { toggled = append(toggled, name) },
	}
	c := NewWatchCanvas(200, 100, []string{"desk1"}, state)

	// Button is laid out at (4, 32); press and release quickly.
	now = time.Unix(0, 0)
	c.Press(10, 40)
	now = now.Add(100 * time.Millisecond)
	c.Release(10, 40)

	if len(toggled) != 1 || toggled[0] != "desk1" {
		t.Fatalf("expected a short press to toggle the screen, got %v", toggled)
	}
}

func TestWatchLongPressResetsInsteadOfToggling(t *testing.T) {
	var now time.Time
	resetCalled := false
	toggledCalled := false
	state := WatchState{
		Now:           func() time.Time { return now },
		ScreenVisible: map[string]bool{},
		ToggleScreen:  func(name string) { toggledCalled = true },
		ResetLayout:   func() { resetCalled = true },
	}
	c := NewWatchCanvas(200, 100, []string{"desk1"}, state)

	now = time.Unix(0, 0)
	c.Press(10, 40)
	now = now.Add(longPressDuration + time.Millisecond)
	c.Release(10, 40)

	if !resetCalled || toggledCalled {
		t.Fatalf("expected a long press to reset instead of toggle, reset=%v toggled=%v", resetCalled, toggledCalled)
	}
}

func TestFormatVolumeClampsRange(t *testing.T) {
	if got := FormatVolume(150); got != "vol 100%" {
		t.Fatalf("expected clamping to 100%%, got %q", got)
	}
	if got := FormatVolume(-5); got != "vol 0%" {
		t.Fatalf("expected clamping to 0%%, got %q", got)
	}
}
