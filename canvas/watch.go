package canvas

import (
	"fmt"
	"time"
)

// WatchState is the shared state threaded through the watch canvas's
// controls: the live clock plus per-screen visibility toggles, per
// spec.md §4.7.
type WatchState struct {
	Now           func() time.Time
	ScreenVisible map[string]bool
	KeyboardShown bool

	// ToggleScreen and ToggleKeyboard are invoked by the per-button
	// OnPress/OnRelease hooks; the canvas owns no overlay container
	// reference directly, keeping this package free of a dependency on
	// the overlay package.
	ToggleScreen   func(name string)
	ToggleKeyboard func()
	ResetLayout    func()
}

// watchButtonData is the per-control data for a quick-toggle button.
type watchButtonData struct {
	ScreenName  string
	IsKeyboard  bool
	pressedAt   time.Time
	longPressed bool
}

// longPressDuration matches a typical press-and-hold threshold; spec.md
// §4.7 only says "long-press = reset" without naming a duration.
const longPressDuration = 600 * time.Millisecond

// NewWatchCanvas builds the watch canvas: a clock label plus one
// quick-toggle button per known screen name and one for the keyboard.
// Long-press on any button resets the layout; short-press toggles
// visibility, per spec.md §4.7.
func NewWatchCanvas(width, height int, screenNames []string, state WatchState) *Canvas[watchButtonData, WatchState] {
	if state.Now == nil {
		state.Now = time.Now
	}
	c := New[watchButtonData, WatchState](width, height, state)

	clock := &Control[watchButtonData, WatchState]{
		ID:   0,
		Rect: Rect{X: 4, Y: 4, W: width - 8, H: 24},
		OnUpdate: func(ctrl *Control[watchButtonData, WatchState], shared *WatchState) bool {
			text := shared.Now().Format("Mon Jan 2 15:04:05")
			dirty := ctrl.Text != text
			ctrl.Text = text
			return dirty
		},
	}
	c.AddControl(clock)

	buttonW, buttonH := 40, 28
	x := 4
	y := 32
	for _, name := range screenNames {
		name := name
		btn := &Control[watchButtonData, WatchState]{
			ID:   len(c.Controls),
			Rect: Rect{X: x, Y: y, W: buttonW, H: buttonH},
			Data: watchButtonData{ScreenName: name},
			Text: name,
			OnPress: func(ctrl *Control[watchButtonData, WatchState], shared *WatchState) {
				ctrl.Data.pressedAt = shared.Now()
				ctrl.Data.longPressed = false
			},
			OnRelease: func(ctrl *Control[watchButtonData, WatchState], shared *WatchState) {
				if shared.Now().Sub(ctrl.Data.pressedAt) >= longPressDuration {
					ctrl.Data.longPressed = true
					if shared.ResetLayout != nil {
						shared.ResetLayout()
					}
					return
				}
				if shared.ToggleScreen != nil {
					shared.ToggleScreen(ctrl.Data.ScreenName)
				}
			},
			TestHighlight: func(ctrl *Control[watchButtonData, WatchState], shared *WatchState) bool {
				return shared.ScreenVisible[ctrl.Data.ScreenName]
			},
		}
		c.AddControl(btn)
		x += buttonW + 4
	}

	kbd := &Control[watchButtonData, WatchState]{
		ID:   len(c.Controls),
		Rect: Rect{X: x, Y: y, W: buttonW, H: buttonH},
		Data: watchButtonData{IsKeyboard: true},
		Text: "kbd",
		OnPress: func(ctrl *Control[watchButtonData, WatchState], shared *WatchState) {
			ctrl.Data.pressedAt = shared.Now()
		},
		OnRelease: func(ctrl *Control[watchButtonData, WatchState], shared *WatchState) {
			if shared.Now().Sub(ctrl.Data.pressedAt) >= longPressDuration {
				if shared.ResetLayout != nil {
					shared.ResetLayout()
				}
				return
			}
			if shared.ToggleKeyboard != nil {
				shared.ToggleKeyboard()
			}
		},
		TestHighlight: func(ctrl *Control[watchButtonData, WatchState], shared *WatchState) bool {
			return shared.KeyboardShown
		},
	}
	c.AddControl(kbd)

	return c
}

// FormatVolume renders a 0-100 volume level the way the watch face's
// volume readout expects it.
func FormatVolume(level int) string {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return fmt.Sprintf("vol %d%%", level)
}
