// Package hid synthesizes pointer and keyboard input on the host and, when
// the embedded compositor owns the surface, on WayVR's own seat. Two
// Provider implementations exist: a Wayland virtual-input backend grounded
// on bnema-waymon's internal/input/wayland_virtual_input.go, and a
// golang.org/x/sys/unix uinput fallback for compositors that don't speak
// wlr-virtual-pointer / virtual-keyboard-unstable-v1.
package hid

import "time"

// Button identifies a pointer button using Linux evdev button codes (e.g.
// BTN_LEFT = 0x110), matching the wire codes virtual_pointer.Button expects.
type Button uint32

const (
	ButtonLeft   Button = 0x110
	ButtonRight  Button = 0x111
	ButtonMiddle Button = 0x112
)

// Key identifies a keyboard key using Linux evdev key codes (e.g. KEY_A=30),
// matching virtual_keyboard.Key's wire codes.
type Key uint32

// Provider is the synthesis backend spec.md §4.9 routes pointer/keyboard
// events through: either the host compositor (via Wayland virtual-input
// protocols or the uinput fallback) or, when keyboard_focus targets an
// embedded WayVR client, wayvr's own seat implementation.
type Provider interface {
	MotionAbsolute(x, y float64, surfaceW, surfaceH int) error
	Button(btn Button, pressed bool) error
	Scroll(dx, dy float64) error
	Key(key Key, pressed bool) error
	// Frame flushes any motion this provider coalesced across the events
	// dispatched since the last Frame call, once per XR loop frame
	// (spec.md §4.9).
	Frame() error
	Close() error
}

// Event is a single synthesized input event. Router.Dispatch delivers it
// synchronously to the focused Provider; nothing queues or retries it.
type Event struct {
	At      time.Time
	Motion  *MotionEvent
	Btn     *ButtonEvent
	Scroll  *ScrollEvent
	KeyEvnt *KeyEvent
}

type MotionEvent struct{ X, Y float64 }
type ButtonEvent struct {
	Btn     Button
	Pressed bool
}
type ScrollEvent struct{ Dx, Dy float64 }
type KeyEvent struct {
	Key     Key
	Pressed bool
}

// Router dispatches events either to the host Provider or to a per-client
// WayVR seat, selected by the current keyboard_focus target (spec.md §4.9).
type Router struct {
	Host    Provider
	WayVR   Provider
	Focused bool // true routes to WayVR's seat instead of the host.
}

func (r *Router) target() Provider {
	if r.Focused && r.WayVR != nil {
		return r.WayVR
	}
	return r.Host
}

// Advance flushes both the host and WayVR providers' coalesced motion for
// the frame just completed, regardless of which one is currently focused
// (spec.md §4.3 step 9): a provider not receiving events still needs its
// idle state advanced.
func (r *Router) Advance() error {
	if r.Host != nil {
		if err := r.Host.Frame(); err != nil {
			return err
		}
	}
	if r.WayVR != nil {
		if err := r.WayVR.Frame(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Dispatch(ev Event) error {
	p := r.target()
	if p == nil {
		return nil
	}
	switch {
	case ev.Motion != nil:
		return p.MotionAbsolute(ev.Motion.X, ev.Motion.Y, 0, 0)
	case ev.Btn != nil:
		return p.Button(ev.Btn.Btn, ev.Btn.Pressed)
	case ev.Scroll != nil:
		return p.Scroll(ev.Scroll.Dx, ev.Scroll.Dy)
	case ev.KeyEvnt != nil:
		return p.Key(ev.KeyEvnt.Key, ev.KeyEvnt.Pressed)
	}
	return nil
}
