package hid

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/wayland-virtual-input-go/virtual_keyboard"
	"github.com/bnema/wayland-virtual-input-go/virtual_pointer"
)

// WaylandProvider injects input through the compositor's
// wlr-virtual-pointer-unstable-v1 and virtual-keyboard-unstable-v1
// protocols, grounded on bnema-waymon's WaylandVirtualInput backend.
type WaylandProvider struct {
	pointerMgr *virtual_pointer.VirtualPointerManager
	keyboardMgr *virtual_keyboard.VirtualKeyboardManager
	pointer    *virtual_pointer.VirtualPointer
	keyboard   *virtual_keyboard.VirtualKeyboard
}

// NewWaylandProvider creates the virtual pointer and keyboard managers and
// the single shared device instances this process injects through.
func NewWaylandProvider(ctx context.Context) (*WaylandProvider, error) {
	pointerMgr, err := virtual_pointer.NewVirtualPointerManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("hid: creating virtual pointer manager: %w", err)
	}
	pointer, err := pointerMgr.CreatePointer()
	if err != nil {
		return nil, fmt.Errorf("hid: creating virtual pointer: %w", err)
	}

	keyboardMgr, err := virtual_keyboard.NewVirtualKeyboardManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("hid: creating virtual keyboard manager: %w", err)
	}
	keyboard, err := keyboardMgr.CreateKeyboard()
	if err != nil {
		return nil, fmt.Errorf("hid: creating virtual keyboard: %w", err)
	}

	return &WaylandProvider{
		pointerMgr:  pointerMgr,
		keyboardMgr: keyboardMgr,
		pointer:     pointer,
		keyboard:    keyboard,
	}, nil
}

func (w *WaylandProvider) MotionAbsolute(x, y float64, surfaceW, surfaceH int) error {
	if surfaceW <= 0 {
		surfaceW = 1
	}
	if surfaceH <= 0 {
		surfaceH = 1
	}
	if err := w.pointer.MotionAbsolute(time.Now(), uint32(x), uint32(y), uint32(surfaceW), uint32(surfaceH)); err != nil {
		return fmt.Errorf("hid: wayland motion: %w", err)
	}
	return w.pointer.Frame()
}

func (w *WaylandProvider) Button(btn Button, pressed bool) error {
	state := virtual_pointer.ButtonStateReleased
	if pressed {
		state = virtual_pointer.ButtonStatePressed
	}
	if err := w.pointer.Button(time.Now(), uint32(btn), state); err != nil {
		return fmt.Errorf("hid: wayland button: %w", err)
	}
	return w.pointer.Frame()
}

func (w *WaylandProvider) Scroll(dx, dy float64) error {
	if err := w.pointer.AxisSource(virtual_pointer.AxisSourceWheel); err != nil {
		return fmt.Errorf("hid: wayland axis source: %w", err)
	}
	now := time.Now()
	if dy != 0 {
		if err := w.pointer.Axis(now, virtual_pointer.AxisVertical, -dy); err != nil {
			return fmt.Errorf("hid: wayland vertical axis: %w", err)
		}
	}
	if dx != 0 {
		if err := w.pointer.Axis(now, virtual_pointer.AxisHorizontal, dx); err != nil {
			return fmt.Errorf("hid: wayland horizontal axis: %w", err)
		}
	}
	return w.pointer.Frame()
}

func (w *WaylandProvider) Key(key Key, pressed bool) error {
	state := virtual_keyboard.KeyStateReleased
	if pressed {
		state = virtual_keyboard.KeyStatePressed
	}
	if err := w.keyboard.Key(time.Now(), uint32(key), state); err != nil {
		return fmt.Errorf("hid: wayland key: %w", err)
	}
	return nil
}

// Frame is a no-op: MotionAbsolute/Button/Scroll already call the
// protocol's own wl_pointer.frame after each request.
func (w *WaylandProvider) Frame() error { return nil }

func (w *WaylandProvider) Close() error {
	if w.pointer != nil {
		w.pointer.Close()
	}
	if w.keyboard != nil {
		w.keyboard.Close()
	}
	if w.pointerMgr != nil {
		w.pointerMgr.Close()
	}
	if w.keyboardMgr != nil {
		w.keyboardMgr.Close()
	}
	return nil
}
