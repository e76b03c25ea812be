package main

import (
	"context"
	"log/slog"

	"github.com/galister/overlayd"
	"github.com/galister/overlayd/hid"
	"github.com/galister/overlayd/overlay"
)

// stubOutputs reports no screens until a real Wayland/X11 output-discovery
// backend is wired in; overlay discovery is out of scope for this module
// per spec.md §1, the same way the XR runtime itself is (see
// session_none.go, selected by the !openxr build tag; it is the only
// session file in this module).
type stubOutputs struct{}

func (stubOutputs) Outputs() []overlay.ScreenInfo        { return nil }
func (stubOutputs) Events() <-chan overlay.OutputEvent { return nil }

// buildDeps wires the concrete, constructible-in-this-process
// collaborators (HID synthesis) and leaves the runtime-specific ones
// (XR session, output discovery) to whatever platform build tag is
// active; newSession comes from session_none.go, the only session file in
// this module (built unless -tags openxr is set).
func buildDeps(keyboardLayout string, log *slog.Logger) overlayd.Deps {
	host, err := hid.NewWaylandProvider(context.Background())
	var hostProvider hid.Provider
	if err != nil {
		log.Warn("wayland virtual-input unavailable, falling back to uinput", "err", err)
		uinput, uerr := hid.NewUinputProvider()
		if uerr != nil {
			log.Error("uinput fallback also unavailable; host input synthesis disabled", "err", uerr)
		} else {
			hostProvider = uinput
		}
	} else {
		hostProvider = host
	}

	return overlayd.Deps{
		Session:      newSession(log),
		Outputs:      stubOutputs{},
		HostInput:    hostProvider,
		KeyboardFile: keyboardLayout,
	}
}
