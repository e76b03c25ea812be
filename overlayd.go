// Package overlayd wires every subsystem into one running application:
// overlays, interaction, the XR frame loop, host input synthesis, the
// task queue, and the optional notification/OSC/embedded-compositor
// integrations. New's sequential "build a subsystem, bail out through
// Shutdown on error" structure and Shutdown's nil-guarded teardown mirror
// the teacher's eng.go New()/Shutdown().
package overlayd

import (
	"fmt"
	"time"

	"github.com/galister/overlayd/canvas"
	"github.com/galister/overlayd/capture"
	"github.com/galister/overlayd/config"
	"github.com/galister/overlayd/hid"
	"github.com/galister/overlayd/interact"
	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/notify"
	"github.com/galister/overlayd/osc"
	"github.com/galister/overlayd/overlay"
	"github.com/galister/overlayd/task"
	"github.com/galister/overlayd/wayvr"
	"github.com/galister/overlayd/xr"
	"github.com/galister/overlayd/xr/swapchain"
)

// AppState aggregates every live subsystem of a running overlayd process.
type AppState struct {
	Config config.Config

	Overlays *overlay.Container
	Anchor   *overlay.WorldAnchor
	Interact *interact.Engine
	Tasks    *task.Queue
	Capture  *capture.Cache
	HID      *hid.Router

	Loop *xr.Loop

	Notify     *notify.Monitor
	OSC        *osc.Sender
	Compositor *wayvr.Compositor

	Watch    *canvas.WatchCanvas
	Keyboard *canvas.KeyboardCanvas
	Anchored *canvas.AnchorCanvas
}

// Deps are the external collaborators New wires in: the XR runtime
// session, the output-discovery source, the host-facing input provider,
// an optional WayVR-facing provider, and an optional capture backend.
// Each is injected the same way eng.go's Director is, because the
// concrete runtime/compositor/GPU context lives outside this module
// (spec.md §1).
type Deps struct {
	Session      xr.Session
	Outputs      overlay.OutputSource
	HostInput    hid.Provider
	WayVRInput   hid.Provider // optional; nil disables WayVR-focused routing
	CaptureGPU   capture.Backend
	LineBackend  swapchain.Backend // optional; nil disables the pointer-line pool
	Haptics      xr.HapticsSink    // optional; nil disables controller haptics
	KeyboardFile string            // path to the keyboard layout YAML; optional
	SavedState   config.SavedState // previously persisted layout; zero value applies nothing
}

const (
	watchWidth, watchHeight = 220, 96
	anchorSize              = 64
)

// New builds every subsystem in dependency order, tearing down whatever
// was already built if a later step fails.
func New(cfg config.Config, deps Deps) (app *AppState, err error) {
	app = &AppState{Config: cfg}

	app.Anchor = overlay.NewWorldAnchor()

	var screenNames []string
	if deps.Outputs != nil {
		for _, s := range deps.Outputs.Outputs() {
			screenNames = append(screenNames, s.Name)
		}
	}

	var watchOverlay, keyboardOverlay, anchorOverlay *overlay.Overlay
	app.Overlays = overlay.New(deps.Outputs, cfg.ShownScreens,
		func(id uint64) *overlay.Overlay { watchOverlay = overlay.NewOverlay(id, "watch"); return watchOverlay },
		func(id uint64) *overlay.Overlay { keyboardOverlay = overlay.NewOverlay(id, "keyboard"); return keyboardOverlay },
		func(id uint64) *overlay.Overlay { anchorOverlay = overlay.NewOverlay(id, "anchor"); return anchorOverlay },
	)

	config.ApplyState(app.Overlays, app.Anchor, deps.SavedState)

	app.Watch = canvas.NewWatchCanvas(watchWidth, watchHeight, screenNames, canvas.WatchState{
		ScreenVisible: map[string]bool{},
		ToggleScreen: func(name string) {
			if o := app.Overlays.GetByName(name); o != nil {
				o.WantVisible = !o.WantVisible
			}
		},
		ToggleKeyboard: func() {
			if o := app.Overlays.GetByName("keyboard"); o != nil {
				o.WantVisible = !o.WantVisible
			}
		},
		ResetLayout: func() {
			app.Overlays.Each(func(o *overlay.Overlay) { o.ResetToSpawn() })
		},
	})
	watchOverlay.Placement.ContentW, watchOverlay.Placement.ContentH = watchWidth, watchHeight
	watchOverlay.Content.Handler = canvas.NewContentHandler(app.Watch)

	app.Anchored = canvas.NewAnchorCanvas(anchorSize)
	anchorOverlay.Placement.ContentW, anchorOverlay.Placement.ContentH = anchorSize, anchorSize
	anchorOverlay.Content.Handler = canvas.NewContentHandler(app.Anchored)

	icfg := interact.DefaultConfig()
	icfg.AllowSliding = cfg.AllowSliding
	icfg.ScrollScale = cfg.ScrollScale
	icfg.InvertScrollX = cfg.InvertScrollX
	icfg.InvertScrollY = cfg.InvertScrollY
	app.Interact = interact.NewEngine(icfg, app.Anchor)

	app.Tasks = task.NewQueue(time.Now)

	if deps.CaptureGPU != nil {
		app.Capture = capture.NewCache(deps.CaptureGPU)
	}

	app.HID = &hid.Router{Host: deps.HostInput, WayVR: deps.WayVRInput}

	if cfg.Notifications.Enabled {
		app.Notify, err = notify.Dial(cfg.Notifications.QueueLength)
		if err != nil {
			app.Shutdown()
			return nil, fmt.Errorf("overlayd: starting notification monitor: %w", err)
		}
	}

	if cfg.OSC.Enabled {
		app.OSC, err = osc.Dial(cfg.OSC.Addr)
		if err != nil {
			app.Shutdown()
			return nil, fmt.Errorf("overlayd: dialing OSC sender: %w", err)
		}
	}

	if deps.KeyboardFile != "" {
		layout, err := canvas.LoadLayout(deps.KeyboardFile)
		if err != nil {
			app.Shutdown()
			return nil, fmt.Errorf("overlayd: loading keyboard layout: %w", err)
		}
		app.Keyboard = canvas.NewKeyboardCanvas(watchWidth, layout, canvas.KeyState{
			OnKey: func(code uint32, pressed bool) {
				if app.HID != nil {
					app.HID.Dispatch(hid.Event{KeyEvnt: &hid.KeyEvent{Key: hid.Key(code), Pressed: pressed}})
				}
			},
			OnExec: func(cmd string) {
				_ = cmd // exec-bound keys (e.g. a screenshot shortcut) are launched by the caller, which owns process-spawn policy.
			},
		})
		keyboardOverlay.Placement.ContentW, keyboardOverlay.Placement.ContentH = app.Keyboard.Width, app.Keyboard.Height
		keyboardOverlay.Content.Handler = canvas.NewContentHandler(app.Keyboard)
	}

	app.Loop = &xr.Loop{
		Session:  deps.Session,
		Input:    xr.NewInputState(),
		Interact: app.Interact,
		Overlays: app.Overlays,
		Anchor:   app.Anchor,
		WorldUp:  aff.NewV3S(0, 1, 0),
		Haptics:  deps.Haptics,
		HID:      app.HID,
	}

	if deps.LineBackend != nil {
		app.Loop.Lines, err = xr.NewLinePool(deps.LineBackend)
		if err != nil {
			app.Shutdown()
			return nil, fmt.Errorf("overlayd: creating pointer-line pool: %w", err)
		}
	}

	return app, nil
}

// StartCompositor lazily starts the embedded Wayland compositor, since
// spec.md §4.8's socket probing can fail (no free wayvr-N) and callers
// may legitimately run without it.
func (a *AppState) StartCompositor(resolveDisplay func(pid int) (wayvr.DisplayHandle, error), onCommit wayvr.CommitHandler, onSeat wayvr.SeatHandler) error {
	comp, err := wayvr.Listen(resolveDisplay, onCommit, onSeat)
	if err != nil {
		return fmt.Errorf("overlayd: starting embedded compositor: %w", err)
	}
	a.Compositor = comp
	go comp.Serve()
	return nil
}

// RunUntil drives the XR frame loop until alive returns false, delegating
// to xr.RunUntil.
func (a *AppState) RunUntil(alive func() bool) error {
	return xr.RunUntil(a.Loop, alive)
}

// RefreshWatchState syncs the watch canvas's per-screen/keyboard
// visibility flags from the live container, so its toggle buttons
// highlight correctly regardless of what changed them (a watch button
// press, a drained task, or config). Neither xr.Loop nor cmd/overlayd
// calls it; the flags change only when some caller invokes it.
func (a *AppState) RefreshWatchState() {
	if a.Watch == nil {
		return
	}
	a.Overlays.Each(func(o *overlay.Overlay) {
		if o.ShowHide && o.Name != "watch" && o.Name != "keyboard" {
			a.Watch.Shared.ScreenVisible[o.Name] = o.WantVisible
		}
	})
	if kb := a.Overlays.GetByName("keyboard"); kb != nil {
		a.Watch.Shared.KeyboardShown = kb.WantVisible
	}
}

// Drain pops every due task and applies it against the live overlay
// container, per spec.md §4.10. onSystem/onHaptics receive the
// non-overlay task kinds (System, Input).
func (a *AppState) Drain(buf []*task.Task, onSystem func(task.SystemAction), onHaptics func(task.HapticsPulse)) []*task.Task {
	due := a.Tasks.RetrieveDue(buf)
	for _, t := range due {
		t.Apply(a.Overlays, onSystem, onHaptics)
	}
	return due
}

// Shutdown closes the compositor, the OSC sender and the notification
// listener where each was started; the frame loop and its line pool are
// not touched. Each close is nil-guarded the same way eng.go's Shutdown
// is, so a partially
// constructed AppState (from a failed New) can still be cleaned up
// safely.
func (a *AppState) Shutdown() {
	if a.Compositor != nil {
		a.Compositor.Close()
		a.Compositor = nil
	}
	if a.OSC != nil {
		a.OSC.Close()
		a.OSC = nil
	}
	if a.Notify != nil {
		a.Notify.Close()
		a.Notify = nil
	}
}
