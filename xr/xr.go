// Package xr implements the per-frame XR loop of spec.md §4.3, structurally
// grounded on the teacher's eng.go Action/update/render split: a fixed-point
// poll-input -> step-logic -> render sequence, except the XR runtime's own
// WaitFrame/BeginFrame/EndFrame bracket each iteration instead of the
// teacher's SwapBuffers. The XR runtime itself (OpenXR/OpenVR) is external
// per spec.md §1 and is modeled here as the Session interface, grounded on
// the teacher's Director dependency-injection idiom in eng.go.
package xr

import (
	"time"

	"github.com/galister/overlayd/hid"
	"github.com/galister/overlayd/interact"
	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/overlay"
)

// DevicePose is one tracked device's raw pose for a frame, before
// smoothing.
type DevicePose struct {
	Loc *aff.V3
	Rot *aff.Q
	Valid bool
}

// RawInput is the unsmoothed per-frame sample handed up from the runtime.
type RawInput struct {
	HMD     DevicePose
	Hands   [2]DevicePose // 0 = left, 1 = right
	Digital [2]interact.Digital
	Analog  [2]interact.Analog
}

// Session is the injected XR runtime boundary (spec.md §1: the XR runtime
// itself is out of scope). A concrete OpenXR or OpenVR binding implements
// this outside the module.
type Session interface {
	WaitFrame() (RawInput, error)
	BeginFrame() error
	EndFrame() error
	Submit(overlayID uint64, swapchainImage int) error
}

// InputState holds the engine's per-frame tracked-device state: the HMD
// transform and both pointers, smoothed from the raw session samples.
// Grounded on teacher's math/lin.V3/Q lerp helpers (vector.go/quaternion.go).
type InputState struct {
	HMD      *aff.Transform
	Pointers [2]*interact.Pointer
}

// NewInputState builds identity-posed tracked devices.
func NewInputState() *InputState {
	return &InputState{
		HMD:      aff.NewTransform(),
		Pointers: [2]*interact.Pointer{interact.NewPointer(0), interact.NewPointer(1)},
	}
}

// smoothFactor is the per-frame pose lerp ratio: higher tracks faster,
// lower smooths jitter more. 0.3 matches typical controller-smoothing
// presets (neither sluggish nor jittery at 90Hz).
const smoothFactor = 0.3

// Apply folds one frame of raw tracking data into the smoothed InputState.
// Invalid device poses are skipped, holding the last known smoothed pose.
func (s *InputState) Apply(raw RawInput) {
	if raw.HMD.Valid {
		s.HMD.Loc.Lerp(s.HMD.Loc, raw.HMD.Loc, smoothFactor)
		s.HMD.Rot.NlerpShort(s.HMD.Rot, raw.HMD.Rot, smoothFactor)
	}
	for i := 0; i < 2; i++ {
		p := s.Pointers[i]
		p.Before = p.Now
		p.Now = raw.Digital[i]
		p.Analog = raw.Analog[i]
		if raw.Hands[i].Valid {
			p.RawPose.Loc.Set(raw.Hands[i].Loc)
			p.RawPose.Rot.Set(raw.Hands[i].Rot)
			p.Pose.Loc.Lerp(p.Pose.Loc, raw.Hands[i].Loc, smoothFactor)
			p.Pose.Rot.NlerpShort(p.Pose.Rot, raw.Hands[i].Rot, smoothFactor)
		}
	}
}

// HapticsPulse is one requested controller vibration, per spec.md §4.3 step
// 9: a hand hovering or clicking a consuming overlay this frame asks for a
// pulse once EndFrame has committed.
type HapticsPulse struct {
	Hand     int
	Amp      float64
	Freq     float64
	Duration time.Duration
}

// HapticsSink is the injected controller-haptics boundary, the per-hand
// counterpart to task.HapticsPulse's task-queue-driven haptics: this one
// fires from the interaction engine's own per-frame hover/click result
// rather than from a scheduled task.
type HapticsSink interface {
	Haptics(pulse HapticsPulse) error
}

// defaultHapticsPulse is the pulse fired for a hover/click haptics hit,
// grounded on input.rs's grab-initiate haptic literal
// (intensity 0.25, duration 0.1, frequency 0.1).
var defaultHapticsPulse = HapticsPulse{Amp: 0.25, Freq: 0.1, Duration: 100 * time.Millisecond}

// Loop runs one update per RunFrame call against a live Session, mirroring
// eng.go's Action method: WaitFrame replaces polling the device, the
// interaction engine step replaces stage.update, and BeginFrame/EndFrame
// replace SwapBuffers. RunFrame does not call Session.Submit.
type Loop struct {
	Session  Session
	Input    *InputState
	Interact *interact.Engine
	Overlays *overlay.Container
	Anchor   *overlay.WorldAnchor

	// WorldUp is the world-space up axis used for anchor snap-upright and
	// grab realign (spec.md §4.2.4), typically (0,1,0).
	WorldUp *aff.V3

	// Lines is the pointer-line pool (spec.md §4.5). Nil disables pointer
	// ray rendering entirely.
	Lines *LinePool

	// OnRender is called once per frame with the overlays that want
	// visibility, after interaction stepping but before EndFrame, so the
	// caller can record draw commands into xr/swapchain.
	OnRender func(overlays *overlay.Container)

	// OnRenderLines is called once per frame, after OnRender, with the
	// pointer-line layers Lines produced this frame (spec.md §4.3 step 8).
	OnRenderLines func(layers []LineLayer)

	// Haptics submits the interaction engine's per-hand hover/click haptics
	// result (spec.md §4.3 step 9). Nil disables haptics entirely.
	Haptics HapticsSink

	// HID is advanced once per frame after EndFrame, so providers that
	// coalesce motion flush at most once per frame (spec.md §4.9).
	HID *hid.Router
}

// RunFrame executes one WaitFrame -> step -> render -> EndFrame cycle,
// implementing spec.md §4.3 steps 1-9.
func (l *Loop) RunFrame() error {
	raw, err := l.Session.WaitFrame()
	if err != nil {
		return err
	}
	l.Input.Apply(raw)

	if err := l.Session.BeginFrame(); err != nil {
		return err
	}

	l.Overlays.Update(nil, nil, nil)
	if toggledDashboard(l.Input.Pointers) {
		l.Overlays.ShowHide(l.Anchor, l.Input.HMD, l.WorldUp)
	}
	l.autoMovement()

	result := l.Interact.Step(&l.Input.Pointers, l.Overlays, l.Input.HMD)

	if l.Lines != nil {
		for hand := 0; hand < 2; hand++ {
			p := l.Input.Pointers[hand]
			color := LineColor(int(p.Interaction.Mode) + 1)
			l.Lines.DrawFrom(hand, p.RawPose, result[hand].Length, color, l.Input.HMD)
		}
	}

	if l.OnRender != nil {
		l.OnRender(l.Overlays)
	}

	if l.Lines != nil && l.OnRenderLines != nil {
		layers, err := l.Lines.EmitLayers()
		if err != nil {
			return err
		}
		l.OnRenderLines(layers)
	}

	if err := l.Session.EndFrame(); err != nil {
		return err
	}

	if l.Haptics != nil {
		for hand := 0; hand < 2; hand++ {
			if !result[hand].Haptics {
				continue
			}
			pulse := defaultHapticsPulse
			pulse.Hand = hand
			if err := l.Haptics.Haptics(pulse); err != nil {
				return err
			}
		}
	}
	if l.HID != nil {
		return l.HID.Advance()
	}
	return nil
}

// toggledDashboard reports a rising edge of ToggleDashboard on either hand,
// the button binding that fires the show-hide-all transition of spec.md
// §4.1.
func toggledDashboard(pointers [2]*interact.Pointer) bool {
	for _, p := range pointers {
		if p.Now.ToggleDashboard && !p.Before.ToggleDashboard {
			return true
		}
	}
	return false
}

// RunUntil drives RunFrame in a loop until alive returns false or an error
// occurs, one RunFrame per iteration. It measures and caps the time since
// the previous iteration the way eng.go's Action does, but the capped
// value feeds nothing.
func RunUntil(l *Loop, alive func() bool) error {
	const capTime = 200 * time.Millisecond
	last := time.Now()
	for alive() {
		elapsed := time.Since(last)
		if elapsed > capTime {
			elapsed = capTime
		}
		last = time.Now()
		if err := l.RunFrame(); err != nil {
			return err
		}
	}
	return nil
}
