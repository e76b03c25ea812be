package xr

import (
	"testing"

	"github.com/galister/overlayd/hid"
	"github.com/galister/overlayd/interact"
	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/overlay"
)

// fakeHIDProvider is a minimal hid.Provider that only records Frame calls,
// enough to assert RunFrame's per-frame HID-advance wiring.
type fakeHIDProvider struct{ calls []string }

func (f *fakeHIDProvider) MotionAbsolute(x, y float64, w, h int) error { return nil }
func (f *fakeHIDProvider) Button(btn hid.Button, pressed bool) error   { return nil }
func (f *fakeHIDProvider) Scroll(dx, dy float64) error                 { return nil }
func (f *fakeHIDProvider) Key(key hid.Key, pressed bool) error         { return nil }
func (f *fakeHIDProvider) Frame() error {
	f.calls = append(f.calls, "frame")
	return nil
}
func (f *fakeHIDProvider) Close() error { return nil }

type fakeSession struct {
	frames   []RawInput
	i        int
	begins   int
	ends     int
	submits  int
}

func (f *fakeSession) WaitFrame() (RawInput, error) {
	if f.i >= len(f.frames) {
		return RawInput{}, nil
	}
	r := f.frames[f.i]
	f.i++
	return r, nil
}
func (f *fakeSession) BeginFrame() error                            { f.begins++; return nil }
func (f *fakeSession) EndFrame() error                              { f.ends++; return nil }
func (f *fakeSession) Submit(overlayID uint64, swapchainImage int) error { f.submits++; return nil }

func TestInputStateApplySmoothsTowardRawPose(t *testing.T) {
	s := NewInputState()
	raw := RawInput{
		HMD: DevicePose{Loc: aff.NewV3S(1, 0, 0), Rot: aff.NewQI(), Valid: true},
	}
	s.Apply(raw)
	if s.HMD.Loc.X <= 0 || s.HMD.Loc.X >= 1 {
		t.Fatalf("expected smoothed position strictly between start and target, got %v", s.HMD.Loc.X)
	}
}

func TestInputStateApplyHoldsLastPoseWhenInvalid(t *testing.T) {
	s := NewInputState()
	s.HMD.Loc.SetS(0.5, 0.5, 0.5)
	raw := RawInput{HMD: DevicePose{Valid: false}}
	s.Apply(raw)
	if !s.HMD.Loc.Eq(aff.NewV3S(0.5, 0.5, 0.5)) {
		t.Fatalf("expected pose to hold steady when the device sample is invalid, got %v", s.HMD.Loc)
	}
}

func TestRunFrameBracketsBeginAndEndFrame(t *testing.T) {
	sess := &fakeSession{frames: []RawInput{{HMD: DevicePose{Loc: aff.NewV3(), Rot: aff.NewQI(), Valid: true}}}}
	loop := &Loop{
		Session:  sess,
		Input:    NewInputState(),
		Interact: interact.NewEngine(interact.DefaultConfig(), overlay.NewWorldAnchor()),
		Overlays: overlay.NewEmpty(nil),
		Anchor:   overlay.NewWorldAnchor(),
		WorldUp:  aff.NewV3S(0, 1, 0),
	}
	if err := loop.RunFrame(); err != nil {
		t.Fatal(err)
	}
	if sess.begins != 1 || sess.ends != 1 {
		t.Fatalf("expected exactly one BeginFrame/EndFrame pair, got begins=%d ends=%d", sess.begins, sess.ends)
	}
}

func TestToggledDashboardDetectsRisingEdge(t *testing.T) {
	pointers := [2]*interact.Pointer{interact.NewPointer(0), interact.NewPointer(1)}
	if toggledDashboard(pointers) {
		t.Fatalf("expected no toggle with both buttons up")
	}
	pointers[1].Now.ToggleDashboard = true
	if !toggledDashboard(pointers) {
		t.Fatalf("expected a rising edge to be detected")
	}
}

// hapticsHoverHandler always consumes and always asks for haptics, so a
// hand aimed at it triggers the full pointer-line / haptics / HID tail
// path exercised below.
type hapticsHoverHandler struct{}

func (hapticsHoverHandler) OnHover(u, v float64) overlay.HoverResult {
	return overlay.HoverResult{Consume: true, Haptics: true}
}
func (hapticsHoverHandler) OnLeft()                            {}
func (hapticsHoverHandler) OnPointer(pressed bool, u, v float64) {}
func (hapticsHoverHandler) OnScroll(dx, dy float64)              {}

type fakeHapticsSink struct{ pulses []HapticsPulse }

func (f *fakeHapticsSink) Haptics(p HapticsPulse) error {
	f.pulses = append(f.pulses, p)
	return nil
}

// TestRunFrameDrawsLinesAndFiresHapticsAndAdvancesHID is the S6 scenario:
// a hand aimed at a hovered, haptics-requesting overlay produces a pointer
// line layer, fires a haptics pulse for that hand only, and advances the
// HID router once, all within one RunFrame call.
func TestRunFrameDrawsLinesAndFiresHapticsAndAdvancesHID(t *testing.T) {
	screen := overlay.NewOverlay(1, "screen")
	screen.WantVisible = true
	screen.Placement.Transform.Loc.SetS(0, 0, -1)
	screen.Content.Handler = hapticsHoverHandler{}
	overlays := overlay.NewEmpty(nil)
	overlays.Insert(screen)

	raw := RawInput{
		HMD: DevicePose{Loc: aff.NewV3(), Rot: aff.NewQI(), Valid: true},
		Hands: [2]DevicePose{
			{Loc: aff.NewV3(), Rot: aff.NewQI(), Valid: true},          // hand 0: aimed straight at the screen.
			{Loc: aff.NewV3S(5, 5, 0), Rot: aff.NewQI(), Valid: true}, // hand 1: aimed past it, misses.
		},
	}
	sess := &fakeSession{frames: []RawInput{raw}}

	lineBackend := &fakeLineBackend{}
	pool, err := NewLinePool(lineBackend)
	if err != nil {
		t.Fatal(err)
	}
	var emittedLayers []LineLayer
	haptics := &fakeHapticsSink{}
	hidProvider := &fakeHIDProvider{}
	router := &hid.Router{Host: hidProvider}

	loop := &Loop{
		Session:  sess,
		Input:    NewInputState(),
		Interact: interact.NewEngine(interact.DefaultConfig(), overlay.NewWorldAnchor()),
		Overlays: overlays,
		Anchor:   overlay.NewWorldAnchor(),
		WorldUp:  aff.NewV3S(0, 1, 0),
		Lines:    pool,
		OnRenderLines: func(layers []LineLayer) {
			emittedLayers = layers
		},
		Haptics: haptics,
		HID:     router,
	}

	if err := loop.RunFrame(); err != nil {
		t.Fatal(err)
	}

	if len(emittedLayers) != 1 || emittedLayers[0].Hand != 0 {
		t.Fatalf("expected exactly one line layer for hand 0, got %+v", emittedLayers)
	}
	if len(haptics.pulses) != 1 || haptics.pulses[0].Hand != 0 {
		t.Fatalf("expected exactly one haptics pulse for hand 0, got %+v", haptics.pulses)
	}
	if len(hidProvider.calls) != 1 || hidProvider.calls[0] != "frame" {
		t.Fatalf("expected the HID provider to be advanced exactly once, got %v", hidProvider.calls)
	}
}
