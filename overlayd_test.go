package overlayd

import (
	"testing"

	"github.com/galister/overlayd/config"
	"github.com/galister/overlayd/hid"
	"github.com/galister/overlayd/overlay"
	"github.com/galister/overlayd/task"
	"github.com/galister/overlayd/xr"
)

type fakeOutputs struct{}

func (fakeOutputs) Outputs() []overlay.ScreenInfo {
	return []overlay.ScreenInfo{{Handle: 1, Name: "desk1", W: 1920, H: 1080}}
}
func (fakeOutputs) Events() <-chan overlay.OutputEvent { return nil }

type fakeProvider struct{ closed bool }

func (f *fakeProvider) MotionAbsolute(x, y float64, w, h int) error { return nil }
func (f *fakeProvider) Button(btn hid.Button, pressed bool) error   { return nil }
func (f *fakeProvider) Scroll(dx, dy float64) error                 { return nil }
func (f *fakeProvider) Key(key hid.Key, pressed bool) error         { return nil }
func (f *fakeProvider) Frame() error                                { return nil }
func (f *fakeProvider) Close() error                                { f.closed = true; return nil }

type fakeSession struct{}

func (fakeSession) WaitFrame() (xr.RawInput, error)                   { return xr.RawInput{}, nil }
func (fakeSession) BeginFrame() error                                 { return nil }
func (fakeSession) EndFrame() error                                   { return nil }
func (fakeSession) Submit(overlayID uint64, swapchainImage int) error { return nil }

func TestNewWiresOverlaysFromOutputs(t *testing.T) {
	cfg := config.Default()
	app, err := New(cfg, Deps{
		Session:   fakeSession{},
		Outputs:   fakeOutputs{},
		HostInput: &fakeProvider{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if app.Overlays.Len() == 0 {
		t.Fatalf("expected at least one overlay to be created from the discovered output")
	}
	if app.Overlays.GetByName("desk1") == nil {
		t.Fatalf("expected an overlay for the discovered screen desk1")
	}
	if app.Overlays.GetByName("watch") == nil {
		t.Fatalf("expected the watch overlay to exist")
	}
}

func TestNewSkipsOptionalSubsystemsWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.OSC.Enabled = false
	cfg.Notifications.Enabled = false
	app, err := New(cfg, Deps{Session: fakeSession{}, Outputs: fakeOutputs{}, HostInput: &fakeProvider{}})
	if err != nil {
		t.Fatal(err)
	}
	if app.OSC != nil || app.Notify != nil {
		t.Fatalf("expected OSC and Notify to stay nil when disabled in config")
	}
	app.Shutdown()
}

func TestDrainAppliesModifyTaskAgainstLiveContainer(t *testing.T) {
	cfg := config.Default()
	app, err := New(cfg, Deps{Session: fakeSession{}, Outputs: fakeOutputs{}, HostInput: &fakeProvider{}})
	if err != nil {
		t.Fatal(err)
	}
	target := app.Overlays.GetByName("desk1")
	if target == nil {
		t.Fatal("expected a desk1 overlay to exist")
	}

	app.Tasks.Enqueue(&task.Task{
		Kind:     task.ModifyOverlay,
		Selector: task.BySelectorID(target.ID),
		Modify:   func(o *overlay.Overlay) { o.WantVisible = true },
	})

	app.Drain(nil, nil, nil)
	if !target.WantVisible {
		t.Fatalf("expected the due task to have set WantVisible")
	}
}

func TestRunFrameAdvancesTheLoopWithoutError(t *testing.T) {
	cfg := config.Default()
	app, err := New(cfg, Deps{Session: fakeSession{}, Outputs: fakeOutputs{}, HostInput: &fakeProvider{}})
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Loop.RunFrame(); err != nil {
		t.Fatal(err)
	}
}

func TestNewAppliesSavedStateToMatchingOverlay(t *testing.T) {
	cfg := config.Default()
	saved := config.SavedState{
		Overlays: []config.SavedOverlay{
			{Name: "desk1", Loc: [3]float64{1, 2, 3}, Scale: [3]float64{2, 2, 2}, Curvature: 0.1},
		},
	}
	app, err := New(cfg, Deps{Session: fakeSession{}, Outputs: fakeOutputs{}, HostInput: &fakeProvider{}, SavedState: saved})
	if err != nil {
		t.Fatal(err)
	}
	o := app.Overlays.GetByName("desk1")
	if o.Placement.Transform.Loc.X != 1 || o.Placement.Transform.Loc.Y != 2 || o.Placement.Transform.Loc.Z != 3 {
		t.Fatalf("expected the saved location to be restored, got %+v", o.Placement.Transform.Loc)
	}
	if !o.Placement.HasCurvature() {
		t.Fatalf("expected the saved curvature to be restored")
	}
}

func TestWatchCanvasPressToggleScreenVisibility(t *testing.T) {
	cfg := config.Default()
	app, err := New(cfg, Deps{Session: fakeSession{}, Outputs: fakeOutputs{}, HostInput: &fakeProvider{}})
	if err != nil {
		t.Fatal(err)
	}
	o := app.Overlays.GetByName("desk1")
	before := o.WantVisible

	app.RefreshWatchState()
	app.Watch.Press(4, 32)
	app.Watch.Release(4, 32)

	if o.WantVisible == before {
		t.Fatalf("expected pressing the desk1 watch button to toggle its visibility")
	}
}
