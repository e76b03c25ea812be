package task

import (
	"testing"

	"github.com/galister/overlayd/overlay"
)

type fakeOutputs struct{}

func (fakeOutputs) Outputs() []overlay.ScreenInfo        { return nil }
func (fakeOutputs) Events() <-chan overlay.OutputEvent { return nil }

func TestApplyModifyOverlayMutatesResolvedOverlay(t *testing.T) {
	c := overlay.NewEmpty(fakeOutputs{})
	o := overlay.NewOverlay(overlay.NextID(), "desk1")
	c.Insert(o)

	tsk := &Task{Kind: ModifyOverlay, Selector: BySelectorName("desk1"), Modify: func(o *overlay.Overlay) { o.WantVisible = true }}
	tsk.Apply(c, nil, nil)

	if !o.WantVisible {
		t.Fatalf("expected Modify to run against the resolved overlay")
	}
}

func TestApplyModifyOverlayDropsSilentlyWhenMissing(t *testing.T) {
	c := overlay.NewEmpty(fakeOutputs{})
	called := false
	tsk := &Task{Kind: ModifyOverlay, Selector: BySelectorName("missing"), Modify: func(o *overlay.Overlay) { called = true }}
	tsk.Apply(c, nil, nil)
	if called {
		t.Fatalf("expected Modify not to run when the selector misses")
	}
}

func TestApplyCreateOverlayInsertsFactoryResult(t *testing.T) {
	c := overlay.NewEmpty(fakeOutputs{})
	tsk := &Task{Kind: CreateOverlay, Factory: func() *overlay.Overlay {
		return overlay.NewOverlay(overlay.NextID(), "created")
	}}
	tsk.Apply(c, nil, nil)
	if c.GetByName("created") == nil {
		t.Fatalf("expected the factory-built overlay to be inserted")
	}
}

func TestApplyDropOverlayRemovesResolvedOverlay(t *testing.T) {
	c := overlay.NewEmpty(fakeOutputs{})
	o := overlay.NewOverlay(overlay.NextID(), "gone")
	c.Insert(o)

	tsk := &Task{Kind: DropOverlay, Selector: BySelectorID(o.ID)}
	tsk.Apply(c, nil, nil)
	if c.Get(o.ID) != nil {
		t.Fatalf("expected the overlay to be removed")
	}
}

func TestApplySystemAndInputForwardToSinks(t *testing.T) {
	c := overlay.NewEmpty(fakeOutputs{})
	var gotAction SystemAction
	var gotPulse HapticsPulse

	(&Task{Kind: System, Action: SystemAction{Name: "color_gain"}}).Apply(c,
		func(a SystemAction) { gotAction = a }, nil)
	if gotAction.Name != "color_gain" {
		t.Fatalf("expected the System task to reach onSystem, got %+v", gotAction)
	}

	(&Task{Kind: Input, Haptics: HapticsPulse{Hand: 1}}).Apply(c, nil,
		func(p HapticsPulse) { gotPulse = p })
	if gotPulse.Hand != 1 {
		t.Fatalf("expected the Input task to reach onHaptics, got %+v", gotPulse)
	}
}
