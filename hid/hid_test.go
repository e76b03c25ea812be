package hid

import "testing"

type fakeProvider struct {
	name  string
	calls []string
}

func (f *fakeProvider) MotionAbsolute(x, y float64, w, h int) error {
	f.calls = append(f.calls, "motion")
	return nil
}
func (f *fakeProvider) Button(btn Button, pressed bool) error {
	f.calls = append(f.calls, "button")
	return nil
}
func (f *fakeProvider) Scroll(dx, dy float64) error {
	f.calls = append(f.calls, "scroll")
	return nil
}
func (f *fakeProvider) Key(key Key, pressed bool) error {
	f.calls = append(f.calls, "key")
	return nil
}
func (f *fakeProvider) Frame() error {
	f.calls = append(f.calls, "frame")
	return nil
}
func (f *fakeProvider) Close() error { return nil }

func TestRouterDispatchesToHostByDefault(t *testing.T) {
	host := &fakeProvider{name: "host"}
	wayvr := &fakeProvider{name: "wayvr"}
	r := Router{Host: host, WayVR: wayvr}

	r.Dispatch(Event{Motion: &MotionEvent{X: 1, Y: 2}})
	if len(host.calls) != 1 || len(wayvr.calls) != 0 {
		t.Fatalf("expected the host provider to receive the event, got host=%v wayvr=%v", host.calls, wayvr.calls)
	}
}

func TestRouterDispatchesToWayVRWhenFocused(t *testing.T) {
	host := &fakeProvider{name: "host"}
	wayvr := &fakeProvider{name: "wayvr"}
	r := Router{Host: host, WayVR: wayvr, Focused: true}

	r.Dispatch(Event{Btn: &ButtonEvent{Btn: ButtonLeft, Pressed: true}})
	if len(wayvr.calls) != 1 || len(host.calls) != 0 {
		t.Fatalf("expected the WayVR provider to receive the event when focused, got host=%v wayvr=%v", host.calls, wayvr.calls)
	}
}

func TestRouterAdvanceFlushesBothProviders(t *testing.T) {
	host := &fakeProvider{name: "host"}
	wayvr := &fakeProvider{name: "wayvr"}
	r := Router{Host: host, WayVR: wayvr}

	if err := r.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if len(host.calls) != 1 || host.calls[0] != "frame" {
		t.Fatalf("expected host to receive one frame call, got %v", host.calls)
	}
	if len(wayvr.calls) != 1 || wayvr.calls[0] != "frame" {
		t.Fatalf("expected wayvr to receive one frame call regardless of focus, got %v", wayvr.calls)
	}
}
