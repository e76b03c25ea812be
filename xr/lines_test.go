package xr

import (
	"testing"

	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/xr/swapchain"
)

type fakeLineBackend struct {
	created  int
	recorded []any
}

func (f *fakeLineBackend) CreateSwapchain(width, height int, format swapchain.Format, count int) ([]any, error) {
	f.created++
	handles := make([]any, count)
	for i := range handles {
		handles[i] = i
	}
	return handles, nil
}
func (f *fakeLineBackend) RecordQuad(imageHandle any, contentView any) error {
	f.recorded = append(f.recorded, contentView)
	return nil
}
func (f *fakeLineBackend) AcquireNext() (int, error) { return 0, nil }
func (f *fakeLineBackend) Release(index int) error   { return nil }
func (f *fakeLineBackend) DestroySwapchain(handles []any) error {
	return nil
}

func TestNewLinePoolCreatesFiveColorSwapchains(t *testing.T) {
	b := &fakeLineBackend{}
	_, err := NewLinePool(b)
	if err != nil {
		t.Fatal(err)
	}
	if b.created != lineColorCount {
		t.Fatalf("expected %d swapchains, got %d", lineColorCount, b.created)
	}
}

func TestDrawFromSkipsSubCentimeterLength(t *testing.T) {
	b := &fakeLineBackend{}
	pool, err := NewLinePool(b)
	if err != nil {
		t.Fatal(err)
	}
	from := aff.NewTransform()
	hmd := aff.NewTransform()
	pool.DrawFrom(0, from, 0.005, LineCyan, hmd)

	layers, err := pool.EmitLayers()
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) != 0 {
		t.Fatalf("expected no layer for a sub-centimeter ray, got %d", len(layers))
	}
}

func TestDrawFromProducesLayerForEachActiveHand(t *testing.T) {
	b := &fakeLineBackend{}
	pool, err := NewLinePool(b)
	if err != nil {
		t.Fatal(err)
	}
	from := aff.NewTransform()
	hmd := aff.NewTransform()
	hmd.Loc.SetS(0, 0, -5)

	pool.DrawFrom(0, from, 1.0, LineCyan, hmd)
	pool.DrawFrom(1, from, 0.5, LineRed, hmd)

	layers, err := pool.EmitLayers()
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) != 2 {
		t.Fatalf("expected both hands to produce a layer, got %d", len(layers))
	}
}

func TestDrawFromPlacesMidpointHalfwayAlongRay(t *testing.T) {
	b := &fakeLineBackend{}
	pool, err := NewLinePool(b)
	if err != nil {
		t.Fatal(err)
	}
	from := aff.NewTransform() // identity: local -Z is world -Z.
	hmd := aff.NewTransform()
	hmd.Loc.SetS(0, 0, -5)

	pool.DrawFrom(0, from, 2.0, LineCyan, hmd)

	p := pool.pending[0]
	if !p.active {
		t.Fatalf("expected the line to be active")
	}
	want := aff.NewV3S(0, 0, -1)
	if !p.transform.Loc.Aeq(want) {
		t.Fatalf("expected midpoint at %v, got %v", want, p.transform.Loc)
	}
}
