package swapchain

import "testing"

type fakeBackend struct {
	created   int
	destroyed int
	acquireAt int
	recorded  []any
	released  []int
}

func (f *fakeBackend) CreateSwapchain(width, height int, format Format, count int) ([]any, error) {
	f.created++
	handles := make([]any, count)
	for i := range handles {
		handles[i] = i
	}
	return handles, nil
}

func (f *fakeBackend) RecordQuad(imageHandle any, contentView any) error {
	f.recorded = append(f.recorded, contentView)
	return nil
}

func (f *fakeBackend) AcquireNext() (int, error) {
	idx := f.acquireAt % ImageCount
	f.acquireAt++
	return idx, nil
}

func (f *fakeBackend) Release(index int) error {
	f.released = append(f.released, index)
	return nil
}

func (f *fakeBackend) DestroySwapchain(handles []any) error {
	f.destroyed++
	return nil
}

func TestNewCreatesImageCountImages(t *testing.T) {
	b := &fakeBackend{}
	sc, err := New(b, 512, 512, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.images) != ImageCount {
		t.Fatalf("expected %d images, got %d", ImageCount, len(sc.images))
	}
	if b.created != 1 {
		t.Fatalf("expected exactly one CreateSwapchain call, got %d", b.created)
	}
}

func TestRenderFrameCyclesThroughRing(t *testing.T) {
	b := &fakeBackend{}
	sc, err := New(b, 64, 64, false)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int]bool{}
	for i := 0; i < ImageCount*2; i++ {
		img, err := sc.RenderFrame("content")
		if err != nil {
			t.Fatal(err)
		}
		seen[img.Index] = true
	}
	if len(seen) != ImageCount {
		t.Fatalf("expected all %d ring slots to be used, saw %v", ImageCount, seen)
	}
	if len(b.recorded) != ImageCount*2 || len(b.released) != ImageCount*2 {
		t.Fatalf("expected every frame to record and release, got recorded=%d released=%d", len(b.recorded), len(b.released))
	}
}

func TestDisposeDestroysAllHandles(t *testing.T) {
	b := &fakeBackend{}
	sc, err := New(b, 1, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := sc.Dispose(); err != nil {
		t.Fatal(err)
	}
	if b.destroyed != 1 {
		t.Fatalf("expected exactly one DestroySwapchain call, got %d", b.destroyed)
	}
}
