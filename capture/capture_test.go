package capture

import (
	"os"
	"testing"
)

type fakeBackend struct {
	imports   int
	uploads   int
	pixels    int
	released  []any
	lastFmt   VkFormat
}

func (f *fakeBackend) ImportDMABuf(planes []DMABufPlane, width, height int, format VkFormat) (any, error) {
	f.imports++
	f.lastFmt = format
	return "dmabuf-image", nil
}
func (f *fakeBackend) UploadSHM(data BufferData, format VkFormat) (any, error) {
	f.uploads++
	f.lastFmt = format
	return "shm-image", nil
}
func (f *fakeBackend) UploadSinglePixel(rgba [4]byte) (any, error) {
	f.pixels++
	return "spb-image", nil
}
func (f *fakeBackend) ReleaseImage(handle any) error {
	f.released = append(f.released, handle)
	return nil
}

func TestFormatForMapsFourccToVkFormat(t *testing.T) {
	format, err := FormatFor(FourccAB24, false)
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatR8G8B8A8Unorm {
		t.Fatalf("expected R8G8B8A8Unorm, got %v", format)
	}
	if _, err := FormatFor(Fourcc(0xdeadbeef), false); err == nil {
		t.Fatalf("expected an error for an unsupported fourcc")
	}
}

func TestSanitizeModifiersDropsBuggyTokens(t *testing.T) {
	reported := []uint64{0x0200000000000042, 0x0200000000000043}
	clean := SanitizeModifiers(reported)
	if len(clean) != 1 || clean[0] != knownGoodModifier {
		t.Fatalf("expected the buggy modifiers to collapse to the linear fallback, got %v", clean)
	}

	reported = []uint64{0x1, knownGoodModifier}
	clean = SanitizeModifiers(reported)
	if len(clean) != 2 {
		t.Fatalf("expected non-buggy modifiers to pass through untouched, got %v", clean)
	}
}

func TestImportDMABufCachesBySourceFD(t *testing.T) {
	// A real fd is needed since ImportDMABuf dupes it.
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	backend := &fakeBackend{}
	cache := NewCache(backend)
	planes := []DMABufPlane{{FD: int(r.Fd()), Fourcc: FourccAB24}}

	img1, err := cache.ImportDMABuf(planes, 64, 64, FourccAB24, false)
	if err != nil {
		t.Fatal(err)
	}
	img2, err := cache.ImportDMABuf(planes, 64, 64, FourccAB24, false)
	if err != nil {
		t.Fatal(err)
	}
	if img1 != img2 {
		t.Fatalf("expected the second import of the same fd to hit the cache")
	}
	if backend.imports != 1 {
		t.Fatalf("expected exactly one backend import call, got %d", backend.imports)
	}
}

func TestUploadSHMIsNeverCached(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewCache(backend)
	data := BufferData{Data: []byte{1, 2, 3, 4}, Width: 1, Height: 1, Fourcc: FourccXR24}

	if _, err := cache.UploadSHM(data, false); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.UploadSHM(data, false); err != nil {
		t.Fatal(err)
	}
	if backend.uploads != 2 {
		t.Fatalf("expected every SHM upload to hit the backend, got %d calls", backend.uploads)
	}
}

func TestEvictReleasesAndDropsCacheEntry(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	backend := &fakeBackend{}
	cache := NewCache(backend)
	planes := []DMABufPlane{{FD: int(r.Fd()), Fourcc: FourccAB24}}
	if _, err := cache.ImportDMABuf(planes, 8, 8, FourccAB24, false); err != nil {
		t.Fatal(err)
	}

	cache.Evict(int(r.Fd()))
	if len(backend.released) != 1 {
		t.Fatalf("expected exactly one release on eviction, got %d", len(backend.released))
	}

	if _, err := cache.ImportDMABuf(planes, 8, 8, FourccAB24, false); err != nil {
		t.Fatal(err)
	}
	if backend.imports != 2 {
		t.Fatalf("expected a re-import after eviction, got %d total imports", backend.imports)
	}
}
