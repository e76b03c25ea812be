// Package capture implements the capture -> texture pipeline of spec.md
// §4.6: DMA-buf import, SHM upload, and single-pixel buffers all land in
// the same cached GPU-image abstraction. The asset-identity and caching
// idiom (a hashed key over a resource name/handle, looked up before
// re-creating GPU state) is grounded on the teacher's assets.go aid/asset
// pattern; the actual image creation is delegated to an injected Backend
// the same way xr.Session and xr/swapchain.Backend delegate to the
// external GPU context.
package capture

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Fourcc is a DRM four-character-code pixel format, as handed up by
// Wayland/PipeWire dmabuf buffers.
type Fourcc uint32

// The accepted fourcc set from spec.md §4.6.
const (
	FourccXB24 Fourcc = 0x34324258 // XB24
	FourccXR24 Fourcc = 0x34325258 // XR24
	FourccAB24 Fourcc = 0x34324241 // AB24
	FourccAR24 Fourcc = 0x34325241 // AR24
	FourccAB30 Fourcc = 0x30334241 // AB30
	FourccXB30 Fourcc = 0x30334258 // XB30
)

// VkFormat is the subset of Vulkan formats this pipeline produces images
// in; named as an opaque small enum rather than importing a Vulkan
// binding, since the concrete GPU context is injected via Backend.
type VkFormat int

const (
	FormatUnknown VkFormat = iota
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8Srgb
	FormatB8G8R8A8Unorm
	FormatB8G8R8A8Srgb
	FormatA2B10G10R10Unorm
)

// fourccFormats is the fixed fourcc -> vkFormat table of spec.md §4.6.
// UNORM is chosen for XB24/XR24/AB24/AR24's default; callers that know the
// source is sRGB-encoded content should prefer the Srgb variants by passing
// srgb=true to FormatFor / Cache.ImportDMABuf (both share this fourcc
// table; only the colorspace flag differs).
var fourccFormats = map[Fourcc]VkFormat{
	FourccXB24: FormatR8G8B8A8Unorm,
	FourccAB24: FormatR8G8B8A8Unorm,
	FourccXR24: FormatB8G8R8A8Unorm,
	FourccAR24: FormatB8G8R8A8Unorm,
	FourccAB30: FormatA2B10G10R10Unorm,
	FourccXB30: FormatA2B10G10R10Unorm,
}

// FormatFor looks up the vkFormat for a fourcc, and whether an sRGB
// variant was requested.
func FormatFor(fourcc Fourcc, srgb bool) (VkFormat, error) {
	base, ok := fourccFormats[fourcc]
	if !ok {
		return FormatUnknown, fmt.Errorf("capture: unsupported fourcc %#x", uint32(fourcc))
	}
	if srgb && base == FormatR8G8B8A8Unorm {
		return FormatR8G8B8A8Srgb, nil
	}
	if srgb && base == FormatB8G8R8A8Unorm {
		return FormatB8G8R8A8Srgb, nil
	}
	return base, nil
}

// knownBuggyModifiers is the whitelist-inversion workaround of spec.md
// §4.6: a small set of AMD Navi32/33 tiling modifier tokens that are
// reported by the driver but produce corrupt output, replaced wholesale
// with a single known-good modifier rather than trusting the reported
// list. This is a workaround, not a design choice, matching the spec's
// own framing.
var knownBuggyModifiers = map[uint64]bool{
	0x0200000000000042: true, // DRM_FORMAT_MOD_AMD_GFX11_DCC (Navi3x variant A)
	0x0200000000000043: true, // DRM_FORMAT_MOD_AMD_GFX11_DCC (Navi3x variant B)
}

// knownGoodModifier replaces the whole reported modifier list whenever that
// list contains a known-buggy token; sanitizeOne also substitutes it for a
// buggy modifier on a single imported plane.
const knownGoodModifier uint64 = 0 // DRM_FORMAT_MOD_LINEAR

// SanitizeModifiers returns the single linear modifier in place of a
// driver-reported list that contains any known-buggy modifier (or is
// empty), and a copy of the list otherwise.
func SanitizeModifiers(reported []uint64) []uint64 {
	for _, m := range reported {
		if knownBuggyModifiers[m] {
			return []uint64{knownGoodModifier}
		}
	}
	if len(reported) == 0 {
		return []uint64{knownGoodModifier}
	}
	return append([]uint64(nil), reported...)
}

// DMABufPlane describes one imported plane of a Wayland/PipeWire dmabuf
// buffer.
type DMABufPlane struct {
	FD       int
	Offset   uint32
	Stride   uint32
	Fourcc   Fourcc
	Modifier uint64
}

// BufferData is a raw SHM upload: a pointer/size pair plus the
// width/height/stride/format needed to pick a destination image format.
type BufferData struct {
	Data   []byte
	Width  int
	Height int
	Stride int
	Fourcc Fourcc
}

// SourceKey identifies the origin of a captured image for cache lookup.
// DMA-buf sources key on the caller's plane-0 fd (not the dup handed to the
// backend); SHM and single-pixel uploads never build a key and are not
// cached (spec.md §4.6: "weak reference to the DMA-buf, or none for
// SHM/SPB").
type SourceKey struct {
	fd    int
	valid bool
}

// Image is the cached GPU-side result of one of the three ingestion
// paths.
type Image struct {
	Handle any
	Width  int
	Height int
	Format VkFormat
}

// Backend performs the actual GPU-memory work for each ingestion path.
type Backend interface {
	ImportDMABuf(planes []DMABufPlane, width, height int, format VkFormat) (any, error)
	UploadSHM(data BufferData, format VkFormat) (any, error)
	UploadSinglePixel(rgba [4]byte) (any, error)
	ReleaseImage(handle any) error
}

// Cache resolves captured buffers to GPU images, caching DMA-buf imports
// by source key the way the teacher's assets.go caches resources by aid
// so repeated commits of the same buffer don't re-import.
type Cache struct {
	backend Backend

	mu      sync.Mutex
	entries map[SourceKey]*Image
}

// NewCache wraps a Backend with the capture pipeline's source-keyed
// cache.
func NewCache(backend Backend) *Cache {
	return &Cache{backend: backend, entries: make(map[SourceKey]*Image)}
}

// dupFD dupes a dmabuf fd before handing it to the driver, per spec.md
// §4.6, so the caller remains free to close its own copy.
func dupFD(fd int) (int, error) {
	dup, err := unix.Dup(fd)
	if err != nil {
		return -1, fmt.Errorf("capture: dup(%d): %w", fd, err)
	}
	return dup, nil
}

// ImportDMABuf resolves a dmabuf-backed buffer to a cached Image, keyed by
// the plane-0 fd (the source handle).
func (c *Cache) ImportDMABuf(planes []DMABufPlane, width, height int, fourcc Fourcc, srgb bool) (*Image, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("capture: dmabuf import with no planes")
	}
	key := SourceKey{fd: planes[0].FD, valid: true}

	c.mu.Lock()
	if img, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	format, err := FormatFor(fourcc, srgb)
	if err != nil {
		return nil, err
	}

	duped := make([]DMABufPlane, len(planes))
	for i, p := range planes {
		dupFd, err := dupFD(p.FD)
		if err != nil {
			return nil, err
		}
		duped[i] = p
		duped[i].FD = dupFd
		duped[i].Modifier = sanitizeOne(p.Modifier)
	}

	handle, err := c.backend.ImportDMABuf(duped, width, height, format)
	if err != nil {
		return nil, fmt.Errorf("capture: importing dmabuf: %w", err)
	}

	img := &Image{Handle: handle, Width: width, Height: height, Format: format}
	c.mu.Lock()
	c.entries[key] = img
	c.mu.Unlock()
	return img, nil
}

func sanitizeOne(modifier uint64) uint64 {
	if knownBuggyModifiers[modifier] {
		return knownGoodModifier
	}
	return modifier
}

// UploadSHM issues a fresh staging-buffer copy for every call: SHM
// buffers aren't cached, per spec.md §4.6.
func (c *Cache) UploadSHM(data BufferData, srgb bool) (*Image, error) {
	format, err := FormatFor(data.Fourcc, srgb)
	if err != nil {
		return nil, err
	}
	handle, err := c.backend.UploadSHM(data, format)
	if err != nil {
		return nil, fmt.Errorf("capture: uploading shm buffer: %w", err)
	}
	return &Image{Handle: handle, Width: data.Width, Height: data.Height, Format: format}, nil
}

// UploadSinglePixel allocates an uncached 1x1 image, per spec.md §4.6.
func (c *Cache) UploadSinglePixel(rgba [4]byte) (*Image, error) {
	handle, err := c.backend.UploadSinglePixel(rgba)
	if err != nil {
		return nil, fmt.Errorf("capture: uploading single-pixel buffer: %w", err)
	}
	return &Image{Handle: handle, Width: 1, Height: 1, Format: FormatR8G8B8A8Unorm}, nil
}

// Evict drops a cached DMA-buf entry when its source goes away (the
// buffer is destroyed or the client disconnects), per spec.md §4.6
// "Cache entries are dropped when the source goes away."
func (c *Cache) Evict(fd int) {
	key := SourceKey{fd: fd, valid: true}
	c.mu.Lock()
	img, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()
	if ok {
		c.backend.ReleaseImage(img.Handle)
	}
}
