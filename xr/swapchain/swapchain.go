// Package swapchain implements the per-overlay swapchain and pipeline of
// spec.md §4.4: each overlay lazily owns a small ring of render targets it
// cycles through frame to frame. The actual GPU resource creation (images,
// views, framebuffers, pipelines) is delegated to an injected Backend,
// grounded on the teacher's render/vulkan.go createSwapchainResources /
// disposeSwapchainResources split — that file wraps the teacher's own
// vendored internal/render/vk bindings, which aren't a reusable third-party
// dependency, so here the same ring-buffer structure wraps whatever real
// Vulkan/OpenXR binding the caller wires in, the same way xr.Session wraps
// the external XR runtime.
package swapchain

import "fmt"

// Format mirrors the small fixed set spec.md §4.4 asks for.
type Format int

const (
	FormatSRGB Format = iota
	FormatUNORM
)

// Image is one ring slot: an opaque backend handle plus the index the
// backend needs to address it (ImageView, framebuffer, command buffer).
type Image struct {
	Index   int
	Handle  any
}

// Backend creates and destroys the GPU-side resources for a swapchain of a
// given size, and records the one secondary command buffer spec.md §4.4
// calls for per image. It is the GPU equivalent of xr.Session: injected,
// because the concrete Vulkan/OpenXR context lives outside this module.
type Backend interface {
	// CreateSwapchain allocates `count` images of the given size/format and
	// returns their opaque handles in ring order.
	CreateSwapchain(width, height int, format Format, count int) ([]any, error)
	// RecordQuad builds the per-image secondary command buffer that draws a
	// unit quad sampling the overlay's current content view.
	RecordQuad(imageHandle any, contentView any) error
	// AcquireNext blocks (wait-image) and returns the ring index to render
	// into this frame.
	AcquireNext() (int, error)
	// Release hands the image back to the runtime for composition.
	Release(index int) error
	DestroySwapchain(handles []any) error
}

// Swapchain is one overlay's lazily-created image ring.
type Swapchain struct {
	backend Backend
	images  []Image
	width   int
	height  int
	format  Format
}

// ImageCount matches the teacher's "ask for 3 swapchain images in case one
// image is presented a bit slow" comment in render/vulkan.go, and spec.md
// §4.4's "swapchain count is small (2-3)".
const ImageCount = 3

// New lazily creates a Swapchain sized to contentW x contentH the first
// time an overlay needs to render, per spec.md §4.4 "For each overlay,
// lazily on first render".
func New(backend Backend, contentW, contentH int, hasAlpha bool) (*Swapchain, error) {
	format := FormatSRGB
	if !hasAlpha {
		format = FormatUNORM
	}
	handles, err := backend.CreateSwapchain(contentW, contentH, format, ImageCount)
	if err != nil {
		return nil, fmt.Errorf("swapchain: creating %dx%d swapchain: %w", contentW, contentH, err)
	}
	images := make([]Image, len(handles))
	for i, h := range handles {
		images[i] = Image{Index: i, Handle: h}
	}
	return &Swapchain{backend: backend, images: images, width: contentW, height: contentH, format: format}, nil
}

// RenderFrame implements spec.md §4.4's per-frame sequence: acquire image
// index, wait-image, draw the prebuilt secondary into framebuffer[i] with
// the overlay's current content view, release.
func (s *Swapchain) RenderFrame(contentView any) (Image, error) {
	idx, err := s.backend.AcquireNext()
	if err != nil {
		return Image{}, fmt.Errorf("swapchain: acquiring image: %w", err)
	}
	img := s.images[idx]
	if err := s.backend.RecordQuad(img.Handle, contentView); err != nil {
		return Image{}, fmt.Errorf("swapchain: recording quad for image %d: %w", idx, err)
	}
	if err := s.backend.Release(idx); err != nil {
		return Image{}, fmt.Errorf("swapchain: releasing image %d: %w", idx, err)
	}
	return img, nil
}

// Extent reports the swapchain's content size, used to fill in the
// composition layer's sub-image rectangle (spec.md §4.3 step 7).
func (s *Swapchain) Extent() (width, height int) { return s.width, s.height }

// Dispose tears down the backend resources, mirroring
// disposeSwapchainResources.
func (s *Swapchain) Dispose() error {
	handles := make([]any, len(s.images))
	for i, img := range s.images {
		handles[i] = img.Handle
	}
	return s.backend.DestroySwapchain(handles)
}
