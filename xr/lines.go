package xr

import (
	"fmt"

	"github.com/galister/overlayd/math/aff"
	"github.com/galister/overlayd/xr/swapchain"
)

// LineColor selects which of the pointer-line pool's five 1x1 color
// swapchains a drawn line samples. Grounded on lines.rs's draw_from, which
// indexes its palette by pointer.interaction.mode as usize + 1, leaving
// index 0 (white) as an idle/unused sentinel color.
type LineColor int

const (
	LineWhite LineColor = iota
	LineCyan
	LineOrange
	LineViolet
	LineRed

	lineColorCount = 5
)

// linePalette holds the RGBA bytes each 1x1 color swapchain is filled with,
// grounded on lines.rs's fixed palette array.
var linePalette = [lineColorCount][4]byte{
	LineWhite:  {255, 255, 255, 255},
	LineCyan:   {0, 255, 255, 255},
	LineOrange: {255, 165, 0, 255},
	LineViolet: {170, 0, 255, 255},
	LineRed:    {255, 0, 0, 255},
}

// lineWidth is the pointer line's fixed width in meters, matching lines.rs's
// LINE_WIDTH constant.
const lineWidth = 0.002

// minLineLength is the "no ray contact" cutoff below which a line isn't
// drawn, spec.md §4.5's "<1cm skip".
const minLineLength = 0.01

// quadAlign rotates a unit quad (plane normal +Z, long axis +Y) so its long
// axis points along -Z, letting a line's Scale.Y stretch it to the ray's
// length along the direction the ray is actually cast.
var quadAlign = aff.NewQ().SetAa(1, 0, 0, -aff.HalfPi)

// pendingLine is one hand's line state for the current frame, built by
// DrawFrom and consumed by EmitLayers.
type pendingLine struct {
	active    bool
	transform *aff.Transform
	color     LineColor
}

// LinePool renders the two pointer rays (spec.md §4.5) as thin billboarded
// quads, one per hand, sampling one of five fixed-color 1x1 swapchains
// selected by the owning pointer's interaction mode. Grounded on
// lines.rs's LinePool (both the OpenXR and OpenVR backends share the same
// shape: a small palette of solid-color swapchains plus a pending-line
// buffer flushed once per frame).
type LinePool struct {
	swapchains [lineColorCount]*swapchain.Swapchain
	pending    [2]pendingLine
}

// NewLinePool creates the five 1x1 color swapchains up front, per spec.md
// §4.5.
func NewLinePool(backend swapchain.Backend) (*LinePool, error) {
	pool := &LinePool{}
	for i := 0; i < lineColorCount; i++ {
		sc, err := swapchain.New(backend, 1, 1, false)
		if err != nil {
			return nil, fmt.Errorf("xr: creating line swapchain for color %d: %w", i, err)
		}
		pool.swapchains[i] = sc
	}
	return pool, nil
}

// DrawFrom builds this frame's line for one hand, per spec.md §4.5 and
// lines.rs's draw_from: the line runs from `from`'s location out to
// `length` along its local -Z, affine-constructed by translating halfway
// out along that axis, aligning a unit quad to it, then yaw-snapping the
// quad to whichever of four 90-degrees-apart candidates best faces the
// HMD. Lines shorter than minLineLength (no meaningful ray contact) are
// skipped, and hmd may be nil only when length is already below that
// threshold.
func (pool *LinePool) DrawFrom(hand int, from *aff.Transform, length float64, color LineColor, hmd *aff.Transform) {
	p := &pool.pending[hand]
	if length < minLineLength {
		p.active = false
		return
	}

	forward := aff.NewV3S(0, 0, -1)
	forward.MultvQ(forward, from.Rot)
	mid := aff.NewV3().Scale(forward, length*0.5)
	mid.Add(mid, from.Loc)

	base := aff.NewQ().Mult(from.Rot, quadAlign)

	toHMD := aff.NewV3().Sub(hmd.Loc, mid)
	toHMD.Unit()

	var best *aff.Q
	bestScore := -2.0
	for k := 0; k < 4; k++ {
		yaw := aff.NewQ().SetAa(0, 1, 0, float64(k)*aff.HalfPi)
		candidate := aff.NewQ().Mult(base, yaw)
		normal := aff.NewV3S(0, 0, 1)
		normal.MultvQ(normal, candidate)
		if score := normal.Dot(toHMD); score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	t := p.transform
	if t == nil {
		t = aff.NewTransform()
		p.transform = t
	}
	t.Loc.Set(mid)
	t.Rot.Set(best)
	t.Scale.SetS(lineWidth, length, 1)
	p.color = color
	p.active = true
}

// LineLayer is one drawn line's composition-quad inputs, consumed by the
// renderer the same way an overlay's RenderFrame image is (spec.md §4.3
// step 8).
type LineLayer struct {
	Hand      int
	Transform *aff.Transform
	Image     swapchain.Image
}

// EmitLayers flushes the frame's active pending lines into render-ready
// layers, per spec.md §4.3 step 8 / §4.5. A hand with no active line (ray
// missed everything, or was shorter than minLineLength) contributes no
// layer.
func (pool *LinePool) EmitLayers() ([]LineLayer, error) {
	var layers []LineLayer
	for hand := 0; hand < 2; hand++ {
		p := pool.pending[hand]
		if !p.active {
			continue
		}
		sc := pool.swapchains[p.color]
		img, err := sc.RenderFrame(linePalette[p.color])
		if err != nil {
			return nil, fmt.Errorf("xr: rendering line for hand %d: %w", hand, err)
		}
		layers = append(layers, LineLayer{Hand: hand, Transform: p.transform, Image: img})
	}
	return layers, nil
}

// Dispose tears down all five color swapchains.
func (pool *LinePool) Dispose() error {
	for _, sc := range pool.swapchains {
		if sc == nil {
			continue
		}
		if err := sc.Dispose(); err != nil {
			return err
		}
	}
	return nil
}
