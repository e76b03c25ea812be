// Package task implements the deferred-action scheduler described in
// spec.md §4.10: a binary min-heap of timed actions against the overlay
// container, ordered by earliest instant then lowest id. It is grounded on
// the teacher's move.Mover per-frame stepping cadence, but the heap itself
// rides stdlib container/heap since no pack example ships a priority-queue
// library (see DESIGN.md).
package task

import (
	"time"

	"github.com/galister/overlayd/overlay"
)

// Kind classifies a Task's payload.
type Kind int

const (
	// ModifyOverlay mutates an existing overlay resolved by Selector.
	ModifyOverlay Kind = iota
	// CreateOverlay inserts a new overlay built by Factory.
	CreateOverlay
	// DropOverlay removes the overlay resolved by Selector.
	DropOverlay
	// System performs a whole-runtime action (color gain, playspace
	// reset, toggle working set, show/hide, edit-mode, ...).
	System
	// Input requests an input-side effect (a haptics pulse).
	Input
)

// Selector picks an overlay either by stable id or by name (first match).
type Selector struct {
	ByID bool
	ID   uint64
	Name string
}

// BySelectorID builds a Selector that matches overlay id.
func BySelectorID(id uint64) Selector { return Selector{ByID: true, ID: id} }

// BySelectorName builds a Selector that matches the first overlay with name.
func BySelectorName(name string) Selector { return Selector{Name: name} }

// Resolve looks the selector up against c, returning nil if nothing
// matches. A missing overlay is not an error: callers drop the task
// silently per spec.md §7 ("Task selector miss").
func (s Selector) Resolve(c *overlay.Container) *overlay.Overlay {
	if s.ByID {
		return c.Get(s.ID)
	}
	return c.GetByName(s.Name)
}

// SystemAction enumerates the System task payload's concrete actions.
type SystemAction struct {
	Name string // e.g. "color_gain", "playspace_reset", "toggle_working_set"
	Arg  any
}

// HapticsPulse requests a haptic pulse on one hand.
type HapticsPulse struct {
	Hand     int // 0 = left, 1 = right
	Duration time.Duration
	Freq     float64
	Amp      float64
}

// Task is one entry in the queue: a deadline, an auto-increment id (used
// as the heap tiebreaker, and to support cancellation), and exactly one of
// the payload fields populated according to Kind.
type Task struct {
	Instant  time.Time
	ID       uint64
	Kind     Kind
	Selector Selector

	// ModifyOverlay payload.
	Modify func(o *overlay.Overlay)
	// CreateOverlay payload.
	Factory func() *overlay.Overlay
	// System payload.
	Action SystemAction
	// Input payload.
	Haptics HapticsPulse

	index int // heap.Interface bookkeeping, maintained by container/heap
}

// Apply resolves a due task against the live container, per spec.md §4.10
// "Tasks with overlay selectors are resolved at pop time against the live
// container; missing overlays drop their task silently." System and
// Input tasks carry no overlay selector; they're forwarded to the
// caller's sinks instead.
func (t *Task) Apply(c *overlay.Container, onSystem func(SystemAction), onHaptics func(HapticsPulse)) {
	switch t.Kind {
	case ModifyOverlay:
		if o := t.Selector.Resolve(c); o != nil && t.Modify != nil {
			t.Modify(o)
		}
	case CreateOverlay:
		if t.Factory != nil {
			if o := t.Factory(); o != nil {
				c.Insert(o)
			}
		}
	case DropOverlay:
		if o := t.Selector.Resolve(c); o != nil {
			c.Remove(o.ID)
		}
	case System:
		if onSystem != nil {
			onSystem(t.Action)
		}
	case Input:
		if onHaptics != nil {
			onHaptics(t.Haptics)
		}
	}
}
