// Package interact implements the pointer state machine and raycast
// dispatch of spec.md §4.2, grounded on the teacher's physics/caster.go
// cast-function-table pattern and device/input.go's digital-state
// snapshotting.
package interact

import (
	"time"

	"github.com/galister/overlayd/math/aff"
)

// Mode is the pointer's current click-button mapping.
type Mode int

const (
	ModeLeft Mode = iota
	ModeRight
	ModeMiddle
	ModeSpecial
)

// Digital is a snapshot of boolean action state for one pointer.
type Digital struct {
	Click              bool
	Grab               bool
	AltClick           bool
	ShowHide           bool
	SpaceDrag          bool
	SpaceRotate        bool
	SpaceReset         bool
	ClickModifierRight bool
	ClickModifierMid   bool
	ToggleDashboard    bool
}

// Analog is the scroll-wheel state for one pointer.
type Analog struct {
	ScrollX float64
	ScrollY float64
}

// GrabData describes an in-progress grab, per spec.md §3.
type GrabData struct {
	Offset     *aff.Transform
	GrabbedID  uint64
	GrabAnchor bool
}

// Interaction is the pointer's interaction-engine-owned state.
type Interaction struct {
	Mode           Mode
	Grabbed        *GrabData
	ClickedID      uint64
	HoveredID      uint64
	LastClick      time.Time
	PendingHaptics bool
}

// Pointer is one of the two session pointers (0 = left, 1 = right).
type Pointer struct {
	Index   int
	Pose    *aff.Transform // smoothed
	RawPose *aff.Transform // unsmoothed, for line rendering

	Now    Digital
	Before Digital
	Analog Analog

	Interaction Interaction
}

// NewPointer builds an identity-posed pointer for the given hand index.
func NewPointer(index int) *Pointer {
	return &Pointer{
		Index:   index,
		Pose:    aff.NewTransform(),
		RawPose: aff.NewTransform(),
	}
}

// GrabEdge reports a grab button-down edge: now.grab && !before.grab.
func (p *Pointer) GrabEdge() bool { return p.Now.Grab && !p.Before.Grab }

// ClickEdgeDown reports a click button-down edge.
func (p *Pointer) ClickEdgeDown() bool { return p.Now.Click && !p.Before.Click }

// ClickEdgeUp reports a click button-up edge.
func (p *Pointer) ClickEdgeUp() bool { return !p.Now.Click && p.Before.Click }
