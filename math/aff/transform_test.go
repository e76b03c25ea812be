package aff

import (
	"math"
	"testing"
)

// Property 7: SnapUpright always returns an orthonormal basis: the three
// rows, read back out of the quaternion as a matrix, are unit length and
// pairwise orthogonal within epsilon.
func TestSnapUprightIsOrthonormal(t *testing.T) {
	hmd := NewQ().SetAa(1, 0, 0, 0.4)
	up := NewV3S(0, 1, 0)
	q := SnapUpright(hmd, up)
	assertOrthonormal(t, q)
}

func TestSnapUprightDegenerateLookingStraightUp(t *testing.T) {
	hmd := NewQ().SetAa(1, 0, 0, HalfPi) // looking straight up
	up := NewV3S(0, 1, 0)
	q := SnapUpright(hmd, up)
	assertOrthonormal(t, q)
}

func assertOrthonormal(t *testing.T, q *Q) {
	t.Helper()
	m := NewM3I()
	m.SetQ(q)
	rows := [3]*V3{
		NewV3S(m.Xx, m.Xy, m.Xz),
		NewV3S(m.Yx, m.Yy, m.Yz),
		NewV3S(m.Zx, m.Zy, m.Zz),
	}
	for i, r := range rows {
		if math.Abs(r.Len()-1) > 1e-6 {
			t.Fatalf("row %d not unit length: %v (len %v)", i, r, r.Len())
		}
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if math.Abs(rows[i].Dot(rows[j])) > 1e-6 {
				t.Fatalf("rows %d,%d not orthogonal: dot=%v", i, j, rows[i].Dot(rows[j]))
			}
		}
	}
}

func TestRealignFacesHMD(t *testing.T) {
	overlayLoc := NewV3S(0, 0, -1)
	hmdLoc := NewV3S(0, 0, 0)
	up := NewV3S(0, 1, 0)
	rot := Realign(overlayLoc, hmdLoc, up, nil)

	// The overlay's local -Z (its forward, after the 180-degree yaw) should
	// point from the overlay towards the HMD.
	fwd := NewV3S(0, 0, -1)
	fwd.MultvQ(fwd, rot)
	toHMD := NewV3().Sub(hmdLoc, overlayLoc)
	toHMD.Unit()
	if fwd.Dot(toHMD) < 0.999 {
		t.Fatalf("expected overlay forward to align with direction to HMD, got dot=%v", fwd.Dot(toHMD))
	}
}

func TestNlerpShortTakesShortArc(t *testing.T) {
	r := NewQI()
	s := NewQ().SetAa(0, 1, 0, PI-0.01)
	// negate s to force the long-way-around sign
	sNeg := &Q{-s.X, -s.Y, -s.Z, -s.W}

	want := NewQ().Nlerp(r, s, 0.5)
	got := NewQ().NlerpShort(r, sNeg, 0.5)
	if !got.Aeq(want) {
		t.Fatalf("expected NlerpShort to flip sign onto the short arc: want %v got %v", want, got)
	}
}
