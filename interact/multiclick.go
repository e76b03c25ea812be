package interact

import "time"

// ClickTimes are the maximum elapsed windows, indexed by click count, that
// still register as that multi-click level: spec.md §6 "CLICK_TIMES[COUNT]
// (0, 500ms, 750ms for single/double/triple)".
var ClickTimes = [4]time.Duration{
	0,
	0,
	500 * time.Millisecond,
	750 * time.Millisecond,
}

// MultiClick is the per-action state machine of spec.md §6: it keeps the
// timestamps of the last up-to-3 presses and reports a click as
// "registered" only when all stored timestamps fall within
// ClickTimes[count] of each other.
type MultiClick struct {
	presses []time.Time
}

// Press records a button-down event at t and returns the click count it
// completes (1 = single, 2 = double, 3 = triple). The streak always
// resolves to exactly one level per press: the longest window (3, then 2,
// then 1) whose stored timestamps all fall within CLICK_TIMES[count] of
// the latest press. A single press always registers (CLICK_TIMES[1] == 0
// is trivially satisfied by one timestamp).
func (m *MultiClick) Press(t time.Time) int {
	m.presses = append(m.presses, t)
	if len(m.presses) > 3 {
		m.presses = m.presses[len(m.presses)-3:]
	}

	for count := len(m.presses); count >= 1; count-- {
		start := m.presses[len(m.presses)-count]
		if t.Sub(start) <= ClickTimes[count] {
			switch count {
			case 1:
				// a press that only registers as a single starts a new streak
				m.presses = m.presses[len(m.presses)-1:]
			case 3:
				m.presses = nil
			}
			return count
		}
	}
	m.presses = nil
	return 1
}

// Reset clears the streak, e.g. after a timeout with no further press.
func (m *MultiClick) Reset() { m.presses = nil }
