package facedetect

import "time"

// DefaultCooldown is how long after a return to the desk a face-lost event
// is ignored.
const DefaultCooldown = 10 * time.Second

// Monitor turns raw detector events into absence decisions. A face-lost
// event pauses the watched timer unless it falls within the cooldown after
// the last face-detected event, or the user is already marked absent.
type Monitor struct {
	cooldown   time.Duration
	absent     bool
	lastReturn time.Time

	onAbsent func()
	onReturn func()

	now func() time.Time
}

func NewMonitor(cooldown time.Duration, onAbsent, onReturn func()) *Monitor {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Monitor{
		cooldown: cooldown,
		onAbsent: onAbsent,
		onReturn: onReturn,
		now:      time.Now,
	}
}

// FaceDetected records a return to the desk. Only a transition out of the
// absent state fires onReturn and arms the cooldown.
func (m *Monitor) FaceDetected() {
	if !m.absent {
		return
	}
	m.absent = false
	m.lastReturn = m.now()
	if m.onReturn != nil {
		m.onReturn()
	}
}

// FaceLost records an absence. Events inside the cooldown window or while
// already absent are ignored.
func (m *Monitor) FaceLost() {
	if m.absent {
		return
	}
	if !m.lastReturn.IsZero() && m.now().Sub(m.lastReturn) < m.cooldown {
		return
	}
	m.absent = true
	if m.onAbsent != nil {
		m.onAbsent()
	}
}

func (m *Monitor) Absent() bool {
	return m.absent
}

// Reset clears absence state, e.g. when the watched todo changes.
func (m *Monitor) Reset() {
	m.absent = false
	m.lastReturn = time.Time{}
}
