package todo

// TimerGate tracks which todo, if any, has the running timer. At most one
// timer may run at a time across the whole process.
//
// The gate is a plain state holder: Start records unconditionally, and the
// "check before start" policy lives in the Controller. State is not
// persisted; an interrupted session simply stops accumulating seconds until
// resumed.
type TimerGate struct {
	activeID int64
	active   bool
}

func NewTimerGate() *TimerGate {
	return &TimerGate{}
}

// CanStart reports whether a timer for id may start: true when no timer is
// active, or when the active timer already belongs to id (pause/resume
// re-entry).
func (g *TimerGate) CanStart(id int64) bool {
	return !g.active || g.activeID == id
}

// Start records id as the active timer.
func (g *TimerGate) Start(id int64) {
	g.activeID = id
	g.active = true
}

// Stop clears the active timer only if it belongs to id. A stale stop for
// any other id is a no-op.
func (g *TimerGate) Stop(id int64) {
	if g.active && g.activeID == id {
		g.active = false
		g.activeID = 0
	}
}

// ActiveID returns the running todo's ID, or false when idle.
func (g *TimerGate) ActiveID() (int64, bool) {
	if !g.active {
		return 0, false
	}
	return g.activeID, true
}

func (g *TimerGate) IsActive(id int64) bool {
	return g.active && g.activeID == id
}

func (g *TimerGate) HasActive() bool {
	return g.active
}
