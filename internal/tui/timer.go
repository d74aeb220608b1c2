package tui

import "time"

// elapsedTimer tracks the on-screen elapsed time for the running todo. The
// display is derived by sampling the clock each tick; nothing is persisted
// until the caller commits the seconds through the controller.
type elapsedTimer struct {
	todoID    int64
	baseline  int // seconds already accumulated before this session
	startedAt time.Time
	running   bool
}

func (t *elapsedTimer) start(todoID int64, baselineSeconds int) {
	t.todoID = todoID
	t.baseline = baselineSeconds
	t.startedAt = time.Now()
	t.running = true
}

func (t *elapsedTimer) stop() {
	t.running = false
	t.todoID = 0
	t.baseline = 0
}

// seconds returns the total accumulated seconds to commit: the persisted
// baseline plus this session's wall-clock elapsed time.
func (t *elapsedTimer) seconds() int {
	if !t.running {
		return 0
	}
	return t.baseline + int(time.Since(t.startedAt).Seconds())
}

func (t *elapsedTimer) isRunning() bool {
	return t.running
}

func (t *elapsedTimer) runningID() int64 {
	return t.todoID
}
