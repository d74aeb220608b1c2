package facedetect

import (
	"testing"
	"time"
)

// testMonitor returns a monitor with a controllable clock.
func testMonitor(cooldown time.Duration, onAbsent, onReturn func()) (*Monitor, *time.Time) {
	m := NewMonitor(cooldown, onAbsent, onReturn)
	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	m.now = func() time.Time { return clock }
	return m, &clock
}

// ============================================================
// Monitor
// ============================================================

func TestMonitorFirstFaceLost(t *testing.T) {
	absences := 0
	m, _ := testMonitor(10*time.Second, func() { absences++ }, nil)

	m.FaceLost()
	if !m.Absent() {
		t.Fatal("face lost should mark absent")
	}
	if absences != 1 {
		t.Fatalf("expected 1 absence callback, got %d", absences)
	}
}

func TestMonitorRepeatedFaceLostIgnored(t *testing.T) {
	absences := 0
	m, _ := testMonitor(10*time.Second, func() { absences++ }, nil)

	m.FaceLost()
	m.FaceLost()
	m.FaceLost()
	if absences != 1 {
		t.Fatalf("repeated face-lost while absent should not re-fire, got %d", absences)
	}
}

func TestMonitorReturnFiresOnce(t *testing.T) {
	returns := 0
	m, _ := testMonitor(10*time.Second, nil, func() { returns++ })

	// Not absent yet; a detected face is a no-op.
	m.FaceDetected()
	if returns != 0 {
		t.Fatal("return callback fired while present")
	}

	m.FaceLost()
	m.FaceDetected()
	m.FaceDetected()
	if returns != 1 {
		t.Fatalf("expected 1 return callback, got %d", returns)
	}
	if m.Absent() {
		t.Fatal("should be present after return")
	}
}

func TestMonitorCooldownSuppressesFaceLost(t *testing.T) {
	absences := 0
	m, clock := testMonitor(10*time.Second, func() { absences++ }, nil)

	m.FaceLost()     // absent
	m.FaceDetected() // back, cooldown armed

	// 5 seconds later: still inside the cooldown, the lost event is noise.
	*clock = clock.Add(5 * time.Second)
	m.FaceLost()
	if m.Absent() || absences != 1 {
		t.Fatalf("face lost inside cooldown should be ignored (absent=%v, absences=%d)", m.Absent(), absences)
	}

	// Past the cooldown the next lost event counts again.
	*clock = clock.Add(6 * time.Second)
	m.FaceLost()
	if !m.Absent() || absences != 2 {
		t.Fatalf("face lost after cooldown should fire (absent=%v, absences=%d)", m.Absent(), absences)
	}
}

func TestMonitorDefaultCooldown(t *testing.T) {
	m := NewMonitor(0, nil, nil)
	if m.cooldown != DefaultCooldown {
		t.Fatalf("expected default cooldown %v, got %v", DefaultCooldown, m.cooldown)
	}
}

func TestMonitorReset(t *testing.T) {
	m, _ := testMonitor(10*time.Second, nil, nil)

	m.FaceLost()
	m.FaceDetected() // arms cooldown
	m.Reset()

	if m.Absent() {
		t.Fatal("reset should clear absence")
	}
	// Cooldown cleared too: a lost event right after reset counts.
	m.FaceLost()
	if !m.Absent() {
		t.Fatal("face lost after reset should fire immediately")
	}
}

func TestMonitorNilCallbacks(t *testing.T) {
	m, _ := testMonitor(time.Second, nil, nil)
	// Must not panic.
	m.FaceLost()
	m.FaceDetected()
}

// ============================================================
// Detector line protocol
// ============================================================

func TestDetectorHandleLine(t *testing.T) {
	var detected, lost int
	var errMsg string

	d := NewDetector("true", nil, Callbacks{
		OnFaceDetected: func() { detected++ },
		OnFaceLost:     func() { lost++ },
		OnError:        func(msg string) { errMsg = msg },
	})

	d.handleLine("READY")
	d.handleLine("FACE_DETECTED")
	d.handleLine("FACE_LOST")
	d.handleLine("FACE_DETECTED")
	d.handleLine("something unexpected")
	d.handleLine("ERROR:camera unavailable")

	if detected != 2 || lost != 1 {
		t.Fatalf("expected 2 detected / 1 lost, got %d / %d", detected, lost)
	}
	if errMsg != "camera unavailable" {
		t.Fatalf("expected error payload without prefix, got %q", errMsg)
	}
}

func TestDetectorStartFailureReportsError(t *testing.T) {
	var errMsg string
	d := NewDetector("/nonexistent/binary/for/sure", nil, Callbacks{
		OnError: func(msg string) { errMsg = msg },
	})

	d.Start()
	if errMsg == "" {
		t.Fatal("startup failure should be reported through OnError")
	}
	if d.Running() {
		t.Fatal("detector should not be running after failed start")
	}
}

func TestDetectorStopWhileIdle(t *testing.T) {
	d := NewDetector("true", nil, Callbacks{})
	// Must not panic with no process.
	d.Stop()
	if d.Running() {
		t.Fatal("idle detector reports running")
	}
}
