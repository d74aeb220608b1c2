// Package facedetect bridges an external face-detection process into the
// timer. The whole feature is best-effort: detector failures never fail the
// caller, they only stop the feature.
package facedetect

import (
	"bufio"
	"os/exec"
	"strings"
	"sync"
)

// Line protocol spoken by the detector subprocess on stdout.
const (
	msgReady        = "READY"
	msgFaceDetected = "FACE_DETECTED"
	msgFaceLost     = "FACE_LOST"
	errPrefix       = "ERROR:"
)

// Callbacks receive detector events. Nil callbacks are skipped.
type Callbacks struct {
	OnFaceDetected func()
	OnFaceLost     func()
	OnError        func(msg string)
}

// Detector runs the subprocess and relays its line-oriented output.
type Detector struct {
	command string
	args    []string
	cb      Callbacks

	mu      sync.Mutex
	cmd     *exec.Cmd
	running bool
}

// NewDetector prepares a detector that runs command with args, e.g.
// ("python3", "face_detector.py").
func NewDetector(command string, args []string, cb Callbacks) *Detector {
	return &Detector{command: command, args: args, cb: cb}
}

// Start launches the subprocess and a reader goroutine. Startup failure is
// reported through OnError; Start itself never returns an error.
func (d *Detector) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}

	cmd := exec.Command(d.command, d.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.reportError("start failed: " + err.Error())
		return
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		d.reportError("start failed: " + err.Error())
		return
	}

	d.cmd = cmd
	d.running = true

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			d.handleLine(strings.TrimSpace(scanner.Text()))
		}
		// Read errors and EOF are swallowed; the feature just stops.
		cmd.Wait()
		d.mu.Lock()
		d.running = false
		d.cmd = nil
		d.mu.Unlock()
	}()
}

// Stop kills the subprocess if it is running.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd != nil && d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.running = false
	d.cmd = nil
}

func (d *Detector) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *Detector) handleLine(line string) {
	switch {
	case line == msgReady:
	case line == msgFaceDetected:
		if d.cb.OnFaceDetected != nil {
			d.cb.OnFaceDetected()
		}
	case line == msgFaceLost:
		if d.cb.OnFaceLost != nil {
			d.cb.OnFaceLost()
		}
	case strings.HasPrefix(line, errPrefix):
		d.reportError(strings.TrimPrefix(line, errPrefix))
	}
}

func (d *Detector) reportError(msg string) {
	if d.cb.OnError != nil {
		d.cb.OnError(msg)
	}
}
