// Package app is the demonstration application payload. Its only job is
// to prove a successful handoff: it prints a start signal the host tooling
// recognizes and a heartbeat line, then returns.
//
// On the simulated board it is registered as the entry-point function; a
// real target would carry compiled application code at the same address
// instead.
package app

import (
	"io"

	"github.com/ElToroDM/riscv-bootloader/platform"
)

// StartSignal is the first line the application emits. Host tooling waits
// for it after a handoff.
const StartSignal = "APP_BOOT"

// Heartbeat is emitted once the application is up.
const Heartbeat = "App: online"

// Run emits the application start banner and heartbeat on the serial port.
func Run(s platform.Serial) {
	w := appWriter{s}
	status := newAppStatus(w)

	_ = status.start()
	_ = status.line("========================================")
	_ = status.line("   Test Application Running")
	_ = status.line("   Successfully handed off from bootloader!")
	_ = status.line("========================================")
	_ = status.online()
}

type appWriter struct {
	s platform.Serial
}

func (w appWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := w.s.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

var _ io.Writer = appWriter{}
