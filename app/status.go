package app

import (
	"io"

	"github.com/ElToroDM/riscv-bootloader/protocol"
)

// appStatus wraps the shared status writer with the application-side
// prefix and tokens.
type appStatus struct {
	sw *protocol.StatusWriter
}

func newAppStatus(w io.Writer) appStatus {
	return appStatus{sw: protocol.NewStatusWriter(w, protocol.PrefixApp)}
}

func (a appStatus) start() error {
	return a.sw.Status(StartSignal, protocol.TokAppStart, "")
}

func (a appStatus) online() error {
	return a.sw.Status(Heartbeat, protocol.TokAppOnline, "")
}

func (a appStatus) line(text string) error {
	return a.sw.Line(text)
}
