package protocol

import "fmt"

// Session stages reported in ProtocolError.
const (
	StageCommand = "command"
	StageSize    = "size"
	StageReceive = "receive"
)

// ProtocolError represents a malformed command or size received from the
// host during an update session.
type ProtocolError struct {
	// Stage is the protocol stage that failed (StageCommand, StageSize, ...)
	Stage string

	// Detail describes what was wrong with the input
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error in %s: %s", e.Stage, e.Detail)
}

// IsProtocolError returns true if the error is a ProtocolError.
func IsProtocolError(err error) bool {
	_, ok := err.(*ProtocolError)
	return ok
}
