package bootloader

// AbortReason classifies why an update session ended without committing.
type AbortReason int

const (
	// AbortNone means the session committed.
	AbortNone AbortReason = iota

	// AbortBadCommand: the command token did not match.
	AbortBadCommand

	// AbortInvalidSize: the declared size is zero or exceeds the payload
	// capacity. Detected before the erase step.
	AbortInvalidSize

	// AbortEraseFailed: the region erase failed.
	AbortEraseFailed

	// AbortReceiveFailed: the serial link failed mid-transfer.
	AbortReceiveFailed

	// AbortWriteFailed: a payload write failed.
	AbortWriteFailed

	// AbortChecksumMismatch: the recomputed payload checksum differs from
	// the checksum the host declared. The header is never written.
	AbortChecksumMismatch

	// AbortHeaderFailed: the final header write failed.
	AbortHeaderFailed
)

// String returns the reason name.
func (r AbortReason) String() string {
	switch r {
	case AbortNone:
		return "none"
	case AbortBadCommand:
		return "bad command"
	case AbortInvalidSize:
		return "invalid size"
	case AbortEraseFailed:
		return "erase failed"
	case AbortReceiveFailed:
		return "receive failed"
	case AbortWriteFailed:
		return "write failed"
	case AbortChecksumMismatch:
		return "checksum mismatch"
	case AbortHeaderFailed:
		return "header write failed"
	}
	return "unknown"
}

// Outcome is the tagged result of an update session.
type Outcome int

const (
	// OutcomeAborted means the session ended without committing; the
	// region may be erased but never holds a valid header.
	OutcomeAborted Outcome = iota

	// OutcomeCommitted means the header was written and the region holds
	// a complete image.
	OutcomeCommitted
)

// Result reports an update session's outcome to the caller. The session
// never decides what happens next; reboot or handoff policy belongs to the
// controller.
type Result struct {
	Outcome Outcome
	Reason  AbortReason

	// Size and CRC describe the committed image (valid when Committed).
	Size uint32
	CRC  uint32

	// Err carries the underlying error for aborted sessions, nil for
	// protocol-level rejections that have no wrapped cause.
	Err error
}

// Committed is true when the session wrote a complete image.
func (r Result) Committed() bool { return r.Outcome == OutcomeCommitted }
