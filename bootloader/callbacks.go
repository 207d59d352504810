package bootloader

// Update phases reported through ProgressCallback.
const (
	PhaseErasing   = "erasing"
	PhaseReceiving = "receiving"
	PhaseFinal     = "finalizing"
	PhaseCommitted = "committed"
)

// Progress describes how far an update session has advanced.
type Progress struct {
	// Phase is one of the Phase* constants.
	Phase string

	// BytesReceived is the number of payload bytes received so far.
	BytesReceived int

	// TotalBytes is the declared payload size.
	TotalBytes int

	// Percentage is the completion percentage of the receive phase
	// (0.0 to 100.0).
	Percentage float64
}

// ProgressCallback is called during an update session. Implementations
// must return quickly: the session is single-threaded and every byte of the
// transfer waits on the callback.
type ProgressCallback func(Progress)

// Logger is an optional logging interface. The boot core itself reports
// only over the serial stream; a Logger is for simulated or host-assisted
// targets where a log sink exists.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
