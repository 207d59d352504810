package host

import "time"

// Programming phases reported through ProgressCallback.
const (
	PhaseWaiting  = "waiting"
	PhaseSending  = "sending"
	PhaseComplete = "complete"
)

// Progress contains information about programming progress.
type Progress struct {
	// Phase is one of the Phase* constants.
	Phase string

	// BytesSent is the number of payload bytes streamed so far.
	BytesSent int

	// TotalBytes is the payload size.
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0).
	Percentage float64

	// ElapsedTime is the time since Program started.
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during programming.
// Implementations should return quickly to avoid stalling the stream.
type ProgressCallback func(Progress)

// Logger is an optional logging interface, allowing integration with any
// logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
