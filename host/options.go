package host

import "time"

// Config holds the flasher configuration.
type Config struct {
	// Progress is called during programming to report progress (optional).
	Progress ProgressCallback

	// Logger is used for logging operations (optional).
	Logger Logger

	// ChunkSize is the write size used while streaming the payload.
	ChunkSize int

	// ByteDelay paces the stream; sleep this long per payload byte.
	// Zero disables pacing.
	ByteDelay time.Duration

	// OmitChecksum reverts to the legacy protocol: no expected CRC on the
	// size line, so the device trusts its own computation.
	OmitChecksum bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ChunkSize: 256,
	}
}

// Option is a functional option for configuring the Flasher.
type Option func(*Config)

// WithProgress sets a callback to track programming progress.
func WithProgress(callback ProgressCallback) Option {
	return func(c *Config) {
		c.Progress = callback
	}
}

// WithLogger sets a logger for flasher operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithChunkSize sets the write size used while streaming.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.ChunkSize = size
		}
	}
}

// WithByteDelay paces the payload stream for devices that poll the UART
// without flow control.
func WithByteDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.ByteDelay = d
		}
	}
}

// WithOmitChecksum disables the expected-checksum declaration for devices
// running pre-migration firmware.
func WithOmitChecksum(omit bool) Option {
	return func(c *Config) {
		c.OmitChecksum = omit
	}
}
