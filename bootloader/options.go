package bootloader

// Config holds controller and session configuration.
type Config struct {
	// Logger receives operational logging (optional).
	Logger Logger

	// Progress is called during update sessions (optional).
	Progress ProgressCallback

	// DirectBoot hands off to a freshly committed image without a reset
	// cycle. The image is re-validated from storage through the normal
	// gate before control transfers. Debug convenience; default is a
	// reset after commit.
	DirectBoot bool

	// Banner enables the human-friendly banner at startup.
	Banner bool

	// TargetName is printed in the banner.
	TargetName string

	// FirmwareVersion is stamped into the header of committed images.
	FirmwareVersion uint32
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Banner:          true,
		TargetName:      "QEMU Virt (RV32IM)",
		FirmwareVersion: 1,
	}
}

// Option is a functional option for configuring the Controller or a
// Session.
type Option func(*Config)

// WithLogger sets a logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgress sets a progress callback for update sessions.
func WithProgress(callback ProgressCallback) Option {
	return func(c *Config) {
		c.Progress = callback
	}
}

// WithDirectBoot enables or disables direct handoff after a committed
// update instead of a reset cycle. Even with direct boot the committed
// image is re-validated from storage before control transfers.
func WithDirectBoot(direct bool) Option {
	return func(c *Config) {
		c.DirectBoot = direct
	}
}

// WithBanner enables or disables the startup banner.
func WithBanner(banner bool) Option {
	return func(c *Config) {
		c.Banner = banner
	}
}

// WithTargetName sets the platform name shown in the banner.
func WithTargetName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.TargetName = name
		}
	}
}

// WithFirmwareVersion sets the version tag stamped into committed headers.
func WithFirmwareVersion(v uint32) Option {
	return func(c *Config) {
		c.FirmwareVersion = v
	}
}
