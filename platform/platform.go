package platform

// Serial is the byte-oriented serial collaborator. Both directions block:
// ReadByte waits until a byte is available and WriteByte waits until the
// transmitter accepts the byte. There is no buffering beyond one symbol and
// no timeout.
type Serial interface {
	// Init configures the serial hardware. Must be called before any
	// ReadByte/WriteByte.
	Init() error

	// ReadByte blocks until one byte has been received.
	ReadByte() (byte, error)

	// WriteByte blocks until the byte has been accepted for transmission.
	WriteByte(b byte) error
}

// Flash is the raw storage collaborator. Addresses are absolute physical
// addresses; bounds checking against the application region is the storage
// gateway's job, not the driver's.
type Flash interface {
	// Write programs data at addr. The target range must have been erased.
	Write(addr uint32, data []byte) error

	// Erase resets [addr, addr+size) to the erased-state value. May take
	// a long time on real hardware; callers must not assume bounded
	// latency.
	Erase(addr, size uint32) error

	// Read copies len(buf) bytes starting at addr into buf.
	Read(addr uint32, buf []byte) error
}

// Board is the per-target hardware abstraction consumed by the boot core.
// Exactly one implementation exists per board; the core never touches
// hardware except through it.
type Board interface {
	// EarlyInit runs once before any other operation. Platform-specific
	// (clocks, power domains); may be a no-op.
	EarlyInit()

	// Serial returns the board's console serial port.
	Serial() Serial

	// Flash returns the board's storage driver.
	Flash() Flash

	// AppRegion returns the base address and capacity of the application
	// storage region, fixed per board.
	AppRegion() (base, capacity uint32)

	// Reset performs a system reset. On real hardware it does not return.
	Reset()

	// Exec transfers control to the instruction at the absolute entry
	// address. This is the single place raw control transfer happens; on
	// real hardware it does not return. An error is only possible on
	// simulated boards where no code is mapped at entry.
	Exec(entry uint32) error
}
