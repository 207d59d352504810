package memsim

import (
	"fmt"
	"io"
	"sync"

	"github.com/ElToroDM/riscv-bootloader/platform"
)

// Memory map defaults, matching the qemu_virt board layout.
const (
	// DefaultAppBase is the base address of the application region.
	DefaultAppBase = 0x80010000

	// DefaultAppCapacity is the application region capacity in bytes.
	DefaultAppCapacity = 448 * 1024

	// ErasedByte is the erased-state value of every flash byte.
	ErasedByte = 0xFF
)

// EntryFunc is simulated application code. Exec invokes the function
// registered at the entry address, handing it the board's serial port.
type EntryFunc func(s platform.Serial)

// Config configures a simulated board.
type Config struct {
	// AppBase is the base address of the simulated application region.
	// Defaults to DefaultAppBase.
	AppBase uint32

	// AppCapacity is the region capacity in bytes.
	// Defaults to DefaultAppCapacity.
	AppCapacity uint32

	// Input supplies received serial bytes. A read past the end of the
	// stream surfaces as a serial error.
	Input io.Reader

	// Output receives transmitted serial bytes.
	Output io.Writer

	// CRLF enables '\n' to "\r\n" normalization on serial output, as a
	// UART-attached terminal expects. Off by default so tests compare
	// plain text.
	CRLF bool

	// OnReset is invoked by Reset. Optional; when nil, Reset only counts.
	OnReset func()
}

// Board is a deterministic in-memory implementation of platform.Board.
// Flash is RAM-backed, serial is bridged to the configured reader/writer
// and Exec dispatches to registered EntryFuncs. Call counters expose
// hardware activity to tests.
type Board struct {
	cfg Config

	mu         sync.Mutex
	mem        []byte
	entries    map[uint32]EntryFunc
	eraseCalls int
	writeCalls int
	resetCalls int
	execCalls  int
	lastExec   uint32

	// Injected fault hooks. When non-nil and returning an error, the
	// corresponding flash operation fails without touching memory.
	failWrite func(addr uint32, data []byte) error
	failErase func(addr, size uint32) error

	serial *serialPort
}

// New creates a simulated board. Zero-value fields of cfg get defaults.
func New(cfg Config) *Board {
	if cfg.AppBase == 0 {
		cfg.AppBase = DefaultAppBase
	}
	if cfg.AppCapacity == 0 {
		cfg.AppCapacity = DefaultAppCapacity
	}
	b := &Board{
		cfg:     cfg,
		mem:     make([]byte, cfg.AppCapacity),
		entries: make(map[uint32]EntryFunc),
	}
	for i := range b.mem {
		b.mem[i] = ErasedByte
	}
	b.serial = &serialPort{in: cfg.Input, out: cfg.Output, crlf: cfg.CRLF}
	return b
}

// EarlyInit implements platform.Board. No clocks to set up in simulation.
func (b *Board) EarlyInit() {}

// Serial implements platform.Board.
func (b *Board) Serial() platform.Serial { return b.serial }

// Flash implements platform.Board.
func (b *Board) Flash() platform.Flash { return (*simFlash)(b) }

// AppRegion implements platform.Board.
func (b *Board) AppRegion() (uint32, uint32) { return b.cfg.AppBase, b.cfg.AppCapacity }

// Reset implements platform.Board. In simulation it invokes the OnReset
// hook and returns.
func (b *Board) Reset() {
	b.mu.Lock()
	b.resetCalls++
	fn := b.cfg.OnReset
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Exec implements platform.Board. It runs the EntryFunc registered at
// entry, or fails if nothing is mapped there.
func (b *Board) Exec(entry uint32) error {
	b.mu.Lock()
	fn, ok := b.entries[entry]
	b.execCalls++
	b.lastExec = entry
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("memsim: no code mapped at entry 0x%08X", entry)
	}
	fn(b.serial)
	return nil
}

// MapEntry registers simulated application code at an absolute address.
func (b *Board) MapEntry(addr uint32, fn EntryFunc) {
	b.mu.Lock()
	b.entries[addr] = fn
	b.mu.Unlock()
}

// Seed writes raw bytes at addr directly, bypassing the flash driver and
// its counters. Used to pre-install images for boot tests.
func (b *Board) Seed(addr uint32, data []byte) error {
	off, err := b.offset(addr, uint32(len(data)))
	if err != nil {
		return err
	}
	b.mu.Lock()
	copy(b.mem[off:], data)
	b.mu.Unlock()
	return nil
}

// Region returns a copy of the application region contents.
func (b *Board) Region() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.mem))
	copy(out, b.mem)
	return out
}

// EraseCalls reports how many flash erase operations have run.
func (b *Board) EraseCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eraseCalls
}

// WriteCalls reports how many flash write operations have run.
func (b *Board) WriteCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeCalls
}

// ResetCalls reports how many times Reset has been invoked.
func (b *Board) ResetCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resetCalls
}

// ExecCalls reports how many times Exec has been invoked, and the entry
// address of the most recent call.
func (b *Board) ExecCalls() (int, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.execCalls, b.lastExec
}

// FailWrites makes subsequent flash writes fail with err until called
// again with nil.
func (b *Board) FailWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failWrite = nil
		return
	}
	b.failWrite = func(uint32, []byte) error { return err }
}

// FailErases makes subsequent flash erases fail with err until called
// again with nil.
func (b *Board) FailErases(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failErase = nil
		return
	}
	b.failErase = func(uint32, uint32) error { return err }
}

func (b *Board) offset(addr, size uint32) (uint32, error) {
	if addr < b.cfg.AppBase || addr+size > b.cfg.AppBase+b.cfg.AppCapacity {
		return 0, fmt.Errorf("memsim: [0x%08X,+%d) outside simulated flash [0x%08X,+%d)",
			addr, size, b.cfg.AppBase, b.cfg.AppCapacity)
	}
	return addr - b.cfg.AppBase, nil
}

// simFlash adapts Board to platform.Flash.
type simFlash Board

func (f *simFlash) Write(addr uint32, data []byte) error {
	b := (*Board)(f)
	off, err := b.offset(addr, uint32(len(data)))
	if err != nil {
		return err
	}
	b.mu.Lock()
	fail := b.failWrite
	b.writeCalls++
	b.mu.Unlock()
	if fail != nil {
		if err := fail(addr, data); err != nil {
			return err
		}
	}
	b.mu.Lock()
	copy(b.mem[off:], data)
	b.mu.Unlock()
	return nil
}

func (f *simFlash) Erase(addr, size uint32) error {
	b := (*Board)(f)
	off, err := b.offset(addr, size)
	if err != nil {
		return err
	}
	b.mu.Lock()
	fail := b.failErase
	b.eraseCalls++
	b.mu.Unlock()
	if fail != nil {
		if err := fail(addr, size); err != nil {
			return err
		}
	}
	b.mu.Lock()
	for i := off; i < off+size; i++ {
		b.mem[i] = ErasedByte
	}
	b.mu.Unlock()
	return nil
}

func (f *simFlash) Read(addr uint32, buf []byte) error {
	b := (*Board)(f)
	off, err := b.offset(addr, uint32(len(buf)))
	if err != nil {
		return err
	}
	b.mu.Lock()
	copy(buf, b.mem[off:])
	b.mu.Unlock()
	return nil
}
