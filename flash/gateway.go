package flash

import (
	"github.com/ElToroDM/riscv-bootloader/image"
	"github.com/ElToroDM/riscv-bootloader/platform"
)

// Gateway bounds-checks and forwards write/erase requests for the
// application storage region. It owns no hardware state; the region is
// exclusively write-owned by the gateway for the duration of an update
// session.
//
// The bounds check runs before any hardware call. It is what keeps a
// misbehaving update session from overwriting the bootloader's own code.
type Gateway struct {
	flash    platform.Flash
	base     uint32
	capacity uint32
}

// NewGateway returns a gateway for the region [base, base+capacity).
func NewGateway(flash platform.Flash, base, capacity uint32) *Gateway {
	return &Gateway{flash: flash, base: base, capacity: capacity}
}

// Base returns the region base address.
func (g *Gateway) Base() uint32 { return g.base }

// Capacity returns the region capacity in bytes.
func (g *Gateway) Capacity() uint32 { return g.capacity }

// PayloadCapacity returns the bytes available for the payload after the
// header.
func (g *Gateway) PayloadCapacity() uint32 { return g.capacity - image.HeaderSize }

// Write programs data at the absolute address addr. It fails with
// *OutOfBoundsError before touching hardware if any byte of the write
// would land outside the application region. No retries: a hardware
// failure is surfaced immediately.
func (g *Gateway) Write(addr uint32, data []byte) error {
	end := uint64(addr) + uint64(len(data))
	if addr < g.base || end > uint64(g.base)+uint64(g.capacity) {
		return &OutOfBoundsError{Addr: addr, Len: len(data), Base: g.base, Capacity: g.capacity}
	}
	if err := g.flash.Write(addr, data); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// EraseRegion erases the entire application region, leaving every byte at
// the erased-state value. May take a long time; the caller must not assume
// bounded latency.
func (g *Gateway) EraseRegion() error {
	if err := g.flash.Erase(g.base, g.capacity); err != nil {
		return &StorageError{Op: "erase", Err: err}
	}
	return nil
}

// WriteHeader writes the header record at the region base. It is the
// designated atomicity boundary of an update: it must only be invoked after
// the payload write has succeeded, so that a power loss at any earlier
// point leaves the region without a valid sentinel.
func (g *Gateway) WriteHeader(h image.Header) error {
	if err := g.flash.Write(g.base, h.Encode()); err != nil {
		return &StorageError{Op: "write header", Err: err}
	}
	return nil
}
