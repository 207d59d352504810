package image

import (
	"fmt"

	"github.com/ElToroDM/riscv-bootloader/platform"
	"github.com/ElToroDM/riscv-bootloader/protocol"
)

// ValidatedImage carries the verified payload location of a bootable image.
type ValidatedImage struct {
	// EntryAddr is the address control is transferred to: the first byte
	// after the header.
	EntryAddr uint32

	// PayloadAddr equals EntryAddr; the payload begins at the entry point.
	PayloadAddr uint32

	// Size is the verified payload length in bytes.
	Size uint32

	// Version is the header's informative version tag.
	Version uint32
}

// Validator certifies whether the application region holds a complete,
// checksum-correct image. It is a pure reader: validation has no side
// effects on storage.
type Validator struct {
	flash    platform.Flash
	base     uint32
	capacity uint32
}

// NewValidator returns a validator for the region [base, base+capacity).
func NewValidator(flash platform.Flash, base, capacity uint32) *Validator {
	return &Validator{flash: flash, base: base, capacity: capacity}
}

// Validate reads the header at the region base and runs the three checks
// in cheapest-first order, short-circuiting on the first failure: magic,
// size bound, then the payload checksum scan. Only a fully valid image is
// returned; a truncated or garbage header is never classified bootable.
func (v *Validator) Validate() (*ValidatedImage, error) {
	var raw [HeaderSize]byte
	if err := v.flash.Read(v.base, raw[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h, err := DecodeHeader(raw[:])
	if err != nil {
		return nil, err
	}

	if h.Magic != Magic {
		return nil, &BadMagicError{Got: h.Magic}
	}

	maxPayload := v.capacity - HeaderSize
	if h.Size == 0 || h.Size > maxPayload {
		return nil, &BadSizeError{Size: h.Size, Max: maxPayload}
	}

	payload := make([]byte, h.Size)
	if err := v.flash.Read(v.base+HeaderSize, payload); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if got := protocol.Checksum(payload); got != h.CRC32 {
		return nil, &ChecksumMismatchError{Stored: h.CRC32, Computed: got}
	}

	return &ValidatedImage{
		EntryAddr:   v.base + HeaderSize,
		PayloadAddr: v.base + HeaderSize,
		Size:        h.Size,
		Version:     h.Version,
	}, nil
}
