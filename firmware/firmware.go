package firmware

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

// GapFill is the byte used to fill gaps between HEX data segments. It
// matches the flash erased-state value, so filled gaps cost nothing on
// the device.
const GapFill = 0xFF

// MaxImageSize caps how large a loaded image may be, as a sanity check
// against loading the wrong file. 16 MiB is far beyond any supported
// partition.
const MaxImageSize = 16 * 1024 * 1024

// Image is a flat firmware payload ready for transfer.
type Image struct {
	// Payload is the raw bytes streamed to the bootloader.
	Payload []byte

	// BaseAddr is the lowest address of HEX input, zero for raw binaries.
	BaseAddr uint32
}

// Load reads a firmware image from path. Files ending in .hex or .ihex are
// parsed as Intel HEX and flattened; anything else is taken as a raw
// binary payload.
//
// Example:
//
//	img, err := firmware.Load("app.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = flasher.Program(ctx, img.Payload)
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex":
		return ParseHex(f)
	default:
		return LoadRaw(f)
	}
}

// LoadRaw reads a raw binary payload from r.
func LoadRaw(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}
	return &Image{Payload: data}, nil
}

// ParseHex parses Intel HEX from r and flattens all data segments into a
// single payload relative to the lowest address, filling gaps with
// GapFill.
func ParseHex(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("parse intel hex: %w", err)
	}

	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return nil, fmt.Errorf("hex file contains no data")
	}

	base := segments[0].Address
	var end uint64
	for _, s := range segments {
		if s.Address < base {
			base = s.Address
		}
		if e := uint64(s.Address) + uint64(len(s.Data)); e > end {
			end = e
		}
	}

	size := end - uint64(base)
	if size > MaxImageSize {
		return nil, fmt.Errorf("hex image spans %d bytes, exceeds %d", size, MaxImageSize)
	}

	payload := make([]byte, size)
	for i := range payload {
		payload[i] = GapFill
	}
	for _, s := range segments {
		copy(payload[s.Address-base:], s.Data)
	}

	return &Image{Payload: payload, BaseAddr: base}, nil
}
