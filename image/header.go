package image

import (
	"encoding/binary"
	"fmt"
)

// Magic is the header sentinel, "RVBL" read as a little-endian word.
const Magic uint32 = 0x5256424C

// HeaderSize is the on-flash size of the header record in bytes.
const HeaderSize = 16

// Header is the fixed-layout record stored at the base of the application
// region. All fields are little-endian uint32, matching the RV32 target:
//
//	offset 0: magic
//	offset 4: size     (payload length, header excluded)
//	offset 8: crc32    (over exactly size bytes following the header)
//	offset 12: version (informative tag, no policy attached)
type Header struct {
	Magic   uint32
	Size    uint32
	CRC32   uint32
	Version uint32
}

// EncodeTo serializes the header into buf, which must hold HeaderSize bytes.
func (h Header) EncodeTo(buf []byte) error {
	if len(buf) < HeaderSize {
		return fmt.Errorf("image: header buffer too small: %d < %d", len(buf), HeaderSize)
	}
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Size)
	binary.LittleEndian.PutUint32(buf[8:12], h.CRC32)
	binary.LittleEndian.PutUint32(buf[12:16], h.Version)
	return nil
}

// Encode returns the serialized header.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	_ = h.EncodeTo(buf)
	return buf
}

// DecodeHeader parses a header record from buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("image: header buffer too small: %d < %d", len(buf), HeaderSize)
	}
	return Header{
		Magic:   binary.LittleEndian.Uint32(buf[0:4]),
		Size:    binary.LittleEndian.Uint32(buf[4:8]),
		CRC32:   binary.LittleEndian.Uint32(buf[8:12]),
		Version: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}
