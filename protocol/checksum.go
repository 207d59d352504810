package protocol

import "hash/crc32"

// ChecksumEmpty is the checksum of zero-length input.
const ChecksumEmpty uint32 = 0

// Checksum computes the CRC-32 integrity checksum used by both the image
// header and the update protocol.
//
// The algorithm is the standard zlib-compatible CRC-32 (IEEE 802.3
// polynomial, 0xFFFFFFFF initial value and final XOR), so values can be
// cross-checked with any zlib-style implementation on the host side.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ChecksumWriter accumulates a CRC-32 incrementally, for callers that
// receive the payload one byte at a time and do not retain it.
type ChecksumWriter struct {
	crc uint32
}

// Write updates the running checksum. It never fails.
func (w *ChecksumWriter) Write(p []byte) (int, error) {
	w.crc = crc32.Update(w.crc, crc32.IEEETable, p)
	return len(p), nil
}

// WriteByte updates the running checksum with a single byte.
func (w *ChecksumWriter) WriteByte(b byte) error {
	w.crc = crc32.Update(w.crc, crc32.IEEETable, []byte{b})
	return nil
}

// Sum returns the checksum of everything written so far.
func (w *ChecksumWriter) Sum() uint32 {
	return w.crc
}

// Reset discards the accumulated state.
func (w *ChecksumWriter) Reset() {
	w.crc = 0
}
