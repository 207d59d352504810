// Package protocol defines the UART update protocol vocabulary and the
// image integrity checksum.
//
// # Protocol Overview
//
// The bootloader speaks a byte-oriented, 8-bit-clean ASCII protocol with no
// framing or escaping:
//
//	Bootloader: BOOT?                 (decision prompt)
//	Host:       u                     (enter update; anything else boots)
//	Bootloader: OK
//	Host:       SEND <size>[ <crc32>]\n
//	Bootloader: ERASING...
//	Bootloader: READY
//	Host:       <size> raw bytes
//	Bootloader: CRC?
//	Bootloader: OK | ERR: CRC
//	Bootloader: REBOOT
//
// <size> is ASCII decimal; the optional <crc32> is the expected payload
// CRC-32 in hex. When the host supplies it, the bootloader refuses to commit
// an image whose recomputed checksum differs.
//
// # Status Lines
//
// Every status is emitted both as its historical human-readable literal and
// as a machine-parsable PREFIX:TOKEN[:VALUE] line (see StatusWriter). The
// bootloader uses the "BL" prefix, the demo application "APP". Both forms
// are emitted together until the legacy literals are retired.
//
// # Checksum
//
// Checksum is the standard zlib-compatible CRC-32. It is used for the image
// header's integrity field and for the host's expected-checksum declaration,
// so the same constant polynomial must be used on both ends of the wire.
package protocol
