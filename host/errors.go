package host

import "fmt"

// RejectedError indicates the bootloader rejected a protocol step with a
// BL:ERR token.
type RejectedError struct {
	// Token is the error token value (CMD, SIZE, ERASE, HEADER, ...).
	Token string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("bootloader rejected update: %s", e.Token)
}

// ChecksumRejectedError indicates the bootloader's recomputed checksum did
// not match the declared one; the image was not committed.
type ChecksumRejectedError struct {
	Size int
}

func (e *ChecksumRejectedError) Error() string {
	return fmt.Sprintf("device reported checksum mismatch for %d byte image", e.Size)
}
