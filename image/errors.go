package image

import "fmt"

// BadMagicError indicates the header sentinel is absent. An erased or
// partially written region fails with this error first.
type BadMagicError struct {
	Got uint32
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("invalid magic number: got 0x%08X, want 0x%08X", e.Got, Magic)
}

// BadSizeError indicates the declared payload size is zero or exceeds the
// partition's payload capacity.
type BadSizeError struct {
	Size uint32
	Max  uint32
}

func (e *BadSizeError) Error() string {
	return fmt.Sprintf("invalid firmware size: %d (valid range 1..%d)", e.Size, e.Max)
}

// ChecksumMismatchError indicates the payload checksum recomputed from
// storage differs from the header's stored checksum.
type ChecksumMismatchError struct {
	Stored   uint32
	Computed uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("CRC mismatch: header 0x%08X, computed 0x%08X", e.Stored, e.Computed)
}

// IsValidationError returns true for any of the validator's error types.
func IsValidationError(err error) bool {
	switch err.(type) {
	case *BadMagicError, *BadSizeError, *ChecksumMismatchError:
		return true
	}
	return false
}
