package flash

import "fmt"

// OutOfBoundsError indicates a write would touch bytes outside the
// application storage region. The request never reaches hardware.
type OutOfBoundsError struct {
	Addr     uint32
	Len      int
	Base     uint32
	Capacity uint32
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("write [0x%08X,+%d) outside app region [0x%08X,+%d)",
		e.Addr, e.Len, e.Base, e.Capacity)
}

// StorageError wraps a hardware write/erase failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("flash %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsOutOfBounds returns true if the error is an OutOfBoundsError.
func IsOutOfBounds(err error) bool {
	_, ok := err.(*OutOfBoundsError)
	return ok
}
