// Package platform declares the hardware collaborator contract between the
// boot core and board-specific code.
//
// The core (storage gateway, image validator, update session, boot
// controller) reaches hardware only through the Board, Serial and Flash
// interfaces. Porting to a new target means implementing this package's
// interfaces for that board; the decision logic runs unmodified.
//
// The memsim subpackage provides a deterministic in-memory board used by
// the simulator command and the test suite.
package platform
