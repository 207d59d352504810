// Package memsim implements platform.Board as a deterministic in-memory
// simulation of the qemu_virt target: RAM-backed flash with 0xFF as the
// erased value, a serial port bridged to ordinary readers and writers, and
// control transfer dispatched to registered Go functions.
//
// It backs both the bootsim command and the unit/end-to-end tests; the boot
// core cannot tell it apart from a hardware board.
package memsim
