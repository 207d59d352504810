// Package bootloader implements the boot decision controller and the
// serial update session.
//
// # Overview
//
// On reset the controller classifies the current flash contents as
// bootable or not, offers a single update opportunity over the serial
// link, and either transfers control to a validated application image or
// drops into a recovery loop that accepts update attempts forever:
//
//	Init -> OfferUpdate -> { Update | ValidateAndBoot } -> RecoveryLoop
//
// The update session is a strict byte-level state machine:
//
//	AwaitCommand -> AwaitSize -> Erasing -> Receiving -> Finalizing
//	             -> Committed | Aborted
//
// # Invariants
//
//   - The declared size is validated before the erase step; a rejected
//     size leaves storage untouched.
//   - The header write is the last write of an update. Power loss at any
//     earlier point leaves the region without a valid sentinel, so the
//     validator classifies it as not bootable.
//   - ValidateAndBoot is the only code path that transfers control to the
//     application; the recovery loop never hands off.
//
// # Basic Usage
//
// Run the controller against a board implementation:
//
//	board := memsim.New(memsim.Config{Input: os.Stdin, Output: os.Stdout})
//	ctl := bootloader.New(board,
//	    bootloader.WithTargetName("QEMU Virt (RV32IM)"),
//	)
//	err := ctl.Run()
//
// # Configuration Options
//
//	ctl := bootloader.New(board,
//	    bootloader.WithLogger(myLogger),
//	    bootloader.WithProgress(progressFunc),
//	    bootloader.WithDirectBoot(true),
//	    bootloader.WithBanner(false),
//	)
//
// WithDirectBoot skips the reset cycle after a committed update and hands
// off immediately; the committed image is still re-validated from storage
// through the same gate the normal boot path uses.
//
// # Blocking Model
//
// The core is strictly single-threaded. Every serial read and storage
// operation blocks to completion with no timeout; a silent host stalls the
// loader indefinitely. That is the accepted tradeoff for a loader with no
// interrupt or timer infrastructure.
package bootloader
