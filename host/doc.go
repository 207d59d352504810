// Package host drives the bootloader update protocol from the host side.
//
// # Overview
//
// Flasher speaks the same wire protocol the bootloader's update session
// implements, over any io.ReadWriter: a serial port, a TCP bridge to the
// simulator, or an in-process pipe in tests.
//
//	conn, _ := net.Dial("tcp", "localhost:7777")
//	f := host.New(conn,
//	    host.WithProgress(func(p host.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
//	err := f.Program(ctx, payload)
//
// The flasher waits on the machine-parsable BL:* status lines, so it works
// regardless of changes to the human-readable literals.
//
// # Hardware Independence
//
// This package does not open serial ports itself; the caller supplies the
// connected io.ReadWriter. Mock devices work the same way in tests.
package host
