package memsim

import (
	"fmt"
	"io"
)

// serialPort bridges the simulated UART to an io.Reader / io.Writer pair.
// Reads are one byte at a time, as on the real 16550 with FIFOs drained by
// the polling loop.
type serialPort struct {
	in   io.Reader
	out  io.Writer
	crlf bool
}

func (s *serialPort) Init() error {
	if s.in == nil || s.out == nil {
		return fmt.Errorf("memsim: serial not wired")
	}
	return nil
}

func (s *serialPort) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(s.in, buf[:]); err != nil {
		return 0, fmt.Errorf("memsim: serial read: %w", err)
	}
	return buf[0], nil
}

func (s *serialPort) WriteByte(b byte) error {
	if s.crlf && b == '\n' {
		if _, err := s.out.Write([]byte{'\r'}); err != nil {
			return err
		}
	}
	_, err := s.out.Write([]byte{b})
	return err
}

// Write lets the serial port double as an io.Writer for status output.
func (s *serialPort) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := s.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}
