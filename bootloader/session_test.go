package bootloader

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElToroDM/riscv-bootloader/flash"
	"github.com/ElToroDM/riscv-bootloader/image"
	"github.com/ElToroDM/riscv-bootloader/platform/memsim"
	"github.com/ElToroDM/riscv-bootloader/protocol"
)

const (
	testBase     = 0x80010000
	testCapacity = 4096
)

func newSessionFixture(t *testing.T, input string, opts ...Option) (*Session, *memsim.Board, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	b := memsim.New(memsim.Config{
		AppBase:     testBase,
		AppCapacity: testCapacity,
		Input:       strings.NewReader(input),
		Output:      &out,
	})
	gw := flash.NewGateway(b.Flash(), testBase, testCapacity)
	return NewSession(b.Serial(), gw, opts...), b, &out
}

func TestSessionCommitWithoutHostChecksum(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	s, b, out := newSessionFixture(t, "SEND 4\n"+string(payload))

	res := s.Run()
	require.True(t, res.Committed())
	require.Equal(t, AbortNone, res.Reason)
	require.Equal(t, uint32(4), res.Size)
	require.Equal(t, protocol.Checksum(payload), res.CRC)

	require.Contains(t, out.String(), "ERASING...\nBL:ERASE\n")
	require.Contains(t, out.String(), "READY\nBL:RECV:4\n")
	require.Contains(t, out.String(), "CRC?\nOK\nBL:CRC:OK\n")

	// The committed region must pass the boot gate.
	v := image.NewValidator(b.Flash(), testBase, testCapacity)
	img, err := v.Validate()
	require.NoError(t, err)
	require.Equal(t, uint32(4), img.Size)
}

func TestSessionCommitWithHostChecksum(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	line := fmt.Sprintf("SEND 4 %08x\n", protocol.Checksum(payload))
	s, _, out := newSessionFixture(t, line+string(payload))

	res := s.Run()
	require.True(t, res.Committed())
	require.Contains(t, out.String(), "BL:CRC:OK")
}

func TestSessionChecksumMismatchAborts(t *testing.T) {
	good := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	corrupted := []byte{0xDE, 0xAD, 0xBE, 0xEE}
	line := fmt.Sprintf("SEND 4 %08x\n", protocol.Checksum(good))
	s, b, out := newSessionFixture(t, line+string(corrupted))

	res := s.Run()
	require.False(t, res.Committed())
	require.Equal(t, AbortChecksumMismatch, res.Reason)
	require.Contains(t, out.String(), "ERR: CRC\nBL:CRC:FAIL\n")

	// Header write never happened: the region must stay invalid.
	v := image.NewValidator(b.Flash(), testBase, testCapacity)
	_, err := v.Validate()
	require.IsType(t, &image.BadMagicError{}, err)
}

func TestSessionBadCommandToken(t *testing.T) {
	s, b, out := newSessionFixture(t, "XEND 4\n")

	res := s.Run()
	require.False(t, res.Committed())
	require.Equal(t, AbortBadCommand, res.Reason)
	require.True(t, protocol.IsProtocolError(res.Err))
	require.Contains(t, out.String(), "ERR: CMD\nBL:ERR:CMD\n")

	// Aborting on the command token has no side effects.
	require.Zero(t, b.EraseCalls())
	require.Zero(t, b.WriteCalls())
}

func TestSessionSizeRejectedBeforeErase(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"zero size", "SEND 0\n"},
		{"exceeds payload capacity", fmt.Sprintf("SEND %d\n", testCapacity-image.HeaderSize+1)},
		{"no digits at all", "SEND \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, b, out := newSessionFixture(t, tt.line)

			res := s.Run()
			require.False(t, res.Committed())
			require.Equal(t, AbortInvalidSize, res.Reason)
			require.Contains(t, out.String(), "ERR: SIZE\nBL:ERR:SIZE\n")
			require.Zero(t, b.EraseCalls(), "erase must not run for a rejected size")
		})
	}
}

func TestSessionSizeLineToleratesCR(t *testing.T) {
	payload := []byte{1, 2}
	s, _, _ := newSessionFixture(t, "SEND 2\r"+string(payload))
	res := s.Run()
	require.True(t, res.Committed())
}

func TestSessionEraseFailure(t *testing.T) {
	s, b, out := newSessionFixture(t, "SEND 4\n")
	b.FailErases(errors.New("sector stuck"))

	res := s.Run()
	require.False(t, res.Committed())
	require.Equal(t, AbortEraseFailed, res.Reason)
	require.Contains(t, out.String(), "ERR: ERASE\nBL:ERR:ERASE\n")
}

func TestSessionWriteFailure(t *testing.T) {
	s, b, _ := newSessionFixture(t, "SEND 4\n\x01\x02\x03\x04")
	b.FailWrites(errors.New("nak"))

	res := s.Run()
	require.False(t, res.Committed())
	require.Equal(t, AbortWriteFailed, res.Reason)
}

func TestSessionStalledHostSurfacesSerialError(t *testing.T) {
	// Input ends mid-transfer. On hardware this would block forever; the
	// simulated serial reports the closed stream instead.
	s, _, _ := newSessionFixture(t, "SEND 4\n\x01\x02")

	res := s.Run()
	require.False(t, res.Committed())
	require.Equal(t, AbortReceiveFailed, res.Reason)
	require.Error(t, res.Err)
}

func TestSessionProgressCallback(t *testing.T) {
	payload := make([]byte, 2048)
	var phases []string
	var lastPct float64
	opt := WithProgress(func(p Progress) {
		phases = append(phases, p.Phase)
		lastPct = p.Percentage
	})
	s, _, _ := newSessionFixture(t, fmt.Sprintf("SEND %d\n%s", len(payload), payload), opt)

	res := s.Run()
	require.True(t, res.Committed())
	require.Contains(t, phases, PhaseErasing)
	require.Contains(t, phases, PhaseReceiving)
	require.Contains(t, phases, PhaseCommitted)
	require.Equal(t, float64(100), lastPct)
}
