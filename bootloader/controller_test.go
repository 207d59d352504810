package bootloader

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElToroDM/riscv-bootloader/app"
	"github.com/ElToroDM/riscv-bootloader/image"
	"github.com/ElToroDM/riscv-bootloader/platform/memsim"
	"github.com/ElToroDM/riscv-bootloader/protocol"
)

func newBoard(t *testing.T, input string) (*memsim.Board, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	b := memsim.New(memsim.Config{
		AppBase:     testBase,
		AppCapacity: testCapacity,
		Input:       strings.NewReader(input),
		Output:      &out,
	})
	b.MapEntry(testBase+image.HeaderSize, app.Run)
	return b, &out
}

func seedValidImage(t *testing.T, b *memsim.Board, payload []byte) {
	t.Helper()
	h := image.Header{
		Magic:   image.Magic,
		Size:    uint32(len(payload)),
		CRC32:   protocol.Checksum(payload),
		Version: 1,
	}
	require.NoError(t, b.Seed(testBase, h.Encode()))
	require.NoError(t, b.Seed(testBase+image.HeaderSize, payload))
}

// requireOrdered asserts that each marker appears in s after the previous
// one.
func requireOrdered(t *testing.T, s string, markers ...string) {
	t.Helper()
	pos := 0
	for _, m := range markers {
		idx := strings.Index(s[pos:], m)
		require.GreaterOrEqual(t, idx, 0, "marker %q not found after position %d in:\n%s", m, pos, s)
		pos += idx + len(m)
	}
}

// Normal handoff: update with DE AD BE EF, expect ready, checksum pass and
// the application's own start signal after the handoff.
func TestEndToEndUpdateAndHandoff(t *testing.T) {
	payload := "\xDE\xAD\xBE\xEF"
	b, out := newBoard(t, "uSEND 4\n"+payload)

	ctl := New(b,
		WithBanner(false),
		WithDirectBoot(true),
	)
	require.NoError(t, ctl.Run())

	requireOrdered(t, out.String(),
		"BOOT?\nBL:BOOT?\n",
		"OK\nBL:UPDATE\n",
		"ERASING...\nBL:ERASE\n",
		"READY\nBL:RECV:4\n",
		"CRC?\nOK\nBL:CRC:OK\n",
		"REBOOT\nBL:REBOOT\n",
		"Jumping to application...\n",
		"APP_HANDOFF\nBL:HANDOFF\n",
		"APP_BOOT\nAPP:START\n",
		"App: online\nAPP:ONLINE\n",
	)

	execs, entry := b.ExecCalls()
	require.Equal(t, 1, execs)
	require.Equal(t, uint32(testBase+image.HeaderSize), entry)
}

// Recovery: storage pre-erased, boot requested. Validation fails and the
// controller enters the recovery loop; the handoff signal never appears.
func TestEndToEndRecoveryOnErasedFlash(t *testing.T) {
	b, out := newBoard(t, "\n")

	ctl := New(b, WithBanner(false))
	err := ctl.Run()
	require.Error(t, err, "scripted input ends inside the recovery loop")

	requireOrdered(t, out.String(),
		"BOOT?\nBL:BOOT?\n",
		"Error: Invalid magic number\nBL:ERR:MAGIC\n",
		protocol.LitRecovery+"\nBL:RECOVERY\n",
	)
	require.NotContains(t, out.String(), "APP_HANDOFF")

	execs, _ := b.ExecCalls()
	require.Zero(t, execs)
}

// Integrity failure: the host declares the checksum of the uncorrupted
// payload but streams a corrupted byte. The bootloader reports the
// checksum failure and never hands off to the corrupted payload.
func TestEndToEndChecksumFailure(t *testing.T) {
	good := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	corrupted := "\xDE\xAD\xBE\xEE"
	line := fmt.Sprintf("uSEND 4 %08x\n", protocol.Checksum(good))
	b, out := newBoard(t, line+corrupted)

	ctl := New(b, WithBanner(false), WithDirectBoot(true))
	err := ctl.Run()
	require.Error(t, err, "aborted update re-offers, then input ends")

	require.Contains(t, out.String(), "ERR: CRC\nBL:CRC:FAIL\n")
	require.NotContains(t, out.String(), "APP_HANDOFF")

	execs, _ := b.ExecCalls()
	require.Zero(t, execs)

	// The region never got a header.
	v := image.NewValidator(b.Flash(), testBase, testCapacity)
	_, verr := v.Validate()
	require.IsType(t, &image.BadMagicError{}, verr)
}

func TestBootWithValidImage(t *testing.T) {
	b, out := newBoard(t, "\n")
	seedValidImage(t, b, []byte{1, 2, 3, 4})

	ctl := New(b, WithBanner(false))
	require.NoError(t, ctl.Run())

	requireOrdered(t, out.String(),
		"BOOT?\nBL:BOOT?\n",
		"APP_HANDOFF\nBL:HANDOFF\n",
		"APP_BOOT\nAPP:START\n",
	)
}

func TestOversizeRejectedBeforeErase(t *testing.T) {
	line := fmt.Sprintf("uSEND %d\n", testCapacity)
	b, out := newBoard(t, line)

	ctl := New(b, WithBanner(false))
	err := ctl.Run()
	require.Error(t, err, "re-offered prompt runs out of input")

	require.Contains(t, out.String(), "ERR: SIZE\nBL:ERR:SIZE\n")
	require.Zero(t, b.EraseCalls())
}

// An aborted update re-enters the decision point: the prompt is offered
// again and a subsequent boot request still goes through the normal gate.
func TestAbortedUpdateReentersOffer(t *testing.T) {
	b, out := newBoard(t, "uXEND\n")
	seedValidImage(t, b, []byte{9, 9, 9})

	ctl := New(b, WithBanner(false))
	err := ctl.Run()
	require.NoError(t, err, "second prompt reads a non-update symbol and boots")

	requireOrdered(t, out.String(),
		"BOOT?\nBL:BOOT?\n",
		"ERR: CMD\nBL:ERR:CMD\n",
		"BOOT?\nBL:BOOT?\n",
		"APP_HANDOFF\nBL:HANDOFF\n",
	)
}

// Default post-commit policy is a reset, not a handoff.
func TestCommitDefaultsToReset(t *testing.T) {
	payload := "\x01\x02\x03"
	b, out := newBoard(t, "uSEND 3\n"+payload)

	ctl := New(b, WithBanner(false))
	require.NoError(t, ctl.Run())

	require.Contains(t, out.String(), "REBOOT\nBL:REBOOT\n")
	require.NotContains(t, out.String(), "APP_HANDOFF")
	require.Equal(t, 1, b.ResetCalls())
	execs, _ := b.ExecCalls()
	require.Zero(t, execs)
}

// Recovery accepts an update and, with direct boot enabled, hands off to
// the freshly committed image after re-validating it.
func TestRecoveryUpdateThenDirectBoot(t *testing.T) {
	payload := "\xAA\xBB\xCC\xDD"
	// First symbol requests a boot of the erased region, dropping into
	// recovery; 'x' is ignored there; 'u' starts the update.
	b, out := newBoard(t, "\nxuSEND 4\n"+payload)

	ctl := New(b, WithBanner(false), WithDirectBoot(true))
	require.NoError(t, ctl.Run())

	requireOrdered(t, out.String(),
		protocol.LitRecovery+"\nBL:RECOVERY\n",
		"OK\nBL:UPDATE\n",
		"CRC?\nOK\nBL:CRC:OK\n",
		"REBOOT\nBL:REBOOT\n",
		"APP_HANDOFF\nBL:HANDOFF\n",
	)
}

// Without direct boot, a commit inside recovery announces the reboot and
// resets, then stays resident in the same recovery loop. Repeated commits
// cycle through the identical path; control never transfers.
func TestRecoveryCommitWithoutDirectBootStaysResident(t *testing.T) {
	b, out := newBoard(t, "\nuSEND 2\n\x01\x02uSEND 2\n\x03\x04")

	ctl := New(b, WithBanner(false))
	err := ctl.Run()
	require.Error(t, err, "scripted input ends inside the recovery loop")

	requireOrdered(t, out.String(),
		protocol.LitRecovery+"\nBL:RECOVERY\n",
		"REBOOT\nBL:REBOOT\n",
		"OK\nBL:UPDATE\n",
		"REBOOT\nBL:REBOOT\n",
	)
	require.Equal(t, 1, strings.Count(out.String(), protocol.LitRecovery),
		"recovery is entered once and stays resident across commits")
	require.NotContains(t, out.String(), "APP_HANDOFF")

	require.Equal(t, 2, b.ResetCalls())
	execs, _ := b.ExecCalls()
	require.Zero(t, execs)
}

func TestBannerAndTargetName(t *testing.T) {
	b, out := newBoard(t, "\n")
	seedValidImage(t, b, []byte{1})

	ctl := New(b, WithTargetName("Bench Board A1"))
	require.NoError(t, ctl.Run())

	require.Contains(t, out.String(), "   Target: Bench Board A1\n")
	requireOrdered(t, out.String(),
		"======================================\n",
		"BOOT?\nBL:BOOT?\n",
	)
}
