package bootloader

import (
	"strconv"

	"github.com/ElToroDM/riscv-bootloader/flash"
	"github.com/ElToroDM/riscv-bootloader/image"
	"github.com/ElToroDM/riscv-bootloader/platform"
	"github.com/ElToroDM/riscv-bootloader/protocol"
)

// Session drives one all-or-nothing update attempt over the serial link:
//
//	AwaitCommand -> AwaitSize -> Erasing -> Receiving -> Finalizing
//	             -> Committed | Aborted
//
// Erase runs only after the declared size has passed the bound check, and
// the header write is the last write of the session, so a power loss at any
// point leaves the region classifiable as not valid.
type Session struct {
	serial platform.Serial
	status *protocol.StatusWriter
	gw     *flash.Gateway
	cfg    Config
}

// NewSession creates an update session. A session is single-use; Run may be
// called once.
func NewSession(serial platform.Serial, gw *flash.Gateway, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Session{
		serial: serial,
		status: protocol.NewStatusWriter(serialWriter{serial}, protocol.PrefixBoot),
		gw:     gw,
		cfg:    cfg,
	}
}

// Run executes the update protocol to completion and reports the outcome.
// It blocks for the entire transfer; there is no timeout and no
// cancellation path. A silent host stalls the session indefinitely.
func (s *Session) Run() Result {
	if err := s.status.Status(protocol.LitUpdateAck, protocol.TokUpdate, ""); err != nil {
		return Result{Outcome: OutcomeAborted, Reason: AbortReceiveFailed, Err: err}
	}

	// AwaitCommand: fixed literal token, matched byte-by-byte. A mismatch
	// aborts before any side effect.
	for i := 0; i < len(protocol.CommandSend); i++ {
		b, err := s.serial.ReadByte()
		if err != nil {
			return Result{Outcome: OutcomeAborted, Reason: AbortReceiveFailed, Err: err}
		}
		if b != protocol.CommandSend[i] {
			s.reject(protocol.LitErrCommand, protocol.ErrTokCommand)
			return Result{
				Outcome: OutcomeAborted,
				Reason:  AbortBadCommand,
				Err:     &protocol.ProtocolError{Stage: protocol.StageCommand, Detail: "unexpected byte in command token"},
			}
		}
	}

	size, wantCRC, hasCRC, err := s.readSizeLine()
	if err != nil {
		return Result{Outcome: OutcomeAborted, Reason: AbortReceiveFailed, Err: err}
	}

	// The size bound is validated before erase: erase is the first
	// irreversible step.
	if size == 0 || size > s.gw.PayloadCapacity() {
		s.reject(protocol.LitErrSize, protocol.ErrTokSize)
		return Result{
			Outcome: OutcomeAborted,
			Reason:  AbortInvalidSize,
			Err:     &protocol.ProtocolError{Stage: protocol.StageSize, Detail: "size out of range"},
		}
	}

	s.logDebug("update accepted", "size", size, "host_crc", hasCRC)
	s.reportProgress(Progress{Phase: PhaseErasing, TotalBytes: int(size)})

	if err := s.status.Status(protocol.LitErasing, protocol.TokErase, ""); err != nil {
		return Result{Outcome: OutcomeAborted, Reason: AbortReceiveFailed, Err: err}
	}
	if err := s.gw.EraseRegion(); err != nil {
		s.reject(protocol.LitErrErase, protocol.ErrTokErase)
		return Result{Outcome: OutcomeAborted, Reason: AbortEraseFailed, Err: err}
	}

	crc, res := s.receive(size)
	if res != nil {
		return *res
	}

	return s.finalize(size, crc, wantCRC, hasCRC)
}

// readSizeLine reads ASCII decimal digits until a line terminator,
// accumulating with natural uint32 width. An optional second field after a
// space carries the host's expected CRC-32 in hex. Other bytes are ignored,
// as the original parser ignored them.
func (s *Session) readSizeLine() (size, wantCRC uint32, hasCRC bool, err error) {
	inCRC := false
	for {
		b, rerr := s.serial.ReadByte()
		if rerr != nil {
			return 0, 0, false, rerr
		}
		switch {
		case b == '\r' || b == '\n':
			return size, wantCRC, hasCRC, nil
		case b == protocol.FieldSeparator:
			inCRC = true
		case !inCRC && b >= '0' && b <= '9':
			size = size*10 + uint32(b-'0')
		case inCRC:
			if d, ok := hexDigit(b); ok {
				wantCRC = wantCRC<<4 | uint32(d)
				hasCRC = true
			}
		}
	}
}

// receive reads exactly size payload bytes, one at a time, writing each
// through the gateway and folding it into the running checksum.
func (s *Session) receive(size uint32) (uint32, *Result) {
	if err := s.status.Status(protocol.LitReady, protocol.TokRecv, strconv.FormatUint(uint64(size), 10)); err != nil {
		return 0, &Result{Outcome: OutcomeAborted, Reason: AbortReceiveFailed, Err: err}
	}

	payloadBase := s.gw.Base() + image.HeaderSize

	var cw protocol.ChecksumWriter
	for i := uint32(0); i < size; i++ {
		b, err := s.serial.ReadByte()
		if err != nil {
			return 0, &Result{Outcome: OutcomeAborted, Reason: AbortReceiveFailed, Err: err}
		}
		if err := s.gw.Write(payloadBase+i, []byte{b}); err != nil {
			return 0, &Result{Outcome: OutcomeAborted, Reason: AbortWriteFailed, Err: err}
		}
		_ = cw.WriteByte(b)

		if s.cfg.Progress != nil && (i%1024 == 1023 || i == size-1) {
			s.reportProgress(Progress{
				Phase:         PhaseReceiving,
				BytesReceived: int(i + 1),
				TotalBytes:    int(size),
				Percentage:    100 * float64(i+1) / float64(size),
			})
		}
	}
	return cw.Sum(), nil
}

// finalize compares the recomputed checksum against the host's declaration
// when present, writes the header last, and reports the checksum outcome.
func (s *Session) finalize(size, crc, wantCRC uint32, hasCRC bool) Result {
	s.reportProgress(Progress{Phase: PhaseFinal, BytesReceived: int(size), TotalBytes: int(size), Percentage: 100})

	if hasCRC && crc != wantCRC {
		// The header is never written; the region stays invalid.
		s.logDebug("checksum mismatch", "computed", crc, "declared", wantCRC)
		_ = s.status.Line(protocol.LitCRCPrompt)
		_ = s.status.Status(protocol.LitErrCRC, protocol.TokCRC, protocol.CRCTokFail)
		return Result{
			Outcome: OutcomeAborted,
			Reason:  AbortChecksumMismatch,
			Err:     &image.ChecksumMismatchError{Stored: wantCRC, Computed: crc},
		}
	}

	h := image.Header{
		Magic:   image.Magic,
		Size:    size,
		CRC32:   crc,
		Version: s.cfg.FirmwareVersion,
	}
	if err := s.gw.WriteHeader(h); err != nil {
		s.reject(protocol.LitErrHeader, protocol.ErrTokHeader)
		return Result{Outcome: OutcomeAborted, Reason: AbortHeaderFailed, Err: err}
	}

	_ = s.status.Line(protocol.LitCRCPrompt)
	if err := s.status.Status(protocol.LitCRCPass, protocol.TokCRC, protocol.CRCTokOK); err != nil {
		return Result{Outcome: OutcomeAborted, Reason: AbortReceiveFailed, Err: err}
	}

	s.reportProgress(Progress{Phase: PhaseCommitted, BytesReceived: int(size), TotalBytes: int(size), Percentage: 100})
	s.logInfo("image committed", "size", size, "crc", crc)

	return Result{Outcome: OutcomeCommitted, Size: size, CRC: crc}
}

// reject emits an error status pair; the session is ending anyway, so a
// failed write here is not separately reported.
func (s *Session) reject(legacy, errTok string) {
	_ = s.status.Status(legacy, protocol.TokErr, errTok)
}

func (s *Session) reportProgress(p Progress) {
	if s.cfg.Progress != nil {
		s.cfg.Progress(p)
	}
}

func (s *Session) logDebug(msg string, kv ...interface{}) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Debug(msg, kv...)
	}
}

func (s *Session) logInfo(msg string, kv ...interface{}) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info(msg, kv...)
	}
}

func hexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// serialWriter adapts a byte-oriented serial port to io.Writer for status
// output.
type serialWriter struct {
	s platform.Serial
}

func (w serialWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := w.s.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}
