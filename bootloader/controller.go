package bootloader

import (
	"github.com/ElToroDM/riscv-bootloader/flash"
	"github.com/ElToroDM/riscv-bootloader/image"
	"github.com/ElToroDM/riscv-bootloader/platform"
	"github.com/ElToroDM/riscv-bootloader/protocol"
)

// Controller is the boot decision state machine, the entry point of the
// whole core:
//
//	Init -> OfferUpdate -> { Update | ValidateAndBoot } -> RecoveryLoop
//
// ValidateAndBoot is the single gate through which control ever transfers
// to application code. The recovery loop never calls the handoff.
type Controller struct {
	board     platform.Board
	serial    platform.Serial
	status    *protocol.StatusWriter
	gw        *flash.Gateway
	validator *image.Validator
	cfg       Config
}

// New creates a controller for the given board.
func New(board platform.Board, opts ...Option) *Controller {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	base, capacity := board.AppRegion()
	serial := board.Serial()
	return &Controller{
		board:     board,
		serial:    serial,
		status:    protocol.NewStatusWriter(serialWriter{serial}, protocol.PrefixBoot),
		gw:        flash.NewGateway(board.Flash(), base, capacity),
		validator: image.NewValidator(board.Flash(), base, capacity),
		cfg:       cfg,
	}
}

// Run executes the boot decision. It returns only in simulation: on real
// hardware every exit path ends in a handoff, a reset, or the recovery
// loop. The returned error reports a failed serial link, the only
// condition the state machine cannot absorb.
func (c *Controller) Run() error {
	c.board.EarlyInit()
	if err := c.serial.Init(); err != nil {
		return err
	}

	if c.cfg.Banner {
		if err := c.printBanner(); err != nil {
			return err
		}
	}

	for {
		if err := c.status.Status(protocol.LitBootPrompt, protocol.TokBootPrompt, ""); err != nil {
			return err
		}

		choice, err := c.readEchoed()
		if err != nil {
			return err
		}

		if choice == protocol.UpdateSymbol || choice == protocol.UpdateSymbolUpper {
			res := c.runSession()
			if !res.Committed() {
				// Aborted update: offer again.
				continue
			}
			return c.afterCommit()
		}

		// Enter and any other symbol both request a boot.
		return c.validateAndBoot()
	}
}

// runSession runs one update session with the controller's configuration.
func (c *Controller) runSession() Result {
	s := &Session{
		serial: c.serial,
		status: c.status,
		gw:     c.gw,
		cfg:    c.cfg,
	}
	res := s.Run()
	if res.Err != nil {
		c.logDebug("update session ended", "outcome", res.Reason.String(), "err", res.Err.Error())
	}
	return res
}

// afterCommit applies the post-update policy: announce the reboot, then
// either reset (default) or, under DirectBoot, hand off to the new image
// after re-validating it from storage through the normal gate.
func (c *Controller) afterCommit() error {
	if err := c.status.Status(protocol.LitReboot, protocol.TokReboot, ""); err != nil {
		return err
	}
	if !c.cfg.DirectBoot {
		c.board.Reset()
		return nil
	}
	return c.validateAndBoot()
}

// validateAndBoot runs the validator and, on success, transfers control.
// On failure it reports the reason and enters the recovery loop. The loop
// is iterative: a committed recovery update under DirectBoot comes back
// here for re-validation instead of recursing.
func (c *Controller) validateAndBoot() error {
	for {
		img, err := c.validator.Validate()
		if err == nil {
			return c.handoff(img)
		}
		if werr := c.reportValidationError(err); werr != nil {
			return werr
		}
		if err := c.recoveryLoop(); err != nil {
			return err
		}
	}
}

// handoff transfers control to the validated entry address. Irreversible
// on hardware; in simulation it returns when the application returns.
func (c *Controller) handoff(img *image.ValidatedImage) error {
	if err := c.status.Line(protocol.LitJumping); err != nil {
		return err
	}
	if err := c.status.Status(protocol.LitHandoff, protocol.TokHandoff, ""); err != nil {
		return err
	}
	c.logInfo("handing off", "entry", img.EntryAddr, "size", img.Size, "version", img.Version)
	return c.board.Exec(img.EntryAddr)
}

// recoveryLoop blocks for update attempts forever. It never auto-boots
// and never calls the handoff: leaving recovery requires a committed
// update followed by the configured post-commit policy, or an external
// reset. Under DirectBoot a commit returns nil so the caller re-validates.
func (c *Controller) recoveryLoop() error {
	if err := c.status.Status(protocol.LitRecovery, protocol.TokRecovery, ""); err != nil {
		return err
	}
	for {
		b, err := c.serial.ReadByte()
		if err != nil {
			return err
		}
		if b != protocol.UpdateSymbol && b != protocol.UpdateSymbolUpper {
			continue
		}
		res := c.runSession()
		if !res.Committed() {
			continue
		}
		if err := c.status.Status(protocol.LitReboot, protocol.TokReboot, ""); err != nil {
			return err
		}
		if !c.cfg.DirectBoot {
			// Reset returned (simulation); stay in recovery until the
			// fresh boot decision happens elsewhere.
			c.board.Reset()
			continue
		}
		return nil
	}
}

// readEchoed blocks for one decision symbol and echoes it, as the original
// did for operator visibility over a terminal.
func (c *Controller) readEchoed() (byte, error) {
	b, err := c.serial.ReadByte()
	if err != nil {
		return 0, err
	}
	if err := c.serial.WriteByte(b); err != nil {
		return 0, err
	}
	if b != '\r' && b != '\n' {
		if err := (serialWriter{c.serial}).writeString("\n"); err != nil {
			return 0, err
		}
	}
	return b, nil
}

func (c *Controller) reportValidationError(err error) error {
	var legacy, tok string
	switch err.(type) {
	case *image.BadMagicError:
		legacy, tok = protocol.LitErrBadMagic, protocol.ErrTokMagic
	case *image.BadSizeError:
		legacy, tok = protocol.LitErrBadSize, protocol.ErrTokSize
	case *image.ChecksumMismatchError:
		legacy, tok = protocol.LitErrBadCRC, protocol.ErrTokCRC
	default:
		// Storage read failure; report as a checksum-path failure, the
		// closest legacy line.
		legacy, tok = protocol.LitErrBadCRC, protocol.ErrTokCRC
	}
	c.logDebug("validation failed", "err", err.Error())
	return c.status.Status(legacy, protocol.TokErr, tok)
}

func (c *Controller) printBanner() error {
	lines := []string{
		"======================================",
		"   RISC-V UART Bootloader",
		"   Target: " + c.cfg.TargetName,
		"======================================",
	}
	for _, l := range lines {
		if err := c.status.Line(l); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) logDebug(msg string, kv ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Debug(msg, kv...)
	}
}

func (c *Controller) logInfo(msg string, kv ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Info(msg, kv...)
	}
}

func (w serialWriter) writeString(s string) error {
	_, err := w.Write([]byte(s))
	return err
}
