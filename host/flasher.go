package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ElToroDM/riscv-bootloader/protocol"
)

// Flasher drives the bootloader's update protocol from the host side.
// The device is any io.ReadWriter carrying the serial stream: a pty, a
// TCP bridge, or an in-process pipe in tests.
type Flasher struct {
	device io.ReadWriter
	reader *bufio.Reader
	config Config
}

// New creates a Flasher for the given device.
//
// Example:
//
//	conn, _ := net.Dial("tcp", "localhost:7777")
//	f := host.New(conn, host.WithProgress(progressFunc))
//	err := f.Program(ctx, payload)
func New(device io.ReadWriter, opts ...Option) *Flasher {
	if device == nil {
		panic("device cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Flasher{
		device: device,
		reader: bufio.NewReader(device),
		config: cfg,
	}
}

// Program performs a complete update:
//  1. Wait for the boot prompt
//  2. Request update mode
//  3. Declare the payload size (and, unless disabled, its CRC-32)
//  4. Stream the payload
//  5. Wait for the checksum verdict and the reboot announcement
//
// The operation can be cancelled via context between protocol steps; a
// read already in flight is not interrupted.
func (f *Flasher) Program(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload cannot be empty")
	}

	start := time.Now()
	f.reportProgress(Progress{Phase: PhaseWaiting, TotalBytes: len(payload)})

	if err := f.waitForToken(ctx, protocol.TokBootPrompt); err != nil {
		return fmt.Errorf("wait for boot prompt: %w", err)
	}

	if _, err := f.device.Write([]byte{protocol.UpdateSymbol}); err != nil {
		return fmt.Errorf("request update: %w", err)
	}
	if err := f.waitForToken(ctx, protocol.TokUpdate); err != nil {
		return fmt.Errorf("enter update mode: %w", err)
	}

	line := fmt.Sprintf("%s%d", protocol.CommandSend, len(payload))
	if !f.config.OmitChecksum {
		line = fmt.Sprintf("%s %08x", line, protocol.Checksum(payload))
	}
	f.logDebug("declaring image", "command", line)
	if _, err := io.WriteString(f.device, line+"\n"); err != nil {
		return fmt.Errorf("send size: %w", err)
	}

	if err := f.waitForToken(ctx, protocol.TokRecv); err != nil {
		return fmt.Errorf("wait for receive window: %w", err)
	}

	f.reportProgress(Progress{Phase: PhaseSending, TotalBytes: len(payload)})
	if err := f.stream(ctx, payload, start); err != nil {
		return err
	}

	verdict, err := f.waitForCRCVerdict(ctx)
	if err != nil {
		return fmt.Errorf("wait for checksum verdict: %w", err)
	}
	if !verdict {
		return &ChecksumRejectedError{Size: len(payload)}
	}

	if err := f.waitForToken(ctx, protocol.TokReboot); err != nil {
		return fmt.Errorf("wait for reboot: %w", err)
	}

	f.reportProgress(Progress{
		Phase:       PhaseComplete,
		BytesSent:   len(payload),
		TotalBytes:  len(payload),
		Percentage:  100,
		ElapsedTime: time.Since(start),
	})
	f.logInfo("update complete", "bytes", len(payload), "elapsed", time.Since(start).String())
	return nil
}

// stream writes the payload, pacing and reporting progress per chunk.
func (f *Flasher) stream(ctx context.Context, payload []byte, start time.Time) error {
	chunk := f.config.ChunkSize
	for sent := 0; sent < len(payload); {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		end := sent + chunk
		if end > len(payload) {
			end = len(payload)
		}
		if _, err := f.device.Write(payload[sent:end]); err != nil {
			return fmt.Errorf("stream payload at byte %d: %w", sent, err)
		}
		n := end - sent
		sent = end

		if f.config.ByteDelay > 0 {
			time.Sleep(time.Duration(n) * f.config.ByteDelay)
		}
		f.reportProgress(Progress{
			Phase:       PhaseSending,
			BytesSent:   sent,
			TotalBytes:  len(payload),
			Percentage:  100 * float64(sent) / float64(len(payload)),
			ElapsedTime: time.Since(start),
		})
	}
	return nil
}

// waitForToken consumes lines until the bootloader emits the wanted
// machine token. A BL:ERR token while waiting is a rejection.
func (f *Flasher) waitForToken(ctx context.Context, token string) error {
	want := protocol.PrefixBoot + ":" + token
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := f.readLine()
		if err != nil {
			return err
		}
		f.logDebug("device", "line", line)
		if line == want || strings.HasPrefix(line, want+":") {
			return nil
		}
		if rej, ok := parseRejection(line); ok {
			return rej
		}
	}
}

// waitForCRCVerdict waits for BL:CRC:OK or BL:CRC:FAIL.
func (f *Flasher) waitForCRCVerdict(ctx context.Context) (bool, error) {
	prefix := protocol.PrefixBoot + ":" + protocol.TokCRC + ":"
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		line, err := f.readLine()
		if err != nil {
			return false, err
		}
		f.logDebug("device", "line", line)
		switch line {
		case prefix + protocol.CRCTokOK:
			return true, nil
		case prefix + protocol.CRCTokFail:
			return false, nil
		}
		if rej, ok := parseRejection(line); ok {
			return false, rej
		}
	}
}

func (f *Flasher) readLine() (string, error) {
	line, err := f.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseRejection(line string) (error, bool) {
	prefix := protocol.PrefixBoot + ":" + protocol.TokErr + ":"
	if !strings.HasPrefix(line, prefix) {
		return nil, false
	}
	return &RejectedError{Token: strings.TrimPrefix(line, prefix)}, true
}

func (f *Flasher) reportProgress(p Progress) {
	if f.config.Progress != nil {
		f.config.Progress(p)
	}
}

func (f *Flasher) logDebug(msg string, kv ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Debug(msg, kv...)
	}
}

func (f *Flasher) logInfo(msg string, kv ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Info(msg, kv...)
	}
}
