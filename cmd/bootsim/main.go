// Command bootsim runs the bootloader against the simulated board, with
// the serial stream bridged to stdio or a TCP listener. It is the
// QEMU-less way to exercise the full update protocol end to end:
//
//	bootsim --listen :7777
//	fwflash --connect localhost:7777 app.bin
package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ElToroDM/riscv-bootloader/app"
	"github.com/ElToroDM/riscv-bootloader/bootloader"
	"github.com/ElToroDM/riscv-bootloader/firmware"
	"github.com/ElToroDM/riscv-bootloader/image"
	"github.com/ElToroDM/riscv-bootloader/platform/memsim"
	"github.com/ElToroDM/riscv-bootloader/protocol"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "bootsim",
		Short:         "simulated RISC-V UART bootloader",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	fs := cmd.Flags()
	fs.String("listen", "", "TCP address to serve the serial stream on (default: stdio)")
	base := hexUint32(memsim.DefaultAppBase)
	fs.Var(&base, "base", "application region base address (0x prefix accepted)")
	fs.Uint32("capacity", memsim.DefaultAppCapacity, "application region capacity in bytes")
	fs.Bool("direct-boot", false, "hand off to a committed image without a reset cycle")
	fs.String("target", "Simulated RV32", "target name shown in the banner")
	fs.String("seed", "", "firmware file to pre-install in the application region")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Bool("crlf", false, "normalize serial output line endings to CRLF")

	v.SetEnvPrefix("BOOTSIM")
	v.AutomaticEnv()
	_ = v.BindPFlags(fs)

	return cmd
}

func run(v *viper.Viper) error {
	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if addr := v.GetString("listen"); addr != "" {
		return serveTCP(v, log, addr)
	}
	return bootOnce(v, log, os.Stdin, os.Stdout)
}

// serveTCP accepts connections one at a time; each connection gets a fresh
// board and a full boot cycle, like power-cycling the device.
func serveTCP(v *viper.Viper, log zerolog.Logger, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer func() { _ = ln.Close() }()
	log.Info().Str("addr", ln.Addr().String()).Msg("serving serial stream")

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		log.Info().Str("peer", conn.RemoteAddr().String()).Msg("host connected")
		if err := bootOnce(v, log, conn, conn); err != nil {
			log.Warn().Err(err).Msg("boot cycle ended")
		}
		_ = conn.Close()
	}
}

func bootOnce(v *viper.Viper, log zerolog.Logger, in io.Reader, out io.Writer) error {
	base, err := appBase(v)
	if err != nil {
		return err
	}
	board := memsim.New(memsim.Config{
		AppBase:     base,
		AppCapacity: v.GetUint32("capacity"),
		Input:       in,
		Output:      out,
		CRLF:        v.GetBool("crlf"),
		OnReset: func() {
			log.Info().Msg("system reset requested")
		},
	})
	board.MapEntry(base+image.HeaderSize, app.Run)

	if seed := v.GetString("seed"); seed != "" {
		if err := seedImage(board, base, seed); err != nil {
			return fmt.Errorf("seed image: %w", err)
		}
		log.Info().Str("file", seed).Msg("pre-installed application image")
	}

	ctl := bootloader.New(board,
		bootloader.WithLogger(zlog{log}),
		bootloader.WithDirectBoot(v.GetBool("direct-boot")),
		bootloader.WithTargetName(v.GetString("target")),
	)
	return ctl.Run()
}

// seedImage installs a valid image so the simulator boots straight into
// the demo application.
func seedImage(board *memsim.Board, base uint32, path string) error {
	img, err := firmware.Load(path)
	if err != nil {
		return err
	}
	h := image.Header{
		Magic:   image.Magic,
		Size:    uint32(len(img.Payload)),
		CRC32:   protocol.Checksum(img.Payload),
		Version: 1,
	}
	if err := board.Seed(base, h.Encode()); err != nil {
		return err
	}
	return board.Seed(base+image.HeaderSize, img.Payload)
}

// appBase reads the base address flag, accepting decimal or 0x-prefixed
// hex through env overrides as well.
func appBase(v *viper.Viper) (uint32, error) {
	n, err := strconv.ParseUint(v.GetString("base"), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("parse base address: %w", err)
	}
	return uint32(n), nil
}

// hexUint32 is a pflag value that prints and parses addresses in hex.
type hexUint32 uint32

func (h *hexUint32) String() string { return fmt.Sprintf("0x%08X", uint32(*h)) }
func (h *hexUint32) Type() string   { return "address" }

func (h *hexUint32) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return err
	}
	*h = hexUint32(n)
	return nil
}

var _ pflag.Value = (*hexUint32)(nil)

// zlog adapts zerolog to the bootloader's Logger interface.
type zlog struct {
	l zerolog.Logger
}

func (z zlog) Debug(msg string, kv ...interface{}) { z.l.Debug().Fields(kv).Msg(msg) }
func (z zlog) Info(msg string, kv ...interface{})  { z.l.Info().Fields(kv).Msg(msg) }
func (z zlog) Error(msg string, kv ...interface{}) { z.l.Error().Fields(kv).Msg(msg) }
