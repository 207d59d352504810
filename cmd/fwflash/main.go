// Command fwflash programs a firmware image onto a device running the
// UART bootloader, over TCP (against bootsim or a serial-to-TCP bridge)
// or over stdio:
//
//	fwflash --connect localhost:7777 app.bin
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ElToroDM/riscv-bootloader/firmware"
	"github.com/ElToroDM/riscv-bootloader/host"
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
		Use:           "fwflash <image>",
		Short:         "program a firmware image over the UART update protocol",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v, args[0])
		},
	}

	fs := cmd.Flags()
	fs.String("connect", "", "TCP address of the device (default: stdio)")
	fs.Int("chunk-size", 256, "payload write size in bytes")
	fs.Duration("byte-delay", 0, "pacing delay per payload byte")
	fs.Bool("no-checksum", false, "speak the legacy protocol without an expected checksum")
	fs.Duration("timeout", 2*time.Minute, "overall programming timeout")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")

	v.SetEnvPrefix("FWFLASH")
	v.AutomaticEnv()
	_ = v.BindPFlags(fs)

	return cmd
}

func run(v *viper.Viper, path string) error {
	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	img, err := firmware.Load(path)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	log.Info().Str("file", path).Int("bytes", len(img.Payload)).Msg("image loaded")

	device, err := openDevice(v.GetString("connect"))
	if err != nil {
		return err
	}
	if c, ok := device.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, v.GetDuration("timeout"))
	defer cancel()

	f := host.New(device,
		host.WithLogger(zlog{log}),
		host.WithChunkSize(v.GetInt("chunk-size")),
		host.WithByteDelay(v.GetDuration("byte-delay")),
		host.WithOmitChecksum(v.GetBool("no-checksum")),
		host.WithProgress(logProgress(log)),
	)
	if err := f.Program(ctx, img.Payload); err != nil {
		return fmt.Errorf("program: %w", err)
	}
	log.Info().Msg("device committed the image and is rebooting")
	return nil
}

func openDevice(addr string) (io.ReadWriter, error) {
	if addr == "" {
		return struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}, nil
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}

// logProgress reports the stream at 25% steps to keep the log readable.
func logProgress(log zerolog.Logger) host.ProgressCallback {
	lastQuarter := -1
	return func(p host.Progress) {
		if p.Phase != host.PhaseSending {
			log.Debug().Str("phase", p.Phase).Msg("progress")
			return
		}
		q := int(p.Percentage) / 25
		if q == lastQuarter {
			return
		}
		lastQuarter = q
		log.Info().
			Int("sent", p.BytesSent).
			Int("total", p.TotalBytes).
			Str("elapsed", p.ElapsedTime.Round(time.Millisecond).String()).
			Msgf("%3.0f%%", p.Percentage)
	}
}

// zlog adapts zerolog to the flasher's Logger interface.
type zlog struct {
	l zerolog.Logger
}

func (z zlog) Debug(msg string, kv ...interface{}) { z.l.Debug().Fields(kv).Msg(msg) }
func (z zlog) Info(msg string, kv ...interface{})  { z.l.Info().Fields(kv).Msg(msg) }
func (z zlog) Error(msg string, kv ...interface{}) { z.l.Error().Fields(kv).Msg(msg) }
