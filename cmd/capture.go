package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sdmic/micdump/pkg/binfile"
	"github.com/sdmic/micdump/pkg/config"
	"github.com/sdmic/micdump/pkg/serialcap"
)

var (
	// capture flags
	captureInput           string
	captureDiscardPreamble bool
	captureListPorts       bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record the serial console to a file",
	Long: `Record the recorder's serial console to a file.

Every line is written as received except the control lines: "-- start" and
"-- mid" are dropped, and "-- end" finishes the capture. Press Ctrl-C to stop
early; lines received so far are kept unless --atomic is set.

Examples:
  micdump capture
  micdump capture --port COM9 --baud 115200 -o data.txt
  micdump capture --discard-preamble --timeout 10m
  micdump capture --input session.log      # replay a saved console log
  micdump capture --list-ports`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if captureListPorts {
			return listPorts()
		}

		ctx, cancel := getOperationContext(cfg.Timeout)
		defer cancel()

		src, closeSrc, err := openCaptureSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSrc()

		st, summary, err := runCapture(ctx, src, cfg)
		if err != nil {
			return fmt.Errorf("capture stopped after %d lines (%d bytes): %w", st.Written, st.Bytes, err)
		}

		out := statusOutput(summary.Path)
		fmt.Fprintf(out, "Capture complete. %d lines written to %s\n", st.Written, summary.Path)
		fmt.Fprintf(out, "  Bytes:       %d\n", summary.Bytes)
		fmt.Fprintf(out, "  Blocks:      %d\n", st.Mids)
		fmt.Fprintf(out, "  BLAKE2b-256: %s\n", summary.Digest)
		return nil
	},
}

// openCaptureSource opens the replay file or the serial port. A serial port is
// closed as soon as ctx is done so a blocked read returns.
func openCaptureSource(ctx context.Context, c config.Config) (io.Reader, func(), error) {
	if captureInput != "" {
		r, err := binfile.Open(captureInput)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	}

	port, err := serialcap.OpenPort(c.SerialPort, c.BaudRate)
	if err != nil {
		return nil, nil, err
	}
	log.Info("serial port open",
		zap.String("port", c.SerialPort),
		zap.Int("baud", c.BaudRate),
	)

	stop := context.AfterFunc(ctx, func() {
		_ = port.Close()
	})
	return port, func() {
		stop()
		_ = port.Close()
	}, nil
}

func runCapture(ctx context.Context, src io.Reader, c config.Config) (serialcap.Stats, binfile.Summary, error) {
	capturer := serialcap.NewCapturer(
		serialcap.WithLogger(log),
		serialcap.WithDiscardPreamble(captureDiscardPreamble),
		serialcap.WithProgressEvery(c.ProgressEvery),
	)

	var st serialcap.Stats
	summary, err := binfile.WriteWith(c.CaptureOutput, func(w io.Writer) (int64, error) {
		var runErr error
		st, runErr = capturer.Run(ctx, src, w)
		return st.Bytes, runErr
	}, binfile.WithAtomic(c.Atomic))
	if err != nil {
		if errors.Is(err, serialcap.ErrNoEndMarker) && st.Written > 0 {
			log.Warn("input ended without an end marker", zap.Int("lines", st.Written))
		}
		return st, binfile.Summary{}, err
	}
	return st, summary, nil
}

func listPorts() error {
	ports, err := serialcap.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().String("port", cfg.SerialPort, "Serial port")
	captureCmd.Flags().Int("baud", cfg.BaudRate, "Baud rate")
	captureCmd.Flags().StringP("output", "o", cfg.CaptureOutput, `Output file ("-" for stdout)`)
	captureCmd.Flags().Int("progress-every", cfg.ProgressEvery, "Log progress every N blocks (0 disables)")
	captureCmd.Flags().Duration("timeout", cfg.Timeout, "Stop after this long (0 waits for the end marker)")
	captureCmd.Flags().StringVar(&captureInput, "input", "", "Read a saved console log instead of the serial port")
	captureCmd.Flags().BoolVar(&captureDiscardPreamble, "discard-preamble", false, "Drop lines received before the start marker")
	captureCmd.Flags().BoolVar(&captureListPorts, "list-ports", false, "List serial ports and exit")
	bindConfigKey(captureCmd.Flags(), "port", config.KeySerialPort)
	bindConfigKey(captureCmd.Flags(), "baud", config.KeyBaudRate)
	bindConfigKey(captureCmd.Flags(), "output", config.KeyCaptureOutput)
	bindConfigKey(captureCmd.Flags(), "progress-every", config.KeyProgressEvery)
	bindConfigKey(captureCmd.Flags(), "timeout", config.KeyTimeout)
}
