// Package serialcap records the recorder's serial console into a file,
// honoring the "-- start", "-- mid" and "-- end" control lines.
package serialcap

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/units"
	"go.uber.org/zap"
)

// Control lines printed by the firmware around a sample dump.
const (
	StartMarker = "-- start"
	MidMarker   = "-- mid"
	EndMarker   = "-- end"
)

// DefaultProgressEvery is how many mid markers pass between progress logs.
const DefaultProgressEvery = 100

// ErrNoEndMarker is returned when the stream ends before the end marker.
var ErrNoEndMarker = errors.New("stream ended before " + EndMarker)

// Stats counts what a capture saw and kept.
type Stats struct {
	Lines   int   // lines read, markers included
	Written int   // lines written to the output
	Bytes   int64 // bytes written to the output
	Mids    int
	Started bool
	Ended   bool
}

// Capturer copies a line-oriented stream until the end marker.
type Capturer struct {
	log             logging.Logger
	discardPreamble bool
	progressEvery   int
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithLogger reports markers and progress to log.
func WithLogger(log logging.Logger) Option {
	return func(c *Capturer) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDiscardPreamble drops lines that arrive before the start marker, such as
// the firmware's boot log.
func WithDiscardPreamble(discard bool) Option {
	return func(c *Capturer) {
		c.discardPreamble = discard
	}
}

// WithProgressEvery logs progress every n mid markers. Zero disables it.
func WithProgressEvery(n int) Option {
	return func(c *Capturer) {
		c.progressEvery = n
	}
}

// NewCapturer creates a Capturer.
func NewCapturer(opts ...Option) *Capturer {
	c := &Capturer{
		log:           logging.NoLog{},
		progressEvery: DefaultProgressEvery,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run copies lines from r to w until the end marker. Markers are matched with
// any trailing "\r\n" removed and are never written; every other line is
// written verbatim, line ending included.
//
// Run only observes ctx between lines. Callers reading from a device should
// close it when ctx is done to unblock a pending read.
func (c *Capturer) Run(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	var st Stats
	br := bufio.NewReaderSize(r, 4*units.KiB)

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			st.Lines++
			done, err := c.handle(&st, line, w)
			if err != nil {
				return st, err
			}
			if done {
				return st, nil
			}
		}

		if readErr != nil {
			if err := ctx.Err(); err != nil {
				return st, err
			}
			if errors.Is(readErr, io.EOF) {
				return st, ErrNoEndMarker
			}
			return st, fmt.Errorf("failed to read capture stream: %w", readErr)
		}
	}
}

func (c *Capturer) handle(st *Stats, line []byte, w io.Writer) (bool, error) {
	switch string(bytes.TrimRight(line, "\r\n")) {
	case StartMarker:
		st.Started = true
		c.log.Info("start marker received", zap.Int("line", st.Lines))
		return false, nil
	case MidMarker:
		st.Mids++
		if c.progressEvery > 0 && st.Mids%c.progressEvery == 0 {
			c.log.Info("capture progress",
				zap.Int("mids", st.Mids),
				zap.Int64("bytes", st.Bytes),
			)
		}
		return false, nil
	case EndMarker:
		st.Ended = true
		c.log.Info("end marker received",
			zap.Int("lines", st.Written),
			zap.Int64("bytes", st.Bytes),
		)
		return true, nil
	}

	if c.discardPreamble && !st.Started {
		c.log.Debug("discarding preamble line", zap.ByteString("line", bytes.TrimRight(line, "\r\n")))
		return false, nil
	}

	n, err := w.Write(line)
	st.Bytes += int64(n)
	if err != nil {
		return false, fmt.Errorf("failed to write capture output: %w", err)
	}
	st.Written++
	return false, nil
}
