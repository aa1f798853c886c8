package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdmic/micdump/pkg/binfile"
	"github.com/sdmic/micdump/pkg/config"
	"github.com/sdmic/micdump/pkg/serialcap"
)

const consoleLog = "booting\r\n" +
	"-- start\r\n" +
	"0x0102, \r\n" +
	"0x0304, \r\n" +
	"-- mid\r\n" +
	"0x0506, \r\n" +
	"-- end\r\n" +
	"trailing noise\r\n"

func setCaptureFlags(t *testing.T, input string, discard bool) {
	t.Helper()
	captureInput, captureDiscardPreamble = input, discard
	t.Cleanup(func() {
		captureInput, captureDiscardPreamble = "", false
	})
}

func TestCaptureCmd(t *testing.T) {
	tests := []struct {
		name    string
		discard bool
		want    string
		lines   string
	}{
		{
			name:  "keep preamble",
			want:  "booting\r\n0x0102, \r\n0x0304, \r\n0x0506, \r\n",
			lines: "Capture complete. 4 lines",
		},
		{
			name:    "discard preamble",
			discard: true,
			want:    "0x0102, \r\n0x0304, \r\n0x0506, \r\n",
			lines:   "Capture complete. 3 lines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			setCaptureFlags(t, writeInput(t, dir, "session.log", consoleLog), tt.discard)

			c := config.Default()
			c.CaptureOutput = filepath.Join(dir, "data.txt")
			withConfig(t, c)

			out, err := captureStdout(t, func() error {
				return captureCmd.RunE(captureCmd, nil)
			})
			if err != nil {
				t.Fatalf("capture run error = %v", err)
			}
			if !strings.Contains(out, tt.lines) {
				t.Fatalf("capture output = %q, want %q", out, tt.lines)
			}
			if !strings.Contains(out, "Blocks:      1") {
				t.Fatalf("capture output = %q, want one block", out)
			}

			got, err := os.ReadFile(c.CaptureOutput)
			if err != nil {
				t.Fatalf("os.ReadFile() error = %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("data.txt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCaptureCmdNoEndMarker(t *testing.T) {
	dir := t.TempDir()
	setCaptureFlags(t, writeInput(t, dir, "session.log", "-- start\r\n0x0102, \r\n"), false)

	for _, atomic := range []bool{false, true} {
		c := config.Default()
		c.CaptureOutput = filepath.Join(dir, "data.txt")
		c.Atomic = atomic
		withConfig(t, c)
		_ = os.Remove(c.CaptureOutput)

		_, err := captureStdout(t, func() error {
			return captureCmd.RunE(captureCmd, nil)
		})
		if !errors.Is(err, serialcap.ErrNoEndMarker) {
			t.Fatalf("capture(atomic=%v) error = %v, want ErrNoEndMarker", atomic, err)
		}
		if !strings.Contains(err.Error(), "after 1 lines") {
			t.Fatalf("capture(atomic=%v) error = %q, want line count", atomic, err)
		}

		got, readErr := os.ReadFile(c.CaptureOutput)
		switch {
		case atomic && binfile.AtomicSupported && !errors.Is(readErr, os.ErrNotExist):
			t.Fatalf("atomic capture left %q behind (err %v)", got, readErr)
		case !atomic && string(got) != "0x0102, \r\n":
			t.Fatalf("partial capture = %q, want the received line", got)
		}
	}
}

func TestCaptureCmdMissingInput(t *testing.T) {
	setCaptureFlags(t, filepath.Join(t.TempDir(), "missing.log"), false)

	if err := captureCmd.RunE(captureCmd, nil); err == nil {
		t.Fatal("capture expected error for missing input")
	}
}
