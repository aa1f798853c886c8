package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"
)

func TestWavCmd(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pcm")
	b := filepath.Join(dir, "b.pcm")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte{0x01, 0x00, 0xff, 0xff}, 0600); err != nil {
			t.Fatalf("os.WriteFile() error = %v", err)
		}
	}

	out, err := captureStdout(t, func() error {
		return wavCmd.RunE(wavCmd, []string{a, b})
	})
	if err != nil {
		t.Fatalf("wav run error = %v", err)
	}

	for _, p := range []string{a, b} {
		if !strings.Contains(out, "Wrote "+p+".wav") {
			t.Fatalf("wav output = %q, want %s.wav", out, p)
		}
		f, err := os.Open(p + ".wav")
		if err != nil {
			t.Fatalf("os.Open() error = %v", err)
		}
		valid := wav.NewDecoder(f).IsValidFile()
		_ = f.Close()
		if !valid {
			t.Fatalf("%s.wav is not a valid wav file", p)
		}
	}
}

func TestWavCmdOutputWithManyInputs(t *testing.T) {
	wavOutput = "out.wav"
	t.Cleanup(func() { wavOutput = "" })

	if err := wavCmd.RunE(wavCmd, []string{"a.pcm", "b.pcm"}); err == nil {
		t.Fatal("wav expected error for --output with two inputs")
	}
}
