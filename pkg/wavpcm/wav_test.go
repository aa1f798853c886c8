package wavpcm

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-audio/wav"
)

func decodeFile(t *testing.T, path string) (*wav.Decoder, []int) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		t.Fatalf("%s is not a valid wav file", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}
	return d, buf.Data
}

func TestWrapFile(t *testing.T) {
	dir := t.TempDir()
	pcmPath := filepath.Join(dir, "output.pcm")
	pcm := []byte{
		0x00, 0x00, // 0
		0x01, 0x00, // 1
		0xff, 0xff, // -1
		0xff, 0x7f, // 32767
		0x00, 0x80, // -32768
	}
	if err := os.WriteFile(pcmPath, pcm, 0600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	for _, atomic := range []bool{false, true} {
		out, err := NewWrapper(nil, atomic).WrapFile(pcmPath, "")
		if err != nil {
			t.Fatalf("WrapFile(atomic=%v) error = %v", atomic, err)
		}
		if out != pcmPath+".wav" {
			t.Fatalf("WrapFile() = %s, want %s.wav", out, pcmPath)
		}

		d, samples := decodeFile(t, out)
		if d.NumChans != NumChannels || d.BitDepth != BitDepth || d.SampleRate != SampleRate {
			t.Fatalf("header = %d ch, %d bit, %d Hz, want 1 ch, 16 bit, 16000 Hz", d.NumChans, d.BitDepth, d.SampleRate)
		}
		if d.WavAudioFormat != pcmFormat {
			t.Fatalf("audio format = %d, want PCM", d.WavAudioFormat)
		}
		want := []int{0, 1, -1, 32767, -32768}
		if !reflect.DeepEqual(samples, want) {
			t.Fatalf("samples = %v, want %v", samples, want)
		}
	}
}

func TestWrapFileOddLength(t *testing.T) {
	dir := t.TempDir()
	pcmPath := filepath.Join(dir, "odd.pcm")
	if err := os.WriteFile(pcmPath, []byte{0x02, 0x00, 0x7f}, 0600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	outPath := filepath.Join(dir, "custom.wav")
	out, err := NewWrapper(nil, false).WrapFile(pcmPath, outPath)
	if err != nil {
		t.Fatalf("WrapFile() error = %v", err)
	}
	if out != outPath {
		t.Fatalf("WrapFile() = %s, want %s", out, outPath)
	}

	_, samples := decodeFile(t, out)
	if !reflect.DeepEqual(samples, []int{2}) {
		t.Fatalf("samples = %v, want [2]", samples)
	}
}

func TestWrapFileMissingInput(t *testing.T) {
	_, err := NewWrapper(nil, false).WrapFile(filepath.Join(t.TempDir(), "missing.pcm"), "")
	if err == nil {
		t.Fatal("WrapFile() expected error for missing input")
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("rec/output.pcm"); got != "rec/output.pcm.wav" {
		t.Fatalf("OutputPath() = %s, want rec/output.pcm.wav", got)
	}
}
