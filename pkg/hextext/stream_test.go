package hextext

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"golang.org/x/text/transform"
)

var streamInputs = []string{
	"",
	"AABBCC",
	"0xDE, 0xAD, 0xBE, 0xEF, \r\n",
	"0x1a2b, \n0x0300, \n0x0000, \n",
	"0\nx1A",
	"00x1",
	"000x",
	"0x0x0a",
	"ABC",
	"0",
	"00",
	"A0",
	"0A",
	"1,0\nx2,3",
	"AAZZ",
	"0XAA",
	"x",
	"0xx",
	"F0",
	"0xa0, 0x0b",
}

// drive runs tr by hand with small src chunks and a small dst buffer so the
// ErrShortDst paths get exercised.
func drive(tr transform.Transformer, in []byte, chunk, dstSize int) ([]byte, error) {
	var out []byte
	dst := make([]byte, dstSize)
	pos := 0
	for {
		end := min(pos+chunk, len(in))
		atEOF := end == len(in)
		nDst, nSrc, err := tr.Transform(dst, in[pos:end], atEOF)
		out = append(out, dst[:nDst]...)
		pos += nSrc
		switch {
		case errors.Is(err, transform.ErrShortDst):
		case err != nil:
			return nil, err
		case atEOF && pos == len(in):
			return out, nil
		}
	}
}

func TestStreamMatchesBatch(t *testing.T) {
	for _, strict := range []bool{false, true} {
		batch := NewDecoder(WithStrict(strict))
		for _, in := range streamInputs {
			want, wantErr := batch.Convert(in)

			for chunk := 1; chunk <= len(in)+1; chunk++ {
				for _, dstSize := range []int{1, 2, 64} {
					got, err := drive(NewTransformer(strict), []byte(in), chunk, dstSize)
					if (err != nil) != (wantErr != nil) {
						t.Fatalf("strict=%v input %q chunk %d dst %d: stream error = %v, batch error = %v",
							strict, in, chunk, dstSize, err, wantErr)
					}
					if err == nil && !bytes.Equal(got, want) {
						t.Fatalf("strict=%v input %q chunk %d dst %d: stream = %x, batch = %x",
							strict, in, chunk, dstSize, got, want)
					}
				}
			}
		}
	}
}

func TestNewReader(t *testing.T) {
	in := Encode(bytes.Repeat([]byte{0x00, 0x01, 0xfe, 0xff}, 5000), FirmwareFormat)

	got, err := io.ReadAll(NewReader(iotest.OneByteReader(strings.NewReader(in)), false))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	want := bytes.Repeat([]byte{0x00, 0x01, 0xfe, 0xff}, 5000)
	if !bytes.Equal(got, want) {
		t.Fatalf("NewReader() decoded %d bytes, want %d", len(got), len(want))
	}
}

func TestNewReaderInvalid(t *testing.T) {
	_, err := io.ReadAll(NewReader(strings.NewReader("0xAA, 0xZZ"), false))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("ReadAll() error = %v, want *ParseError", err)
	}
	if perr.Offset != 8 || perr.Chunk != "Z" {
		t.Fatalf("ParseError at %d %q, want 8 \"Z\"", perr.Offset, perr.Chunk)
	}
}

func TestNewReaderStrictOdd(t *testing.T) {
	_, err := io.ReadAll(NewReader(strings.NewReader("0xAB, 0xC"), true))
	if !errors.Is(err, ErrOddLength) {
		t.Fatalf("ReadAll() error = %v, want ErrOddLength", err)
	}
}

func TestTransformerReset(t *testing.T) {
	tr := NewTransformer(false)
	dst := make([]byte, 4)
	if _, _, err := tr.Transform(dst, []byte("0xA"), false); err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	tr.Reset()

	got, err := drive(tr, []byte("BC"), 2, 4)
	if err != nil {
		t.Fatalf("drive() after Reset error = %v", err)
	}
	if !bytes.Equal(got, []byte{0xBC}) {
		t.Fatalf("drive() after Reset = %x, want bc", got)
	}
}

func TestNewSwap16Reader(t *testing.T) {
	for n := 0; n < 9; n++ {
		in := make([]byte, n)
		for i := range in {
			in[i] = byte(i + 1)
		}

		got, err := io.ReadAll(NewSwap16Reader(iotest.OneByteReader(bytes.NewReader(in))))
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if want := SwapBytes16(in); !bytes.Equal(got, want) {
			t.Fatalf("NewSwap16Reader(%x) = %x, want %x", in, got, want)
		}
	}
}
