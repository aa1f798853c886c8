package hextext

import (
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
)

// Decoder decodes normalized hex text into bytes.
type Decoder struct {
	log    logging.Logger
	strict bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger reports every decoded byte to log at Verbo level.
func WithLogger(log logging.Logger) Option {
	return func(d *Decoder) {
		if log != nil {
			d.log = log
		}
	}
}

// WithStrict rejects normalized input with an odd number of digits instead of
// decoding the trailing digit on its own.
func WithStrict(strict bool) Option {
	return func(d *Decoder) {
		d.strict = strict
	}
}

// NewDecoder creates a Decoder. Without options it is lenient and silent.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{log: logging.NoLog{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses norm two characters at a time, left to right.
//
// In lenient mode a trailing single character is parsed alone, so "ABC"
// decodes to {0xAB, 0x0C}.
func (d *Decoder) Decode(norm string) ([]byte, error) {
	if d.strict && len(norm)%2 != 0 {
		last := len(norm) - 1
		return nil, &ParseError{Offset: last, Chunk: norm[last:], Err: ErrOddLength}
	}

	out := make([]byte, 0, (len(norm)+1)/2)
	for i := 0; i < len(norm); i += 2 {
		chunk := norm[i:min(i+2, len(norm))]
		b, ok := parseChunk(chunk)
		if !ok {
			return nil, &ParseError{Offset: i, Chunk: chunk, Err: ErrInvalidHex}
		}
		d.log.Verbo("decoded byte",
			zap.Int("index", len(out)),
			zap.Uint8("value", b),
		)
		out = append(out, b)
	}
	return out, nil
}

// Convert normalizes blob and decodes the result.
func (d *Decoder) Convert(blob string) ([]byte, error) {
	return d.Decode(Normalize(blob))
}

// Decode decodes norm with a lenient, silent Decoder.
func Decode(norm string) ([]byte, error) {
	return NewDecoder().Decode(norm)
}

func parseChunk(chunk string) (byte, bool) {
	var v byte
	for i := 0; i < len(chunk); i++ {
		n, ok := unhex(chunk[i])
		if !ok {
			return 0, false
		}
		v = v<<4 | n
	}
	return v, true
}

// SwapBytes16 returns a copy of b with every byte pair swapped. The firmware
// prints samples big-endian while WAV expects little-endian. A trailing odd
// byte is kept in place.
func SwapBytes16(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	for i := 0; i+1 < len(out); i += 2 {
		out[i], out[i+1] = out[i+1], out[i]
	}
	return out
}
