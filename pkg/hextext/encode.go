package hextext

import "strings"

const (
	hexDigits      = "0123456789abcdef"
	upperHexDigits = "0123456789ABCDEF"
)

// EncodeFormat controls how Encode renders bytes. Separator should only
// contain characters Normalize strips, or the output will not decode.
type EncodeFormat struct {
	Prefix    bool // "0x" before every token
	Upper     bool
	GroupSize int // bytes per token
	PerLine   int // tokens per line, 0 keeps everything on one line
	Separator string
}

var (
	// ByteFormat renders sixteen "0xaa, " tokens per line.
	ByteFormat = EncodeFormat{Prefix: true, GroupSize: 1, PerLine: 16, Separator: ", "}

	// FirmwareFormat matches the sample dump the recorder prints over serial,
	// one big-endian 16-bit "0x%04x, " token per line.
	FirmwareFormat = EncodeFormat{Prefix: true, GroupSize: 2, PerLine: 1, Separator: ", "}
)

// Encode renders b as hex text that Decode(Normalize(...)) turns back into b.
// A short final group is written with the bytes that remain.
func Encode(b []byte, f EncodeFormat) string {
	group := max(f.GroupSize, 1)
	digits := hexDigits
	if f.Upper {
		digits = upperHexDigits
	}

	var sb strings.Builder
	tokens := 0
	for i := 0; i < len(b); i += group {
		if f.Prefix {
			sb.WriteString("0x")
		}
		for _, c := range b[i:min(i+group, len(b))] {
			sb.WriteByte(digits[c>>4])
			sb.WriteByte(digits[c&0x0f])
		}
		sb.WriteString(f.Separator)

		tokens++
		if f.PerLine > 0 && tokens%f.PerLine == 0 {
			sb.WriteByte('\n')
		}
	}
	if f.PerLine > 0 && tokens%f.PerLine != 0 {
		sb.WriteByte('\n')
	}
	return sb.String()
}
