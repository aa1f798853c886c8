package hextext

import (
	"io"

	"golang.org/x/text/transform"
)

// streamDecoder normalizes and decodes in a single pass so input of any size
// can be converted chunk by chunk. It yields the same bytes as
// Decode(Normalize(input)) regardless of where chunk boundaries fall.
type streamDecoder struct {
	strict bool

	// zero is a '0' held back until the next significant character shows
	// whether it starts a "0x" prefix.
	zero   bool
	zeroAt int

	// hi is the first digit of an incomplete byte.
	hi     byte
	half   bool
	halfAt int

	offset int
}

// NewTransformer returns a transform.Transformer that turns hex text into bytes.
func NewTransformer(strict bool) transform.Transformer {
	return &streamDecoder{strict: strict}
}

// NewReader decodes the hex text read from r.
func NewReader(r io.Reader, strict bool) io.Reader {
	return transform.NewReader(r, NewTransformer(strict))
}

func (s *streamDecoder) Reset() {
	*s = streamDecoder{strict: s.strict}
}

func (s *streamDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for ; nSrc < len(src); nSrc++ {
		c := src[nSrc]
		at := s.offset

		switch {
		case isSeparator(c):
		case s.zero && c == 'x':
			s.zero = false
		case s.zero:
			// The held '0' is a digit after all. It completes a byte when one
			// is half done; otherwise c completes it unless c is held too.
			if c != '0' {
				if _, ok := unhex(c); !ok {
					return nDst, nSrc, &ParseError{Offset: at, Chunk: string(c), Err: ErrInvalidHex}
				}
			}
			if (s.half || c != '0') && nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			s.zero = false
			if b, ok := s.push(0, s.zeroAt); ok {
				dst[nDst] = b
				nDst++
			}
			if c == '0' {
				s.zero, s.zeroAt = true, at
			} else {
				v, _ := unhex(c)
				if b, ok := s.push(v, at); ok {
					dst[nDst] = b
					nDst++
				}
			}
		case c == '0':
			s.zero, s.zeroAt = true, at
		default:
			v, ok := unhex(c)
			if !ok {
				return nDst, nSrc, &ParseError{Offset: at, Chunk: string(c), Err: ErrInvalidHex}
			}
			if s.half && nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			if b, ok := s.push(v, at); ok {
				dst[nDst] = b
				nDst++
			}
		}
		s.offset++
	}

	if !atEOF {
		return nDst, nSrc, nil
	}
	return s.flush(dst, nDst, nSrc)
}

// push feeds one digit and returns a byte once two have been seen.
func (s *streamDecoder) push(v byte, at int) (byte, bool) {
	if !s.half {
		s.hi, s.half, s.halfAt = v, true, at
		return 0, false
	}
	s.half = false
	return s.hi<<4 | v, true
}

func (s *streamDecoder) flush(dst []byte, nDst, nSrc int) (int, int, error) {
	pending := 0
	if s.zero {
		pending++
	}
	if s.half {
		pending++
	}
	if pending == 0 {
		return nDst, nSrc, nil
	}
	if pending == 1 && s.strict {
		at, chunk := s.halfAt, []byte{'0'}
		if s.zero {
			at = s.zeroAt
		} else {
			chunk[0] = hexDigits[s.hi]
		}
		return nDst, nSrc, &ParseError{Offset: at, Chunk: string(chunk), Err: ErrOddLength}
	}
	if nDst >= len(dst) {
		return nDst, nSrc, transform.ErrShortDst
	}

	var b byte
	switch {
	case s.half && s.zero:
		b = s.hi << 4
	case s.half:
		b = s.hi
	}
	s.zero, s.half = false, false
	dst[nDst] = b
	return nDst + 1, nSrc, nil
}

// swap16 is the streaming form of SwapBytes16.
type swap16 struct {
	transform.NopResetter
}

// NewSwap16Reader swaps every byte pair read from r.
func NewSwap16Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, swap16{})
}

func (swap16) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc+1 < len(src) {
		if nDst+2 > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst], dst[nDst+1] = src[nSrc+1], src[nSrc]
		nDst += 2
		nSrc += 2
	}
	if nSrc < len(src) {
		if !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = src[nSrc]
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}
