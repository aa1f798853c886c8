// Package hextext converts loosely formatted hex text, such as a serial dump of
// "0x1a2b, " lines, into raw bytes and back.
package hextext

import "strings"

// Normalize strips newlines, spaces, commas and literal "0x" prefixes, in that
// order. The result is not validated; Decode reports anything left over.
//
// "\r" counts as a newline so CRLF dumps normalize the same as LF dumps.
func Normalize(blob string) string {
	s := strings.ReplaceAll(blob, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, "0x", "")
}

func isSeparator(c byte) bool {
	switch c {
	case '\r', '\n', ' ', ',':
		return true
	}
	return false
}

// unhex returns the value of a single hex digit.
func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
