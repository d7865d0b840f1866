package ddr

import (
	"strconv"
	"strings"
)

// FormatType is the decoded shape of one format atom from a DDR's format
// controls.
type FormatType int

const (
	// FormatBinaryInt is a little-endian binary integer: b11/b21 (1 byte),
	// b12/b22 (2 bytes), b14 (4 bytes unsigned), b24 (4 bytes signed).
	FormatBinaryInt FormatType = iota
	// FormatAscii is variable-length ASCII text terminated by UT or FT.
	FormatAscii
	// FormatAsciiFixed is exactly-n-byte ASCII text.
	FormatAsciiFixed
	// FormatIntegerAscii is a variable-length decimal integer in ASCII.
	FormatIntegerAscii
	// FormatIntegerAsciiFixed is an exactly-n-character decimal integer in ASCII.
	FormatIntegerAsciiFixed
	// FormatRealBinary is IEEE 754 binary little-endian, n=4 (float32) or n=8 (float64).
	FormatRealBinary
	// FormatBitString is a bitstring of n bits (used for NAME/LNAM cross-reference keys).
	FormatBitString
	// FormatMixed is a format atom this parser doesn't recognise; bytes pass through raw.
	FormatMixed
)

// parseFormatSpec maps one format atom (e.g. "b12", "A", "A(8)", "I(5)",
// "R(4)", "B(40)") to its type and declared width. Width is 0 for
// variable-length atoms (terminator-scanned at decode time).
func parseFormatSpec(spec string) (FormatType, int, bool) {
	if spec == "" {
		return FormatMixed, 0, false
	}

	first := spec[0]
	rest := spec[1:]
	hasParen := strings.HasPrefix(rest, "(")

	switch first {
	case 'b', 'B':
		if first == 'B' {
			// B(n) declares a bit count, not a byte count: B(40) is the
			// 5-byte NAME key, B(64) the 8-byte LNAM key.
			bits := parenWidth(rest)
			return FormatBitString, (bits + 7) / 8, false
		}
		code, err := strconv.Atoi(rest)
		if err != nil {
			return FormatBinaryInt, 0, false
		}
		signed := (code / 10) == 2
		switch code % 10 {
		case 1:
			return FormatBinaryInt, 1, signed
		case 2:
			return FormatBinaryInt, 2, signed
		case 4:
			return FormatBinaryInt, 4, signed
		default:
			return FormatBinaryInt, 0, signed
		}
	case 'A', 'a':
		if hasParen {
			return FormatAsciiFixed, parenWidth(rest), false
		}
		return FormatAscii, 0, false
	case 'I':
		if hasParen {
			return FormatIntegerAsciiFixed, parenWidth(rest), false
		}
		return FormatIntegerAscii, 0, false
	case 'R':
		return FormatRealBinary, parenWidth(rest), false
	default:
		return FormatMixed, 0, false
	}
}

func parenWidth(rest string) int {
	if !strings.HasPrefix(rest, "(") {
		return 0
	}
	end := strings.Index(rest, ")")
	if end < 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[1:end])
	if err != nil {
		return 0
	}
	return n
}
