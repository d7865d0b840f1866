package iso8211

import (
	"strconv"
	"strings"
)

// LeaderSize is the fixed size in bytes of every ISO 8211 record leader.
const LeaderSize = 24

const fieldTerminator = 0x1E

// Leader is the 24-byte record leader (ISO 8211 §3.7.2). Every numeric field
// is stored as ASCII decimal text on the wire; every flag-like field is a
// single character.
type Leader struct {
	RecordLength                 int
	InterchangeLevel             byte
	LeaderIdentifier              byte // 'L' for DDR, 'D' for DR
	InlineCodeExtensionIndicator byte
	VersionNumber                byte
	ApplicationIndicator         byte
	FieldControlLength           string
	BaseAddressOfFieldArea       int
	ExtendedCharacterSet         string

	// Entry map (positions 20-23) - these drive the directory parser.
	SizeOfFieldLengthField   int
	SizeOfFieldPositionField int
	Reserved                 byte
	SizeOfFieldTag           int
}

// ParseLeader parses a 24-byte leader found at the given file offset.
func ParseLeader(data []byte, offset int) (*Leader, error) {
	if len(data) < LeaderSize {
		return nil, errAt(KindInvalidLeader, offset, "leader must be %d bytes, got %d", LeaderSize, len(data))
	}

	recordLength, err := parseASCIIInt(data[0:5])
	if err != nil {
		return nil, errAt(KindInvalidLeader, offset, "invalid record length %q", data[0:5])
	}

	baseAddr, err := parseASCIIInt(data[12:17])
	if err != nil {
		return nil, errAt(KindInvalidLeader, offset+12, "invalid base address %q", data[12:17])
	}

	lengthFieldSize := digitAt(data, 20)
	if lengthFieldSize < 0 {
		return nil, errAt(KindInvalidLeader, offset+20, "invalid field length field size")
	}
	positionFieldSize := digitAt(data, 21)
	if positionFieldSize < 0 {
		return nil, errAt(KindInvalidLeader, offset+21, "invalid field position field size")
	}
	tagSize := digitAt(data, 23)
	if tagSize < 0 {
		return nil, errAt(KindInvalidLeader, offset+23, "invalid field tag size")
	}

	return &Leader{
		RecordLength:                 recordLength,
		InterchangeLevel:             data[5],
		LeaderIdentifier:              data[6],
		InlineCodeExtensionIndicator: data[7],
		VersionNumber:                data[8],
		ApplicationIndicator:         data[9],
		FieldControlLength:           string(data[10:12]),
		BaseAddressOfFieldArea:       baseAddr,
		ExtendedCharacterSet:         string(data[17:20]),
		SizeOfFieldLengthField:       lengthFieldSize,
		SizeOfFieldPositionField:     positionFieldSize,
		Reserved:                     data[22],
		SizeOfFieldTag:               tagSize,
	}, nil
}

// IsDDR reports whether this leader begins a Data Descriptive Record.
func (l *Leader) IsDDR() bool { return l.LeaderIdentifier == 'L' }

// IsDR reports whether this leader begins a Data Record.
func (l *Leader) IsDR() bool { return l.LeaderIdentifier == 'D' }

// DirectoryEntrySize returns the width in bytes of one directory entry,
// derived from the leader's entry map rather than hard-coded.
func (l *Leader) DirectoryEntrySize() int {
	return l.SizeOfFieldTag + l.SizeOfFieldLengthField + l.SizeOfFieldPositionField
}

func digitAt(data []byte, pos int) int {
	c := data[pos]
	if c < '0' || c > '9' {
		return -1
	}
	return int(c - '0')
}

func parseASCIIInt(b []byte) (int, error) {
	s := strings.TrimSpace(string(b))
	return strconv.Atoi(s)
}
