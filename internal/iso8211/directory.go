package iso8211

// DirectoryEntry maps one field tag to its (length, position) in the field
// area. Position is relative to the start of the field area, not the record.
type DirectoryEntry struct {
	Tag      string
	Length   int
	Position int
}

// ParseDirectory reads fixed-width directory entries using leader-declared
// widths until the field terminator (0x1E) or end of data.
func ParseDirectory(data []byte, leader *Leader, baseOffset int) ([]DirectoryEntry, error) {
	entrySize := leader.DirectoryEntrySize()
	tagSize := leader.SizeOfFieldTag
	lengthSize := leader.SizeOfFieldLengthField
	positionSize := leader.SizeOfFieldPositionField

	var entries []DirectoryEntry
	offset := 0
	for offset < len(data) {
		if data[offset] == fieldTerminator {
			break
		}
		if offset+entrySize > len(data) {
			return nil, errAt(KindInvalidDirectory, baseOffset+offset,
				"not enough data for directory entry at offset %d", offset)
		}

		entryOffset := offset
		tag := string(data[entryOffset : entryOffset+tagSize])
		entryOffset += tagSize

		length, err := parseASCIIInt(data[entryOffset : entryOffset+lengthSize])
		if err != nil {
			return nil, errAt(KindInvalidDirectory, baseOffset+entryOffset,
				"invalid field length %q", data[entryOffset:entryOffset+lengthSize])
		}
		entryOffset += lengthSize

		position, err := parseASCIIInt(data[entryOffset : entryOffset+positionSize])
		if err != nil {
			return nil, errAt(KindInvalidDirectory, baseOffset+entryOffset,
				"invalid field position %q", data[entryOffset:entryOffset+positionSize])
		}

		entries = append(entries, DirectoryEntry{Tag: tag, Length: length, Position: position})
		offset += entrySize
	}

	return entries, nil
}
