package iso8211

// Field is one directory-addressed slice of the field area, still undecoded.
type Field struct {
	Tag  string
	Data []byte
}

// Record is one logical ISO 8211 record: a leader, a directory, and the
// field-area slices the directory addresses.
type Record struct {
	Leader    *Leader
	Directory []DirectoryEntry
	Fields    []Field
}

// Field returns the first field with the given tag, if any.
func (r *Record) Field(tag string) ([]byte, bool) {
	for _, f := range r.Fields {
		if f.Tag == tag {
			return f.Data, true
		}
	}
	return nil, false
}

// ReadFile splits a byte buffer into its constituent ISO 8211 logical
// records. The first record is always the DDR (Leader.IsDDR()); every
// subsequent record is a DR.
func ReadFile(data []byte) ([]*Record, error) {
	var records []*Record
	offset := 0

	for offset < len(data) {
		record, consumed, err := parseRecord(data[offset:], offset)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		offset += consumed
	}

	return records, nil
}

func parseRecord(data []byte, fileOffset int) (*Record, int, error) {
	if len(data) < LeaderSize {
		return nil, 0, errAt(KindUnexpectedEOF, fileOffset, "need %d bytes for leader, have %d", LeaderSize, len(data))
	}

	leader, err := ParseLeader(data[0:LeaderSize], fileOffset)
	if err != nil {
		return nil, 0, err
	}

	recordLength := leader.RecordLength
	if len(data) < recordLength {
		return nil, 0, &Error{
			Kind:         KindRecordTooLarge,
			Offset:       fileOffset,
			RecordLength: recordLength,
			Available:    len(data),
		}
	}

	recordData := data[0:recordLength]
	baseAddr := leader.BaseAddressOfFieldArea
	if baseAddr < LeaderSize || baseAddr > len(recordData) {
		return nil, 0, errAt(KindInvalidLeader, fileOffset+12, "base address %d out of range for record of %d bytes", baseAddr, len(recordData))
	}

	directoryData := recordData[LeaderSize:baseAddr]
	directory, err := ParseDirectory(directoryData, leader, fileOffset+LeaderSize)
	if err != nil {
		return nil, 0, err
	}

	fieldArea := recordData[baseAddr:]
	fields, err := parseFields(fieldArea, directory, fileOffset+baseAddr)
	if err != nil {
		return nil, 0, err
	}

	return &Record{Leader: leader, Directory: directory, Fields: fields}, recordLength, nil
}

func parseFields(fieldArea []byte, directory []DirectoryEntry, baseOffset int) ([]Field, error) {
	fields := make([]Field, 0, len(directory))
	for _, entry := range directory {
		start := entry.Position
		length := entry.Length
		if start < 0 || length < 0 || start+length > len(fieldArea) {
			return nil, &Error{
				Kind:    KindFieldOutOfBounds,
				Offset:  baseOffset + start,
				Start:   start,
				Length:  length,
				AreaLen: len(fieldArea),
			}
		}
		fieldData := make([]byte, length)
		copy(fieldData, fieldArea[start:start+length])
		fields = append(fields, Field{Tag: entry.Tag, Data: fieldData})
	}
	return fields, nil
}
