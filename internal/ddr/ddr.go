// Package ddr interprets the Data Descriptive Record: record 0 of an S-57
// file, which declares the field layouts that drive parsing of every Data
// Record that follows. It is, in effect, a tiny data-definition-language
// interpreter: FieldDef is the program, ParseFieldData is the evaluator.
package ddr

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/orcacharts/s57/internal/iso8211"
)

// DDR holds the field definitions parsed from record 0, keyed by tag, plus
// the override schema used to patch known wire-format anomalies.
type DDR struct {
	fieldDefs map[string]*FieldDef
	overrides *OverrideSchema
}

// Parse builds a DDR from the first logical record of a file. Fields tagged
// "0000" and "0001" are metadata, not field definitions, and are skipped;
// every other field in the record defines one tag's layout.
func Parse(record *iso8211.Record, overrides *OverrideSchema) (*DDR, error) {
	if !record.Leader.IsDDR() {
		return nil, fieldErr("0000", "expected DDR record, got leader identifier %q", record.Leader.LeaderIdentifier)
	}
	if overrides == nil {
		overrides = DefaultOverrideSchema()
	}

	fieldDefs := make(map[string]*FieldDef)
	for _, field := range record.Fields {
		if field.Tag == "0000" || field.Tag == "0001" {
			continue
		}
		def := parseFieldDefinition(field)
		overrides.Apply(def)
		fieldDefs[def.Tag] = def
	}

	return &DDR{fieldDefs: fieldDefs, overrides: overrides}, nil
}

// FieldDef returns the field definition registered for a tag, if any.
func (d *DDR) FieldDef(tag string) (*FieldDef, bool) {
	def, ok := d.fieldDefs[tag]
	return def, ok
}

// SubfieldEntry is one labeled, decoded value within a parsed group.
type SubfieldEntry struct {
	Label string
	Value SubfieldValue
}

// ParsedField is the result of running ParseFieldData over one DR field: a
// list of groups, one group per repeating-field iteration (exactly one group
// for non-repeating fields).
type ParsedField struct {
	Tag    string
	Def    *FieldDef
	groups [][]SubfieldEntry
}

// Groups returns every decoded group in field order.
func (p *ParsedField) Groups() [][]SubfieldEntry { return p.groups }

// GetValue returns the value of a labeled subfield from the first group.
func (p *ParsedField) GetValue(label string) (SubfieldValue, bool) {
	if len(p.groups) == 0 {
		return SubfieldValue{}, false
	}
	for _, e := range p.groups[0] {
		if e.Label == label {
			return e.Value, true
		}
	}
	return SubfieldValue{}, false
}

// ParseFieldData decodes a raw DR field using its DDR-declared definition.
// This is the `parse_field_data` operation: it drives every downstream
// component (C5-C7) that needs typed subfield values out of raw bytes.
func (d *DDR) ParseFieldData(field iso8211.Field) (*ParsedField, error) {
	def, ok := d.fieldDefs[field.Tag]
	if !ok {
		return nil, fieldErr(field.Tag, "no DDR definition for this tag")
	}

	if len(def.Subfields) == 0 {
		return &ParsedField{Tag: field.Tag, Def: def}, nil
	}

	data := field.Data
	offset := 0
	var groups [][]SubfieldEntry

	for offset < len(data) && data[offset] != fieldTerminator {
		startOffset := offset
		group := make([]SubfieldEntry, 0, len(def.Subfields))

		for si, sf := range def.Subfields {
			if offset >= len(data) || data[offset] == fieldTerminator {
				break
			}
			if data[offset] == unitTerminator {
				offset++
				if offset >= len(data) {
					break
				}
			}

			if sf.Width == 0 && sf.Format == FormatAscii && d.overrides.IsOptional(def.Tag, sf.Label) {
				if offset < len(data) && !isPrintableASCII(data[offset]) && nextIsBinary(def.Subfields, si) {
					group = append(group, SubfieldEntry{Label: sf.Label, Value: nullValue()})
					continue
				}
			}

			var value SubfieldValue
			if sf.Width > 0 {
				end := offset + sf.Width
				if end > len(data) {
					end = len(data)
				}
				value = decodeSubfieldValue(data[offset:end], sf)
				offset = end
			} else {
				start := offset
				for offset < len(data) && data[offset] != unitTerminator && data[offset] != fieldTerminator {
					offset++
				}
				value = decodeSubfieldValue(data[start:offset], sf)
			}
			group = append(group, SubfieldEntry{Label: sf.Label, Value: value})
		}

		if len(group) > 0 {
			groups = append(groups, group)
		}

		if offset < len(data) && data[offset] == unitTerminator {
			offset++
		}

		if offset == startOffset {
			break // malformed data not advancing; avoid an infinite loop
		}
		if !def.IsRepeating {
			break
		}
	}

	return &ParsedField{Tag: field.Tag, Def: def, groups: groups}, nil
}

func nextIsBinary(subfields []SubfieldDef, i int) bool {
	if i+1 >= len(subfields) {
		return false
	}
	switch subfields[i+1].Format {
	case FormatBinaryInt, FormatRealBinary, FormatBitString:
		return true
	default:
		return false
	}
}

func isPrintableASCII(b byte) bool { return b >= 0x20 && b < 0x7F }

func decodeSubfieldValue(data []byte, sf SubfieldDef) SubfieldValue {
	if len(data) == 0 {
		return nullValue()
	}
	switch sf.Format {
	case FormatBinaryInt:
		return decodeBinaryInt(data, sf.Signed)
	case FormatAscii, FormatAsciiFixed:
		return stringValue(strings.TrimSpace(string(data)))
	case FormatIntegerAscii, FormatIntegerAsciiFixed:
		s := strings.TrimSpace(string(data))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return intValue(n)
		}
		return stringValue(s)
	case FormatRealBinary:
		switch len(data) {
		case 4:
			return realValue(float64(math.Float32frombits(binary.LittleEndian.Uint32(data))))
		case 8:
			return realValue(math.Float64frombits(binary.LittleEndian.Uint64(data)))
		default:
			return bytesValue(append([]byte(nil), data...))
		}
	case FormatBitString:
		return bytesValue(append([]byte(nil), data...))
	default:
		return bytesValue(append([]byte(nil), data...))
	}
}

func decodeBinaryInt(data []byte, signed bool) SubfieldValue {
	switch len(data) {
	case 1:
		if signed {
			return intValue(int64(int8(data[0])))
		}
		return intValue(int64(data[0]))
	case 2:
		u := binary.LittleEndian.Uint16(data)
		if signed {
			return intValue(int64(int16(u)))
		}
		return intValue(int64(u))
	case 4:
		u := binary.LittleEndian.Uint32(data)
		if signed {
			return intValue(int64(int32(u)))
		}
		return intValue(int64(u))
	default:
		return bytesValue(append([]byte(nil), data...))
	}
}
