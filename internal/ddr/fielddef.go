package ddr

import (
	"strconv"
	"strings"

	"github.com/orcacharts/s57/internal/iso8211"
)

// SubfieldDef is one labeled slot within a field, with its decoded format.
type SubfieldDef struct {
	Label  string
	Format FormatType
	Width  int  // 0 means variable-length (terminator-scanned)
	Signed bool // only meaningful for FormatBinaryInt
}

// FieldDef is a DDR-declared field definition: the schema for every data
// record field carrying this tag.
type FieldDef struct {
	Tag             string
	Name            string
	ArrayDescriptor string
	FormatControls  string
	Subfields       []SubfieldDef
	IsRepeating     bool
}

// SubfieldCount returns the number of subfield labels named in the array
// descriptor (informational; ParseFieldData drives off Subfields directly).
func (d *FieldDef) SubfieldCount() int {
	labels := strings.TrimPrefix(d.ArrayDescriptor, "*")
	if labels == "" {
		return 0
	}
	count := 0
	for _, l := range strings.Split(labels, "!") {
		if strings.TrimSpace(l) != "" {
			count++
		}
	}
	return count
}

const (
	unitTerminator  = 0x1F
	fieldTerminator = 0x1E
)

// parseFieldDefinition decodes one DDR field-definition field:
//
//	field_controls(9 bytes) . field_name . UT . array_descriptor . UT . format_controls . FT
func parseFieldDefinition(field iso8211.Field) *FieldDef {
	parts := splitOn(field.Data, unitTerminator)

	var name string
	if len(parts) > 0 {
		p := parts[0]
		if len(p) >= 9 {
			name = strings.TrimSpace(string(p[9:]))
		} else {
			name = strings.TrimSpace(string(p))
		}
	}

	var arrayDescriptor string
	if len(parts) > 1 {
		arrayDescriptor = strings.TrimSpace(string(parts[1]))
	}

	var formatControls string
	if len(parts) > 2 {
		fp := parts[2]
		if len(fp) > 0 && fp[len(fp)-1] == fieldTerminator {
			fp = fp[:len(fp)-1]
		}
		formatControls = strings.TrimSpace(string(fp))
	}

	isRepeating := strings.HasPrefix(arrayDescriptor, "*")
	subfields := parseFormatControls(arrayDescriptor, formatControls)

	return &FieldDef{
		Tag:             field.Tag,
		Name:            name,
		ArrayDescriptor: arrayDescriptor,
		FormatControls:  formatControls,
		Subfields:       subfields,
		IsRepeating:     isRepeating,
	}
}

func splitOn(data []byte, sep byte) [][]byte {
	var parts [][]byte
	start := 0
	for i, b := range data {
		if b == sep {
			parts = append(parts, data[start:i])
			start = i + 1
		}
	}
	parts = append(parts, data[start:])
	return parts
}

// parseFormatControls zips the array descriptor's label list against the
// format controls' expanded atom list. A format atom may carry a numeric
// repeat prefix ("3b24") applying it to the next N labels. Trailing labels
// without formats are ignored; trailing formats without labels are discarded.
func parseFormatControls(arrayDescriptor, formatStr string) []SubfieldDef {
	labelsPart := strings.TrimPrefix(arrayDescriptor, "*")
	if labelsPart == "" {
		return nil
	}
	rawLabels := strings.Split(labelsPart, "!")
	labels := make([]string, len(rawLabels))
	for i, l := range rawLabels {
		labels[i] = strings.TrimSpace(l)
	}

	open := strings.Index(formatStr, "(")
	closeIdx := strings.LastIndex(formatStr, ")")
	if open < 0 || closeIdx < 0 || closeIdx <= open {
		return nil
	}
	formatSpecs := formatStr[open+1 : closeIdx]

	rawFormats := strings.Split(formatSpecs, ",")
	formats := make([]string, len(rawFormats))
	for i, f := range rawFormats {
		formats[i] = strings.TrimSpace(f)
	}

	var subfields []SubfieldDef
	labelIdx, formatIdx := 0, 0
	for labelIdx < len(labels) && formatIdx < len(formats) {
		spec := formats[formatIdx]

		repeatCount, actual := 1, spec
		digitEnd := 0
		for digitEnd < len(spec) && spec[digitEnd] >= '0' && spec[digitEnd] <= '9' {
			digitEnd++
		}
		if digitEnd > 0 {
			if n, err := strconv.Atoi(spec[:digitEnd]); err == nil {
				repeatCount = n
				actual = spec[digitEnd:]
			}
		}

		format, width, signed := parseFormatSpec(actual)

		for i := 0; i < repeatCount && labelIdx < len(labels); i++ {
			label := labels[labelIdx]
			if label != "" {
				subfields = append(subfields, SubfieldDef{
					Label:  label,
					Format: format,
					Width:  width,
					Signed: signed,
				})
			}
			labelIdx++
		}
		formatIdx++
	}

	return subfields
}
