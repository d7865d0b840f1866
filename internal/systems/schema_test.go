package systems

import (
	"testing"

	"github.com/orcacharts/s57/internal/ddr"
	"github.com/orcacharts/s57/internal/iso8211"
)

const testUT = 0x1F
const testFT = 0x1E

// fieldDefBytes builds one DDR field-definition field's raw bytes: 9 bytes
// of field controls (unused by parseFieldDefinition beyond their count),
// the field name, an array descriptor, and format controls.
func fieldDefBytes(name, arrayDescriptor, formatControls string) []byte {
	var b []byte
	b = append(b, []byte("0000;&   ")...) // 9-byte field-control placeholder
	b = append(b, []byte(name)...)
	b = append(b, testUT)
	b = append(b, []byte(arrayDescriptor)...)
	b = append(b, testUT)
	b = append(b, []byte(formatControls)...)
	b = append(b, testFT)
	return b
}

// buildTestSchema returns a DDR whose field definitions cover every tag the
// ingestion systems read, using the standard S-57 Appendix A encodings.
func buildTestSchema(t *testing.T) *ddr.DDR {
	t.Helper()

	ddrRecord := &iso8211.Record{
		Leader: &iso8211.Leader{LeaderIdentifier: 'L'},
		Fields: []iso8211.Field{
			{Tag: "VRID", Data: fieldDefBytes("Vector Record Identifier", "RCNM!RCID!RVER!RUIN", "(b11,b14,b12,b11)")},
			{Tag: "SG2D", Data: fieldDefBytes("2-D Coordinate", "*YCOO!XCOO", "(2b24)")},
			{Tag: "SG3D", Data: fieldDefBytes("3-D Coordinate", "*YCOO!XCOO!VE3D", "(3b24)")},
			{Tag: "FRID", Data: fieldDefBytes("Feature Record Identifier", "RCNM!RCID!PRIM!GRUP!OBJL!RVER!RUIN", "(b11,b14,b11,b11,b12,b12,b11)")},
			{Tag: "FOID", Data: fieldDefBytes("Feature Object Identifier", "AGEN!FIDN!FIDS", "(b12,b14,b12)")},
			{Tag: "ATTF", Data: fieldDefBytes("Feature Record Attribute", "*ATTL!ATVL", "(b12,A)")},
			{Tag: "NATF", Data: fieldDefBytes("Feature Record National Attribute", "*ATTL!ATVL", "(b12,A)")},
			{Tag: "VRPT", Data: fieldDefBytes("Vector Record Pointer", "*NAME!ORNT!USAG!TOPI!MASK", "(B(40),4b11)")},
			{Tag: "FSPT", Data: fieldDefBytes("Feature Record to Spatial Record Pointer", "*NAME!ORNT!USAG!MASK", "(B(40),3b11)")},
			{Tag: "FFPT", Data: fieldDefBytes("Feature to Feature Pointer", "*LNAM!RIND!COMT", "(B(64),b11,A)")},
			{Tag: "DSPM", Data: fieldDefBytes("Data Set Parameter", "RCNM!RCID!HDAT!VDAT!SDAT!CSCL!DUNI!HUNI!PUNI!COMF!SOMF", "(b11,b14,3b11,b14,3b11,2b14)")},
			{Tag: "DSID", Data: fieldDefBytes("Data Set Identification", "RCNM!RCID!EXPP!INTU!DSNM!EDTN!UPDN!UADT!ISDT!STED!PRSP!PSDN!PRED!PROF!AGEN!COMT", "(b11,b14,2b11,3A,2A(8),R(4),b11,2A,b11,b12,A)")},
		},
	}

	schema, err := ddr.Parse(ddrRecord, ddr.DefaultOverrideSchema())
	if err != nil {
		t.Fatalf("ddr.Parse: %v", err)
	}
	return schema
}

func parseField(t *testing.T, schema *ddr.DDR, tag string, data []byte) *ddr.ParsedField {
	t.Helper()
	parsed, err := schema.ParseFieldData(iso8211.Field{Tag: tag, Data: data})
	if err != nil {
		t.Fatalf("ParseFieldData(%s): %v", tag, err)
	}
	return parsed
}
