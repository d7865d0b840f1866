package systems

import (
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/orcacharts/s57/internal/ddr"
	"github.com/orcacharts/s57/internal/key"
)

// rawField is one (tag, data) pair destined for a record's field area.
type rawField struct {
	tag  string
	data []byte
}

// encodeRecord builds the raw bytes of one ISO 8211 logical record: a
// 24-byte leader, a fixed-width directory (4-byte tag, 4-byte length,
// 5-byte position, terminated), and the field area. Widths are chosen
// generously (4/4/5) so the fixture data never needs to worry about
// overflowing a directory column.
func encodeRecord(leaderID byte, fields []rawField) []byte {
	const tagWidth, lengthWidth, positionWidth = 4, 4, 5

	var fieldArea []byte
	var dirEntries strings.Builder
	pos := 0
	for _, f := range fields {
		tag := f.tag
		for len(tag) < tagWidth {
			tag += " "
		}
		dirEntries.WriteString(fmt.Sprintf("%s%0*d%0*d", tag, lengthWidth, len(f.data), positionWidth, pos))
		fieldArea = append(fieldArea, f.data...)
		pos += len(f.data)
	}

	directory := []byte(dirEntries.String())
	directory = append(directory, fieldTerminatorByte)

	baseAddr := 24 + len(directory)
	recordLength := baseAddr + len(fieldArea)

	leader := make([]byte, 0, 24)
	leader = append(leader, []byte(fmt.Sprintf("%05d", recordLength))...)
	leader = append(leader, '3')
	leader = append(leader, leaderID)
	leader = append(leader, 'E')
	leader = append(leader, '1')
	leader = append(leader, ' ')
	leader = append(leader, []byte("09")...)
	leader = append(leader, []byte(fmt.Sprintf("%05d", baseAddr))...)
	leader = append(leader, []byte(" ! ")...)
	leader = append(leader, byte('0'+lengthWidth))
	leader = append(leader, byte('0'+positionWidth))
	leader = append(leader, '0')
	leader = append(leader, byte('0'+tagWidth))

	record := append(leader, directory...)
	record = append(record, fieldArea...)
	return record
}

const fieldTerminatorByte = 0x1E

// fieldDefRawField is fieldDefBytes wrapped as a rawField, for building the
// DDR record directly through encodeRecord/Build rather than ddr.Parse.
func fieldDefRawField(tag, name, arrayDescriptor, formatControls string) rawField {
	return rawField{tag: tag, data: fieldDefBytes(name, arrayDescriptor, formatControls)}
}

func ddrRecordFields() []rawField {
	return []rawField{
		fieldDefRawField("VRID", "Vector Record Identifier", "RCNM!RCID!RVER!RUIN", "(b11,b14,b12,b11)"),
		fieldDefRawField("SG2D", "2-D Coordinate", "*YCOO!XCOO", "(2b24)"),
		fieldDefRawField("SG3D", "3-D Coordinate", "*YCOO!XCOO!VE3D", "(3b24)"),
		fieldDefRawField("FRID", "Feature Record Identifier", "RCNM!RCID!PRIM!GRUP!OBJL!RVER!RUIN", "(b11,b14,b11,b11,b12,b12,b11)"),
		fieldDefRawField("FOID", "Feature Object Identifier", "AGEN!FIDN!FIDS", "(b12,b14,b12)"),
		fieldDefRawField("ATTF", "Feature Record Attribute", "*ATTL!ATVL", "(b12,A)"),
		fieldDefRawField("NATF", "Feature Record National Attribute", "*ATTL!ATVL", "(b12,A)"),
		fieldDefRawField("VRPT", "Vector Record Pointer", "*NAME!ORNT!USAG!TOPI!MASK", "(B(40),4b11)"),
		fieldDefRawField("FSPT", "Feature Record to Spatial Record Pointer", "*NAME!ORNT!USAG!MASK", "(B(40),3b11)"),
		fieldDefRawField("FFPT", "Feature to Feature Pointer", "*LNAM!RIND!COMT", "(B(64),b11,A)"),
		fieldDefRawField("DSPM", "Data Set Parameter", "RCNM!RCID!HDAT!VDAT!SDAT!CSCL!DUNI!HUNI!PUNI!COMF!SOMF", "(b11,b14,3b11,b14,3b11,2b14)"),
		fieldDefRawField("DSID", "Data Set Identification", "RCNM!RCID!EXPP!INTU!DSNM!EDTN!UPDN!UADT!ISDT!STED!PRSP!PSDN!PRED!PROF!AGEN!COMT", "(b11,b14,2b11,3A,2A(8),R(4),b11,2A,b11,b12,A)"),
	}
}

func TestBuildTwoPassDeferredResolution(t *testing.T) {
	var file []byte
	file = append(file, encodeRecord('L', ddrRecordFields())...)

	// DSPM record: sets COMF=10,000,000.
	var dspmData []byte
	dspmData = append(dspmData, 10)                       // RCNM
	dspmData = append(dspmData, 0x01, 0, 0, 0)             // RCID
	dspmData = append(dspmData, 2, 0, 0)                   // HDAT, VDAT, SDAT
	dspmData = append(dspmData, 1, 0, 0, 0)                // CSCL
	dspmData = append(dspmData, 1, 1, 1)                   // DUNI, HUNI, PUNI
	dspmData = appendInt32LE(dspmData, 10_000_000)         // COMF
	dspmData = appendInt32LE(dspmData, 100)                // SOMF
	file = append(file, encodeRecord('D', []rawField{{tag: "DSPM", data: dspmData}})...)

	// Feature record comes BEFORE the vector it references via FSPT: this
	// is the forward reference deferred resolution must tolerate.
	var fridData []byte
	fridData = append(fridData, 100)
	fridData = append(fridData, 0x01, 0, 0, 0)
	fridData = append(fridData, 1, 1)
	fridData = append(fridData, 0x2B, 0)
	fridData = append(fridData, 1, 0)
	fridData = append(fridData, 1)
	foidData := foidBytes(550, 1, 1)

	var fsptData []byte
	fsptData = append(fsptData, nameBytes(130, 1)...)
	fsptData = append(fsptData, 1, 1, 0)

	file = append(file, encodeRecord('D', []rawField{
		{tag: "FRID", data: fridData},
		{tag: "FOID", data: foidData},
		{tag: "FSPT", data: fsptData},
	})...)

	// Vector record (the forward-referenced edge) comes last.
	var vridData []byte
	vridData = append(vridData, 130)
	vridData = append(vridData, 0x01, 0, 0, 0)
	vridData = append(vridData, 1, 0)
	vridData = append(vridData, 1)

	var sg2dData []byte
	sg2dData = appendInt32LE(sg2dData, 417637947)
	sg2dData = appendInt32LE(sg2dData, -713835163)

	file = append(file, encodeRecord('D', []rawField{
		{tag: "VRID", data: vridData},
		{tag: "SG2D", data: sg2dData},
	})...)

	world, err := Build(file, ddr.DefaultOverrideSchema(), DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if world.DatasetParams == nil {
		t.Fatal("DatasetParams not set")
	}
	if world.DatasetParams.COMF.Cmp(big.NewRat(10_000_000, 1)) != 0 {
		t.Errorf("COMF = %s, want 10000000", world.DatasetParams.COMF.RatString())
	}

	featureEntity, ok := world.LookupByFoid(key.FoidKey{AGEN: 550, FIDN: 1, FIDS: 1})
	if !ok {
		t.Fatal("feature entity not found")
	}
	pointers := world.FeaturePointers[featureEntity]
	if len(pointers.SpatialRefs) != 1 {
		t.Fatalf("expected 1 spatial ref resolved via deferred pass, got %d", len(pointers.SpatialRefs))
	}

	vectorEntity, ok := world.LookupByName(key.NameKey{RCNM: 130, RCID: 1})
	if !ok {
		t.Fatal("vector entity not found")
	}
	if pointers.SpatialRefs[0].Vector != vectorEntity {
		t.Errorf("FSPT resolved to the wrong vector entity")
	}

	positions := world.ExactPositions[vectorEntity]
	if len(positions.Lat) != 1 {
		t.Fatalf("expected 1 resolved position, got %d", len(positions.Lat))
	}
}

func TestBuildSkipsMalformedRecordAndContinues(t *testing.T) {
	var file []byte
	file = append(file, encodeRecord('L', ddrRecordFields())...)

	// A VRID with RCNM but no RCID at all - malformed, must be skipped.
	file = append(file, encodeRecord('D', []rawField{{tag: "VRID", data: []byte{130}}})...)

	var vridData []byte
	vridData = append(vridData, 130)
	vridData = append(vridData, 0x02, 0, 0, 0)
	vridData = append(vridData, 1, 0)
	vridData = append(vridData, 1)
	file = append(file, encodeRecord('D', []rawField{{tag: "VRID", data: vridData}})...)

	var log []string
	opts := BuildOptions{Logger: loggerFunc(func(format string, args ...any) {
		log = append(log, fmt.Sprintf(format, args...))
	})}

	world, err := Build(file, ddr.DefaultOverrideSchema(), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(log) == 0 {
		t.Error("expected the malformed VRID to be logged")
	}
	if _, ok := world.LookupByName(key.NameKey{RCNM: 130, RCID: 2}); !ok {
		t.Error("well-formed VRID after the malformed one should still be ingested")
	}
}

type loggerFunc func(format string, args ...any)

func (f loggerFunc) Printf(format string, args ...any) { f(format, args...) }

func TestBuildStrictAbortsOnFirstError(t *testing.T) {
	var file []byte
	file = append(file, encodeRecord('L', ddrRecordFields())...)
	file = append(file, encodeRecord('D', []rawField{{tag: "VRID", data: []byte{130}}})...)

	opts := BuildOptions{Logger: nopLogger{}, Strict: true}
	if _, err := Build(file, ddr.DefaultOverrideSchema(), opts); err == nil {
		t.Fatal("expected Strict mode to abort on the malformed VRID")
	}
}

func appendInt32LE(data []byte, v int32) []byte {
	return appendInt32(data, v)
}
