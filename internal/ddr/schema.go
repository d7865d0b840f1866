package ddr

// OverrideSchema patches DDR declarations against known S-57 wire-format
// anomalies: subfields the DDR declares but the wire format may omit, and
// fields whose declared format doesn't match what's actually on the wire.
//
// This is the core's only piece of wire-format-specific intelligence outside
// the generic ISO 8211 interpreter.
type OverrideSchema struct {
	optionalSubfields map[string]map[string]bool
	formatOverrides   map[tagLabel]FormatType
}

type tagLabel struct {
	tag, label string
}

// DefaultOverrideSchema returns the override table for S-57 Edition 3.1:
// DSID's STED is declared R(4) in the DDR but is a 4-character ASCII string
// on the wire ("03.1"), and DSID.PSDN/PRED/UADT/COMT are optional per S-57
// Appendix B.1.
func DefaultOverrideSchema() *OverrideSchema {
	s := &OverrideSchema{
		optionalSubfields: map[string]map[string]bool{
			"DSID": {"PSDN": true, "PRED": true, "UADT": true, "COMT": true},
		},
		formatOverrides: map[tagLabel]FormatType{
			{"DSID", "STED"}: FormatAsciiFixed,
		},
	}
	return s
}

// IsOptional reports whether a subfield may be absent from the wire data for
// a given field tag. Unlisted subfields default to required.
func (s *OverrideSchema) IsOptional(tag, label string) bool {
	if s == nil {
		return false
	}
	return s.optionalSubfields[tag][label]
}

// FormatOverride returns a replacement format for a subfield whose DDR
// declaration doesn't match the real wire encoding, if one is registered.
func (s *OverrideSchema) FormatOverride(tag, label string) (FormatType, bool) {
	if s == nil {
		return 0, false
	}
	f, ok := s.formatOverrides[tagLabel{tag, label}]
	return f, ok
}

// Apply rewrites a FieldDef's subfields in place with any registered format
// overrides; it changes only each subfield's Format. It must run once,
// right after the DDR parses the raw field definition, so every downstream
// consumer of FieldDef.Subfields sees the corrected schema.
func (s *OverrideSchema) Apply(def *FieldDef) {
	if s == nil {
		return
	}
	for i := range def.Subfields {
		sf := &def.Subfields[i]
		if override, ok := s.FormatOverride(def.Tag, sf.Label); ok {
			// The declared width (e.g. R(4)'s 4 bytes) still matches the
			// wire layout; only the interpretation of those bytes changes.
			sf.Format = override
		}
	}
}
