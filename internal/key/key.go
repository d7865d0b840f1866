// Package key decodes and encodes the two bitstring pointer fields S-57 uses
// to cross-reference records: NAME (B40), which identifies a vector record,
// and LNAM/FOID (B64), which identifies a feature record. Both are stored as
// raw little-endian bytes inside DDR-declared B(n) subfields.
package key

import (
	"encoding/binary"
	"fmt"
)

// Record type codes carried in NameKey.RCNM.
const (
	RCNMVectorIsolatedNode    = 110
	RCNMVectorConnectedNode   = 120
	RCNMVectorEdge            = 130
	RCNMVectorFace            = 140
)

// NameKey identifies a vector record: the decoded form of a NAME (B40)
// field. Encoding: byte 0 is RCNM, bytes 1-4 are RCID as a little-endian u32.
type NameKey struct {
	RCNM uint8
	RCID uint32
}

// DecodeNameKey decodes a NAME field. data must be exactly 5 bytes.
func DecodeNameKey(data []byte) (NameKey, error) {
	if len(data) != 5 {
		return NameKey{}, fmt.Errorf("key: NAME (B40) must be exactly 5 bytes, got %d", len(data))
	}
	return NameKey{
		RCNM: data[0],
		RCID: binary.LittleEndian.Uint32(data[1:5]),
	}, nil
}

// Encode renders a NameKey back to its 5-byte B(40) wire form.
func (k NameKey) Encode() [5]byte {
	var out [5]byte
	out[0] = k.RCNM
	binary.LittleEndian.PutUint32(out[1:5], k.RCID)
	return out
}

func (k NameKey) String() string {
	return fmt.Sprintf("%d:%d", k.RCNM, k.RCID)
}

// FoidKey identifies a feature record: the decoded form of an LNAM/FOID
// (B64) field. Encoding: AGEN (u16), FIDN (u32), FIDS (u16), all
// little-endian, back to back.
type FoidKey struct {
	AGEN uint16
	FIDN uint32
	FIDS uint16
}

// DecodeFoidKey decodes an LNAM field. data must be exactly 8 bytes.
func DecodeFoidKey(data []byte) (FoidKey, error) {
	if len(data) != 8 {
		return FoidKey{}, fmt.Errorf("key: LNAM (B64) must be exactly 8 bytes, got %d", len(data))
	}
	return FoidKey{
		AGEN: binary.LittleEndian.Uint16(data[0:2]),
		FIDN: binary.LittleEndian.Uint32(data[2:6]),
		FIDS: binary.LittleEndian.Uint16(data[6:8]),
	}, nil
}

// Encode renders a FoidKey back to its 8-byte B(64) wire form.
func (k FoidKey) Encode() [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint16(out[0:2], k.AGEN)
	binary.LittleEndian.PutUint32(out[2:6], k.FIDN)
	binary.LittleEndian.PutUint16(out[6:8], k.FIDS)
	return out
}

func (k FoidKey) String() string {
	return fmt.Sprintf("%d:%d:%d", k.AGEN, k.FIDN, k.FIDS)
}
