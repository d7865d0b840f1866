package systems

import (
	"github.com/orcacharts/s57/internal/ddr"
	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/key"
	"github.com/orcacharts/s57/internal/topology"
)

// DecodeFeatureBind is the FeatureBind system: reads a feature's FSPT and
// FFPT fields and populates FeaturePointers. FSPT groups name a vector by
// NAME (spatial reference); FFPT groups name another feature by LNAM
// (feature-to-feature reference). Either field may be nil when the feature
// record doesn't carry it.
func DecodeFeatureBind(world *ecs.World, entity ecs.Entity, fspt, ffpt *ddr.ParsedField) error {
	selfFoid := key.FoidKey{}
	if meta, ok := world.FeatureMeta[entity]; ok {
		selfFoid = meta.FOID
	}

	pointers := world.FeaturePointers[entity]

	if fspt != nil {
		for _, group := range fspt.Groups() {
			name, err := decodeNameFromGroup(group)
			if err != nil {
				return err
			}
			vector, ok := world.LookupByName(name)
			if !ok {
				return topology.NewDanglingReferenceError(key.NameKey{}, name)
			}
			pointers.SpatialRefs = append(pointers.SpatialRefs, ecs.SpatialRef{
				Vector: vector,
				ORNT:   uint8(getIntDefault(group, "ORNT", 255)),
				USAG:   uint8(getIntDefault(group, "USAG", 255)),
				MASK:   uint8(getIntDefault(group, "MASK", 255)),
			})
		}
	}

	if ffpt != nil {
		for _, group := range ffpt.Groups() {
			foid, err := decodeFoidFromGroup(group)
			if err != nil {
				return err
			}
			related, ok := world.LookupByFoid(foid)
			if !ok {
				return topology.NewDanglingFeatureReferenceError(selfFoid, foid)
			}
			pointers.RelatedFeatures = append(pointers.RelatedFeatures, related)
		}
	}

	world.FeaturePointers[entity] = pointers
	return nil
}

// decodeFoidFromGroup reconstructs a FoidKey from an FFPT group's LNAM
// subfield, an 8-byte bitstring (B(64)): AGEN, FIDN, FIDS packed little-endian.
func decodeFoidFromGroup(group []ddr.SubfieldEntry) (key.FoidKey, error) {
	for _, e := range group {
		if e.Label != "LNAM" {
			continue
		}
		if b, ok := e.Value.AsBytes(); ok {
			return key.DecodeFoidKey(b)
		}
		return key.FoidKey{}, fieldErr("FFPT", "LNAM subfield is not a bitstring")
	}
	return key.FoidKey{}, fieldErr("FFPT", "missing LNAM")
}
