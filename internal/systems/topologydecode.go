package systems

import (
	"github.com/orcacharts/s57/internal/ddr"
	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/key"
	"github.com/orcacharts/s57/internal/topology"
)

// DecodeTopology is the TopologyDecode system: reads a VRID's VRPT field
// and appends each neighbor pointer to the vector's VectorTopology. Every
// NAME must already be present in the World's name index — by the time
// this system runs, pass 1 of ingestion has created a vector entity for
// every VRID in the file, so a miss here means a genuinely dangling
// reference, not just a forward reference.
func DecodeTopology(world *ecs.World, entity ecs.Entity, vrpt *ddr.ParsedField) error {
	selfName := key.NameKey{}
	if meta, ok := world.VectorMeta[entity]; ok {
		selfName = meta.Name
	}

	topo := world.VectorTopology[entity]
	for _, group := range vrpt.Groups() {
		name, err := decodeNameFromGroup(group)
		if err != nil {
			return err
		}
		neighbor, ok := world.LookupByName(name)
		if !ok {
			return topology.NewDanglingReferenceError(selfName, name)
		}

		topo.Neighbors = append(topo.Neighbors, ecs.VectorNeighbor{
			Vector: neighbor,
			ORNT:   uint8(getIntDefault(group, "ORNT", 255)),
			USAG:   uint8(getIntDefault(group, "USAG", 255)),
			TOPI:   uint8(getIntDefault(group, "TOPI", 255)),
			MASK:   uint8(getIntDefault(group, "MASK", 255)),
		})
	}
	world.VectorTopology[entity] = topo
	return nil
}

// decodeNameFromGroup reconstructs a NameKey from a VRPT/FSPT group's NAME
// subfield. NAME arrives from the DDR as a raw bitstring (B(40)); the DDR
// layer decodes it to bytes, and key.DecodeNameKey does the byte-order
// unpacking.
func decodeNameFromGroup(group []ddr.SubfieldEntry) (key.NameKey, error) {
	for _, e := range group {
		if e.Label != "NAME" {
			continue
		}
		if b, ok := e.Value.AsBytes(); ok {
			return key.DecodeNameKey(b)
		}
		return key.NameKey{}, fieldErr("VRPT/FSPT", "NAME subfield is not a bitstring")
	}
	return key.NameKey{}, fieldErr("VRPT/FSPT", "missing NAME")
}
