// Package systems turns parsed DDR fields into populated ECS entities: one
// system per S-57 field group (VRID, SG2D/SG3D, FRID+FOID, VRPT, FSPT+FFPT).
// Every system is a function of (World, ParsedField) alone — no recursion,
// no allocation beyond the entity it populates — matching the record-by-
// record, strictly sequential processing model the ingester drives them
// with.
package systems

import (
	"math/big"

	"github.com/orcacharts/s57/internal/ddr"
	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/key"
	"github.com/orcacharts/s57/internal/topology"
)

func getInt(group []ddr.SubfieldEntry, label string) (int64, bool) {
	for _, e := range group {
		if e.Label == label {
			return e.Value.AsInt()
		}
	}
	return 0, false
}

func getIntDefault(group []ddr.SubfieldEntry, label string, def int64) int64 {
	if v, ok := getInt(group, label); ok {
		return v
	}
	return def
}

func firstGroup(field *ddr.ParsedField) ([]ddr.SubfieldEntry, bool) {
	groups := field.Groups()
	if len(groups) == 0 {
		return nil, false
	}
	return groups[0], true
}

// DecodeVector is the VectorDecode system: reads one VRID field and
// upserts the vector entity it names. Idempotent under RUIN=3 (modify):
// re-processing the same NAME overwrites VectorMeta in place rather than
// allocating a second entity.
func DecodeVector(world *ecs.World, vrid *ddr.ParsedField) (ecs.Entity, error) {
	group, ok := firstGroup(vrid)
	if !ok {
		return ecs.Nil, fieldErr("VRID", "no data")
	}

	rcnmVal, ok := getInt(group, "RCNM")
	if !ok {
		return ecs.Nil, fieldErr("VRID", "missing RCNM")
	}
	rcidVal, ok := getInt(group, "RCID")
	if !ok {
		return ecs.Nil, fieldErr("VRID", "missing RCID")
	}
	rver := getIntDefault(group, "RVER", 1)
	ruin := getIntDefault(group, "RUIN", 1)

	name := key.NameKey{RCNM: uint8(rcnmVal), RCID: uint32(rcidVal)}

	entity, exists := world.LookupByName(name)
	if !exists {
		entity = world.CreateEntity(ecs.EntityVector)
		world.IndexByName(name, entity)
	}
	world.VectorMeta[entity] = ecs.VectorMeta{Name: name, RVER: uint16(rver), RUIN: uint8(ruin)}

	return entity, nil
}

// DecodeGeometry is the GeometryDecode system: reads SG2D or SG3D into
// exact-rational coordinates. Requires DatasetParams.COMF (and, for SG3D,
// SOMF) to already be set on the World.
func DecodeGeometry(world *ecs.World, entity ecs.Entity, field *ddr.ParsedField, is3D bool) error {
	if world.DatasetParams == nil {
		return topology.ErrMissingDatasetParams()
	}
	params := world.DatasetParams

	groups := field.Groups()
	if len(groups) == 0 {
		return fieldErr(field.Tag, "no data")
	}

	lat := make([]*big.Rat, 0, len(groups))
	lon := make([]*big.Rat, 0, len(groups))
	var depth []*big.Rat
	if is3D {
		depth = make([]*big.Rat, 0, len(groups))
	}

	for _, group := range groups {
		y, ok := getInt(group, "YCOO")
		if !ok {
			return fieldErr(field.Tag, "missing YCOO")
		}
		x, ok := getInt(group, "XCOO")
		if !ok {
			return fieldErr(field.Tag, "missing XCOO")
		}
		lat = append(lat, ratDiv(y, params.COMF))
		lon = append(lon, ratDiv(x, params.COMF))

		if is3D {
			z, ok := getInt(group, "VE3D")
			if !ok {
				return fieldErr(field.Tag, "missing VE3D")
			}
			depth = append(depth, ratDiv(z, params.SOMF))
		}
	}

	world.ExactPositions[entity] = ecs.ExactPositions{Lat: lat, Lon: lon}
	if is3D {
		world.ExactDepths[entity] = ecs.ExactDepths{Depth: depth, Units: params.DUNI}
	}
	return nil
}

func ratDiv(raw int64, factor *big.Rat) *big.Rat {
	return new(big.Rat).Quo(big.NewRat(raw, 1), factor)
}

// DecodeFeature is the FeatureDecode system: reads one FRID + one FOID and
// upserts the feature entity they jointly identify.
func DecodeFeature(world *ecs.World, frid, foid *ddr.ParsedField) (ecs.Entity, error) {
	fridGroup, ok := firstGroup(frid)
	if !ok {
		return ecs.Nil, fieldErr("FRID", "no data")
	}
	if _, ok := getInt(fridGroup, "RCNM"); !ok {
		return ecs.Nil, fieldErr("FRID", "missing RCNM")
	}
	if _, ok := getInt(fridGroup, "RCID"); !ok {
		return ecs.Nil, fieldErr("FRID", "missing RCID")
	}
	prim := getIntDefault(fridGroup, "PRIM", 255)
	grup := getIntDefault(fridGroup, "GRUP", 1)
	objl := getIntDefault(fridGroup, "OBJL", 0)
	rver := getIntDefault(fridGroup, "RVER", 1)
	ruin := getIntDefault(fridGroup, "RUIN", 1)

	foidGroup, ok := firstGroup(foid)
	if !ok {
		return ecs.Nil, fieldErr("FOID", "no data")
	}
	agen, ok := getInt(foidGroup, "AGEN")
	if !ok {
		return ecs.Nil, fieldErr("FOID", "missing AGEN")
	}
	fidn, ok := getInt(foidGroup, "FIDN")
	if !ok {
		return ecs.Nil, fieldErr("FOID", "missing FIDN")
	}
	fids, ok := getInt(foidGroup, "FIDS")
	if !ok {
		return ecs.Nil, fieldErr("FOID", "missing FIDS")
	}

	foidKey := key.FoidKey{AGEN: uint16(agen), FIDN: uint32(fidn), FIDS: uint16(fids)}

	entity, exists := world.LookupByFoid(foidKey)
	if !exists {
		entity = world.CreateEntity(ecs.EntityFeature)
		world.IndexByFoid(foidKey, entity)
	}
	world.FeatureMeta[entity] = ecs.FeatureMeta{
		FOID: foidKey,
		PRIM: uint8(prim),
		GRUP: uint8(grup),
		OBJL: uint16(objl),
		RVER: uint16(rver),
		RUIN: uint8(ruin),
	}

	return entity, nil
}

// DecodeAttributes reads an ATTF or NATF field into FeatureAttributes.
func DecodeAttributes(world *ecs.World, entity ecs.Entity, field *ddr.ParsedField, national bool) error {
	attrs := world.FeatureAttrs[entity]
	for _, group := range field.Groups() {
		code, ok := getInt(group, "ATTL")
		if !ok {
			continue
		}
		value, _ := getString(group, "ATVL")
		attr := ecs.Attribute{Code: uint16(code), Value: value}
		if national {
			attrs.NATF = append(attrs.NATF, attr)
		} else {
			attrs.ATTF = append(attrs.ATTF, attr)
		}
	}
	world.FeatureAttrs[entity] = attrs
	return nil
}

// DecodeDatasetIdentity is the DatasetIdentity system: reads the file's
// DSID field into World.DatasetIdentity. Unlike vector/feature decode, this
// has no entity of its own — DSID describes the dataset, not a record
// within it — so it writes directly onto the World, the same as
// applyDatasetParams does for DSPM.
func DecodeDatasetIdentity(world *ecs.World, dsid *ddr.ParsedField) error {
	group, ok := firstGroup(dsid)
	if !ok {
		return fieldErr("DSID", "no data")
	}

	dsnm, _ := getString(group, "DSNM")
	edtn, _ := getString(group, "EDTN")
	updn, _ := getString(group, "UPDN")
	uadt, _ := getString(group, "UADT")
	isdt, _ := getString(group, "ISDT")
	sted, _ := getString(group, "STED")
	psdn, _ := getString(group, "PSDN")
	pred, _ := getString(group, "PRED")
	comt, _ := getString(group, "COMT")

	world.DatasetIdentity = &ecs.DatasetIdentity{
		RCNM: uint8(getIntDefault(group, "RCNM", 10)),
		RCID: uint32(getIntDefault(group, "RCID", 0)),
		EXPP: uint8(getIntDefault(group, "EXPP", 1)),
		INTU: uint8(getIntDefault(group, "INTU", 0)),
		DSNM: dsnm,
		EDTN: edtn,
		UPDN: updn,
		UADT: uadt,
		ISDT: isdt,
		STED: sted,
		PRSP: uint8(getIntDefault(group, "PRSP", 1)),
		PSDN: psdn,
		PRED: pred,
		PROF: uint8(getIntDefault(group, "PROF", 1)),
		AGEN: uint16(getIntDefault(group, "AGEN", 0)),
		COMT: comt,
	}
	return nil
}

func getString(group []ddr.SubfieldEntry, label string) (string, bool) {
	for _, e := range group {
		if e.Label == label {
			if s, ok := e.Value.AsString(); ok {
				return s, true
			}
			if n, ok := e.Value.AsInt(); ok {
				return big.NewInt(n).String(), true
			}
		}
	}
	return "", false
}
