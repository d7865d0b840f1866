package systems

import (
	"math/big"

	"github.com/orcacharts/s57/internal/ddr"
	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/iso8211"
)

// Logger is the minimal ambient logging seam ingestion writes to. A
// skipped record is logged, never silently dropped, per the skip-and-
// continue policy for non-fatal record-level issues.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// BuildOptions controls the ingestion pass.
type BuildOptions struct {
	// Logger receives one line per skipped record. Defaults to a no-op.
	Logger Logger
	// Strict, if true, aborts the whole build on the first record-level
	// error instead of logging and skipping it.
	Strict bool
}

// DefaultBuildOptions returns the tolerant, silently-logging default.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Logger: nopLogger{}}
}

// pendingTopology and pendingBind carry the raw DR fields a record needs
// resolved in pass 2, once every vector and feature in the file has an
// entity — this is the deferred-resolution half of ingestion, what lets a
// VRPT or FSPT reference a record that appears later in the file.
type pendingTopology struct {
	entity ecs.Entity
	vrpt   *ddr.ParsedField
	record int
}

type pendingBind struct {
	entity ecs.Entity
	fspt   *ddr.ParsedField
	ffpt   *ddr.ParsedField
	record int
}

// Build parses every logical record in a raw S-57 byte buffer and returns
// the populated World. Record 0 must be the DDR; every record after it is
// interpreted as a DSID/DSPM dataset record, a VRID vector record, or an
// FRID/FOID feature record in any combination the field tags present
// support.
//
// Ingestion runs in two passes. Pass 1 creates every vector and feature
// entity and decodes everything that doesn't reference another record
// (geometry, attributes), queuing VRPT/FSPT/FFPT for later. Pass 2 resolves
// those queued pointers once every entity they might reference exists,
// so a forward reference - legal in S-57 but rare - resolves instead of
// dangling.
func Build(data []byte, overrides *ddr.OverrideSchema, opts BuildOptions) (*ecs.World, error) {
	world := ecs.New()
	if err := BuildInto(world, data, overrides, opts); err != nil {
		return nil, err
	}
	return world, nil
}

// BuildInto runs the same two-pass ingestion as Build, but against a
// caller-supplied World instead of a fresh one. DecodeVector and
// DecodeFeature upsert by NameKey/FoidKey rather than unconditionally
// creating a new entity, so calling BuildInto a second time with an update
// file's records - after the base cell's Build - inserts new records,
// reuses the existing entity for modified ones (RUIN=3), and deletes removed
// ones (RUIN=2). A modify overwrites the record's VRID/FRID metadata and any
// SG2D/SG3D geometry it carries; its VRPT, FSPT/FFPT and ATTF/NATF entries
// are appended to the ones the entity already holds, and the pointer-update
// control fields (VRPC, FSPC, FFPC) are not interpreted. Every existing
// Entity handle other records hold onto (VRPT neighbors, FSPT/FFPT
// references) stays valid across a modify, since the entity is reused
// rather than replaced.
func BuildInto(world *ecs.World, data []byte, overrides *ddr.OverrideSchema, opts BuildOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	records, err := iso8211.ReadFile(data)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fieldErr("0000", "empty file")
	}
	if !records[0].Leader.IsDDR() {
		return fieldErr("0000", "first record is not a DDR")
	}

	schema, err := ddr.Parse(records[0], overrides)
	if err != nil {
		return err
	}

	var topo []pendingTopology
	var binds []pendingBind

	for idx, record := range records[1:] {
		recordNum := idx + 1

		if data, ok := record.Field("DSID"); ok {
			if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "DSID", Data: data}); err == nil {
				if err := DecodeDatasetIdentity(world, parsed); err != nil && opts.Strict {
					return err
				} else if err != nil {
					logger.Printf("skipping DSID at record %d: %v", recordNum, err)
				}
			} else if opts.Strict {
				return err
			} else {
				logger.Printf("skipping DSID at record %d: %v", recordNum, err)
			}
		}

		if data, ok := record.Field("DSPM"); ok {
			if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "DSPM", Data: data}); err == nil {
				applyDatasetParams(world, parsed)
			} else if opts.Strict {
				return err
			} else {
				logger.Printf("skipping DSPM at record %d: %v", recordNum, err)
			}
		}

		if vridData, ok := record.Field("VRID"); ok {
			vrid, err := schema.ParseFieldData(iso8211.Field{Tag: "VRID", Data: vridData})
			if err != nil {
				if opts.Strict {
					return err
				}
				logger.Printf("skipping VRID at record %d: %v", recordNum, err)
				continue
			}

			entity, err := DecodeVector(world, vrid)
			if err != nil {
				if opts.Strict {
					return err
				}
				logger.Printf("skipping VRID at record %d: %v", recordNum, err)
				continue
			}

			// RUIN=2 (delete): an update file removing a vector a later
			// record might still name is legal but rare; removing it here
			// means the deferred VRPT pass below raises a dangling
			// reference for anyone still pointing at it, same as any other
			// missing vector.
			if world.VectorMeta[entity].RUIN == 2 {
				world.RemoveEntity(entity)
				continue
			}

			if sg2dData, ok := record.Field("SG2D"); ok {
				if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "SG2D", Data: sg2dData}); err == nil {
					if err := DecodeGeometry(world, entity, parsed, false); err != nil && opts.Strict {
						return err
					} else if err != nil {
						logger.Printf("skipping SG2D at record %d: %v", recordNum, err)
					}
				}
			}
			if sg3dData, ok := record.Field("SG3D"); ok {
				if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "SG3D", Data: sg3dData}); err == nil {
					if err := DecodeGeometry(world, entity, parsed, true); err != nil && opts.Strict {
						return err
					} else if err != nil {
						logger.Printf("skipping SG3D at record %d: %v", recordNum, err)
					}
				}
			}
			if vrptData, ok := record.Field("VRPT"); ok {
				if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "VRPT", Data: vrptData}); err == nil {
					topo = append(topo, pendingTopology{entity: entity, vrpt: parsed, record: recordNum})
				}
			}
		}

		fridData, hasFrid := record.Field("FRID")
		foidData, hasFoid := record.Field("FOID")
		if hasFrid && hasFoid {
			frid, err1 := schema.ParseFieldData(iso8211.Field{Tag: "FRID", Data: fridData})
			foid, err2 := schema.ParseFieldData(iso8211.Field{Tag: "FOID", Data: foidData})
			if err1 != nil || err2 != nil {
				if opts.Strict {
					if err1 != nil {
						return err1
					}
					return err2
				}
				logger.Printf("skipping FRID/FOID at record %d", recordNum)
				continue
			}

			entity, err := DecodeFeature(world, frid, foid)
			if err != nil {
				if opts.Strict {
					return err
				}
				logger.Printf("skipping FRID/FOID at record %d: %v", recordNum, err)
				continue
			}

			if world.FeatureMeta[entity].RUIN == 2 {
				world.RemoveEntity(entity)
				continue
			}

			if attfData, ok := record.Field("ATTF"); ok {
				if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "ATTF", Data: attfData}); err == nil {
					_ = DecodeAttributes(world, entity, parsed, false)
				}
			}
			if natfData, ok := record.Field("NATF"); ok {
				if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "NATF", Data: natfData}); err == nil {
					_ = DecodeAttributes(world, entity, parsed, true)
				}
			}

			var bind pendingBind
			bind.entity = entity
			bind.record = recordNum
			if fsptData, ok := record.Field("FSPT"); ok {
				if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "FSPT", Data: fsptData}); err == nil {
					bind.fspt = parsed
				}
			}
			if ffptData, ok := record.Field("FFPT"); ok {
				if parsed, err := schema.ParseFieldData(iso8211.Field{Tag: "FFPT", Data: ffptData}); err == nil {
					bind.ffpt = parsed
				}
			}
			if bind.fspt != nil || bind.ffpt != nil {
				binds = append(binds, bind)
			}
		}
	}

	for _, p := range topo {
		if err := DecodeTopology(world, p.entity, p.vrpt); err != nil {
			if opts.Strict {
				return err
			}
			logger.Printf("skipping VRPT at record %d: %v", p.record, err)
		}
	}
	for _, b := range binds {
		if err := DecodeFeatureBind(world, b.entity, b.fspt, b.ffpt); err != nil {
			if opts.Strict {
				return err
			}
			logger.Printf("skipping FSPT/FFPT at record %d: %v", b.record, err)
		}
	}

	return nil
}

func applyDatasetParams(world *ecs.World, parsed *ddr.ParsedField) {
	group, ok := firstGroup(parsed)
	if !ok {
		return
	}
	comf := getIntDefault(group, "COMF", 10_000_000)
	somf := getIntDefault(group, "SOMF", 100)

	world.DatasetParams = &ecs.DatasetParams{
		COMF: big.NewRat(comf, 1),
		SOMF: big.NewRat(somf, 1),
		DUNI: uint16(getIntDefault(group, "DUNI", 1)),
		HUNI: uint16(getIntDefault(group, "HUNI", 1)),
		PUNI: uint16(getIntDefault(group, "PUNI", 1)),
		HDAT: uint16(getIntDefault(group, "HDAT", 2)),
		VDAT: uint16(getIntDefault(group, "VDAT", 0)),
		SDAT: uint16(getIntDefault(group, "SDAT", 0)),
		CSCL: uint32(getIntDefault(group, "CSCL", 1)),
	}
}
