package ecs

import "github.com/orcacharts/s57/internal/key"

// World is the top-level container for every entity and component table
// produced while ingesting one dataset. Entities are allocated from a single
// generational slot array; components live in sparse maps keyed by Entity so
// an entity can carry only the components its record actually supplied.
type World struct {
	slots     []entityMeta
	freeList  []uint32
	nameIndex map[key.NameKey]Entity
	foidIndex map[key.FoidKey]Entity

	DatasetParams   *DatasetParams
	DatasetIdentity *DatasetIdentity

	VectorMeta       map[Entity]VectorMeta
	VectorTopology   map[Entity]VectorTopology
	FeatureMeta      map[Entity]FeatureMeta
	FeatureAttrs     map[Entity]FeatureAttributes
	FeaturePointers  map[Entity]FeaturePointers
	ExactPositions   map[Entity]ExactPositions
	ExactDepths      map[Entity]ExactDepths
}

// New returns an empty World.
func New() *World {
	return &World{
		nameIndex:       make(map[key.NameKey]Entity),
		foidIndex:       make(map[key.FoidKey]Entity),
		VectorMeta:      make(map[Entity]VectorMeta),
		VectorTopology:  make(map[Entity]VectorTopology),
		FeatureMeta:     make(map[Entity]FeatureMeta),
		FeatureAttrs:    make(map[Entity]FeatureAttributes),
		FeaturePointers: make(map[Entity]FeaturePointers),
		ExactPositions:  make(map[Entity]ExactPositions),
		ExactDepths:     make(map[Entity]ExactDepths),
	}
}

// CreateEntity allocates a new entity, reusing a freed slot (with its
// generation bumped) when one is available.
func (w *World) CreateEntity(typ EntityType) Entity {
	if n := len(w.freeList); n > 0 {
		idx := w.freeList[n-1]
		w.freeList = w.freeList[:n-1]
		w.slots[idx].alive = true
		w.slots[idx].typ = typ
		return Entity{index: idx, generation: w.slots[idx].generation}
	}
	idx := uint32(len(w.slots))
	w.slots = append(w.slots, entityMeta{generation: 1, alive: true, typ: typ})
	return Entity{index: idx, generation: 1}
}

// RemoveEntity deletes an entity and every component registered for it. The
// slot's generation is bumped so outstanding Entity handles become stale.
func (w *World) RemoveEntity(e Entity) {
	if !w.IsValid(e) {
		return
	}
	w.slots[e.index].alive = false
	w.slots[e.index].generation++
	w.freeList = append(w.freeList, e.index)

	delete(w.VectorMeta, e)
	delete(w.VectorTopology, e)
	delete(w.FeatureMeta, e)
	delete(w.FeatureAttrs, e)
	delete(w.FeaturePointers, e)
	delete(w.ExactPositions, e)
	delete(w.ExactDepths, e)
	for k, v := range w.nameIndex {
		if v == e {
			delete(w.nameIndex, k)
		}
	}
	for k, v := range w.foidIndex {
		if v == e {
			delete(w.foidIndex, k)
		}
	}
}

// IsValid reports whether e refers to a live entity at its own generation.
func (w *World) IsValid(e Entity) bool {
	if e == Nil || int(e.index) >= len(w.slots) {
		return false
	}
	slot := w.slots[e.index]
	return slot.alive && slot.generation == e.generation
}

// EntityType returns the type tag recorded at creation time.
func (w *World) EntityType(e Entity) (EntityType, bool) {
	if !w.IsValid(e) {
		return 0, false
	}
	return w.slots[e.index].typ, true
}

// EntitiesOfType returns every live entity with the given type tag, in slot
// order (allocation order, except that a recycled slot keeps its old place).
func (w *World) EntitiesOfType(typ EntityType) []Entity {
	var out []Entity
	for idx, slot := range w.slots {
		if slot.alive && slot.typ == typ {
			out = append(out, Entity{index: uint32(idx), generation: slot.generation})
		}
	}
	return out
}

// IndexByName registers e under a NameKey, so EdgeWalker and friends can
// resolve VRPT/FSPT pointers without a linear scan.
func (w *World) IndexByName(k key.NameKey, e Entity) { w.nameIndex[k] = e }

// LookupByName resolves a NameKey to the entity registered for it.
func (w *World) LookupByName(k key.NameKey) (Entity, bool) {
	e, ok := w.nameIndex[k]
	return e, ok
}

// IndexByFoid registers e under a FoidKey, so FFPT pointers between features
// resolve to Entity handles instead of carrying raw keys around.
func (w *World) IndexByFoid(k key.FoidKey, e Entity) { w.foidIndex[k] = e }

// LookupByFoid resolves a FoidKey to the entity registered for it.
func (w *World) LookupByFoid(k key.FoidKey) (Entity, bool) {
	e, ok := w.foidIndex[k]
	return e, ok
}
