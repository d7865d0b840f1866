package ecs

import (
	"testing"

	"github.com/orcacharts/s57/internal/key"
)

func TestCreateEntity(t *testing.T) {
	w := New()
	e := w.CreateEntity(EntityVector)
	if !w.IsValid(e) {
		t.Fatal("expected freshly created entity to be valid")
	}
	typ, ok := w.EntityType(e)
	if !ok || typ != EntityVector {
		t.Errorf("EntityType = %v, %v, want EntityVector, true", typ, ok)
	}
}

func TestRemoveEntityInvalidatesHandle(t *testing.T) {
	w := New()
	e := w.CreateEntity(EntityFeature)
	w.RemoveEntity(e)
	if w.IsValid(e) {
		t.Fatal("expected removed entity to be invalid")
	}
}

func TestRemoveEntityRecyclesSlotWithNewGeneration(t *testing.T) {
	w := New()
	e1 := w.CreateEntity(EntityVector)
	w.RemoveEntity(e1)
	e2 := w.CreateEntity(EntityVector)

	if e1 == e2 {
		t.Fatalf("expected recycled slot to carry a new generation: e1=%v e2=%v", e1, e2)
	}
	if w.IsValid(e1) {
		t.Error("stale handle e1 must not be valid after its slot was recycled")
	}
	if !w.IsValid(e2) {
		t.Error("e2 must be valid")
	}
}

func TestRemoveEntityRemovesFirstEverAllocated(t *testing.T) {
	w := New()
	e := w.CreateEntity(EntityVector)
	w.RemoveEntity(e)
	if w.IsValid(e) {
		t.Fatal("expected the first entity a World ever allocates to be removable like any other")
	}
}

func TestEntitiesOfType(t *testing.T) {
	w := New()
	v1 := w.CreateEntity(EntityVector)
	_ = w.CreateEntity(EntityFeature)
	v2 := w.CreateEntity(EntityVector)

	vectors := w.EntitiesOfType(EntityVector)
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	seen := map[Entity]bool{vectors[0]: true, vectors[1]: true}
	if !seen[v1] || !seen[v2] {
		t.Errorf("EntitiesOfType(Vector) = %v, want to contain %v and %v", vectors, v1, v2)
	}
}

func TestNameIndexRoundTrip(t *testing.T) {
	w := New()
	e := w.CreateEntity(EntityVector)
	k := key.NameKey{RCNM: 110, RCID: 42}
	w.IndexByName(k, e)

	got, ok := w.LookupByName(k)
	if !ok || got != e {
		t.Errorf("LookupByName(%v) = %v, %v, want %v, true", k, got, ok, e)
	}
}

func TestRemoveEntityClearsIndexes(t *testing.T) {
	w := New()
	e := w.CreateEntity(EntityVector)
	k := key.NameKey{RCNM: 110, RCID: 7}
	w.IndexByName(k, e)
	w.RemoveEntity(e)

	if _, ok := w.LookupByName(k); ok {
		t.Error("expected index entry to be removed along with the entity")
	}
}
