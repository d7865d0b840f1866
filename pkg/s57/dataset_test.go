package s57

import (
	"math/big"
	"testing"

	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/key"
)

// newNode creates an isolated-node vector entity at (lat, lon) and returns
// its entity handle.
func newNode(world *ecs.World, rcid uint32, lat, lon float64) ecs.Entity {
	e := world.CreateEntity(ecs.EntityVector)
	name := key.NameKey{RCNM: key.RCNMVectorIsolatedNode, RCID: rcid}
	world.VectorMeta[e] = ecs.VectorMeta{Name: name, RVER: 1}
	world.ExactPositions[e] = ecs.ExactPositions{
		Lat: []*big.Rat{big.NewRat(int64(lat*1e7), 1e7)},
		Lon: []*big.Rat{big.NewRat(int64(lon*1e7), 1e7)},
	}
	world.IndexByName(name, e)
	return e
}

// newPointFeature creates a point feature referencing a single node.
func newPointFeature(world *ecs.World, fidn uint32, objl uint16, node ecs.Entity) ecs.Entity {
	e := world.CreateEntity(ecs.EntityFeature)
	foid := key.FoidKey{AGEN: 550, FIDN: fidn, FIDS: 1}
	world.FeatureMeta[e] = ecs.FeatureMeta{FOID: foid, PRIM: 1, GRUP: 1, OBJL: objl, RVER: 1}
	world.FeaturePointers[e] = ecs.FeaturePointers{
		SpatialRefs: []ecs.SpatialRef{{Vector: node, ORNT: 255, USAG: 255, MASK: 255}},
	}
	world.IndexByFoid(foid, e)
	return e
}

func TestDatasetBuildAndBounds(t *testing.T) {
	world := ecs.New()
	n1 := newNode(world, 1, 42.0, -71.0)
	n2 := newNode(world, 2, 42.5, -70.5)
	newPointFeature(world, 1, 129, n1) // SOUNDG
	newPointFeature(world, 2, 75, n2)  // LIGHTS

	dataset, err := Build(world, DefaultTraversalOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := dataset.FeatureCount(); got != 2 {
		t.Fatalf("FeatureCount = %d, want 2", got)
	}

	bounds := dataset.Bounds()
	if bounds.MinLat != 42.0 || bounds.MaxLat != 42.5 {
		t.Errorf("Bounds lat range = [%v,%v], want [42.0,42.5]", bounds.MinLat, bounds.MaxLat)
	}
	if bounds.MinLon != -71.0 || bounds.MaxLon != -70.5 {
		t.Errorf("Bounds lon range = [%v,%v], want [-71.0,-70.5]", bounds.MinLon, bounds.MaxLon)
	}
}

func TestDatasetFeaturesInBounds(t *testing.T) {
	world := ecs.New()
	near := newNode(world, 1, 42.0, -71.0)
	far := newNode(world, 2, 50.0, -60.0)
	newPointFeature(world, 1, 129, near)
	newPointFeature(world, 2, 129, far)

	dataset, err := Build(world, DefaultTraversalOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	viewport := Bounds{MinLon: -71.5, MaxLon: -70.5, MinLat: 41.5, MaxLat: 42.5}
	found := dataset.FeaturesInBounds(viewport)
	if len(found) != 1 {
		t.Fatalf("FeaturesInBounds = %d features, want 1", len(found))
	}
	if found[0].ID() != 1 {
		t.Errorf("FeaturesInBounds returned feature %d, want 1", found[0].ID())
	}
}

func TestDatasetPrefersM_COVRBounds(t *testing.T) {
	world := ecs.New()
	soundingNode := newNode(world, 1, 10.0, 10.0)
	newPointFeature(world, 1, 129, soundingNode)

	covrNode1 := newNode(world, 2, 0.0, 0.0)
	covrNode2 := newNode(world, 3, 1.0, 1.0)
	covr := world.CreateEntity(ecs.EntityFeature)
	covrFoid := key.FoidKey{AGEN: 550, FIDN: 2, FIDS: 1}
	world.FeatureMeta[covr] = ecs.FeatureMeta{FOID: covrFoid, PRIM: 1, GRUP: 2, OBJL: 302, RVER: 1}
	world.FeaturePointers[covr] = ecs.FeaturePointers{
		SpatialRefs: []ecs.SpatialRef{
			{Vector: covrNode1, ORNT: 255, USAG: 255, MASK: 255},
			{Vector: covrNode2, ORNT: 255, USAG: 255, MASK: 255},
		},
	}
	world.IndexByFoid(covrFoid, covr)

	dataset, err := Build(world, DefaultTraversalOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	bounds := dataset.Bounds()
	if bounds.MaxLat > 1.0 {
		t.Errorf("Bounds should follow M_COVR extent [0,1], got MaxLat=%v (SOUNDG at 10.0 leaked in)", bounds.MaxLat)
	}
}

func TestDatasetMetadataAccessors(t *testing.T) {
	world := ecs.New()
	world.DatasetIdentity = &ecs.DatasetIdentity{
		DSNM: "US5MA22M",
		EDTN: "5",
		UPDN: "0",
		STED: "03.1",
		AGEN: 550,
		INTU: 4,
	}
	world.DatasetParams = &ecs.DatasetParams{CSCL: 25000, HDAT: 2}

	dataset, err := Build(world, DefaultTraversalOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if dataset.DatasetName() != "US5MA22M" {
		t.Errorf("DatasetName = %q, want US5MA22M", dataset.DatasetName())
	}
	if dataset.UsageBand() != UsageBandApproach {
		t.Errorf("UsageBand = %v, want Approach", dataset.UsageBand())
	}
	if dataset.CompilationScale() != 25000 {
		t.Errorf("CompilationScale = %d, want 25000", dataset.CompilationScale())
	}
	if dataset.HorizontalDatum() != 2 {
		t.Errorf("HorizontalDatum = %d, want 2", dataset.HorizontalDatum())
	}
}

func TestDatasetMetadataZeroValueWhenAbsent(t *testing.T) {
	dataset, err := Build(ecs.New(), DefaultTraversalOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if dataset.DatasetName() != "" {
		t.Errorf("DatasetName on an empty World = %q, want empty", dataset.DatasetName())
	}
	if dataset.CompilationScale() != 0 {
		t.Errorf("CompilationScale on an empty World = %d, want 0", dataset.CompilationScale())
	}
}
