package s57

import (
	"fmt"
	"sort"
	"strconv"
)

// Cell is a loaded ENC dataset plus the metadata multi-cell composite
// rendering needs to decide which cell wins at a given point.
//
// Reference: S-52 Section 10.3.5 (Cell Selection and Display Priority)
type Cell struct {
	Dataset          *Dataset
	CompilationScale int
	CoverageAreas    []CoverageArea // M_COVR features
	ScaleAreas       []ScaleArea    // M_CSCL features
}

// CoverageArea records where a cell does or doesn't provide data, from an
// M_COVR metadata feature.
//
// Reference: S-52 Section 10.3.6, S-57 Appendix A (M_COVR object class)
type CoverageArea struct {
	Polygon  [][]float64 // [lat, lon] exterior ring
	Category int         // CATCOV: 1=Coverage Available, 2=No Coverage
}

// ScaleArea records a variable compilation scale region within a cell, from
// an M_CSCL metadata feature.
//
// Reference: S-52 Section 10.3.7, S-57 Appendix A (M_CSCL object class)
type ScaleArea struct {
	Polygon [][]float64
	Scale   int
}

// CellSet manages multiple loaded ENC cells for composite chart rendering,
// applying S-52 priority rules when cells overlap.
//
// Reference: S-52 Section 10.3.5 (Cell Selection and Display Priority)
type CellSet struct {
	Cells []*Cell
}

// LoadCell parses an ENC file and extracts the metadata CellSet needs for
// priority and coverage decisions.
func LoadCell(path string, parser Parser, opts ParseOptions, traversal TraversalOptions) (*Cell, error) {
	dataset, err := parser.ParseFile(path, opts, traversal)
	if err != nil {
		return nil, fmt.Errorf("parse cell: %w", err)
	}

	cell := &Cell{
		Dataset:          dataset,
		CompilationScale: int(dataset.CompilationScale()),
		CoverageAreas:    extractCoverageAreas(dataset),
		ScaleAreas:       extractScaleAreas(dataset),
	}
	if cell.CompilationScale == 0 {
		cell.CompilationScale = 50000
	}

	return cell, nil
}

// LoadCells loads multiple ENC files for composite chart rendering.
//
// Example:
//
//	parser := s57.NewParser()
//	paths := []string{"GB4X0000.000", "GB5X01NE.000", "GB5X01NW.000"}
//	cellSet, err := s57.LoadCells(paths, parser, s57.DefaultParseOptions(), s57.DefaultTraversalOptions())
func LoadCells(paths []string, parser Parser, opts ParseOptions, traversal TraversalOptions) (*CellSet, error) {
	cs := &CellSet{Cells: make([]*Cell, 0, len(paths))}

	for _, path := range paths {
		cell, err := LoadCell(path, parser, opts, traversal)
		if err != nil {
			return nil, fmt.Errorf("load cell %s: %w", path, err)
		}
		cs.Cells = append(cs.Cells, cell)
	}

	return cs, nil
}

// LoadCellsWithErrors loads multiple ENC files with error tolerance,
// continuing past a corrupt cell rather than aborting the whole batch.
//
// Example:
//
//	cellSet, errs := s57.LoadCellsWithErrors(paths, parser, opts, traversal)
//	for _, err := range errs {
//	    log.Printf("skipped cell: %v", err)
//	}
func LoadCellsWithErrors(paths []string, parser Parser, opts ParseOptions, traversal TraversalOptions) (*CellSet, []error) {
	cs := &CellSet{Cells: make([]*Cell, 0, len(paths))}

	var errs []error
	for _, path := range paths {
		cell, err := LoadCell(path, parser, opts, traversal)
		if err != nil {
			errs = append(errs, fmt.Errorf("load cell %s: %w", path, err))
			continue
		}
		cs.Cells = append(cs.Cells, cell)
	}

	return cs, errs
}

// Identifier returns the cell's dataset name (DSNM from DSID).
func (c *Cell) Identifier() string { return c.Dataset.DatasetName() }

// Edition returns the cell's edition number, 0 if unparsable.
func (c *Cell) Edition() int {
	n, _ := strconv.Atoi(c.Dataset.Edition())
	return n
}

// UpdateNumber returns the cell's update number, 0 if unparsable.
func (c *Cell) UpdateNumber() int {
	n, _ := strconv.Atoi(c.Dataset.UpdateNumber())
	return n
}

// Bounds returns the cell's geographic bounds.
func (c *Cell) Bounds() Bounds { return c.Dataset.Bounds() }

// CellPriority returns cells covering (lat, lon), highest-priority first.
//
// Priority rules per S-52 Section 10.3.5:
//  1. Scale priority - larger scale (smaller denominator) wins
//  2. Edition priority - higher edition wins
//  3. Update priority - higher update number wins
func (cs *CellSet) CellPriority(lat, lon float64) []*Cell {
	covering := cs.CellsCoveringPoint(lat, lon)

	sort.SliceStable(covering, func(i, j int) bool {
		ci, cj := covering[i], covering[j]

		scalei, scalej := ci.ScaleAtPoint(lat, lon), cj.ScaleAtPoint(lat, lon)
		if scalei != scalej {
			return scalei < scalej
		}
		if ci.Edition() != cj.Edition() {
			return ci.Edition() > cj.Edition()
		}
		return ci.UpdateNumber() > cj.UpdateNumber()
	})

	return covering
}

// CellsCoveringPoint returns cells that provide coverage at a point: within
// the cell's bounds, and not explicitly excluded by an M_COVR CATCOV=2 gap.
func (cs *CellSet) CellsCoveringPoint(lat, lon float64) []*Cell {
	var result []*Cell
	for _, cell := range cs.Cells {
		if !cell.Bounds().Contains(lon, lat) {
			continue
		}
		if cell.HasCoverageAt(lat, lon) {
			result = append(result, cell)
		}
	}
	return result
}

// HasCoverageAt reports whether the cell provides coverage at a point: true
// if it has no M_COVR features at all, or the point falls in a CATCOV=1
// polygon; false if it falls in a CATCOV=2 (no coverage) polygon, even one
// nested inside a CATCOV=1 polygon, or in no M_COVR polygon at all.
func (c *Cell) HasCoverageAt(lat, lon float64) bool {
	if len(c.CoverageAreas) == 0 {
		return true
	}

	covered := false
	for _, area := range c.CoverageAreas {
		if pointInPolygon(lat, lon, area.Polygon) {
			if area.Category == 2 {
				return false
			}
			if area.Category == 1 {
				covered = true
			}
		}
	}

	return covered
}

// ScaleAtPoint returns the compilation scale in force at a point: an M_CSCL
// variable-scale region's scale if the point falls inside one, else the
// cell's overall compilation scale.
func (c *Cell) ScaleAtPoint(lat, lon float64) int {
	for _, area := range c.ScaleAreas {
		if pointInPolygon(lat, lon, area.Polygon) {
			return area.Scale
		}
	}
	return c.CompilationScale
}

// CompositeBounds returns the union of every cell's bounds.
func (cs *CellSet) CompositeBounds() Bounds {
	if len(cs.Cells) == 0 {
		return Bounds{}
	}

	bounds := cs.Cells[0].Bounds()
	for _, cell := range cs.Cells[1:] {
		bounds = bounds.Union(cell.Bounds())
	}
	return bounds
}

// extractCoverageAreas reads M_COVR features out of a dataset. CATCOV
// distinguishes a declared coverage area (1) from an explicit gap (2).
func extractCoverageAreas(dataset *Dataset) []CoverageArea {
	var areas []CoverageArea

	for _, feature := range dataset.Features() {
		if feature.ObjectClass() != "M_COVR" {
			continue
		}

		catcov := 1
		if v, ok := feature.Attribute("CATCOV"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				catcov = n
			}
		}

		geom, err := feature.Geometry()
		if err != nil || geom.Type != GeometryTypePolygon || len(geom.Rings) == 0 {
			continue
		}

		areas = append(areas, CoverageArea{
			Polygon:  toLatLonPolygon(geom.Rings[0]),
			Category: catcov,
		})
	}

	return areas
}

// extractScaleAreas reads M_CSCL features out of a dataset.
func extractScaleAreas(dataset *Dataset) []ScaleArea {
	var areas []ScaleArea

	for _, feature := range dataset.Features() {
		if feature.ObjectClass() != "M_CSCL" {
			continue
		}

		v, ok := feature.Attribute("CSCALE")
		if !ok {
			continue
		}
		cscale, err := strconv.Atoi(v)
		if err != nil || cscale == 0 {
			continue
		}

		geom, err := feature.Geometry()
		if err != nil || geom.Type != GeometryTypePolygon || len(geom.Rings) == 0 {
			continue
		}

		areas = append(areas, ScaleArea{
			Polygon: toLatLonPolygon(geom.Rings[0]),
			Scale:   cscale,
		})
	}

	return areas
}

// toLatLonPolygon converts a GeoJSON [lon, lat] ring to the [lat, lon]
// convention pointInPolygon and CoverageArea/ScaleArea use.
func toLatLonPolygon(ring [][]float64) [][]float64 {
	polygon := make([][]float64, 0, len(ring))
	for _, coord := range ring {
		if len(coord) >= 2 {
			polygon = append(polygon, []float64{coord[1], coord[0]})
		}
	}
	return polygon
}

// pointInPolygon reports whether (lat, lon) falls inside polygon, a ring of
// [lat, lon] points, using the standard ray-casting algorithm.
func pointInPolygon(lat, lon float64, polygon [][]float64) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		piLat, piLon := polygon[i][0], polygon[i][1]
		pjLat, pjLon := polygon[j][0], polygon[j][1]

		if ((piLon > lon) != (pjLon > lon)) &&
			(lat < (pjLat-piLat)*(lon-piLon)/(pjLon-piLon)+piLat) {
			inside = !inside
		}

		j = i
	}

	return inside
}
