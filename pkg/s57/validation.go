package s57

import "fmt"

// ErrInvalidCoordinate indicates a coordinate out of valid WGS-84 bounds.
type ErrInvalidCoordinate struct {
	Lat, Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%f lon=%f (lat must be within ±90, lon within ±180)",
		e.Lat, e.Lon)
}

// ErrInvalidGeometry indicates geometry violating S-57 §7.3 spatial rules.
type ErrInvalidGeometry struct {
	Type   GeometryType
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	return fmt.Sprintf("invalid geometry (%v): %s", e.Type, e.Reason)
}

// ValidateCoordinate reports whether (lat, lon) lies within WGS-84 bounds.
func ValidateCoordinate(lat, lon float64) error {
	if lat < -90.0 || lat > 90.0 || lon < -180.0 || lon > 180.0 {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	return nil
}

// ValidateGeometry checks a resolved Geometry's coordinates against S-57
// §7.3 spatial rules: every point must be a valid WGS-84 coordinate, encoded
// as [lon, lat] or [lon, lat, depth] (SOUNDG's 3D form).
//
// A GeometryTypeNone geometry - the shape a meta-feature like C_AGGR or
// M_COVR's CATCOV=2 marker resolves to - is always valid; such features
// carry no spatial representation by design.
func ValidateGeometry(g Geometry) error {
	coordSets := g.Coordinates
	if g.Type == GeometryTypePolygon {
		for _, ring := range g.Rings {
			if err := validateCoords(g.Type, ring); err != nil {
				return err
			}
		}
		return nil
	}
	return validateCoords(g.Type, coordSets)
}

func validateCoords(t GeometryType, coords [][]float64) error {
	for i, coord := range coords {
		if len(coord) < 2 || len(coord) > 3 {
			return &ErrInvalidGeometry{
				Type:   t,
				Reason: fmt.Sprintf("coordinate %d must have 2 or 3 values [lon, lat] or [lon, lat, depth], got %d", i, len(coord)),
			}
		}
		lon, lat := coord[0], coord[1]
		if err := ValidateCoordinate(lat, lon); err != nil {
			return &ErrInvalidGeometry{Type: t, Reason: fmt.Sprintf("coordinate %d invalid: %v", i, err)}
		}
	}
	return nil
}

// ValidateFeature checks that a feature has a non-empty object class name
// and valid resolved geometry. An OBJL code the catalog does not know is
// named OBJL_<code> and passes the class check.
func ValidateFeature(f *Feature) error {
	if f.ObjectClass() == "" {
		return fmt.Errorf("feature has empty object class")
	}
	geom, err := f.Geometry()
	if err != nil {
		return fmt.Errorf("feature %d: resolve geometry: %w", f.ID(), err)
	}
	if err := ValidateGeometry(geom); err != nil {
		return fmt.Errorf("feature %d: %w", f.ID(), err)
	}
	return nil
}
