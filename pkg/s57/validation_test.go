package s57

import "testing"

func TestValidateCoordinate(t *testing.T) {
	cases := []struct {
		name    string
		lat, lon float64
		wantErr bool
	}{
		{"valid", 42.0, -71.0, false},
		{"lat too high", 91.0, 0, true},
		{"lat too low", -91.0, 0, true},
		{"lon too high", 0, 181.0, true},
		{"lon too low", 0, -181.0, true},
		{"boundary", 90.0, 180.0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCoordinate(tc.lat, tc.lon)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateCoordinate(%v, %v) error = %v, wantErr %v", tc.lat, tc.lon, err, tc.wantErr)
			}
		})
	}
}

func TestValidateGeometry(t *testing.T) {
	cases := []struct {
		name    string
		geom    Geometry
		wantErr bool
	}{
		{
			name: "valid point",
			geom: Geometry{Type: GeometryTypePoint, Coordinates: [][]float64{{-71.0, 42.0}}},
		},
		{
			name: "meta feature, no geometry",
			geom: Geometry{Type: GeometryTypeNone},
		},
		{
			name:    "point out of bounds",
			geom:    Geometry{Type: GeometryTypePoint, Coordinates: [][]float64{{-71.0, 142.0}}},
			wantErr: true,
		},
		{
			name:    "coordinate missing a component",
			geom:    Geometry{Type: GeometryTypeLineString, Coordinates: [][]float64{{-71.0}}},
			wantErr: true,
		},
		{
			name: "sounding with depth component",
			geom: Geometry{Type: GeometryTypeMultiPoint, Coordinates: [][]float64{{-71.0, 42.0, 5.2}}},
		},
		{
			name: "valid polygon rings",
			geom: Geometry{Type: GeometryTypePolygon, Rings: [][][]float64{
				{{-71.0, 42.0}, {-70.9, 42.0}, {-70.9, 42.1}, {-71.0, 42.0}},
			}},
		},
		{
			name: "polygon ring with an invalid point",
			geom: Geometry{Type: GeometryTypePolygon, Rings: [][][]float64{
				{{-71.0, 42.0}, {-70.9, 200.0}},
			}},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGeometry(tc.geom)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateGeometry(%+v) error = %v, wantErr %v", tc.geom, err, tc.wantErr)
			}
		})
	}
}
