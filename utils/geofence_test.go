package utils

import "testing"

// Square fence around the origin, deliberately left unclosed: the helper
// closes it before testing containment.
const squareFence = `{"coordinates":[
	{"lat":-1,"lng":-1},
	{"lat":-1,"lng":1},
	{"lat":1,"lng":1},
	{"lat":1,"lng":-1}
]}`

func TestValidateGeofence(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"empty is optional", "", false},
		{"valid square", squareFence, false},
		{"not json", "{not json", true},
		{"too few points", `{"coordinates":[{"lat":0,"lng":0},{"lat":1,"lng":1}]}`, true},
		{"latitude out of range", `{"coordinates":[{"lat":91,"lng":0},{"lat":0,"lng":1},{"lat":1,"lng":0}]}`, true},
		{"longitude out of range", `{"coordinates":[{"lat":0,"lng":-181},{"lat":0,"lng":1},{"lat":1,"lng":0}]}`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGeofence(tc.json)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateGeofence() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestGeofenceContains(t *testing.T) {
	fence, err := ParseGeofence(squareFence)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tests := []struct {
		name  string
		point Coordinate
		want  bool
	}{
		{"center inside", Coordinate{Lat: 0, Lng: 0}, true},
		{"near corner inside", Coordinate{Lat: 0.9, Lng: 0.9}, true},
		{"outside north", Coordinate{Lat: 2, Lng: 0}, false},
		{"outside west", Coordinate{Lat: 0, Lng: -3}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := fence.Contains(tc.point); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.point, got, tc.want)
			}
		})
	}

	var none *Geofence
	if none.Contains(Coordinate{}) {
		t.Error("nil fence must not contain anything")
	}
}

func TestGeofenceCenter(t *testing.T) {
	fence, _ := ParseGeofence(squareFence)
	c := fence.Center()
	if c.Lat < -0.01 || c.Lat > 0.01 || c.Lng < -0.01 || c.Lng > 0.01 {
		t.Errorf("center of unit square should be ~origin, got %+v", c)
	}
}
