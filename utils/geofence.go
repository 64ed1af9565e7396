package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Coordinate represents a geographic coordinate with latitude and longitude
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geofence is the polygonal boundary around an obra site. Stored as JSON on
// the obra row; field timeline entries carrying coordinates are checked
// against it.
type Geofence struct {
	Coordinates []Coordinate `json:"coordinates"`
	Name        string       `json:"name,omitempty"`
}

// ValidateGeofence validates geofencing data. Empty input is fine: the
// fence is optional.
func ValidateGeofence(geofenceJSON string) error {
	if geofenceJSON == "" {
		return nil
	}

	var geofence Geofence
	if err := json.Unmarshal([]byte(geofenceJSON), &geofence); err != nil {
		return fmt.Errorf("invalid geofence JSON format: %w", err)
	}

	// A valid polygon needs at least 3 points (triangle)
	if len(geofence.Coordinates) < 3 {
		return errors.New("geofence must have at least 3 coordinates to form a polygon")
	}

	for i, coord := range geofence.Coordinates {
		if err := validateCoordinate(coord); err != nil {
			return fmt.Errorf("invalid coordinate at index %d: %w", i, err)
		}
	}

	return nil
}

func validateCoordinate(coord Coordinate) error {
	if coord.Lat < -90 || coord.Lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", coord.Lat)
	}
	if coord.Lng < -180 || coord.Lng > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", coord.Lng)
	}
	return nil
}

// ParseGeofence parses geofence JSON into a Geofence. Empty input returns
// nil without error.
func ParseGeofence(geofenceJSON string) (*Geofence, error) {
	if geofenceJSON == "" {
		return nil, nil
	}

	var geofence Geofence
	if err := json.Unmarshal([]byte(geofenceJSON), &geofence); err != nil {
		return nil, fmt.Errorf("failed to parse geofence: %w", err)
	}

	return &geofence, nil
}

// ring converts the fence to an orb ring, closing it if the input polygon
// left the last point open.
func (g *Geofence) ring() orb.Ring {
	ring := make(orb.Ring, 0, len(g.Coordinates)+1)
	for _, c := range g.Coordinates {
		ring = append(ring, orb.Point{c.Lng, c.Lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Contains reports whether the point lies inside the fence polygon.
func (g *Geofence) Contains(point Coordinate) bool {
	if g == nil || len(g.Coordinates) < 3 {
		return false
	}
	polygon := orb.Polygon{g.ring()}
	return planar.PolygonContains(polygon, orb.Point{point.Lng, point.Lat})
}

// Center returns the centroid of the fence polygon.
func (g *Geofence) Center() Coordinate {
	if g == nil || len(g.Coordinates) == 0 {
		return Coordinate{}
	}
	centroid, _ := planar.CentroidArea(orb.Polygon{g.ring()})
	return Coordinate{Lat: centroid[1], Lng: centroid[0]}
}
