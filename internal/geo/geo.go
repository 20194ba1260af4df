// Package geo provides the geospatial primitives used by matching and
// proximity alerts: great-circle distance, coordinate validation, and a
// bounding-box pre-filter.
package geo

import (
	"errors"
	"math"

	"github.com/kajiplatform/matching-service/internal/types"
)

// ErrInvalidCoordinates is returned when a location is missing a coordinate
// or has a coordinate outside the valid range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

const (
	earthRadiusKm = 6371.0
	// kmPerDegreeLat approximates one degree of latitude anywhere on the
	// globe, and one degree of longitude at the equator.
	kmPerDegreeLat = 111.0
)

// IsValid reports whether both coordinates are present, finite, and within
// [-90,90] / [-180,180].
func IsValid(loc types.Location) bool {
	if !loc.HasCoordinates() {
		return false
	}
	lat, lon := *loc.Latitude, *loc.Longitude
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceKm computes the haversine great-circle distance between two valid
// locations, in kilometers rounded to two decimal places.
func DistanceKm(a, b types.Location) (float64, error) {
	if !IsValid(a) || !IsValid(b) {
		return 0, ErrInvalidCoordinates
	}

	lat1 := degToRad(*a.Latitude)
	lat2 := degToRad(*b.Latitude)
	dLat := degToRad(*b.Latitude - *a.Latitude)
	dLon := degToRad(*b.Longitude - *a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(earthRadiusKm * c), nil
}

// Box is a rectangular coordinate pre-filter approximating a circular radius.
// It is conservative, not authoritative: it can admit points just outside the
// true radius, so callers must re-check with DistanceKm <= radius.
type Box struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// BoundingBox returns the box around center covering radiusKm in every
// direction, using latDelta = r/111 and lonDelta = r/(111*cos(lat)). Near the
// poles the longitude approximation degrades, so the longitude span is
// widened to the full range rather than risking false negatives.
func BoundingBox(center types.Location, radiusKm float64) (Box, error) {
	if !IsValid(center) {
		return Box{}, ErrInvalidCoordinates
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return Box{}, errors.New("radius must be a positive number of kilometers")
	}

	lat, lon := *center.Latitude, *center.Longitude
	latDelta := radiusKm / kmPerDegreeLat

	cosLat := math.Cos(degToRad(lat))
	lonDelta := 180.0
	if cosLat > 1e-6 {
		lonDelta = radiusKm / (kmPerDegreeLat * cosLat)
	}

	box := Box{
		MinLat: math.Max(lat-latDelta, -90),
		MaxLat: math.Min(lat+latDelta, 90),
		MinLon: math.Max(lon-lonDelta, -180),
		MaxLon: math.Min(lon+lonDelta, 180),
	}
	if lonDelta >= 180 {
		// The delta wraps the globe; use the full span instead of excluding
		// longitudes on the far side of the antimeridian.
		box.MinLon, box.MaxLon = -180, 180
	}
	return box, nil
}

// Contains reports whether the location's coordinates fall within the box.
func (b Box) Contains(loc types.Location) bool {
	if !loc.HasCoordinates() {
		return false
	}
	lat, lon := *loc.Latitude, *loc.Longitude
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
