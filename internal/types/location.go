package types

// Location is an optional coordinate pair. Both fields must be present for
// the location to be usable; a missing field means "location unknown" and is
// never treated as (0,0).
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// NewLocation builds a Location with both coordinates set.
func NewLocation(lat, lon float64) Location {
	return Location{Latitude: &lat, Longitude: &lon}
}

// HasCoordinates reports whether both coordinates are present. It does not
// check ranges; see geo.IsValid for the full validity test.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}
