package trip

import (
	"math"
	"strconv"

	"github.com/golang/geo/s2"
)

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371008.8

// Coordinate is an immutable latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the coordinate in the provider's "lat,lng" form.
func (c Coordinate) String() string {
	return FormatDegrees(c.Lat) + "," + FormatDegrees(c.Lng)
}

// IsValid reports whether the coordinate lies within WGS84 bounds.
func (c Coordinate) IsValid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lng) &&
		c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// DistanceTo returns the great-circle distance to other in meters.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	a := s2.LatLngFromDegrees(c.Lat, c.Lng)
	b := s2.LatLngFromDegrees(other.Lat, other.Lng)
	return a.Distance(b).Radians() * earthRadiusMeters
}

// FormatDegrees renders v as the shortest plain decimal that parses back to v.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
