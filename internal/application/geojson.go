package application

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tripdirections/service-directions/internal/domain/trip"
)

// TripFeatureCollection renders t as a FeatureCollection holding a single
// LineString feature. GeoJSON positions are [lng, lat].
func TripFeatureCollection(req DirectionsRequest, t trip.Trip) *geojson.FeatureCollection {
	line := make(orb.LineString, len(t))
	for i, c := range t {
		line[i] = orb.Point{c.Lng, c.Lat}
	}

	feature := geojson.NewFeature(line)
	feature.Properties["source"] = req.Source
	feature.Properties["destination"] = req.Destination
	feature.Properties["point_count"] = len(t)
	feature.Properties["distance_m"] = t.DistanceMeters()

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)
	return fc
}
