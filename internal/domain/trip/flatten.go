package trip

import (
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

// ErrMalformedPolyline is returned when an encoded polyline cannot be decoded.
var ErrMalformedPolyline = errors.New("malformed encoded polyline")

// Flatten decodes every polyline of route in leg, step, sub-step order and
// concatenates the results. Boundary points shared by adjacent steps are kept.
// A nil route, a route without legs, and steps carrying neither a polyline nor
// sub-steps all contribute nothing.
func Flatten(route *Route) (Trip, error) {
	out := Trip{}
	if route == nil {
		return out, nil
	}

	for li, leg := range route.Legs {
		for si, step := range leg.Steps {
			if len(step.SubSteps) > 0 {
				for ki, sub := range step.SubSteps {
					points, err := Decode(sub.Polyline)
					if err != nil {
						return nil, fmt.Errorf("leg %d step %d sub-step %d: %w", li, si, ki, err)
					}
					out = append(out, points...)
				}
				continue
			}

			points, err := Decode(step.Polyline)
			if err != nil {
				return nil, fmt.Errorf("leg %d step %d: %w", li, si, err)
			}
			out = append(out, points...)
		}
	}
	return out, nil
}

// Decode decodes a Google encoded polyline (1e-5 precision). An empty string
// yields no coordinates.
func Decode(encoded string) ([]Coordinate, error) {
	if encoded == "" {
		return nil, nil
	}
	if err := validatePolyline(encoded); err != nil {
		return nil, err
	}
	path, err := maps.DecodePolyline(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPolyline, err)
	}

	coords := make([]Coordinate, len(path))
	for i, p := range path {
		coords[i] = Coordinate{Lat: p.Lat, Lng: p.Lng}
	}
	return coords, nil
}

// validatePolyline rejects input the decoder would silently truncate: bytes
// outside the '?'..'~' alphabet, a value cut off mid-chunk, or a latitude
// without its longitude.
func validatePolyline(encoded string) error {
	values := 0
	for i := 0; i < len(encoded); i++ {
		b := encoded[i]
		if b < 63 || b > 126 {
			return fmt.Errorf("%w: invalid byte %q at offset %d", ErrMalformedPolyline, b, i)
		}
		if b-63 < 0x20 {
			values++
		}
	}
	if last := encoded[len(encoded)-1]; last-63 >= 0x20 {
		return fmt.Errorf("%w: truncated value", ErrMalformedPolyline)
	}
	if values%2 != 0 {
		return fmt.Errorf("%w: odd number of values (%d)", ErrMalformedPolyline, values)
	}
	return nil
}

// Encode is the inverse of Decode.
func Encode(coords []Coordinate) string {
	path := make([]maps.LatLng, len(coords))
	for i, c := range coords {
		path[i] = maps.LatLng{Lat: c.Lat, Lng: c.Lng}
	}
	return maps.Encode(path)
}
