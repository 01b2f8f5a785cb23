package trip

import "context"

// Place is one geocoding candidate for a free-text address.
type Place struct {
	FormattedAddress string     `json:"formatted_address"`
	PlaceID          string     `json:"place_id"`
	Location         Coordinate `json:"location"`
	LocationType     string     `json:"location_type,omitempty"`
	Types            []string   `json:"types,omitempty"`
	PartialMatch     bool       `json:"partial_match,omitempty"`
}

// Geocoder resolves addresses to candidate places.
type Geocoder interface {
	// Geocode returns the provider's candidates in ranking order. It returns a
	// not-found domain error when the address cannot be resolved and an
	// upstream domain error when the provider or transport fails.
	Geocode(ctx context.Context, address string) ([]Place, error)
}

// Router fetches driving routes between two coordinates.
type Router interface {
	// Directions returns the first route between origin and destination, or
	// nil with no error when the provider found no route.
	Directions(ctx context.Context, origin, destination Coordinate) (*Route, error)
}
