package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tripdirections/service-directions/internal/domain/trip"
	"github.com/tripdirections/service-directions/pkg/domain"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// Statuses the Maps web services use for "nothing matched".
var notFoundStatuses = []string{"ZERO_RESULTS", "NOT_FOUND"}

// MapsClient is the subset of *maps.Client used by MapsRepository.
type MapsClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// NewMapsClient builds a Google Maps client. A non-empty baseURL replaces the
// public endpoint host.
func NewMapsClient(apiKey, baseURL string) (*maps.Client, error) {
	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{}),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// MapsRepository implements trip.Geocoder and trip.Router on top of the
// Google Maps web services.
type MapsRepository struct {
	client  MapsClient
	timeout time.Duration
	logger  *zap.Logger
}

// NewMapsRepository creates a new MapsRepository. Each provider call is bounded
// by timeout when it is positive.
func NewMapsRepository(client MapsClient, timeout time.Duration, logger *zap.Logger) *MapsRepository {
	return &MapsRepository{client: client, timeout: timeout, logger: logger}
}

var (
	_ trip.Geocoder = (*MapsRepository)(nil)
	_ trip.Router   = (*MapsRepository)(nil)
)

// Geocode resolves address to its candidate places in provider order.
func (r *MapsRepository) Geocode(ctx context.Context, address string) ([]trip.Place, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	results, err := r.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		if isNotFoundStatus(err) {
			return nil, domain.NewNotFoundErrorWrap("Address", address, err)
		}
		return nil, domain.NewUpstreamError("geocoding request failed", withContextCause(ctx, err))
	}
	if len(results) == 0 {
		return nil, domain.NewNotFoundError("Address", address)
	}

	places := make([]trip.Place, 0, len(results))
	for _, res := range results {
		place := toPlace(res)
		if !place.Location.IsValid() {
			return nil, domain.NewUpstreamError("geocoding returned an invalid location",
				fmt.Errorf("place %q at %s", place.PlaceID, place.Location))
		}
		places = append(places, place)
	}
	return places, nil
}

// Directions fetches the first driving route from origin to destination. It
// returns nil without error when the provider has no route.
func (r *MapsRepository) Directions(ctx context.Context, origin, destination trip.Coordinate) (*trip.Route, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	routes, _, err := r.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
	})
	if err != nil {
		if isNotFoundStatus(err) {
			r.logger.Debug("provider reported no route",
				zap.String("origin", origin.String()),
				zap.String("destination", destination.String()),
				zap.Error(err),
			)
			return nil, nil
		}
		return nil, domain.NewUpstreamError("directions request failed", withContextCause(ctx, err))
	}
	if len(routes) == 0 {
		return nil, nil
	}
	if len(routes) > 1 {
		r.logger.Debug("using first of several routes", zap.Int("routes", len(routes)))
	}
	route := toDomainRoute(&routes[0])
	if len(route.Legs) == 0 {
		return nil, nil
	}
	return route, nil
}

func (r *MapsRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// withContextCause makes a context failure visible through errors.Is even when
// the client library reports it as plain text.
func withContextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}

func isNotFoundStatus(err error) bool {
	msg := err.Error()
	for _, status := range notFoundStatuses {
		if strings.HasPrefix(msg, "maps: "+status) {
			return true
		}
	}
	return false
}

func toPlace(res maps.GeocodingResult) trip.Place {
	return trip.Place{
		FormattedAddress: res.FormattedAddress,
		PlaceID:          res.PlaceID,
		Location:         trip.Coordinate{Lat: res.Geometry.Location.Lat, Lng: res.Geometry.Location.Lng},
		LocationType:     res.Geometry.LocationType,
		Types:            res.Types,
		PartialMatch:     res.PartialMatch,
	}
}

func toDomainRoute(route *maps.Route) *trip.Route {
	out := &trip.Route{Legs: make([]trip.Leg, 0, len(route.Legs))}
	for _, leg := range route.Legs {
		if leg == nil {
			continue
		}
		domainLeg := trip.Leg{Steps: make([]trip.Step, 0, len(leg.Steps))}
		for _, step := range leg.Steps {
			if step == nil {
				continue
			}
			domainLeg.Steps = append(domainLeg.Steps, toDomainStep(step))
		}
		out.Legs = append(out.Legs, domainLeg)
	}
	return out
}

func toDomainStep(step *maps.Step) trip.Step {
	s := trip.Step{Polyline: step.Polyline.Points}
	for _, sub := range step.Steps {
		if sub == nil {
			continue
		}
		s.SubSteps = append(s.SubSteps, trip.SubStep{Polyline: sub.Polyline.Points})
	}
	return s
}
