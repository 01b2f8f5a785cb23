package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripdirections/service-directions/internal/domain/trip"
	"github.com/tripdirections/service-directions/internal/events"
	"github.com/tripdirections/service-directions/internal/export"
	"github.com/tripdirections/service-directions/pkg/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultPublishTimeout bounds how long a download waits on the broker.
const defaultPublishTimeout = 3 * time.Second

// DirectionsRequest holds the two free-text addresses of a trip.
type DirectionsRequest struct {
	Source      string `form:"source" binding:"required"`
	Destination string `form:"destination" binding:"required"`
}

// ExportRequest is a DirectionsRequest for a named vehicle.
type ExportRequest struct {
	DirectionsRequest
	VehicleName string `form:"vehicleName" binding:"required"`
}

// ExportResult describes a written directions file.
type ExportResult struct {
	ID         string
	File       *export.File
	PointCount int
	DistanceM  float64
}

// TripExporter stores trips as downloadable files.
type TripExporter interface {
	Write(ctx context.Context, name string, t trip.Trip) (*export.File, error)
	Open(f *export.File) (io.ReadCloser, error)
	Release(f *export.File)
}

// DirectionsService orchestrates geocoding, routing, flattening and export.
type DirectionsService struct {
	geocoder  trip.Geocoder
	router    trip.Router
	exporter  TripExporter
	publisher events.Publisher
	topic     string
	logger    *zap.Logger
	now       func() time.Time

	publishTimeout time.Duration
}

// NewDirectionsService creates a new DirectionsService. Export events are
// published to topic.
func NewDirectionsService(
	geocoder trip.Geocoder,
	router trip.Router,
	exporter TripExporter,
	publisher events.Publisher,
	topic string,
	logger *zap.Logger,
) *DirectionsService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if topic == "" {
		topic = events.TopicDirectionsEvents
	}
	return &DirectionsService{
		geocoder:  geocoder,
		router:    router,
		exporter:  exporter,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		now:       time.Now,

		publishTimeout: defaultPublishTimeout,
	}
}

// Geocode returns the provider's first candidate for address.
func (s *DirectionsService) Geocode(ctx context.Context, address string) (*trip.Place, error) {
	if strings.TrimSpace(address) == "" {
		return nil, domain.NewValidationError("address is required")
	}

	places, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		// A lookup cancelled because its sibling failed is not a failure of its own.
		if !domain.IsNotFound(err) && !errors.Is(err, context.Canceled) {
			s.logger.Error("geocoding failed", zap.String("address", address), zap.Error(err))
		}
		return nil, err
	}
	if len(places) == 0 {
		return nil, domain.NewNotFoundError("Address", address)
	}

	place := places[0]
	return &place, nil
}

// GetDirections geocodes source and destination, fetches the route between
// them and flattens it. A trip without a route is empty, not an error.
func (s *DirectionsService) GetDirections(ctx context.Context, req DirectionsRequest) (trip.Trip, error) {
	if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Destination) == "" {
		return nil, domain.NewValidationError("source and destination are required")
	}

	origin, destination, err := s.resolveEndpoints(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("trip endpoints geocoded",
		zap.String("source", req.Source),
		zap.String("source_latlng", origin.String()),
		zap.String("destination", req.Destination),
		zap.String("destination_latlng", destination.String()),
	)

	route, err := s.router.Directions(ctx, origin, destination)
	if err != nil {
		s.logger.Error("directions request failed",
			zap.String("source", req.Source),
			zap.String("destination", req.Destination),
			zap.Error(err),
		)
		return nil, err
	}
	if route == nil {
		s.logger.Info("no route found",
			zap.String("source", req.Source),
			zap.String("destination", req.Destination),
		)
		return trip.Trip{}, nil
	}

	flat, err := trip.Flatten(route)
	if err != nil {
		s.logger.Error("failed to decode route",
			zap.String("source", req.Source),
			zap.String("destination", req.Destination),
			zap.Error(err),
		)
		if errors.Is(err, trip.ErrMalformedPolyline) {
			return nil, domain.NewUpstreamError("provider returned an undecodable route", err)
		}
		return nil, domain.NewInternalError("failed to flatten route", err)
	}

	s.logger.Info("directions resolved",
		zap.String("source", req.Source),
		zap.String("destination", req.Destination),
		zap.Int("points", len(flat)),
		zap.Float64("distance_m", flat.DistanceMeters()),
	)
	return flat, nil
}

// ExportDirections writes the trip of req to a file. It returns nil without
// error and writes nothing when the trip is empty.
func (s *DirectionsService) ExportDirections(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if strings.TrimSpace(req.VehicleName) == "" {
		return nil, domain.NewValidationError("vehicleName is required")
	}

	flat, err := s.GetDirections(ctx, req.DirectionsRequest)
	if err != nil {
		return nil, err
	}
	if flat.IsEmpty() {
		return nil, nil
	}

	now := s.now()
	name := trip.ExportName(req.VehicleName, req.Source, req.Destination, now)
	file, err := s.exporter.Write(ctx, name, flat)
	if err != nil {
		s.logger.Error("failed to write directions file",
			zap.String("vehicle_name", req.VehicleName),
			zap.Error(err),
		)
		return nil, domain.NewInternalError("failed to write directions file", err)
	}

	result := &ExportResult{
		ID:         uuid.NewString(),
		File:       file,
		PointCount: len(flat),
		DistanceM:  flat.DistanceMeters(),
	}

	s.logger.Info("directions file exported",
		zap.String("export_id", result.ID),
		zap.String("vehicle_name", req.VehicleName),
		zap.String("file_name", file.Name),
		zap.Int("points", result.PointCount),
	)

	s.publishEvent(ctx, req.VehicleName, events.DirectionsFileExported, events.DirectionsExportedEvent{
		ExportID:    result.ID,
		VehicleName: req.VehicleName,
		Source:      req.Source,
		Destination: req.Destination,
		FileName:    file.Name,
		PointCount:  result.PointCount,
		DistanceM:   result.DistanceM,
		OccurredAt:  now.UTC(),
	})

	return result, nil
}

// OpenExport opens the file of an export for streaming.
func (s *DirectionsService) OpenExport(result *ExportResult) (io.ReadCloser, error) {
	r, err := s.exporter.Open(result.File)
	if err != nil {
		return nil, domain.NewInternalError("failed to open directions file", err)
	}
	return r, nil
}

// ReleaseExport is called once the export has been served.
func (s *DirectionsService) ReleaseExport(result *ExportResult) {
	if result == nil {
		return
	}
	s.exporter.Release(result.File)
}

// resolveEndpoints geocodes source and destination concurrently. The first
// failure cancels the other lookup.
func (s *DirectionsService) resolveEndpoints(ctx context.Context, req DirectionsRequest) (trip.Coordinate, trip.Coordinate, error) {
	var origin, destination trip.Coordinate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		place, err := s.Geocode(gctx, req.Source)
		if err != nil {
			return err
		}
		origin = place.Location
		return nil
	})
	g.Go(func() error {
		place, err := s.Geocode(gctx, req.Destination)
		if err != nil {
			return err
		}
		destination = place.Location
		return nil
	})
	if err := g.Wait(); err != nil {
		return trip.Coordinate{}, trip.Coordinate{}, err
	}
	return origin, destination, nil
}

func (s *DirectionsService) publishEvent(ctx context.Context, key, eventType string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = key

	// Publishing is best effort: it outlives a cancelled request but never
	// holds a download longer than publishTimeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.PublishEvent(ctx, s.topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", s.topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
