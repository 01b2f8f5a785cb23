package events

import "time"

// Topics and event types published by the directions service.
const (
	TopicDirectionsEvents = "directions.events"

	DirectionsFileExported = "directions.file.exported"
)

// Source identifies this service in emitted CloudEvents.
const Source = "service-directions"

// DirectionsExportedEvent is emitted after a directions file was written.
type DirectionsExportedEvent struct {
	ExportID    string    `json:"export_id"`
	VehicleName string    `json:"vehicle_name"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	FileName    string    `json:"file_name"`
	PointCount  int       `json:"point_count"`
	DistanceM   float64   `json:"distance_m"`
	OccurredAt  time.Time `json:"occurred_at"`
}
