//go:build integration

package main_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdirections/service-directions/internal/domain/trip"
	"github.com/tripdirections/service-directions/internal/events"
)

// TestDirectionsFile_PublishesExportEvent verifies that downloading a
// directions file streams the flattened trip, removes the file afterwards and
// publishes a directions.file.exported event to Kafka.
func TestDirectionsFile_PublishesExportEvent(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	path := []trip.Coordinate{{Lat: 3.139, Lng: 101.6869}, {Lat: 3.145, Lng: 101.695}, {Lat: 3.15, Lng: 101.71}}
	maps := fakeMapsServer(t, map[string]trip.Coordinate{
		"KL Sentral":    path[0],
		"Bukit Bintang": path[len(path)-1],
	}, path)

	stack := setupDirectionsStack(t, maps.URL, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/directions/file?source=KL+Sentral&destination=Bukit+Bintang&vehicleName=van-7", nil)
	stack.Router.ServeHTTP(w, req)

	// Assert: the file body holds one line per coordinate.
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, len(path))
	assert.Equal(t, `lat="3.139" lng="101.6869"`, lines[0])

	disposition := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, "attachment; filename=van-7_KL-Sentral_Bukit-Bintang_"), disposition)

	// Assert: the served file was cleaned up.
	entries, err := os.ReadDir(stack.ExportDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Assert: DirectionsExportedEvent on directions.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, testTopic, events.DirectionsFileExported, 15*time.Second)

	var exported events.DirectionsExportedEvent
	require.NoError(t, ce.ParseData(&exported))
	assert.Equal(t, "van-7", exported.VehicleName)
	assert.Equal(t, "KL Sentral", exported.Source)
	assert.Equal(t, "Bukit Bintang", exported.Destination)
	assert.Equal(t, len(path), exported.PointCount)
	assert.Greater(t, exported.DistanceM, 0.0)
	assert.Equal(t, strings.TrimPrefix(disposition, "attachment; filename="), exported.FileName)
}

// TestDirectionsFile_UnknownAddress verifies that an address the provider
// cannot resolve yields 404 and publishes nothing.
func TestDirectionsFile_UnknownAddress(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	maps := fakeMapsServer(t, map[string]trip.Coordinate{"KL Sentral": {Lat: 3.139, Lng: 101.6869}}, nil)
	stack := setupDirectionsStack(t, maps.URL, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/directions/file?source=KL+Sentral&destination=Atlantis&vehicleName=van-7", nil)
	stack.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Atlantis")
}
