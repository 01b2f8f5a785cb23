//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/tripdirections/service-directions/internal/application"
	"github.com/tripdirections/service-directions/internal/domain/trip"
	"github.com/tripdirections/service-directions/internal/events"
	"github.com/tripdirections/service-directions/internal/export"
	"github.com/tripdirections/service-directions/internal/handler"
	"github.com/tripdirections/service-directions/internal/repository"
	"go.uber.org/zap"
)

const testTopic = "directions.events"

// testInfra holds shared test infrastructure.
type testInfra struct {
	KafkaBrokers []string
	Cleanup      func()
}

// directionsStack holds a wired-up directions service behind a gin router.
type directionsStack struct {
	Router          *gin.Engine
	ExportDir       string
	CleanupProducer func()
}

// setupContainers starts a Kafka testcontainer.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, testTopic)

	cleanup := func() {
		if err := testcontainers.TerminateContainer(kafkaContainer); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	}

	return &testInfra{
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// fakeMapsServer answers geocoding for the given addresses and returns a
// one-step route along path for every directions request.
func fakeMapsServer(t *testing.T, addresses map[string]trip.Coordinate, path []trip.Coordinate) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/geocode/json"):
			c, ok := addresses[r.URL.Query().Get("address")]
			if !ok {
				fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
				return
			}
			fmt.Fprintf(w, `{"status":"OK","results":[{"place_id":"p","geometry":{"location":{"lat":%v,"lng":%v}}}]}`, c.Lat, c.Lng)
		case strings.HasSuffix(r.URL.Path, "/directions/json"):
			points := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(trip.Encode(path))
			fmt.Fprintf(w, `{"status":"OK","routes":[{"legs":[{"steps":[{"polyline":{"points":"%s"}}]}]}]}`, points)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupDirectionsStack wires up the full directions service stack.
func setupDirectionsStack(t *testing.T, mapsURL string, brokers []string) *directionsStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	gin.SetMode(gin.TestMode)

	client, err := repository.NewMapsClient("integration-key", mapsURL)
	require.NoError(t, err)
	mapsRepo := repository.NewMapsRepository(client, 5*time.Second, logger)

	dir := t.TempDir()
	writer, err := export.NewWriter(dir, false, logger)
	require.NoError(t, err)

	producer := events.NewProducer(brokers, logger)
	svc := application.NewDirectionsService(mapsRepo, mapsRepo, writer, producer, testTopic, logger)

	router := gin.New()
	router.UseRawPath = true
	handler.NewHealthHandler("service-directions", dir).RegisterRoutes(router)
	handler.NewDirectionsHandler(svc).RegisterRoutes(&router.RouterGroup)

	return &directionsStack{
		Router:          router,
		ExportDir:       dir,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) events.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := events.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
