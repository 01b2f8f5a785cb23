package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness endpoints.
type HealthHandler struct {
	service   string
	exportDir string
	now       func() time.Time
}

// NewHealthHandler creates a new HealthHandler. exportDir is reported as a
// dependency of /health.
func NewHealthHandler(service, exportDir string) *HealthHandler {
	return &HealthHandler{service: service, exportDir: exportDir, now: time.Now}
}

// RegisterRoutes registers / and /health.
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
}

// Root handles GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Trip Directions MicroService is healthy at %s", h.now().Format(time.UnixDate))
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}

	if info, err := os.Stat(h.exportDir); err != nil {
		deps["export_dir"] = gin.H{"status": "down", "error": err.Error()}
		status = http.StatusServiceUnavailable
	} else if !info.IsDir() {
		deps["export_dir"] = gin.H{"status": "down", "error": "not a directory"}
		status = http.StatusServiceUnavailable
	} else {
		deps["export_dir"] = gin.H{"status": "up"}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"service":      h.service,
		"time":         h.now().UTC().Format(time.RFC3339),
		"dependencies": deps,
	})
}
