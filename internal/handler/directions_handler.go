package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripdirections/service-directions/internal/application"
	"github.com/tripdirections/service-directions/pkg/response"
)

// DirectionsHandler handles HTTP requests for geocoding and directions.
type DirectionsHandler struct {
	service *application.DirectionsService
}

// NewDirectionsHandler creates a new DirectionsHandler.
func NewDirectionsHandler(service *application.DirectionsService) *DirectionsHandler {
	return &DirectionsHandler{service: service}
}

// RegisterRoutes registers all geocoding and directions routes.
func (h *DirectionsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/geoCode/:address", h.Geocode)

	directions := r.Group("/directions")
	{
		directions.GET("", h.GetDirections)
		directions.GET("/file", h.DownloadDirections)
		directions.GET("/geojson", h.GetDirectionsGeoJSON)
	}
}

// Geocode handles GET /geoCode/:address.
func (h *DirectionsHandler) Geocode(c *gin.Context) {
	place, err := h.service.Geocode(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Pretty(c, place)
}

// GetDirections handles GET /directions.
func (h *DirectionsHandler) GetDirections(c *gin.Context) {
	var req application.DirectionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.GetDirections(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DownloadDirections handles GET /directions/file.
func (h *DirectionsHandler) DownloadDirections(c *gin.Context) {
	var req application.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ExportDirections(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result == nil {
		response.NoContent(c)
		return
	}
	defer h.service.ReleaseExport(result)

	file, err := h.service.OpenExport(result)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() { _ = file.Close() }()

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.DataFromReader(http.StatusOK, result.File.Size, "application/octet-stream", file, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": result.File.Name}),
	})
}

// GetDirectionsGeoJSON handles GET /directions/geojson.
func (h *DirectionsHandler) GetDirectionsGeoJSON(c *gin.Context) {
	var req application.DirectionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.GetDirections(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.IsEmpty() {
		response.NoContent(c)
		return
	}

	body, err := application.TripFeatureCollection(req, result).MarshalJSON()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}
