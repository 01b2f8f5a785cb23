package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripdirections/service-directions/pkg/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a single error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as JSON with status 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Pretty writes data as indented JSON with status 200.
func Pretty(c *gin.Context, data interface{}) {
	c.IndentedJSON(http.StatusOK, data)
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, string(domain.KindValidation), message)
}

// Error maps err to a status code using its domain kind and writes it.
// Internal errors never leak their cause to the client.
func Error(c *gin.Context, err error) {
	status := StatusFor(err)

	var de *domain.DomainError
	message := http.StatusText(status)
	code := string(domain.KindInternal)
	if errors.As(err, &de) {
		code = string(de.Kind)
		if de.Kind != domain.KindInternal {
			message = de.Message
		}
	}

	_ = c.Error(err)
	abort(c, status, code, message)
}

// StatusFor returns the HTTP status matching err.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUpstream:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}
