package api

import (
	"alcyxob/coach-plans/internal/logging"
	"alcyxob/coach-plans/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string            `json:"error"`
	Code  service.ErrorKind `json:"code,omitempty"`
}

var kindStatus = map[service.ErrorKind]int{
	service.KindUnauthenticated: http.StatusUnauthorized,
	service.KindForbidden:       http.StatusForbidden,
	service.KindNotFound:        http.StatusNotFound,
	service.KindConflict:        http.StatusConflict,
	service.KindValidation:      http.StatusBadRequest,
	service.KindUnavailable:     http.StatusServiceUnavailable,
}

// respondError maps service error kinds to HTTP statuses. Anything else is
// logged and reported as a bare 500.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	kind := service.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		logger.Error().Err(err).
			Str("request_id", logging.RequestID(c)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: kind})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, kind service.ErrorKind, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message, Code: kind})
}

// bindJSON decodes the body and answers 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, service.KindValidation, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathObjectID parses an ObjectID path parameter, answering 400 on failure.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, service.KindValidation, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
