package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/geopulse/geopulse/internal/country/domain"
	obscontext "github.com/geopulse/geopulse/internal/observability/context"
	"github.com/geopulse/geopulse/internal/observability/logger"
	"github.com/geopulse/geopulse/internal/source"
	"go.uber.org/zap"
)

// validationError carries a client-facing message for a 400 response.
type validationError struct {
	message string
}

func (e *validationError) Error() string { return e.message }

func newValidationError(message string) error {
	return &validationError{message: message}
}

// AbortWithError translates domain errors into HTTP responses. Anything
// unrecognized becomes an opaque 500.
func (s *Server) AbortWithError(c *gin.Context, err error) {
	var vErr *validationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Country not found"})
	case errors.Is(err, domain.ErrInvalidSort):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": "sort must be one of gdp_asc, gdp_desc, population_asc, population_desc",
		})
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": vErr.message,
		})
	case source.SourceName(err) != "":
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":   "External data source unavailable",
			"details": "Could not fetch data from " + sourceLabel(err),
		})
	default:
		s.requestLogger(c).Error("request failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// requestLogger enriches the global logger with the active trace/span IDs
// and the request ID assigned by the access-log middleware.
func (s *Server) requestLogger(c *gin.Context) *zap.Logger {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	return log
}

func sourceLabel(err error) string {
	switch source.SourceName(err) {
	case source.NameCountries:
		return "restcountries API"
	case source.NameRates:
		return "exchange rate API"
	default:
		return "external API"
	}
}
