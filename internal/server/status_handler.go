package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleStatus serves counts through a short-lived cache so dashboard
// polling does not hit the database on every request. Refresh and delete
// both invalidate it.
func (s *Server) handleStatus(c *gin.Context) {
	if status, ok := s.statusCache.Get(statusCacheKey); ok {
		c.JSON(http.StatusOK, status)
		return
	}

	status, err := s.countrySvc.Status(c.Request.Context())
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	s.statusCache.Set(statusCacheKey, status, statusCacheTTL)
	c.JSON(http.StatusOK, status)
}
