package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleRefresh(c *gin.Context) {
	result, err := s.refreshSvc.Run(c.Request.Context())
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	s.statusCache.Delete(statusCacheKey)

	c.JSON(http.StatusOK, gin.H{
		"message":           "Countries data refreshed successfully",
		"total_countries":   result.TotalCountries,
		"last_refreshed_at": result.CompletedAt,
	})
}
