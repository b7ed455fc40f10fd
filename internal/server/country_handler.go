package server

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/geopulse/geopulse/internal/country/domain"
)

func (s *Server) handleListCountries(c *gin.Context) {
	countries, err := s.countrySvc.List(c.Request.Context(), domain.ListFilter{
		Region:   c.Query("region"),
		Currency: c.Query("currency"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		s.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  countries,
		"count": len(countries),
	})
}

func (s *Server) handleGetCountry(c *gin.Context) {
	country, err := s.countrySvc.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, country)
}

func (s *Server) handleDeleteCountry(c *gin.Context) {
	if err := s.countrySvc.DeleteByName(c.Request.Context(), c.Param("name")); err != nil {
		s.AbortWithError(c, err)
		return
	}
	s.statusCache.Delete(statusCacheKey)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSummaryImage(c *gin.Context) {
	path := s.renderer.Path()
	if _, err := os.Stat(path); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Summary image not found"})
		return
	}
	c.File(path)
}
