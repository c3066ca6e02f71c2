package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"traffic-analyzer/internal/repository"
	"traffic-analyzer/internal/synth"
)

type HealthHandler struct {
	Seeds            repository.SeedRepository
	PlausibleEnabled bool
	SearchEnabled    bool
}

func NewHealthHandler(seeds repository.SeedRepository, plausibleEnabled, searchScrape bool) *HealthHandler {
	return &HealthHandler{Seeds: seeds, PlausibleEnabled: plausibleEnabled, SearchEnabled: searchScrape}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                   "healthy",
		"timestamp":                time.Now().UTC().Format(time.RFC3339),
		"plausible_api_configured": h.PlausibleEnabled,
		"search_scrape_enabled":    h.SearchEnabled,
		"cached_seeds":             h.Seeds.Count(),
		"version":                  synth.DerivationVersion,
	})
}
