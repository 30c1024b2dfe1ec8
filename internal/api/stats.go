package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/cache"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// StatsHandler serves the catalog statistics endpoint.
type StatsHandler struct {
	counter CatalogWriter
	cache   *cache.Cache
	log     *logrus.Logger
}

// NewStatsHandler creates a StatsHandler. counter is nil in
// remote-catalog mode; entity counts are then omitted.
func NewStatsHandler(counter CatalogWriter, c *cache.Cache, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{counter: counter, cache: c, log: log}
}

// statsResponse is the JSON payload returned by the stats endpoint.
type statsResponse struct {
	Entities     map[models.EntityType]int `json:"entities,omitempty"`
	CacheEntries int                       `json:"cache_entries"`
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	resp := statsResponse{CacheEntries: h.cache.Len()}

	if h.counter != nil {
		counts, err := h.counter.CountByType(c.Request.Context())
		if err != nil {
			h.log.WithError(err).Error("stats: counting entities")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

			return
		}

		resp.Entities = counts
	}

	c.JSON(http.StatusOK, resp)
}
