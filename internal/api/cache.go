package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/cache"
)

// CacheHandler serves resolution cache management endpoints.
type CacheHandler struct {
	resolver ResolverService
	cache    *cache.Cache
	log      *logrus.Logger
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(resolver ResolverService, c *cache.Cache, log *logrus.Logger) *CacheHandler {
	return &CacheHandler{resolver: resolver, cache: c, log: log}
}

// Clear handles DELETE /api/v1/cache — drops every cached resolution.
func (h *CacheHandler) Clear(c *gin.Context) {
	h.resolver.ClearAllCache()
	h.log.Info("resolution cache cleared")

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// ClearEntry handles DELETE /api/v1/cache/:type/:key — drops the cached
// resolution for one raw reference. The key is matched case-sensitively,
// exactly as it was resolved.
func (h *CacheHandler) ClearEntry(c *gin.Context) {
	typ, ok := pathEntityType(c)
	if !ok {
		return
	}

	key := c.Param("key")
	if err := validatePathID(key); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	h.resolver.ClearCacheEntry(typ, key)

	c.JSON(http.StatusOK, gin.H{"status": "cleared", "type": typ, "key": key})
}

// Stats handles GET /api/v1/cache/stats.
func (h *CacheHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.cache.Len()})
}
