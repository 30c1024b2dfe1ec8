package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/models"
	"github.com/rosterdesk/rosterdesk/internal/resolve"
)

// PreloadHandler serves entity-set preloading and relationship hydration.
type PreloadHandler struct {
	loader  PreloadService
	catalog CatalogReader
	log     *logrus.Logger
}

// NewPreloadHandler creates a PreloadHandler.
func NewPreloadHandler(loader PreloadService, cat CatalogReader, log *logrus.Logger) *PreloadHandler {
	return &PreloadHandler{loader: loader, catalog: cat, log: log}
}

// PreloadSet handles POST /api/v1/preload/:set.
func (h *PreloadHandler) PreloadSet(c *gin.Context) {
	set := resolve.EntitySet(c.Param("set"))
	if _, ok := resolve.EntitySetTypes(set); !ok {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown entity set")

		return
	}

	pageSize := parseInt(c.DefaultQuery("page_size", "0"), 0)
	dedupe := c.DefaultQuery("dedupe", "true") != "false"

	out, err := h.loader.PreloadEntitySet(c.Request.Context(), set, pageSize, dedupe)
	if err != nil {
		h.log.WithError(err).WithField("set", set).Error("preloading entity set")
		respondError(c, http.StatusBadGateway, ErrCodeInternalError, "preload failed")

		return
	}

	c.JSON(http.StatusOK, gin.H{"set": set, "entities": out})
}

// relationshipsRequest is the payload for POST /api/v1/relationships.
type relationshipsRequest struct {
	SourceType models.EntityType `json:"source_type"`
	IDs        []string          `json:"ids"`
	TargetType models.EntityType `json:"target_type,omitempty"`
	Dedupe     *bool             `json:"dedupe,omitempty"`
}

// LoadRelationships handles POST /api/v1/relationships: it fetches the
// named source entities and hydrates the entities their context fields
// reference.
func (h *PreloadHandler) LoadRelationships(c *gin.Context) {
	var req relationshipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if !models.IsKnownEntityType(req.SourceType) {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "unknown source entity type")

		return
	}
	if req.TargetType != "" && !models.IsKnownEntityType(req.TargetType) {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "unknown target entity type")

		return
	}
	if len(req.IDs) == 0 {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "ids must not be empty")

		return
	}

	entities := make([]*models.Entity, 0, len(req.IDs))
	for _, id := range req.IDs {
		e, err := h.catalog.FetchByID(c.Request.Context(), req.SourceType, id)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			h.log.WithError(err).Error("fetching relationship source")
			respondError(c, http.StatusBadGateway, ErrCodeInternalError, "catalog lookup failed")

			return
		}

		entities = append(entities, e)
	}

	dedupe := req.Dedupe == nil || *req.Dedupe

	out, err := h.loader.LoadRelationshipsForMultiple(c.Request.Context(), entities, req.SourceType, req.TargetType, dedupe)
	if err != nil {
		h.log.WithError(err).Error("loading relationships")
		respondError(c, http.StatusBadGateway, ErrCodeInternalError, "relationship load failed")

		return
	}

	c.JSON(http.StatusOK, gin.H{"relationships": out})
}
