package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// EntityHandler serves entity catalog endpoints.
type EntityHandler struct {
	reader   CatalogReader
	writer   CatalogWriter
	resolver ResolverService
	log      *logrus.Logger
}

// NewEntityHandler creates an EntityHandler. writer may be nil in
// remote-catalog mode; mutation routes are only registered when it is
// present.
func NewEntityHandler(reader CatalogReader, writer CatalogWriter, resolver ResolverService, log *logrus.Logger) *EntityHandler {
	return &EntityHandler{reader: reader, writer: writer, resolver: resolver, log: log}
}

// List handles GET /api/v1/entities/:type. With a name or context.*
// filter it returns the coarse candidate pool; otherwise one page of
// the type.
func (h *EntityHandler) List(c *gin.Context) {
	typ, ok := pathEntityType(c)
	if !ok {
		return
	}

	name := c.Query("name")
	contextFields := contextFilters(c)

	var (
		entities []*models.Entity
		err      error
	)

	if name != "" || len(contextFields) > 0 {
		entities, err = h.reader.FetchByNameFilter(c.Request.Context(), typ, name, contextFields)
	} else {
		limit := parseInt(c.DefaultQuery("limit", "50"), 50)
		offset := parseOffset(c.DefaultQuery("offset", "0"))
		entities, err = h.reader.ListByType(c.Request.Context(), typ, limit, offset)
	}

	if err != nil {
		h.log.WithError(err).Error("listing entities")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	if entities == nil {
		entities = []*models.Entity{}
	}

	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

// Get handles GET /api/v1/entities/:type/:id.
func (h *EntityHandler) Get(c *gin.Context) {
	typ, ok := pathEntityType(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := validatePathID(id); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	e, err := h.reader.FetchByID(c.Request.Context(), typ, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "entity not found")

			return
		}

		h.log.WithError(err).Error("getting entity")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, e)
}

// Create handles POST /api/v1/entities.
func (h *EntityHandler) Create(c *gin.Context) {
	var req models.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	e, err := h.writer.CreateEntity(c.Request.Context(), &req)
	if err != nil {
		h.log.WithError(err).Error("creating entity")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.invalidate(e.Type, e.ID, e.Name)

	c.JSON(http.StatusCreated, e)
}

// Update handles PUT /api/v1/entities/:type/:id.
func (h *EntityHandler) Update(c *gin.Context) {
	typ, ok := pathEntityType(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := validatePathID(id); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.UpdateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	// Look up the old record first so a rename also drops the cache
	// entry keyed by the previous name.
	old, err := h.reader.FetchByID(c.Request.Context(), typ, id)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		h.log.WithError(err).Error("fetching entity before update")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	e, err := h.writer.UpdateEntity(c.Request.Context(), typ, id, &req)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "entity not found")

			return
		}

		h.log.WithError(err).Error("updating entity")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	if old != nil {
		h.invalidate(typ, old.ID, old.Name)
	}
	h.invalidate(typ, e.ID, e.Name)

	c.JSON(http.StatusOK, e)
}

// Delete handles DELETE /api/v1/entities/:type/:id.
func (h *EntityHandler) Delete(c *gin.Context) {
	typ, ok := pathEntityType(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := validatePathID(id); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	old, err := h.reader.FetchByID(c.Request.Context(), typ, id)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		h.log.WithError(err).Error("fetching entity before delete")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	if err := h.writer.DeleteEntity(c.Request.Context(), typ, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "entity not found")

			return
		}

		h.log.WithError(err).Error("deleting entity")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	name := ""
	if old != nil {
		name = old.Name
	}
	h.invalidate(typ, id, name)

	c.Status(http.StatusNoContent)
}

// invalidate drops the cached resolutions touching a mutated entity,
// plus the preloaded list for its type: the list is pinned for the
// session and would otherwise never show the mutation. Stale entries
// keyed by other raw spellings expire via TTL; mutations are rare
// compared to resolutions and a full flush would be worse.
func (h *EntityHandler) invalidate(typ models.EntityType, id, name string) {
	h.resolver.ClearCacheEntry(typ, id)
	if name != "" {
		h.resolver.ClearCacheEntry(typ, name)
	}
	h.resolver.ClearTypeList(typ)
}
