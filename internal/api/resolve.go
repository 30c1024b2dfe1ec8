package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/models"
)

// ResolveHandler serves the resolution endpoints.
type ResolveHandler struct {
	resolver ResolverService
	batch    BatchService
	log      *logrus.Logger
}

// NewResolveHandler creates a ResolveHandler.
func NewResolveHandler(resolver ResolverService, batch BatchService, log *logrus.Logger) *ResolveHandler {
	return &ResolveHandler{resolver: resolver, batch: batch, log: log}
}

// resolveRequest is the payload for POST /api/v1/resolve.
type resolveRequest struct {
	Type     models.EntityType         `json:"entity_type"`
	IDOrName string                    `json:"id_or_name"`
	Options  *models.ResolutionOptions `json:"options,omitempty"`
}

// Resolve handles POST /api/v1/resolve.
func (h *ResolveHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if !models.IsKnownEntityType(req.Type) {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "unknown entity type")

		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), req.Type, req.IDOrName, req.Options)
	if err != nil {
		var rerr *models.ResolutionError
		if errors.As(err, &rerr) {
			status := http.StatusNotFound
			if rerr.Kind == models.ErrKindLookupFailed {
				status = http.StatusBadGateway
			}
			c.JSON(status, rerr)

			return
		}

		h.log.WithError(err).Error("resolving entity")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, res)
}

// batchRequest is the payload for POST /api/v1/resolve/batch.
type batchRequest struct {
	References      map[string]models.BatchRef `json:"references"`
	ThrowOnAnyError bool                       `json:"throw_on_any_error"`
}

// maxBatchRefs bounds one batch request.
const maxBatchRefs = 500

// ResolveBatch handles POST /api/v1/resolve/batch.
func (h *ResolveHandler) ResolveBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if len(req.References) > maxBatchRefs {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "too many references in one batch")

		return
	}

	for key, ref := range req.References {
		if !models.IsKnownEntityType(ref.Type) {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError,
				"unknown entity type for reference "+key)

			return
		}
	}

	result, err := h.batch.ResolveReferences(c.Request.Context(), req.References, req.ThrowOnAnyError)
	if err != nil {
		var berr *models.BatchError
		if errors.As(err, &berr) {
			// The partial result carries the per-reference errors; 207
			// tells the caller some references settled and some failed.
			c.JSON(http.StatusMultiStatus, result)

			return
		}

		h.log.WithError(err).Error("batch resolution")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, result)
}
