package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/middleware"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// Pagination guard rails.
const (
	maxPaginationLimit  = 1000
	maxPaginationOffset = 1_000_000
)

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		log.WithFields(fields).Info("request")
	}
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}

	if v > maxPaginationLimit {
		return maxPaginationLimit
	}

	return v
}

func parseOffset(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}

	if v > maxPaginationOffset {
		return maxPaginationOffset
	}

	return v
}

// validatePathID checks that a path parameter ID is non-empty and within length limits.
func validatePathID(id string) error {
	if id == "" {
		return fmt.Errorf("id must not be empty")
	}
	if len(id) > 255 {
		return fmt.Errorf("id exceeds maximum length of 255")
	}

	return nil
}

// pathEntityType validates the :type path parameter and reports the
// parsed type. On failure it writes the error response and returns false.
func pathEntityType(c *gin.Context) (models.EntityType, bool) {
	typ := models.EntityType(c.Param("type"))
	if !models.IsKnownEntityType(typ) {
		respondError(c, 400, ErrCodeInvalidRequest, fmt.Sprintf("unknown entity type %q", typ))

		return "", false
	}

	return typ, true
}

// contextFilters extracts "context.<field>" query parameters into a map.
func contextFilters(c *gin.Context) map[string]string {
	var out map[string]string
	for key, values := range c.Request.URL.Query() {
		field, ok := strings.CutPrefix(key, "context.")
		if !ok || field == "" || len(values) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[field] = values[0]
	}

	return out
}
