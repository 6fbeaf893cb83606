package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

const readinessTimeout = 3 * time.Second

type dbPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and database readiness probes.
type HealthHandler struct {
	db dbPinger
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db dbPinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health responds with a generic OK payload for liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Test godoc
// @Summary Smoke test
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /test [get]
func (h *HealthHandler) Test(c *gin.Context) {
	response.OK(c, "server is running", nil)
}

// CheckDB godoc
// @Summary Database connectivity check
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /check-db [get]
func (h *HealthHandler) CheckDB(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "database unreachable"))
		return
	}
	response.OK(c, "database connection ok", nil)
}

// Ready reports 503 until the database answers.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	if h.db == nil {
		return appErrors.Clone(appErrors.ErrPersistence, "database not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return h.db.PingContext(ctx)
}
