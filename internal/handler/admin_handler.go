package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type adminApplicationService interface {
	ListForAdmin(ctx context.Context) ([]models.AdminApplication, error)
	TransitionStatus(ctx context.Context, req models.TransitionStatusRequest) (*models.StatusTransition, error)
	History(ctx context.Context, applicationID int64) ([]models.StatusHistoryEntry, error)
}

type applicationExporter interface {
	ExportApplications(ctx context.Context, rawFormat string) (*service.ExportResult, error)
}

// AdminHandler serves the administrator panel.
type AdminHandler struct {
	applications adminApplicationService
	exporter     applicationExporter
	now          func() time.Time
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(applications adminApplicationService, exporter applicationExporter) *AdminHandler {
	return &AdminHandler{applications: applications, exporter: exporter, now: time.Now}
}

// Test godoc
// @Summary Admin panel liveness
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin-test [get]
func (h *AdminHandler) Test(c *gin.Context) {
	response.OK(c, "admin panel is available", response.Fields{"timestamp": h.now().UTC().Format(time.RFC3339)})
}

// ListApplications godoc
// @Summary List all applications
// @Description Returns applications ordered new first. With format=csv or format=pdf the list is downloaded as a file.
// @Tags Admin
// @Produce json
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin-applications [get]
func (h *AdminHandler) ListApplications(c *gin.Context) {
	if format := strings.TrimSpace(c.Query("format")); format != "" {
		result, err := h.exporter.ExportApplications(c.Request.Context(), format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, result.Filename, result.ContentType, result.Payload)
		return
	}

	items, err := h.applications.ListForAdmin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", response.Fields{"applications": items})
}

// UpdateStatus godoc
// @Summary Change application status
// @Description Moves the application to newStatus and records the change in its history. When adminId is omitted the authenticated administrator is used.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body models.TransitionStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin-applications/{id}/status [put]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, err := positiveID(c.Param("id"), "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.ApplicationID = id
	if req.AdminID == nil {
		if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleAdmin {
			actor := claims.UserID
			req.AdminID = &actor
		}
	}

	result, err := h.applications.TransitionStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "status updated"
	if !result.Changed {
		message = "status unchanged"
	}
	response.OK(c, message, response.Fields{"data": result})
}

// History godoc
// @Summary Application status history
// @Tags Admin
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin-applications/{id}/history [get]
func (h *AdminHandler) History(c *gin.Context) {
	id, err := positiveID(c.Param("id"), "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.applications.History(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", response.Fields{"history": entries})
}
