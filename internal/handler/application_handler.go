package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type applicationService interface {
	Create(ctx context.Context, req models.CreateApplicationRequest) (*models.Application, error)
	ListForUser(ctx context.Context, userID int64) ([]models.UserApplication, error)
}

// ApplicationHandler serves the applicant side of the enrollment workflow.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler constructs an ApplicationHandler.
func NewApplicationHandler(svc applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

// Create godoc
// @Summary Apply for a course
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body models.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	app, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "application submitted", response.Fields{"applicationId": app.ID})
}

// ListForUser godoc
// @Summary List a user's applications
// @Tags Applications
// @Produce json
// @Param userId query int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /user-applications [get]
func (h *ApplicationHandler) ListForUser(c *gin.Context) {
	userID, err := positiveID(c.Query("userId"), "userId")
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", response.Fields{"applications": items})
}
