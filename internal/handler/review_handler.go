package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type reviewService interface {
	Submit(ctx context.Context, req models.SubmitReviewRequest) (*models.Review, error)
	ListForCourse(ctx context.Context, courseID int64) ([]models.CourseReview, error)
}

// ReviewHandler serves course reviews.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(svc reviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// Submit godoc
// @Summary Review a completed course
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body models.SubmitReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	review, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "review submitted", response.Fields{"reviewId": review.ID})
}

// ListForCourse godoc
// @Summary List visible reviews of a course
// @Tags Reviews
// @Produce json
// @Param courseId query int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /course-reviews [get]
func (h *ReviewHandler) ListForCourse(c *gin.Context) {
	courseID, err := positiveID(c.Query("courseId"), "courseId")
	if err != nil {
		response.Error(c, err)
		return
	}

	reviews, err := h.service.ListForCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", response.Fields{"reviews": reviews})
}
