package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

type courseServiceMock struct {
	courses []models.Course
	err     error
}

func (m *courseServiceMock) ListActive(ctx context.Context) ([]models.Course, error) {
	return m.courses, m.err
}

func TestCourseHandlerList(t *testing.T) {
	handler := NewCourseHandler(&courseServiceMock{courses: []models.Course{{ID: 1, Name: "Go", IsActive: true}}})

	c, w := jsonContext(t, http.MethodGet, "/courses", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	courses, ok := body["courses"].([]interface{})
	require.True(t, ok)
	assert.Len(t, courses, 1)
}

func TestCourseHandlerListFailure(t *testing.T) {
	handler := NewCourseHandler(&courseServiceMock{err: errors.New("boom")})

	c, w := jsonContext(t, http.MethodGet, "/courses", "")
	handler.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}
