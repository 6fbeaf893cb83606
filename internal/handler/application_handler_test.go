package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type applicationServiceMock struct {
	createResp *models.Application
	createErr  error
	listResp   []models.UserApplication
	listErr    error
	lastCreate models.CreateApplicationRequest
	lastUserID int64
	listCalled bool
}

func (m *applicationServiceMock) Create(ctx context.Context, req models.CreateApplicationRequest) (*models.Application, error) {
	m.lastCreate = req
	return m.createResp, m.createErr
}

func (m *applicationServiceMock) ListForUser(ctx context.Context, userID int64) ([]models.UserApplication, error) {
	m.listCalled = true
	m.lastUserID = userID
	return m.listResp, m.listErr
}

func TestApplicationHandlerCreate(t *testing.T) {
	svc := &applicationServiceMock{createResp: &models.Application{ID: 41, Status: models.StatusNew, CreatedAt: time.Now()}}
	handler := NewApplicationHandler(svc)

	c, w := jsonContext(t, http.MethodPost, "/applications", `{"userId":5,"courseId":2,"startDate":"2030-09-01","paymentMethod":"cash"}`)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(41), body["applicationId"])
	assert.Equal(t, int64(5), svc.lastCreate.UserID)
	assert.Equal(t, "cash", svc.lastCreate.PaymentMethod)
}

func TestApplicationHandlerCreatePastDate(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{createErr: appErrors.WithField(appErrors.ErrInvalidDate, "startDate", "")})

	c, w := jsonContext(t, http.MethodPost, "/applications", `{"userId":5,"courseId":2,"startDate":"2001-01-01","paymentMethod":"cash"}`)
	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, appErrors.ErrInvalidDate.Code, body["code"])
	assert.Equal(t, "startDate", body["field"])
}

func TestApplicationHandlerListForUser(t *testing.T) {
	rating := 5
	svc := &applicationServiceMock{listResp: []models.UserApplication{{ID: 1, Rating: &rating, HasReview: true}}}
	handler := NewApplicationHandler(svc)

	c, w := jsonContext(t, http.MethodGet, "/user-applications?userId=9", "")
	handler.ListForUser(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(9), svc.lastUserID)
	body := decodeBody(t, w)
	items, ok := body["applications"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestApplicationHandlerListForUserRequiresID(t *testing.T) {
	svc := &applicationServiceMock{}
	handler := NewApplicationHandler(svc)

	c, w := jsonContext(t, http.MethodGet, "/user-applications?userId=abc", "")
	handler.ListForUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.listCalled)
}
