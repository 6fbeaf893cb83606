package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type authServiceMock struct {
	registerResp *models.User
	registerErr  error
	loginResp    *models.LoginResponse
	loginErr     error
	adminResp    *models.LoginResponse
	adminErr     error
	lastRegister models.RegisterRequest
	lastAdmin    models.AdminLoginRequest
	adminCalled  bool
}

func (m *authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	m.lastRegister = req
	return m.registerResp, m.registerErr
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error) {
	m.adminCalled = true
	m.lastAdmin = req
	return m.adminResp, m.adminErr
}

func jsonContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &authServiceMock{registerResp: &models.User{ID: 12}}
	handler := NewAuthHandler(svc)

	c, w := jsonContext(t, http.MethodPost, "/reg", `{"name":"Ivan","surname":"Petrov","nick":"ivan","email":"ivan@example.com","phone":"+7000","password":"secret1","personalData":true,"privacyPolicy":true,"notifications":false}`)
	handler.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(12), body["userId"])
	assert.Equal(t, "ivan", svc.lastRegister.Nick)
	assert.True(t, svc.lastRegister.PersonalData)
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{registerErr: appErrors.Clone(appErrors.ErrAlreadyExists, "email or nick already taken")})

	c, w := jsonContext(t, http.MethodPost, "/reg", `{"name":"Ivan"}`)
	handler.Register(c)

	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "email or nick already taken", body["message"])
}

func TestAuthHandlerRegisterMalformedBody(t *testing.T) {
	svc := &authServiceMock{}
	handler := NewAuthHandler(svc)

	c, w := jsonContext(t, http.MethodPost, "/reg", `{"name":`)
	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.lastRegister.Name)
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{loginResp: &models.LoginResponse{
		User:      models.UserInfo{ID: 3, Nick: "ivan", Role: models.RoleUser},
		Token:     "token-value",
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}})

	c, w := jsonContext(t, http.MethodPost, "/auth", `{"email":"ivan@example.com","password":"secret1"}`)
	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "token-value", body["token"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ivan", user["nick"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials})

	c, w := jsonContext(t, http.MethodPost, "/auth", `{"email":"ivan@example.com","password":"wrong"}`)
	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerAdminEndpointsMapIdentifier(t *testing.T) {
	svc := &authServiceMock{adminResp: &models.LoginResponse{Token: "admin-token"}}
	handler := NewAuthHandler(svc)

	c, w := jsonContext(t, http.MethodPost, "/admin-auth", `{"email":"root@example.com","password":"pw"}`)
	handler.AdminAuth(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root@example.com", svc.lastAdmin.Identifier)

	c, w = jsonContext(t, http.MethodPost, "/admin-login", `{"username":"Admin","password":"pw"}`)
	handler.AdminLogin(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Admin", svc.lastAdmin.Identifier)
	assert.Equal(t, "pw", svc.lastAdmin.Password)
}

func TestAuthHandlerAdminLoginForbidden(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{adminErr: appErrors.ErrForbidden})

	c, w := jsonContext(t, http.MethodPost, "/admin-login", `{"username":"ivan","password":"secret1"}`)
	handler.AdminLogin(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
