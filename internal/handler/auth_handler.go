package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register godoc
// @Summary Register a user
// @Description Creates an account with role user. Both consents must be given.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reg [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "user registered successfully", response.Fields{"userId": user.ID})
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeLogin(c, res)
}

// AdminAuth godoc
// @Summary Authenticate administrator by email
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body adminEmailLogin true "Admin credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin-auth [post]
func (h *AuthHandler) AdminAuth(c *gin.Context) {
	var payload adminEmailLogin
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	h.adminLogin(c, models.AdminLoginRequest{Identifier: payload.Email, Password: payload.Password})
}

// AdminLogin godoc
// @Summary Authenticate administrator by username
// @Description Accepts a nick, an email or the configured built-in administrator login.
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body adminUsernameLogin true "Admin credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin-login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var payload adminUsernameLogin
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	h.adminLogin(c, models.AdminLoginRequest{Identifier: payload.Username, Password: payload.Password})
}

type adminEmailLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminUsernameLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) adminLogin(c *gin.Context, req models.AdminLoginRequest) {
	res, err := h.service.AdminLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeLogin(c, res)
}

func writeLogin(c *gin.Context, res *models.LoginResponse) {
	response.JSON(c, http.StatusOK, "login successful", response.Fields{
		"user":      res.User,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}
