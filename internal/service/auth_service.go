package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLogin(ctx context.Context, identifier string) (*models.User, error)
	EmailOrNickTaken(ctx context.Context, email, nick string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	// SentinelLogin and SentinelPassword enable the built-in administrator when both are set.
	SentinelLogin    string
	SentinelPassword string
}

// AuthService provides registration and authentication use cases.
type AuthService struct {
	repo      authUserRepository
	hasher    passwordHasher
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, hasher passwordHasher, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{repo: repo, hasher: hasher, validator: validate, logger: logger, metrics: metrics, config: config, now: time.Now}
}

// Register creates a user account with role user.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Surname = strings.TrimSpace(req.Surname)
	req.Nick = strings.TrimSpace(req.Nick)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "all fields are required")
	}
	if !req.PersonalData || !req.PrivacyPolicy {
		return nil, appErrors.Clone(appErrors.ErrValidation, "consent to personal data processing and the privacy policy is required")
	}

	taken, err := s.repo.EmailOrNickTaken(ctx, req.Email, req.Nick)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to check existing users")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "a user with this email or nick already exists")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Surname:      req.Surname,
		Nick:         req.Nick,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Persistence(err, "failed to create user")
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.Bool("notifications", req.Notifications))
	return user, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (res *models.LoginResponse, err error) {
	defer func() { s.recordAttempt("login", err) }()

	if err = s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Persistence(err, "failed to fetch user")
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid password")
	}

	return s.issue(user)
}

// AdminLogin authenticates an administrator by email or nick. The configured sentinel
// credentials authenticate the built-in administrator without a database lookup.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (res *models.LoginResponse, err error) {
	defer func() { s.recordAttempt("admin_login", err) }()

	req.Identifier = strings.TrimSpace(req.Identifier)
	if err = s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "login and password are required")
	}

	if s.isSentinel(req.Identifier, req.Password) {
		s.logger.Info("sentinel administrator authenticated")
		return s.issue(sentinelAdmin(s.config.SentinelLogin))
	}

	user, err := s.repo.FindByLogin(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
		}
		return nil, appErrors.Persistence(err, "failed to fetch user")
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
	}
	if user.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "administrator access required")
	}

	return s.issue(user)
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) isSentinel(identifier, password string) bool {
	if s.config.SentinelLogin == "" || s.config.SentinelPassword == "" {
		return false
	}
	loginMatch := subtle.ConstantTimeCompare([]byte(identifier), []byte(s.config.SentinelLogin)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.SentinelPassword)) == 1
	return loginMatch && passwordMatch
}

func sentinelAdmin(login string) *models.User {
	return &models.User{
		ID:      models.SentinelAdminID,
		Name:    "System",
		Surname: "Administrator",
		Nick:    login,
		Role:    models.RoleAdmin,
	}
}

func (s *AuthService) issue(user *models.User) (*models.LoginResponse, error) {
	token, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.LoginResponse{User: user.Info(), Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	subject := strconv.FormatInt(user.ID, 10)
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Nick:   user.Nick,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) recordAttempt(flow string, err error) {
	outcome := "success"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	s.metrics.RecordAuthAttempt(flow, outcome)
}
