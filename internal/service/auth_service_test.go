package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/password"
)

type mockAuthRepo struct {
	users     []*models.User
	taken     bool
	findErr   error
	createErr error
	created   []*models.User
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == identifier || u.Nick == identifier {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) EmailOrNickTaken(ctx context.Context, email, nick string) (bool, error) {
	return m.taken, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = int64(len(m.created) + 100)
	m.created = append(m.created, user)
	return nil
}

var testHasher = password.NewHasher(4)

func hashed(t *testing.T, plaintext string) string {
	t.Helper()
	h, err := testHasher.Hash(plaintext)
	require.NoError(t, err)
	return h
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, testHasher, validator.New(), zap.NewNop(), NewMetricsService(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "course-enrollment-api",
		SentinelLogin:     "Admin",
		SentinelPassword:  "sentinel-pass",
	})
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Name:          "Ann",
		Surname:       "Lee",
		Nick:          "ann",
		Email:         "ann@example.com",
		Phone:         "+10000000",
		Password:      "secret1",
		PersonalData:  true,
		PrivacyPolicy: true,
	}
}

func TestAuthServiceRegisterSuccess(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, testHasher.Verify("secret1", user.PasswordHash))
}

func TestAuthServiceRegisterRequiresConsent(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newTestAuthService(repo)

	req := validRegistration()
	req.PrivacyPolicy = false
	_, err := svc.Register(context.Background(), req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, repo.created)
}

func TestAuthServiceRegisterMissingField(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	req := validRegistration()
	req.Phone = "  "
	_, err := svc.Register(context.Background(), req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceRegisterEmailTaken(t *testing.T) {
	repo := &mockAuthRepo{taken: true}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), validRegistration())
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyExists))
	assert.Empty(t, repo.created)
}

func TestAuthServiceRegisterKeepsFieldFromStorage(t *testing.T) {
	repo := &mockAuthRepo{createErr: appErrors.WithField(appErrors.ErrAlreadyExists, "phone", "phone already in use")}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAlreadyExists.Code, appErr.Code)
	assert.Equal(t, "phone", appErr.Field)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{users: []*models.User{{ID: 5, Email: "ann@example.com", Nick: "ann", PasswordHash: hashed(t, "pw"), Role: models.RoleUser}}}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64(5), res.User.ID)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "pw"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{users: []*models.User{{ID: 5, Email: "ann@example.com", PasswordHash: hashed(t, "pw")}}}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ann@example.com", Password: "nope"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceAdminLoginSentinel(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{findErr: errors.New("must not be called")})

	res, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Identifier: "Admin", Password: "sentinel-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.SentinelAdminID, res.User.ID)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}

func TestAuthServiceAdminLoginSentinelDisabled(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, testHasher, nil, nil, nil, AuthConfig{AccessTokenSecret: "secret", SentinelLogin: "Admin"})

	_, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Identifier: "Admin", Password: ""})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.AdminLogin(context.Background(), models.AdminLoginRequest{Identifier: "Admin", Password: "anything"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceAdminLoginByNick(t *testing.T) {
	repo := &mockAuthRepo{users: []*models.User{{ID: 7, Email: "boss@example.com", Nick: "boss", PasswordHash: hashed(t, "pw"), Role: models.RoleAdmin}}}
	svc := newTestAuthService(repo)

	res, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Identifier: "boss", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.User.ID)
}

func TestAuthServiceAdminLoginRejectsRegularUser(t *testing.T) {
	repo := &mockAuthRepo{users: []*models.User{{ID: 5, Email: "ann@example.com", Nick: "ann", PasswordHash: hashed(t, "pw"), Role: models.RoleUser}}}
	svc := newTestAuthService(repo)

	_, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Identifier: "ann@example.com", Password: "pw"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	_, err := svc.ValidateToken("not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
