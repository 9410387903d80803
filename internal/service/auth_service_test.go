package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/pkg/config"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

type fakeUserRepo struct {
	users       map[string]*models.User
	lastTouched string
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, appErrors.ErrInvalidCredentials
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id string) error {
	f.lastTouched = id
	return nil
}

func authFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*models.User{
		"user-1": {
			ID:           "user-1",
			Email:        "admin@campus.edu",
			PasswordHash: string(hash),
			FullName:     "Site Admin",
			Role:         models.RoleAdmin,
			Active:       true,
		},
		"user-2": {
			ID:           "user-2",
			Email:        "dormant@campus.edu",
			PasswordHash: string(hash),
			FullName:     "Dormant User",
			Role:         models.RoleStudent,
			Active:       false,
		},
	}}

	cfg := config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}
	return NewAuthService(repo, cfg, zap.NewNop()), repo
}

func TestAuthServiceLogin(t *testing.T) {
	svc, repo := authFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@campus.edu",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Equal(t, "user-1", repo.lastTouched)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@campus.edu",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@campus.edu",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dormant@campus.edu",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceRefreshToken(t *testing.T) {
	svc, _ := authFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@campus.edu",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	claims, err := svc.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := authFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@campus.edu",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.AccessToken,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateRejectsRefreshToken(t *testing.T) {
	svc, _ := authFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@campus.edu",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(login.RefreshToken)
	require.Error(t, err)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
