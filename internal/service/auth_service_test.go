package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hospital-admission/internal/models"
	"hospital-admission/internal/repository"
	"hospital-admission/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAuthService(t *testing.T) (*AuthService, *MockUserStore, *MockAuditStore) {
	t.Helper()
	utils.InitJWT("test-access", "test-refresh", time.Minute, time.Hour)

	ctrl := gomock.NewController(t)
	users := NewMockUserStore(ctrl)
	audit := NewMockAuditStore(ctrl)
	return NewAuthService(users, audit, zerolog.Nop()), users, audit
}

func TestAuthService_Login(t *testing.T) {
	svc, users, audit := newTestAuthService(t)

	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	users.EXPECT().FindUserByUsername(gomock.Any(), "nurse.joy").
		Return(&models.User{ID: 9, Username: "nurse.joy", PasswordHash: hash, Role: models.RoleNurse}, nil)

	var stored *models.RefreshToken
	users.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, token *models.RefreshToken) error {
			stored = token
			return nil
		})
	audit.EXPECT().CreateAuditLog(gomock.Any(), gomock.Any(), "user_login", gomock.Any()).Return(nil)

	resp, err := svc.Login(context.Background(), "nurse.joy", "correct-horse")
	require.NoError(t, err)

	assert.Equal(t, uint(9), resp.User.ID)
	assert.Equal(t, models.RoleNurse, resp.User.Role)
	require.NotNil(t, stored)
	assert.Equal(t, utils.HashRefreshToken(resp.RefreshToken), stored.TokenHash)

	claims, err := utils.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	users.EXPECT().FindUserByUsername(gomock.Any(), "nurse.joy").
		Return(&models.User{ID: 9, PasswordHash: hash}, nil)

	_, err = svc.Login(context.Background(), "nurse.joy", "battery-staple")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	users.EXPECT().FindUserByUsername(gomock.Any(), "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.Login(context.Background(), "ghost", "whatever-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Register_Taken(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	users.EXPECT().FindUserByUsername(gomock.Any(), "dr.who").Return(&models.User{ID: 1}, nil)

	_, err := svc.Register(context.Background(), "dr.who", "tardis-1963", models.RoleDoctor)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_Register(t *testing.T) {
	svc, users, audit := newTestAuthService(t)

	users.EXPECT().FindUserByUsername(gomock.Any(), "dr.who").Return(nil, repository.ErrNotFound)
	users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			assert.True(t, utils.ComparePassword(u.PasswordHash, "tardis-1963"))
			u.ID = 21
			return nil
		})
	users.EXPECT().CreateRefreshToken(gomock.Any(), gomock.Any()).Return(nil)
	audit.EXPECT().CreateAuditLog(gomock.Any(), gomock.Any(), "user_registration", gomock.Any()).Return(errors.New("ignored"))

	resp, err := svc.Register(context.Background(), "dr.who", "tardis-1963", models.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, uint(21), resp.User.ID)
	assert.Equal(t, models.RoleDoctor, resp.User.Role)
}

func TestAuthService_RefreshAccessToken(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	users.EXPECT().FindRefreshTokenByHash(gomock.Any(), utils.HashRefreshToken("opaque")).
		Return(&models.RefreshToken{
			ExpiresAt: time.Now().Add(time.Hour),
			User:      models.User{ID: 4, Role: models.RoleAdmin},
		}, nil)

	token, err := svc.RefreshAccessToken(context.Background(), "opaque")
	require.NoError(t, err)

	claims, err := utils.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthService_RefreshAccessToken_Expired(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	users.EXPECT().FindRefreshTokenByHash(gomock.Any(), gomock.Any()).
		Return(&models.RefreshToken{ExpiresAt: time.Now().Add(-time.Minute)}, nil)

	_, err := svc.RefreshAccessToken(context.Background(), "opaque")
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)
}

func TestAuthService_Logout(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	users.EXPECT().RevokeRefreshTokenByHash(gomock.Any(), utils.HashRefreshToken("opaque")).Return(nil)

	assert.NoError(t, svc.Logout(context.Background(), "opaque"))
}
