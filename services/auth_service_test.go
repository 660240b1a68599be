package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-pulse/auth"
	"chat-pulse/domain"
	"chat-pulse/errors"
	"chat-pulse/mocks"
	"chat-pulse/repositories"

	"github.com/mama165/sdk-go/logs"
)

func newAuthService(storage repositories.Storage) *AuthService {
	issuer := auth.NewTokenIssuer("unit-test-secret", time.Hour)
	return NewAuthService(storage, issuer, logs.GetLoggerFromLevel(slog.LevelError))
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	svc := newAuthService(mockStorage)
	ctx := context.Background()

	t.Run("should register a guest without password", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			CreateAccount(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, input repositories.CreateUserInput) (domain.User, error) {
				req.True(input.Guest)
				req.Empty(input.PasswordHash)
				return domain.User{ID: 7, Username: input.Username, Guest: true}, nil
			}).
			Times(1)

		user, token, err := svc.Register(ctx, RegisterInput{Username: "alice_42"})

		req.NoError(err)
		req.Equal(domain.UserID(7), user.ID)
		req.NotEmpty(token)
	})

	t.Run("should hash the password before persisting", func(t *testing.T) {
		req := require.New(t)
		password := "ComplexPass123!"

		mockStorage.EXPECT().
			CreateAccount(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, input repositories.CreateUserInput) (domain.User, error) {
				req.False(input.Guest)
				req.NotEqual(password, input.PasswordHash)
				req.Contains(input.PasswordHash, "$argon2id$")
				return domain.User{ID: 8, Username: input.Username}, nil
			}).
			Times(1)

		_, token, err := svc.Register(ctx, RegisterInput{Username: "bob_99", Password: password})

		req.NoError(err)
		req.NotEmpty(token)
	})

	t.Run("should fail on invalid username without touching storage", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Times(0)

		_, token, err := svc.Register(ctx, RegisterInput{Username: "a b c"})

		req.ErrorIs(err, errors.ErrInvalidUsername)
		req.Empty(token)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Times(0)

		_, _, err := svc.Register(ctx, RegisterInput{Username: "alice_42", Password: "weakpassword1234"})

		req.ErrorIs(err, errors.ErrInvalidPassword)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	svc := newAuthService(mockStorage)
	ctx := context.Background()

	password := "ComplexPass123!"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	t.Run("should issue a token for matching credentials", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			GetCredentials(ctx, domain.UserID(7)).
			Return(repositories.Credentials{UserID: 7, PasswordHash: hash}, nil)
		mockStorage.EXPECT().
			GetAccount(ctx, domain.UserID(7)).
			Return(domain.User{ID: 7, Username: "alice_42"}, nil)

		user, token, err := svc.Login(ctx, 7, password)

		req.NoError(err)
		req.Equal(domain.UserID(7), user.ID)
		req.NotEmpty(token)
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			GetCredentials(ctx, domain.UserID(7)).
			Return(repositories.Credentials{UserID: 7, PasswordHash: hash}, nil)

		_, _, err := svc.Login(ctx, 7, "NotThePassword99!")

		req.ErrorIs(err, errors.ErrNotAuthenticated)
	})

	t.Run("should reject guests that never set a password", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			GetCredentials(ctx, domain.UserID(9)).
			Return(repositories.Credentials{UserID: 9}, nil)

		_, _, err := svc.Login(ctx, 9, password)

		req.ErrorIs(err, errors.ErrNotAuthenticated)
	})

	t.Run("should reject unknown accounts", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			GetCredentials(ctx, domain.UserID(404)).
			Return(repositories.Credentials{}, errors.ErrNotFound)

		_, _, err := svc.Login(ctx, 404, password)

		req.ErrorIs(err, errors.ErrNotAuthenticated)
	})
}

func TestAuthService_ResolveAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	svc := newAuthService(mockStorage)
	ctx := context.Background()

	t.Run("should resolve and refresh last seen", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			GetAccount(ctx, domain.UserID(7)).
			Return(domain.User{ID: 7, Username: "alice_42"}, nil)
		mockStorage.EXPECT().
			TouchLastSeen(ctx, domain.UserID(7)).
			Return(nil)

		user, err := svc.ResolveAccount(ctx, 7)

		req.NoError(err)
		req.Equal("alice_42", user.Username)
	})

	t.Run("should surface unknown identities", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			GetAccount(ctx, domain.UserID(404)).
			Return(domain.User{}, errors.ErrNotFound)

		_, err := svc.ResolveAccount(ctx, 404)

		req.ErrorIs(err, errors.ErrAccountUnknown)
	})
}
