package services

import (
	"context"
	"fmt"
	"log/slog"

	"chat-pulse/auth"
	"chat-pulse/domain"
	"chat-pulse/errors"
	"chat-pulse/repositories"
)

type IAuthService interface {
	Register(ctx context.Context, input RegisterInput) (domain.User, Token, error)
	Login(ctx context.Context, id domain.UserID, password string) (domain.User, Token, error)
	ResolveAccount(ctx context.Context, id domain.UserID) (domain.User, error)
	TouchLastSeen(ctx context.Context, id domain.UserID)
}

type AuthService struct {
	storage repositories.Storage
	issuer  auth.TokenIssuer
	log     *slog.Logger
}

type Token string

type RegisterInput struct {
	Username string
	Avatar   string
	Bio      string
	Password string
}

func NewAuthService(storage repositories.Storage, issuer auth.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{storage: storage, issuer: issuer, log: log}
}

// Register creates an account. Without a password the account is a guest,
// it can still authenticate sessions by identity but cannot log in later.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, Token, error) {
	valReq := auth.RegisterRequest{
		Username: input.Username,
		Password: input.Password,
	}

	// Validate before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.User{}, "", err
	}

	// Hashing happens here to keep the repository unaware of plain passwords.
	var hashed string
	if input.Password != "" {
		var err error
		hashed, err = auth.HashPassword(input.Password)
		if err != nil {
			return domain.User{}, "", fmt.Errorf("hashing failed: %w", err)
		}
	}

	user, err := s.storage.CreateAccount(ctx, repositories.CreateUserInput{
		Username:     input.Username,
		Avatar:       input.Avatar,
		Bio:          input.Bio,
		Guest:        input.Password == "",
		PasswordHash: hashed,
	})
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.issuer.Generate(user.ID, user.Guest)
	if err != nil {
		return domain.User{}, "", err
	}

	s.log.Info("account registered", "user_id", user.ID, "guest", user.Guest)
	return user, Token(token), nil
}

func (s *AuthService) Login(ctx context.Context, id domain.UserID, password string) (domain.User, Token, error) {
	creds, err := s.storage.GetCredentials(ctx, id)
	if err != nil {
		// Generic error to prevent account enumeration
		return domain.User{}, "", errors.ErrNotAuthenticated
	}
	if creds.PasswordHash == "" {
		return domain.User{}, "", errors.ErrNotAuthenticated
	}

	match, err := auth.ComparePassword(password, creds.PasswordHash)
	if err != nil || !match {
		return domain.User{}, "", errors.ErrNotAuthenticated
	}

	user, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.issuer.Generate(user.ID, user.Guest)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, Token(token), nil
}

// ResolveAccount looks up the account behind a session auth claim and
// refreshes its last seen marker. Unknown identities surface ErrAccountUnknown.
func (s *AuthService) ResolveAccount(ctx context.Context, id domain.UserID) (domain.User, error) {
	user, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: user %d", errors.ErrAccountUnknown, id)
	}
	s.TouchLastSeen(ctx, id)
	return user, nil
}

// TouchLastSeen refreshes the last seen marker. Best effort: a stale marker
// is preferable to failing the flow that triggered the refresh.
func (s *AuthService) TouchLastSeen(ctx context.Context, id domain.UserID) {
	if err := s.storage.TouchLastSeen(ctx, id); err != nil {
		s.log.Warn("failed to refresh last seen", "user_id", id, "error", err)
	}
}
