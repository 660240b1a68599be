package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"chat-pulse/domain"
	"chat-pulse/errors"

	"github.com/dgraph-io/badger/v4"
)

// diskUser is the stored shape of an account. The password hash never leaves
// the repository layer.
type diskUser struct {
	domain.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

func userKey(id domain.UserID) string {
	return fmt.Sprintf("user:%09d", id)
}

func (s *BadgerStorage) CreateAccount(_ context.Context, input CreateUserInput) (domain.User, error) {
	id, err := s.nextID(s.userSeq)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:        domain.UserID(id),
		Username:  input.Username,
		Avatar:    input.Avatar,
		Bio:       input.Bio,
		Guest:     input.Guest,
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := s.setJSON(userKey(user.ID), diskUser{User: user, PasswordHash: input.PasswordHash}); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *BadgerStorage) GetAccount(_ context.Context, id domain.UserID) (domain.User, error) {
	var stored diskUser
	if err := s.getJSON(userKey(id), &stored); err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return domain.User{}, fmt.Errorf("user %d: %w", id, errors.ErrNotFound)
		}
		return domain.User{}, err
	}
	return stored.User, nil
}

func (s *BadgerStorage) GetCredentials(_ context.Context, id domain.UserID) (Credentials, error) {
	var stored diskUser
	if err := s.getJSON(userKey(id), &stored); err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return Credentials{}, fmt.Errorf("user %d: %w", id, errors.ErrNotFound)
		}
		return Credentials{}, err
	}
	return Credentials{UserID: stored.ID, PasswordHash: stored.PasswordHash}, nil
}

func (s *BadgerStorage) TouchLastSeen(ctx context.Context, id domain.UserID) error {
	var stored diskUser
	if err := s.getJSON(userKey(id), &stored); err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("user %d: %w", id, errors.ErrNotFound)
		}
		return err
	}
	stored.LastSeen = time.Now().UTC()
	return s.setJSON(userKey(id), stored)
}
