// Package account implements registration, login and public key exchange on
// top of the user store and the token issuer.
package account

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tyrowin/cipherchat/internal/auth"
	chaterrors "github.com/Tyrowin/cipherchat/internal/errors"
	"github.com/Tyrowin/cipherchat/internal/store"
)

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(username string) (string, error)
}

type Service struct {
	users  store.UserRepository
	tokens TokenIssuer
	log    *slog.Logger
}

func NewService(users store.UserRepository, tokens TokenIssuer, log *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: log}
}

// Register validates the request, hashes the password and stores the user.
func (s *Service) Register(creds auth.Credentials) (store.User, error) {
	// Validation runs before the comparatively expensive hashing.
	if err := auth.ValidateCredentials(creds); err != nil {
		return store.User{}, err
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return store.User{}, err
	}

	user, err := s.users.CreateUser(creds.Username, hash)
	if err != nil {
		return store.User{}, err
	}
	s.log.Info("User registered", "username", user.Username, "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and returns a signed token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(creds auth.Credentials) (string, error) {
	user, err := s.users.GetUser(creds.Username)
	if err != nil {
		if !errors.Is(err, chaterrors.ErrUserNotFound) {
			s.log.Error("User lookup failed", "username", creds.Username, "error", err)
		}
		return "", chaterrors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(creds.Password, user.PasswordHash)
	if err != nil || !match {
		return "", chaterrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("%w: %v", chaterrors.ErrTokenGeneration, err)
	}
	return token, nil
}

func (s *Service) UploadPublicKey(update auth.PublicKeyUpdate) error {
	if err := auth.ValidatePublicKeyUpdate(update); err != nil {
		return err
	}
	if err := s.users.SetPublicKey(update.Username, update.PublicKey); err != nil {
		return err
	}
	s.log.Info("Public key saved", "username", update.Username)
	return nil
}

// PublicKey returns the stored key, or errors.ErrPublicKeyNotFound when the
// user is unknown or has not uploaded one.
func (s *Service) PublicKey(username string) (string, error) {
	user, err := s.users.GetUser(username)
	if errors.Is(err, chaterrors.ErrUserNotFound) {
		return "", chaterrors.ErrPublicKeyNotFound
	}
	if err != nil {
		return "", err
	}
	if user.PublicKey == "" {
		return "", chaterrors.ErrPublicKeyNotFound
	}
	return user.PublicKey, nil
}
