//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	chaterrors "github.com/Tyrowin/cipherchat/internal/errors"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const userKeyPrefix = "user:"

type UserRepository interface {
	CreateUser(username, passwordHash string) (User, error)
	GetUser(username string) (User, error)
	SetPublicKey(username, publicKey string) error
}

// User is the stored account record. PublicKey is empty until the client
// uploads one.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	PublicKey    string    `json:"public_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BadgerUserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func userKey(username string) []byte {
	return []byte(userKeyPrefix + username)
}

// CreateUser persists a new user. Usernames are unique; a taken username
// yields errors.ErrUserAlreadyExists.
func (r *BadgerUserRepository) CreateUser(username, passwordHash string) (User, error) {
	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return chaterrors.ErrUserAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *BadgerUserRepository) GetUser(username string) (User, error) {
	var user User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, username)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// SetPublicKey replaces the user's public key.
func (r *BadgerUserRepository) SetPublicKey(username, publicKey string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, username)
		if err != nil {
			return err
		}
		user.PublicKey = publicKey
		user.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(userKey(username), data)
	})
}

func getUser(txn *badger.Txn, username string) (User, error) {
	item, err := txn.Get(userKey(username))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, chaterrors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}

	var user User
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &user)
	})
	if err != nil {
		return User{}, fmt.Errorf("unmarshal failed: %w", err)
	}
	return user, nil
}
