package repositories

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"huddle/errors"
)

type IUserRepository interface {
	CreateUser(name, displayName, passwordHash string) (string, error)
	GetUserByName(name string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

// User is the stored account record. Name is the stable identity used for
// directory lookups; DisplayName is what other users see.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func userKey(name string) []byte {
	return []byte("user:" + name)
}

// CreateUser persists a new account and returns its generated ID.
func (u UserRepository) CreateUser(name, displayName, passwordHash string) (string, error) {
	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(user)
	if err != nil {
		return "", err
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(name)); err == nil {
			return errors.ErrUserExists
		}
		return txn.Set(userKey(name), data)
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (u UserRepository) GetUserByName(name string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(name))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}
