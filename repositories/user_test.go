package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"huddle/errors"
)

func Test_CreateUser_And_Lookup(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	id, err := repository.CreateUser("alice", "Alice Lang", "hash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repository.GetUserByName("alice")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("Alice Lang", user.DisplayName)
	req.Equal("hash", user.PasswordHash)
	req.False(user.CreatedAt.IsZero())
}

func Test_CreateUser_Duplicate_Name(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice", "Alice Lang", "hash")
	req.NoError(err)

	_, err = repository.CreateUser("alice", "Another Alice", "hash")
	req.ErrorIs(err, errors.ErrUserExists)
}

func Test_GetUserByName_Unknown(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByName("ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
}
