package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"huddle/errors"
)

func Test_CreateGroup_Then_Duplicate_Fails(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openTestDB(t))

	// When creating a group
	group, err := repository.CreateGroup("Team One", "alice")
	req.NoError(err)
	req.Equal("Team One", group.Name)
	req.Equal("alice", group.Admin)

	// Then creating it again fails, whoever asks
	_, err = repository.CreateGroup("Team One", "bob")
	req.ErrorIs(err, errors.ErrDuplicateGroup)
}

func Test_DeleteGroup_Admin_Check(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openTestDB(t))

	_, err := repository.CreateGroup("Team One", "alice")
	req.NoError(err)

	// A non-admin cannot delete, and the row survives
	_, err = repository.DeleteGroup("Team One", "bob")
	req.ErrorIs(err, errors.ErrNotGroupAdmin)

	kept, err := repository.GroupByName("Team One")
	req.NoError(err)
	req.Equal("alice", kept.Admin)

	// The admin can
	deleted, err := repository.DeleteGroup("Team One", "alice")
	req.NoError(err)
	req.Equal(kept.ID, deleted.ID)

	_, err = repository.GroupByName("Team One")
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func Test_DeleteGroup_Unknown_Name(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openTestDB(t))

	_, err := repository.DeleteGroup("Nowhere Land", "alice")
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func Test_ListGroups(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openTestDB(t))

	_, err := repository.CreateGroup("Team One", "alice")
	req.NoError(err)
	_, err = repository.CreateGroup("Team Two", "bob")
	req.NoError(err)

	groups, err := repository.ListGroups()
	req.NoError(err)
	req.Len(groups, 2)

	names := []string{groups[0].Name, groups[1].Name}
	req.Contains(names, "Team One")
	req.Contains(names, "Team Two")
}
