package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"huddle/domain"
	"huddle/errors"
)

// countingGroupStore is a hand-rolled store double tracking hydration reads.
type countingGroupStore struct {
	listCalls int
	groups    []domain.Group
}

func (s *countingGroupStore) CreateGroup(name, admin string) (domain.Group, error) {
	group := domain.Group{ID: uuid.New(), Name: name, Admin: admin}
	s.groups = append(s.groups, group)
	return group, nil
}

func (s *countingGroupStore) DeleteGroup(name, _ string) (domain.Group, error) {
	for i, group := range s.groups {
		if group.Name == name {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return group, nil
		}
	}
	return domain.Group{}, errors.ErrGroupNotFound
}

func (s *countingGroupStore) GroupByName(name string) (domain.Group, error) {
	for _, group := range s.groups {
		if group.Name == name {
			return group, nil
		}
	}
	return domain.Group{}, errors.ErrGroupNotFound
}

func (s *countingGroupStore) ListGroups() ([]domain.Group, error) {
	s.listCalls++
	out := make([]domain.Group, len(s.groups))
	copy(out, s.groups)
	return out, nil
}

func TestGroupDirectory_Hydrates_From_Store_Exactly_Once(t *testing.T) {
	req := require.New(t)
	store := &countingGroupStore{}
	_, _ = store.CreateGroup("Team One", "alice")
	directory := NewGroupDirectory(store)

	// First read hydrates
	groups, err := directory.List()
	req.NoError(err)
	req.Len(groups, 1)
	req.Equal(1, store.listCalls)

	// Later reads are served from the cache
	_, err = directory.List()
	req.NoError(err)
	req.Equal(1, store.listCalls)
}

func TestGroupDirectory_Empty_Store_Hydrates_Once_Too(t *testing.T) {
	req := require.New(t)
	store := &countingGroupStore{}
	directory := NewGroupDirectory(store)

	groups, err := directory.List()
	req.NoError(err)
	req.Empty(groups)

	_, err = directory.List()
	req.NoError(err)
	req.Equal(1, store.listCalls, "an empty result still counts as hydrated")
}

func TestGroupDirectory_Add_And_Remove(t *testing.T) {
	req := require.New(t)
	store := &countingGroupStore{}
	directory := NewGroupDirectory(store)

	group, _ := store.CreateGroup("Team One", "alice")
	directory.Add(group)

	groups, err := directory.List()
	req.NoError(err)
	req.Len(groups, 1)
	req.Zero(store.listCalls, "a primed cache never hydrates")

	directory.Remove("Team One")
	directory.Remove("Team One")

	groups, err = directory.List()
	req.NoError(err)
	req.Empty(groups)
}
