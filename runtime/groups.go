package runtime

import (
	"sync"

	"huddle/domain"
	"huddle/repositories"
)

// GroupDirectory is the in-memory cache of chat groups. The durable store
// stays the source of truth; this cache is an eventually-consistent
// projection, hydrated from the store exactly once, on the first read that
// finds it empty.
type GroupDirectory struct {
	mu       sync.Mutex
	store    repositories.IGroupRepository
	groups   []domain.Group
	hydrated bool
}

func NewGroupDirectory(store repositories.IGroupRepository) *GroupDirectory {
	return &GroupDirectory{store: store}
}

// List returns the cached groups, hydrating from the store first if the
// cache has never been filled.
func (d *GroupDirectory) List() ([]domain.Group, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.hydrateLocked(); err != nil {
		return nil, err
	}
	out := make([]domain.Group, len(d.groups))
	copy(out, d.groups)
	return out, nil
}

func (d *GroupDirectory) hydrateLocked() error {
	if d.hydrated || len(d.groups) > 0 {
		return nil
	}
	groups, err := d.store.ListGroups()
	if err != nil {
		return err
	}
	d.groups = groups
	d.hydrated = true
	return nil
}

// Add caches a freshly persisted group. A cache that saw a write is
// considered hydrated: becoming empty again later must not trigger a
// second read of the store.
func (d *GroupDirectory) Add(group domain.Group) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hydrated = true
	d.groups = append(d.groups, group)
}

// Remove evicts a group from the cache by name.
func (d *GroupDirectory) Remove(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hydrated = true
	for i, group := range d.groups {
		if group.Name == name {
			d.groups = append(d.groups[:i], d.groups[i+1:]...)
			return
		}
	}
}
