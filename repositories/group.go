package repositories

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"huddle/domain"
	"huddle/errors"
)

type IGroupRepository interface {
	CreateGroup(name, admin string) (domain.Group, error)
	DeleteGroup(name, admin string) (domain.Group, error)
	GroupByName(name string) (domain.Group, error)
	ListGroups() ([]domain.Group, error)
}

type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) GroupRepository {
	return GroupRepository{db: db}
}

type diskGroup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Admin string `json:"admin"`
}

func groupKey(name string) []byte {
	return []byte("group:" + name)
}

// CreateGroup persists a new group owned by admin.
// The existence check and the write share one transaction, so two racing
// creates of the same name cannot both succeed.
func (g GroupRepository) CreateGroup(name, admin string) (domain.Group, error) {
	group := domain.Group{ID: uuid.New(), Name: name, Admin: admin}
	data, err := json.Marshal(fromDomainGroup(group))
	if err != nil {
		return domain.Group{}, err
	}

	err = g.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(groupKey(name)); err == nil {
			return errors.ErrDuplicateGroup
		}
		return txn.Set(groupKey(name), data)
	})
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// DeleteGroup removes the named group if and only if admin owns it.
// The two failure modes stay distinct here; callers fold them into a single
// denial before anything reaches a client.
func (g GroupRepository) DeleteGroup(name, admin string) (domain.Group, error) {
	var group domain.Group
	err := g.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(groupKey(name))
		if err != nil {
			return errors.ErrGroupNotFound
		}

		var disk diskGroup
		if err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		}); err != nil {
			return err
		}
		if disk.Admin != admin {
			return errors.ErrNotGroupAdmin
		}

		group, err = toDomainGroup(disk)
		if err != nil {
			return err
		}
		return txn.Delete(groupKey(name))
	})
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

func (g GroupRepository) GroupByName(name string) (domain.Group, error) {
	var disk diskGroup
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(groupKey(name))
		if err != nil {
			return errors.ErrGroupNotFound
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if err != nil {
		return domain.Group{}, err
	}
	return toDomainGroup(disk)
}

func (g GroupRepository) ListGroups() ([]domain.Group, error) {
	var groups []domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		prefix := []byte("group:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var disk diskGroup
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			group, err := toDomainGroup(disk)
			if err != nil {
				return err
			}
			groups = append(groups, group)
		}
		return nil
	})
	return groups, err
}

func fromDomainGroup(group domain.Group) diskGroup {
	return diskGroup{ID: group.ID.String(), Name: group.Name, Admin: group.Admin}
}

func toDomainGroup(disk diskGroup) (domain.Group, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Group{}, err
	}
	return domain.Group{ID: parsedID, Name: disk.Name, Admin: disk.Admin}, nil
}
