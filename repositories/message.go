//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"huddle/domain"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	History(group string, limit int) ([]domain.Message, error)
	DeleteGroupMessages(group string) error
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored shape of a group message.
type diskMessage struct {
	ID      string `json:"id"`
	Group   string `json:"group"`
	Author  string `json:"author"`
	Content string `json:"content"`
	At      int64  `json:"at"`
}

// messageKey formats "msg:{group}:{timestamp_padded}:{uuid}" so that:
//  1. A prefix scan per group returns messages in chronological order
//     (19-digit zero padding keeps lexicographic and numeric order aligned).
//  2. The UUID suffix disambiguates two messages stamped the same nanosecond.
//
// Group names never contain ':' (validated as word characters and single
// spaces), so the separator is unambiguous.
func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		message.Group,
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func (m MessageRepository) StoreMessage(message domain.Message) error {
	bytes, err := json.Marshal(fromDomainMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message), bytes)
	})
}

// History returns the most recent limit messages of a group in chronological
// (oldest first) order. It scans the group's prefix backwards, stops after
// limit entries, and reverses the batch.
func (m MessageRepository) History(group string, limit int) ([]domain.Message, error) {
	var rawValues [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", group))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past every possible timestamp for this group.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(rawValues) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				rawValues = append(rawValues, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(rawValues))
	for i := len(rawValues) - 1; i >= 0; i-- {
		var disk diskMessage
		if err = json.Unmarshal(rawValues[i], &disk); err != nil {
			return nil, err
		}
		message, err := toDomainMessage(disk)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// DeleteGroupMessages drops the whole durable history of a group.
// Called when the group itself is deleted.
func (m MessageRepository) DeleteGroupMessages(group string) error {
	prefix := []byte(fmt.Sprintf("msg:%s:", group))

	var keys [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Debug("Deleting group history", "group", group, "messages", len(keys))
	return m.db.Update(func(txn *badger.Txn) error {
		return lo.Reduce(keys, func(agg error, key []byte, _ int) error {
			if agg != nil {
				return agg
			}
			return txn.Delete(key)
		}, nil)
	})
}

func fromDomainMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:      message.ID.String(),
		Group:   message.Group,
		Author:  message.Sender,
		Content: message.Content,
		At:      message.CreatedAt.UnixNano(),
	}
}

func toDomainMessage(disk diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		Group:     disk.Group,
		Sender:    disk.Author,
		Content:   disk.Content,
		CreatedAt: time.Unix(0, disk.At).UTC(),
	}, nil
}
