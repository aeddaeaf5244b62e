// Package domain contains core concepts of the messaging hub.
// This file defines Message records and related rules.
// Messages are immutable once stamped by the router.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat message.
// Group is empty for direct messages, which are never persisted.
type Message struct {
	ID        uuid.UUID
	Sender    string
	Group     string
	Content   string
	CreatedAt time.Time
}
