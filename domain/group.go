package domain

import "github.com/google/uuid"

// Group is a named, admin-owned chat room.
// Admin is the identity of the creator and the only one allowed to delete it.
type Group struct {
	ID    uuid.UUID
	Name  string
	Admin string
}
