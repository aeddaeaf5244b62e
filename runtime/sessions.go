// Package runtime owns the hub's shared mutable state and coordination
// logic. It contains no transport or storage specifics.
package runtime

import (
	"sync"

	"huddle/contract"
	"huddle/domain"
	"huddle/errors"
)

// Member pairs a connected user snapshot with its transport sink.
type Member struct {
	User domain.ConnectedUser
	Sink contract.EventSink
}

type sessionEntry struct {
	user domain.ConnectedUser
	sink contract.EventSink
}

// SessionDirectory is the in-memory registry of connected users.
// It holds at most one entry per identity; the entry's CurrentGroup always
// mirrors the one broadcast subscription of that connection.
// All access is serialized behind a single RWMutex.
type SessionDirectory struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewSessionDirectory() *SessionDirectory {
	return &SessionDirectory{sessions: make(map[string]*sessionEntry)}
}

// Register inserts a new connection with no current group.
// A second registration for the same identity fails with ErrAlreadyConnected;
// callers treat that as an idempotent no-op, not a failure.
func (d *SessionDirectory) Register(user domain.ConnectedUser, sink contract.EventSink) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sessions[user.Identity]; ok {
		return errors.ErrAlreadyConnected
	}
	user.CurrentGroup = ""
	d.sessions[user.Identity] = &sessionEntry{user: user, sink: sink}
	return nil
}

// Unregister removes an identity. Removing an absent identity is a no-op.
func (d *SessionDirectory) Unregister(identity string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, identity)
}

// Lookup returns a snapshot of the identity's session.
func (d *SessionDirectory) Lookup(identity string) (Member, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.sessions[identity]
	if !ok {
		return Member{}, false
	}
	return Member{User: entry.user, Sink: entry.sink}, true
}

// SetCurrentGroup mutates the single matching entry.
func (d *SessionDirectory) SetCurrentGroup(identity, group string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.sessions[identity]
	if !ok {
		return errors.ErrNotConnected
	}
	entry.user.CurrentGroup = group
	return nil
}

// SwitchGroup moves an identity into a group and snapshots the membership
// of both the departed and the joined group inside the same critical
// section. Interleaving a concurrent transition between the move and
// either snapshot is therefore impossible: whichever of two racing
// switches lands second is guaranteed to see the first in its peer list.
// Both peer lists exclude the moving identity. Switching to the current
// group returns previous == group with empty peer lists.
func (d *SessionDirectory) SwitchGroup(identity, group string) (previous string, oldPeers, newPeers []Member, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.sessions[identity]
	if !ok {
		return "", nil, nil, errors.ErrNotConnected
	}
	previous = entry.user.CurrentGroup
	if previous == group {
		return previous, nil, nil, nil
	}

	if previous != "" {
		oldPeers = d.listByGroupLocked(previous, identity)
	}
	entry.user.CurrentGroup = group
	newPeers = d.listByGroupLocked(group, identity)
	return previous, oldPeers, newPeers, nil
}

// UnregisterAndList removes an identity and snapshots the remaining
// members of its group under one lock, so a racing join cannot slip
// between the removal and the snapshot.
func (d *SessionDirectory) UnregisterAndList(identity string) (Member, []Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.sessions[identity]
	if !ok {
		return Member{}, nil, false
	}
	removed := Member{User: entry.user, Sink: entry.sink}
	delete(d.sessions, identity)

	var peers []Member
	if removed.User.CurrentGroup != "" {
		peers = d.listByGroupLocked(removed.User.CurrentGroup, identity)
	}
	return removed, peers, true
}

func (d *SessionDirectory) listByGroupLocked(group, exclude string) []Member {
	var members []Member
	for _, entry := range d.sessions {
		if entry.user.CurrentGroup == group && entry.user.Identity != exclude {
			members = append(members, Member{User: entry.user, Sink: entry.sink})
		}
	}
	return members
}

// ListByGroup returns the members currently in a group,
// in directory iteration order.
func (d *SessionDirectory) ListByGroup(group string) []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var members []Member
	for _, entry := range d.sessions {
		if entry.user.CurrentGroup == group {
			members = append(members, Member{User: entry.user, Sink: entry.sink})
		}
	}
	return members
}

// All returns every connected member.
func (d *SessionDirectory) All() []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := make([]Member, 0, len(d.sessions))
	for _, entry := range d.sessions {
		members = append(members, Member{User: entry.user, Sink: entry.sink})
	}
	return members
}
