package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"huddle/domain"
	"huddle/domain/event"
	"huddle/errors"
)

// recordSink captures pushed events for assertions.
type recordSink struct {
	mu     sync.Mutex
	events []event.Event
}

func (s *recordSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordSink) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordSink) Targets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var targets []string
	for _, e := range s.events {
		targets = append(targets, e.Target())
	}
	return targets
}

func connectedUser(identity string) domain.ConnectedUser {
	return domain.ConnectedUser{Identity: identity, DisplayName: identity, Device: domain.DeviceWeb}
}

func TestSessionDirectory_Register_Once_Per_Identity(t *testing.T) {
	req := require.New(t)
	directory := NewSessionDirectory()
	sink := &recordSink{}

	// When an identity registers
	req.NoError(directory.Register(connectedUser("alice"), sink))

	// Then a second registration fails
	err := directory.Register(connectedUser("alice"), &recordSink{})
	req.ErrorIs(err, errors.ErrAlreadyConnected)

	// And the original entry survives
	member, ok := directory.Lookup("alice")
	req.True(ok)
	req.Same(sink, member.Sink.(*recordSink))
}

func TestSessionDirectory_Unregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	directory := NewSessionDirectory()

	req.NoError(directory.Register(connectedUser("alice"), &recordSink{}))
	directory.Unregister("alice")
	directory.Unregister("alice")
	directory.Unregister("never-registered")

	_, ok := directory.Lookup("alice")
	req.False(ok)
}

func TestSessionDirectory_SetCurrentGroup(t *testing.T) {
	req := require.New(t)
	directory := NewSessionDirectory()

	req.NoError(directory.Register(connectedUser("alice"), &recordSink{}))

	// When moving alice into a group
	req.NoError(directory.SetCurrentGroup("alice", "Team One"))
	member, _ := directory.Lookup("alice")
	req.Equal("Team One", member.User.CurrentGroup)

	// And back out
	req.NoError(directory.SetCurrentGroup("alice", ""))
	member, _ = directory.Lookup("alice")
	req.Empty(member.User.CurrentGroup)

	// Unknown identities report not connected
	req.ErrorIs(directory.SetCurrentGroup("ghost", "Team One"), errors.ErrNotConnected)
}

func TestSessionDirectory_ListByGroup(t *testing.T) {
	req := require.New(t)
	directory := NewSessionDirectory()

	for _, identity := range []string{"alice", "bob", "clara"} {
		req.NoError(directory.Register(connectedUser(identity), &recordSink{}))
	}
	req.NoError(directory.SetCurrentGroup("alice", "Team One"))
	req.NoError(directory.SetCurrentGroup("bob", "Team One"))
	req.NoError(directory.SetCurrentGroup("clara", "Team Two"))

	members := directory.ListByGroup("Team One")
	req.Len(members, 2)
	identities := []string{members[0].User.Identity, members[1].User.Identity}
	req.Contains(identities, "alice")
	req.Contains(identities, "bob")

	req.Empty(directory.ListByGroup("Team Three"))
	req.Len(directory.All(), 3)
}

func TestSessionDirectory_Concurrent_Register_And_Unregister(t *testing.T) {
	req := require.New(t)
	directory := NewSessionDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := string(rune('a' + n%26))
			_ = directory.Register(connectedUser(identity), &recordSink{})
			_ = directory.SetCurrentGroup(identity, "Team One")
			directory.ListByGroup("Team One")
			directory.Unregister(identity)
		}(i)
	}
	wg.Wait()

	req.Empty(directory.All())
}

func TestSessionDirectory_SwitchGroup_Snapshots_Both_Sides(t *testing.T) {
	req := require.New(t)
	directory := NewSessionDirectory()

	req.NoError(directory.Register(connectedUser("alice"), &recordSink{}))
	req.NoError(directory.Register(connectedUser("bob"), &recordSink{}))
	req.NoError(directory.SetCurrentGroup("alice", "Team One"))
	req.NoError(directory.SetCurrentGroup("bob", "Team Two"))

	// When alice switches from Team One to Team Two
	previous, oldPeers, newPeers, err := directory.SwitchGroup("alice", "Team Two")
	req.NoError(err)
	req.Equal("Team One", previous)

	// Then the departed side is empty and the joined side holds bob
	req.Empty(oldPeers)
	req.Len(newPeers, 1)
	req.Equal("bob", newPeers[0].User.Identity)

	member, _ := directory.Lookup("alice")
	req.Equal("Team Two", member.User.CurrentGroup)

	// Switching to the current group is a no-op with empty snapshots
	previous, oldPeers, newPeers, err = directory.SwitchGroup("alice", "Team Two")
	req.NoError(err)
	req.Equal("Team Two", previous)
	req.Empty(oldPeers)
	req.Empty(newPeers)

	// Unknown identities fail
	_, _, _, err = directory.SwitchGroup("ghost", "Team One")
	req.ErrorIs(err, errors.ErrNotConnected)
}

func TestSessionDirectory_Concurrent_Switches_See_Each_Other(t *testing.T) {
	req := require.New(t)

	// Two racing switches into the same group: the one the lock serializes
	// second must find the first in its joined-side snapshot. A run where
	// neither sees the other would mean the move and the snapshot were
	// separable.
	for i := 0; i < 500; i++ {
		directory := NewSessionDirectory()
		req.NoError(directory.Register(connectedUser("alice"), &recordSink{}))
		req.NoError(directory.Register(connectedUser("bob"), &recordSink{}))

		var wg sync.WaitGroup
		peers := make([][]Member, 2)
		errs := make([]error, 2)
		for n, identity := range []string{"alice", "bob"} {
			wg.Add(1)
			go func(n int, identity string) {
				defer wg.Done()
				_, _, peers[n], errs[n] = directory.SwitchGroup(identity, "Team One")
			}(n, identity)
		}
		wg.Wait()

		req.NoError(errs[0])
		req.NoError(errs[1])
		req.Equal(1, len(peers[0])+len(peers[1]))
	}
}

func TestSessionDirectory_UnregisterAndList_Is_One_Critical_Section(t *testing.T) {
	req := require.New(t)
	directory := NewSessionDirectory()

	req.NoError(directory.Register(connectedUser("alice"), &recordSink{}))
	req.NoError(directory.Register(connectedUser("bob"), &recordSink{}))
	req.NoError(directory.Register(connectedUser("clara"), &recordSink{}))
	req.NoError(directory.SetCurrentGroup("alice", "Team One"))
	req.NoError(directory.SetCurrentGroup("bob", "Team One"))

	removed, peers, ok := directory.UnregisterAndList("bob")
	req.True(ok)
	req.Equal("Team One", removed.User.CurrentGroup)
	req.Len(peers, 1)
	req.Equal("alice", peers[0].User.Identity)

	_, ok = directory.Lookup("bob")
	req.False(ok)

	// Absent identities report false, removing twice included
	_, _, ok = directory.UnregisterAndList("bob")
	req.False(ok)

	// A member with no group yields no peers
	removed, peers, ok = directory.UnregisterAndList("clara")
	req.True(ok)
	req.Empty(removed.User.CurrentGroup)
	req.Empty(peers)
}
