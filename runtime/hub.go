package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"huddle/contract"
	"huddle/domain"
	"huddle/domain/event"
	"huddle/errors"
	"huddle/moderation"
	"huddle/projection"
	"huddle/repositories"
	"huddle/sanitize"
)

// Accept letters, digits, underscores, and single spaces between words.
var groupNamePattern = regexp.MustCompile(`^\w+( \w+)*$`)

const (
	minGroupNameLength = 5
	maxGroupNameLength = 100
	maxContentLength   = 500
)

// Hub coordinates presence, membership and message routing for every live
// connection. The durable store stays authoritative for groups and history;
// the two directories are the only shared mutable state, each behind its own
// lock. Failures never propagate past the invoking operation.
type Hub struct {
	log      *slog.Logger
	sessions *SessionDirectory
	groups   *GroupDirectory
	users    repositories.IUserRepository
	store    repositories.IGroupRepository
	messages repositories.IMessageRepository
	censor   *moderation.Moderator
	clock    Clock

	historyLimit int

	// routeMu serializes persist-then-broadcast of group messages so that
	// delivery order always matches storage order.
	routeMu chan struct{}
}

func NewHub(
	log *slog.Logger,
	sessions *SessionDirectory,
	groups *GroupDirectory,
	users repositories.IUserRepository,
	store repositories.IGroupRepository,
	messages repositories.IMessageRepository,
	censor *moderation.Moderator,
	historyLimit int,
) *Hub {
	routeMu := make(chan struct{}, 1)
	routeMu <- struct{}{}
	return &Hub{
		log:          log,
		sessions:     sessions,
		groups:       groups,
		users:        users,
		store:        store,
		messages:     messages,
		censor:       censor,
		historyLimit: historyLimit,
		routeMu:      routeMu,
	}
}

// Connect registers a live connection and pushes the caller's profile.
// Connecting an identity that is already registered is a no-op registration,
// not a failure: the existing entry is kept and the profile is sent again.
func (h *Hub) Connect(ctx context.Context, identity string, device domain.DeviceClass, sink contract.EventSink) error {
	user, err := h.users.GetUserByName(identity)
	if err != nil {
		return fmt.Errorf("resolving identity %q: %w", identity, err)
	}

	connected := domain.ConnectedUser{
		Identity:    identity,
		DisplayName: user.DisplayName,
		Device:      device,
	}
	if err := h.sessions.Register(connected, sink); err != nil {
		h.log.Debug("Identity already connected, keeping existing session", "identity", identity)
	}

	h.push(ctx, sink, event.Profile{Info: event.ProfileInfo{
		DisplayName: user.DisplayName,
		Username:    identity,
	}})
	return nil
}

// Disconnect removes the identity from the directory and tells the other
// members of its current group to drop it from their lists. Safe to call on
// every exit path, including abnormal transport termination.
func (h *Hub) Disconnect(ctx context.Context, identity string) {
	member, peers, ok := h.sessions.UnregisterAndList(identity)
	if !ok || member.User.CurrentGroup == "" {
		return
	}
	view := projection.ToUserView(member.User)
	for _, peer := range peers {
		h.push(ctx, peer.Sink, event.UserRemoved{User: view})
	}
}

// Join moves the caller into a group. Joining the current group is a no-op.
// Switching groups first tells the old group's other members the caller left,
// then tells the new group's other members it arrived; the caller is never
// notified about itself. A nonexistent target leaves state untouched.
func (h *Hub) Join(ctx context.Context, identity, group string) error {
	member, ok := h.sessions.Lookup(identity)
	if !ok {
		return errors.ErrNotConnected
	}
	if member.User.CurrentGroup == group {
		return nil
	}

	// The store is authoritative; the cache may not have seen this group yet.
	if _, err := h.store.GroupByName(group); err != nil {
		return fmt.Errorf("joining %q: %w", group, err)
	}

	// The transition and both membership snapshots happen in one critical
	// section, so racing joins always see each other in some serial order.
	previous, oldPeers, newPeers, err := h.sessions.SwitchGroup(identity, group)
	if err != nil {
		return err
	}
	if previous == group {
		return nil
	}

	if previous != "" {
		departed := member.User
		departed.CurrentGroup = previous
		view := projection.ToUserView(departed)
		for _, peer := range oldPeers {
			h.push(ctx, peer.Sink, event.UserRemoved{User: view})
		}
	}

	joined := member.User
	joined.CurrentGroup = group
	view := projection.ToUserView(joined)
	for _, peer := range newPeers {
		h.push(ctx, peer.Sink, event.UserAdded{User: view})
	}
	return nil
}

// Leave drops the caller's subscription to the named group.
// Always succeeds; leaving a group the caller is not in changes nothing.
func (h *Hub) Leave(_ context.Context, identity, group string) {
	member, ok := h.sessions.Lookup(identity)
	if !ok || member.User.CurrentGroup != group {
		return
	}
	_ = h.sessions.SetCurrentGroup(identity, "")
}

// SendPrivate routes a direct message to one online recipient. Unknown or
// offline recipients and blank bodies are dropped without feedback; the
// sender receives a copy of every delivered message. Never persisted.
func (h *Hub) SendPrivate(ctx context.Context, identity, recipient, body string) {
	target, ok := h.sessions.Lookup(recipient)
	if !ok {
		return
	}
	sender, ok := h.sessions.Lookup(identity)
	if !ok {
		return
	}
	if strings.TrimSpace(body) == "" {
		return
	}

	message := domain.Message{
		Sender:    identity,
		Content:   h.censor.Censor(sanitize.Clean(body)),
		CreatedAt: h.clock.Now(),
	}
	view := projection.ToMessageView(message, sender.User.DisplayName)
	h.push(ctx, target.Sink, event.NewMessage{Message: view})
	h.push(ctx, sender.Sink, event.NewMessage{Message: view})
}

// SendToGroup validates, persists, and fans out one group message.
// The broadcast happens strictly after the append to storage, in the same
// order, for every subscriber of the group at that instant.
func (h *Hub) SendToGroup(ctx context.Context, identity, group, body string) error {
	user, err := h.users.GetUserByName(identity)
	if err != nil {
		return fmt.Errorf("resolving sender %q: %w", identity, err)
	}
	stored, err := h.store.GroupByName(group)
	if err != nil {
		return fmt.Errorf("resolving group %q: %w", group, err)
	}

	if strings.TrimSpace(body) == "" {
		return nil
	}
	if utf8.RuneCountInString(body) > maxContentLength {
		return errors.ErrMessageTooLong
	}

	select {
	case <-h.routeMu:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { h.routeMu <- struct{}{} }()

	message := domain.Message{
		ID:        uuid.New(),
		Sender:    identity,
		Group:     stored.Name,
		Content:   h.censor.Censor(sanitize.Clean(body)),
		CreatedAt: h.clock.Now(),
	}
	if err := h.messages.StoreMessage(message); err != nil {
		return fmt.Errorf("persisting message: %w", err)
	}

	view := projection.ToMessageView(message, user.DisplayName)
	for _, peer := range h.sessions.ListByGroup(stored.Name) {
		h.push(ctx, peer.Sink, event.NewMessage{Message: view})
	}
	return nil
}

// CreateGroup validates the name, persists the group with the caller as
// admin, and announces it to every connected user; the group list is global.
func (h *Hub) CreateGroup(ctx context.Context, identity, name string) error {
	if !groupNamePattern.MatchString(name) {
		return errors.ErrInvalidGroupName
	}
	if length := utf8.RuneCountInString(name); length < minGroupNameLength || length > maxGroupNameLength {
		return errors.ErrInvalidGroupLength
	}

	group, err := h.store.CreateGroup(name, identity)
	if err != nil {
		return err
	}
	h.groups.Add(group)

	view := projection.ToGroupView(group)
	for _, peer := range h.sessions.All() {
		h.push(ctx, peer.Sink, event.GroupAdded{Group: view})
	}
	return nil
}

// DeleteGroup removes a group owned by the caller. Current members are told
// the group is gone and evicted back to the no-group state, then every
// connected user gets the updated group list entry removal.
func (h *Hub) DeleteGroup(ctx context.Context, identity, name string) error {
	group, err := h.store.DeleteGroup(name, identity)
	if err != nil {
		return err
	}

	if err := h.messages.DeleteGroupMessages(name); err != nil {
		h.log.Warn("History cleanup failed after group deletion", "group", name, "error", err)
	}
	h.groups.Remove(name)

	text := fmt.Sprintf("Group %s has been deleted.\nYou are now moved to the Lobby!", name)
	for _, peer := range h.sessions.ListByGroup(name) {
		h.push(ctx, peer.Sink, event.GroupDeleted{Text: text})
		_ = h.sessions.SetCurrentGroup(peer.User.Identity, "")
	}

	view := projection.ToGroupView(group)
	for _, peer := range h.sessions.All() {
		h.push(ctx, peer.Sink, event.GroupRemoved{Group: view})
	}
	return nil
}

// Groups serves the global group list from the cache.
func (h *Hub) Groups(context.Context) ([]event.GroupView, error) {
	groups, err := h.groups.List()
	if err != nil {
		return nil, err
	}
	return projection.ToGroupViews(groups), nil
}

// Users lists the members currently in a group.
func (h *Hub) Users(group string) []event.UserView {
	return lo.Map(h.sessions.ListByGroup(group), func(member Member, _ int) event.UserView {
		return projection.ToUserView(member.User)
	})
}

// History returns the most recent persisted messages of a group, oldest
// first, with sender identities resolved to display names.
func (h *Hub) History(group string) ([]event.MessageView, error) {
	messages, err := h.messages.History(group, h.historyLimit)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	views := make([]event.MessageView, 0, len(messages))
	for _, message := range messages {
		from, ok := names[message.Sender]
		if !ok {
			from = message.Sender
			if user, err := h.users.GetUserByName(message.Sender); err == nil {
				from = user.DisplayName
			}
			names[message.Sender] = from
		}
		views = append(views, projection.ToMessageView(message, from))
	}
	return views, nil
}

// push delivers one event to one sink, fire-and-forget.
func (h *Hub) push(ctx context.Context, sink contract.EventSink, e event.Event) {
	if err := sink.Consume(ctx, e); err != nil {
		h.log.Debug("Push dropped", "target", e.Target(), "error", err)
	}
}
