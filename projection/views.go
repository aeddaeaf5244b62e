// Package projection maps domain records to the wire view shapes pushed to
// clients. Projections are pure and stateless; nothing here mutates state or
// talks to storage.
package projection

import (
	"time"

	"github.com/samber/lo"

	"huddle/domain"
	"huddle/domain/event"
)

func ToUserView(user domain.ConnectedUser) event.UserView {
	return event.UserView{
		Username:     user.Identity,
		FullName:     user.DisplayName,
		CurrentGroup: user.CurrentGroup,
		Device:       string(user.Device),
	}
}

func ToGroupView(group domain.Group) event.GroupView {
	return event.GroupView{
		ID:   group.ID.String(),
		Name: group.Name,
	}
}

func ToGroupViews(groups []domain.Group) []event.GroupView {
	return lo.Map(groups, func(group domain.Group, _ int) event.GroupView {
		return ToGroupView(group)
	})
}

// ToMessageView projects a routed message. The sender's display name is
// resolved by the caller; To carries the group name for group messages and
// stays empty for direct ones.
func ToMessageView(message domain.Message, from string) event.MessageView {
	return event.MessageView{
		Content:   message.Content,
		From:      from,
		To:        message.Group,
		Timestamp: message.CreatedAt.Format(time.RFC3339Nano),
	}
}
