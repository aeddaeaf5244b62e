// Package event defines the push events the hub emits to connected clients,
// together with the view payload shapes they carry on the wire.
package event

// Event is anything the hub can push through a transport sink.
// Target is the client-side handler name; Payload is the JSON body.
type Event interface {
	Target() string
	Payload() any
}

// UserView is the wire shape of a connected user.
type UserView struct {
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	CurrentGroup string `json:"currentGroup"`
	Device       string `json:"device"`
}

// GroupView is the wire shape of a chat group.
type GroupView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MessageView is the wire shape of a routed message.
// To is the group name for group messages and empty for direct ones.
type MessageView struct {
	Content   string `json:"content"`
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp string `json:"timestamp"`
}

// ProfileInfo is sent once to the caller right after a successful connect.
type ProfileInfo struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
}

type NewMessage struct{ Message MessageView }

func (e NewMessage) Target() string { return "newMessage" }
func (e NewMessage) Payload() any   { return e.Message }

type UserAdded struct{ User UserView }

func (e UserAdded) Target() string { return "addUser" }
func (e UserAdded) Payload() any   { return e.User }

type UserRemoved struct{ User UserView }

func (e UserRemoved) Target() string { return "removeUser" }
func (e UserRemoved) Payload() any   { return e.User }

type GroupAdded struct{ Group GroupView }

func (e GroupAdded) Target() string { return "addChatGroup" }
func (e GroupAdded) Payload() any   { return e.Group }

type GroupRemoved struct{ Group GroupView }

func (e GroupRemoved) Target() string { return "removeChatGroup" }
func (e GroupRemoved) Payload() any   { return e.Group }

type GroupDeleted struct{ Text string }

func (e GroupDeleted) Target() string { return "onGroupDeleted" }
func (e GroupDeleted) Payload() any   { return e.Text }

type Error struct{ Text string }

func (e Error) Target() string { return "onError" }
func (e Error) Payload() any   { return e.Text }

type Profile struct{ Info ProfileInfo }

func (e Profile) Target() string { return "getProfileInfo" }
func (e Profile) Payload() any   { return e.Info }
