package ws

import "encoding/json"

// Request is one inbound frame. Args is decoded per method; ID is set
// by callers that expect a reply and echoed back verbatim.
type Request struct {
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
	ID     string          `json:"id,omitempty"`
}

// Reply answers a Request that carried an ID. Exactly one of Result and
// Error is set.
type Reply struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Push is a server-initiated frame fanned out to connected clients.
type Push struct {
	Target  string `json:"target"`
	Payload any    `json:"payload"`
}

type groupArgs struct {
	Group string `json:"group"`
}

type messageArgs struct {
	Group   string `json:"group"`
	Content string `json:"content"`
}

type privateArgs struct {
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

type nameArgs struct {
	Name string `json:"name"`
}
