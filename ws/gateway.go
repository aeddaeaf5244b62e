package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"huddle/auth"
	"huddle/contract"
	"huddle/domain"
	"huddle/domain/event"
	"huddle/errors"
)

// Hub is the surface the gateway drives on behalf of one connection.
type Hub interface {
	Connect(ctx context.Context, identity string, device domain.DeviceClass, sink contract.EventSink) error
	Disconnect(ctx context.Context, identity string)
	Join(ctx context.Context, identity, group string) error
	Leave(ctx context.Context, identity, group string)
	SendPrivate(ctx context.Context, identity, recipient, body string)
	SendToGroup(ctx context.Context, identity, group, body string) error
	CreateGroup(ctx context.Context, identity, name string) error
	DeleteGroup(ctx context.Context, identity, name string) error
	Groups(ctx context.Context) ([]event.GroupView, error)
	Users(group string) []event.UserView
	History(group string) ([]event.MessageView, error)
}

// Gateway upgrades HTTP requests to websocket sessions and translates
// frames into hub operations. Command failures never close the session;
// they come back to the caller as onError pushes.
type Gateway struct {
	log      *slog.Logger
	hub      Hub
	tokens   *auth.Tokens
	upgrader websocket.Upgrader
}

func NewGateway(log *slog.Logger, hub Hub, tokens *auth.Tokens) *Gateway {
	return &Gateway{
		log:    log,
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := g.authenticate(r)
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}
	device := domain.DeviceClassFrom(r.Header.Get("Device"))

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug("Upgrade failed", "error", err)
		return
	}

	sink := NewSink(g.log, conn)
	defer sink.Close()

	ctx := r.Context()
	if err := g.hub.Connect(ctx, identity, device, sink); err != nil {
		g.log.Warn("Connect rejected", "identity", identity, "error", err)
		g.pushError(ctx, sink, "OnConnected: "+err.Error())
		return
	}
	// Cleanup must run on every exit path, abnormal closes included.
	defer g.hub.Disconnect(context.WithoutCancel(ctx), identity)

	g.log.Info("Session opened", "identity", identity, "device", device)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Debug("Session closed abnormally", "identity", identity, "error", err)
			}
			return
		}
		g.dispatch(ctx, identity, sink, req)
	}
}

// authenticate accepts the token either as an access_token query
// parameter or as a bearer Authorization header.
func (g *Gateway) authenticate(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("access_token")
	if raw == "" {
		raw = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	claims, err := g.tokens.Validate(raw)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

func (g *Gateway) dispatch(ctx context.Context, identity string, sink *Sink, req Request) {
	switch req.Method {
	case "joinGroup":
		var args groupArgs
		if err := g.decode(sink, req.Args, &args); err != nil {
			return
		}
		if err := g.hub.Join(ctx, identity, args.Group); err != nil {
			g.pushError(ctx, sink, "You failed to join the chat Group!")
		}

	case "leaveGroup":
		var args groupArgs
		if err := g.decode(sink, req.Args, &args); err != nil {
			return
		}
		g.hub.Leave(ctx, identity, args.Group)

	case "sendMessage":
		var args messageArgs
		if err := g.decode(sink, req.Args, &args); err != nil {
			return
		}
		if err := g.hub.SendToGroup(ctx, identity, args.Group, args.Content); err != nil {
			g.pushError(ctx, sink, sendErrorText(err))
		}

	case "sendPrivate":
		var args privateArgs
		if err := g.decode(sink, req.Args, &args); err != nil {
			return
		}
		g.hub.SendPrivate(ctx, identity, args.Recipient, args.Content)

	case "createGroup":
		var args nameArgs
		if err := g.decode(sink, req.Args, &args); err != nil {
			return
		}
		if err := g.hub.CreateGroup(ctx, identity, args.Name); err != nil {
			g.pushError(ctx, sink, createErrorText(err))
		}

	case "deleteGroup":
		var args nameArgs
		if err := g.decode(sink, req.Args, &args); err != nil {
			return
		}
		if err := g.hub.DeleteGroup(ctx, identity, args.Name); err != nil {
			// NotFound and NotAdmin share one denial so a non-admin
			// cannot probe which groups exist.
			g.pushError(ctx, sink, "Can't delete this chat Group. Only owner can delete this Group.")
		}

	case "getGroups":
		groups, err := g.hub.Groups(ctx)
		g.reply(sink, req.ID, groups, err)

	case "getUsers":
		var args groupArgs
		if err := g.decode(sink, req.Args, &args); err != nil {
			return
		}
		g.reply(sink, req.ID, g.hub.Users(args.Group), nil)

	case "getMessageHistory":
		var args groupArgs
		if err := g.decode(sink, req.Args, &args); err != nil {
			return
		}
		history, err := g.hub.History(args.Group)
		g.reply(sink, req.ID, history, err)

	default:
		if req.ID != "" {
			_ = sink.Reply(Reply{ID: req.ID, Error: fmt.Sprintf("unknown method %q", req.Method)})
			return
		}
		g.pushError(ctx, sink, fmt.Sprintf("Unknown method %q", req.Method))
	}
}

func (g *Gateway) decode(sink *Sink, raw json.RawMessage, into any) error {
	if err := json.Unmarshal(raw, into); err != nil {
		g.log.Debug("Malformed frame args", "error", err)
		_ = sink.Reply(Reply{Error: "malformed arguments"})
		return err
	}
	return nil
}

func (g *Gateway) reply(sink *Sink, id string, result any, err error) {
	if id == "" {
		return
	}
	if err != nil {
		_ = sink.Reply(Reply{ID: id, Error: "operation failed"})
		return
	}
	_ = sink.Reply(Reply{ID: id, Result: result})
}

func (g *Gateway) pushError(ctx context.Context, sink *Sink, text string) {
	if err := sink.Consume(ctx, event.Error{Text: text}); err != nil {
		g.log.Debug("Error push dropped", "error", err)
	}
}

// sendErrorText is deliberately cause-blind: an oversized body, an
// unknown group, and a failed write all earn the identical text, so a
// caller cannot tell the failure modes apart.
func sendErrorText(error) string {
	return "Message not send! Message should be 1-500 characters."
}

func createErrorText(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrInvalidGroupName):
		return "Invalid Group name!\nGroup name must contain only letters and numbers."
	case stderrors.Is(err, errors.ErrInvalidGroupLength):
		return "Group name must be between 5-100 characters!"
	case stderrors.Is(err, errors.ErrDuplicateGroup):
		return "Another chat Group with this name exists"
	default:
		return "Couldn't create chat Group: " + err.Error()
	}
}
