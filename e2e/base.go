package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

// BaseSuite connects to a live server over websocket. It signs its own
// access tokens, so TOKEN_SECRET must match the target deployment.
type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping end to end suite")
	}
}

// Dial opens an authenticated session for the given identity, printing a
// colorized header for the step in logs.
func (s *BaseSuite) Dial(name, identity string) *websocket.Conn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	token := s.signToken(identity)
	url := fmt.Sprintf("ws://%s/chat?access_token=%s", s.Config.ServerAddr, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Device": []string{"Desktop"}})
	s.Require().NoError(err, "Failed to connect to server at "+s.Config.ServerAddr)
	return conn
}

func (s *BaseSuite) signToken(identity string) string {
	claims := jwt.MapClaims{
		"username": identity,
		"iss":      "huddle",
		"iat":      jwt.NewNumericDate(time.Now()),
		"exp":      jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.Config.TokenSecret))
	s.Require().NoError(err)
	return signed
}

// Send writes one request frame.
func (s *BaseSuite) Send(conn *websocket.Conn, method string, args any, id string) {
	raw, err := json.Marshal(args)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(map[string]any{
		"method": method,
		"args":   json.RawMessage(raw),
		"id":     id,
	}))
}

// ReadUntilTarget drains frames until a push with the wanted target arrives.
func (s *BaseSuite) ReadUntilTarget(conn *websocket.Conn, target string) map[string]any {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for {
		var frame map[string]any
		s.Require().NoError(conn.ReadJSON(&frame), "waiting for %q", target)
		if s.Config.DebugFrames {
			s.T().Logf("FRAME: %v", frame)
		}
		if frame["target"] == target {
			return frame
		}
	}
}

// ReadReply drains frames until the reply with the given id arrives.
func (s *BaseSuite) ReadReply(conn *websocket.Conn, id string) map[string]any {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for {
		var frame map[string]any
		s.Require().NoError(conn.ReadJSON(&frame), "waiting for reply %q", id)
		if s.Config.DebugFrames {
			s.T().Logf("FRAME: %v", frame)
		}
		if frame["id"] == id {
			return frame
		}
	}
}
