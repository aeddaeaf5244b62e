package e2e

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type testChatScenarioSuite struct {
	BaseSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, &testChatScenarioSuite{})
}

// TestGroupConversationFlow walks the full lifecycle against a live
// server: connect, create a group, join, exchange messages, read history,
// and tear the group down again.
func (s *testChatScenarioSuite) TestGroupConversationFlow() {
	// A random suffix keeps reruns against the same store independent
	groupName := fmt.Sprintf("E2E Run %s", uuid.New().String()[:8])

	var userA, userB *websocket.Conn

	s.Run("Step 0: Connect both identities", func() {
		userA = s.Dial("Connecting first identity", s.Config.UserA)
		userB = s.Dial("Connecting second identity", s.Config.UserB)

		frame := s.ReadUntilTarget(userA, "getProfileInfo")
		s.Require().Equal(s.Config.UserA, frame["payload"].(map[string]any)["username"])
		s.ReadUntilTarget(userB, "getProfileInfo")
	})
	defer func() {
		if userA != nil {
			_ = userA.Close()
		}
		if userB != nil {
			_ = userB.Close()
		}
	}()

	s.Run("Step 1: Create group, announced to everyone", func() {
		s.Send(userA, "createGroup", map[string]string{"name": groupName}, "")

		for _, conn := range []*websocket.Conn{userA, userB} {
			frame := s.ReadUntilTarget(conn, "addChatGroup")
			s.Require().Equal(groupName, frame["payload"].(map[string]any)["name"])
		}
	})

	s.Run("Step 2: Join and see each other", func() {
		s.Send(userA, "joinGroup", map[string]string{"group": groupName}, "")
		s.Send(userA, "getUsers", map[string]string{"group": groupName}, "sync")
		s.ReadReply(userA, "sync")

		s.Send(userB, "joinGroup", map[string]string{"group": groupName}, "")
		frame := s.ReadUntilTarget(userA, "addUser")
		s.Require().Equal(s.Config.UserB, frame["payload"].(map[string]any)["username"])
	})

	s.Run("Step 3: Group message reaches both, in order", func() {
		for i := 0; i < 3; i++ {
			s.Send(userA, "sendMessage", map[string]string{
				"group":   groupName,
				"content": fmt.Sprintf("message %d", i),
			}, "")
		}

		for _, conn := range []*websocket.Conn{userA, userB} {
			for i := 0; i < 3; i++ {
				frame := s.ReadUntilTarget(conn, "newMessage")
				payload := frame["payload"].(map[string]any)
				s.Require().Equal(fmt.Sprintf("message %d", i), payload["content"])
				s.Require().Equal(groupName, payload["to"])
			}
		}
	})

	s.Run("Step 4: History matches what was broadcast", func() {
		s.Send(userB, "getMessageHistory", map[string]string{"group": groupName}, "h1")
		reply := s.ReadReply(userB, "h1")

		result := reply["result"].([]any)
		s.Require().Len(result, 3)
		s.Require().Equal("message 0", result[0].(map[string]any)["content"])
		s.Require().Equal("message 2", result[2].(map[string]any)["content"])
	})

	s.Run("Step 5: Private message stays off the record", func() {
		s.Send(userB, "sendPrivate", map[string]string{
			"recipient": s.Config.UserA,
			"content":   "just between us",
		}, "")

		for _, conn := range []*websocket.Conn{userA, userB} {
			frame := s.ReadUntilTarget(conn, "newMessage")
			payload := frame["payload"].(map[string]any)
			s.Require().Equal("just between us", payload["content"])
			s.Require().Equal("", payload["to"])
		}

		s.Send(userB, "getMessageHistory", map[string]string{"group": groupName}, "h2")
		reply := s.ReadReply(userB, "h2")
		s.Require().Len(reply["result"].([]any), 3, "private messages must never be persisted")
	})

	s.Run("Step 6: Owner deletes the group, members are evicted", func() {
		s.Send(userB, "deleteGroup", map[string]string{"name": groupName}, "")
		frame := s.ReadUntilTarget(userB, "onError")
		s.Require().Contains(frame["payload"], "Only owner can delete")

		s.Send(userA, "deleteGroup", map[string]string{"name": groupName}, "")
		for _, conn := range []*websocket.Conn{userA, userB} {
			s.ReadUntilTarget(conn, "onGroupDeleted")
			s.ReadUntilTarget(conn, "removeChatGroup")
		}

		// The group is really gone: joining it again fails
		s.Send(userB, "joinGroup", map[string]string{"group": groupName}, "")
		frame = s.ReadUntilTarget(userB, "onError")
		s.Require().Contains(frame["payload"], "failed to join")

		time.Sleep(100 * time.Millisecond)
	})
}
