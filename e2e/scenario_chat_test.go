package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type testChatSuite struct {
	BaseSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestHealth() {
	s.WithHealth("Health check", func(ctx context.Context, client grpc_health_v1.HealthClient) {
		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
		s.Require().NoError(err)
		s.Require().Equal(grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
	})
}

func (s *testChatSuite) TestUnauthenticated() {
	code, _ := s.Call("Home without token", http.MethodGet, "/", "", nil)
	s.Require().Equal(http.StatusUnauthorized, code)
}

func (s *testChatSuite) TestConversation() {
	if s.Config.AliceToken == "" || s.Config.BobToken == "" || s.Config.BobEmail == "" {
		s.T().Skip("E2E_ALICE_TOKEN, E2E_BOB_TOKEN and E2E_BOB_EMAIL are required")
	}
	var chatID uint64

	s.Run("Step 1: Alice adds Bob", func() {
		code, _ := s.Call("Store contact", http.MethodPost, "/contact/store", s.Config.AliceToken,
			map[string]any{"contact_email": s.Config.BobEmail})
		// A previous run may already have added him
		s.Require().Contains([]int{http.StatusCreated, http.StatusConflict}, code)
	})

	s.Run("Step 2: Alice starts the chat", func() {
		code, raw := s.Call("Start chat", http.MethodPost, "/chat/start", s.Config.AliceToken,
			map[string]any{"email": s.Config.BobEmail})
		s.Require().Equal(http.StatusOK, code)
		var resp struct {
			ChatID uint64 `json:"chat_id"`
		}
		s.Require().NoError(json.Unmarshal(raw, &resp))
		s.Require().NotZero(resp.ChatID)
		chatID = resp.ChatID
	})

	s.Run("Step 3: Alice writes, Bob reads", func() {
		code, raw := s.Call("Send message", http.MethodPost, "/chat/message", s.Config.AliceToken,
			map[string]any{"chat_id": chatID, "message": "hello from e2e"})
		s.Require().Equal(http.StatusOK, code)
		var sent struct {
			Message struct {
				ID uint64 `json:"id"`
			} `json:"message"`
		}
		s.Require().NoError(json.Unmarshal(raw, &sent))

		code, _ = s.Call("Mark read", http.MethodPatch, "/chat/messages/read", s.Config.BobToken,
			map[string]any{"message_ids": []uint64{sent.Message.ID}})
		s.Require().Equal(http.StatusNoContent, code)
	})
}

