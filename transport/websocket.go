package transport

import (
	"context"
	"direct-chat/domain"
	"direct-chat/sink"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// handleSocket serves one websocket connection. The reader goroutine handles
// subscribe/unsubscribe frames; a single writer goroutine owns every write
// on the socket: acknowledgements, events and pings.
func (s *Server) handleSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals(userIDKey).(domain.UserID)
	connectionID := uuid.NewString()
	mailbox := sink.NewConnectionSink(s.settings.ConnectionBufferSize)
	replies := make(chan serverFrame, s.settings.ConnectionBufferSize)
	log := s.log.With("connection_id", connectionID, "user_id", userID)

	ctx, cancel := context.WithCancel(context.Background())
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		s.writeLoop(ctx, conn, mailbox, replies)
	}()

	defer func() {
		s.subscriber.Disconnect(connectionID)
		cancel()
		<-writerDone
		log.Debug("Websocket closed")
	}()
	log.Debug("Websocket opened")

	if s.settings.ReadLimit > 0 {
		conn.SetReadLimit(s.settings.ReadLimit)
	}
	s.extendReadDeadline(conn)
	conn.SetPongHandler(func(string) error {
		s.extendReadDeadline(conn)
		return nil
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Websocket read failed", "error", err)
			}
			return
		}
		s.extendReadDeadline(conn)
		if messageType != websocket.TextMessage {
			continue
		}
		reply := s.handleFrame(connectionID, userID, mailbox, data)
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleFrame(connectionID string, userID domain.UserID, mailbox *sink.ConnectionSink, data []byte) serverFrame {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return serverFrame{Type: frameError, Message: "malformed frame"}
	}
	switch frame.Action {
	case actionSubscribe:
		if err := s.subscriber.Subscribe(connectionID, userID, frame.Channel, mailbox); err != nil {
			return serverFrame{Type: frameError, Channel: frame.Channel, Message: err.Error()}
		}
		return serverFrame{Type: frameSubscribed, Channel: frame.Channel}
	case actionUnsubscribe:
		s.subscriber.Unsubscribe(connectionID, frame.Channel)
		return serverFrame{Type: frameUnsubscribed, Channel: frame.Channel}
	default:
		return serverFrame{Type: frameError, Channel: frame.Channel, Message: "unknown action " + frame.Action}
	}
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, mailbox *sink.ConnectionSink, replies <-chan serverFrame) {
	ticker := time.NewTicker(s.pingInterval())
	defer ticker.Stop()

	write := func(frame serverFrame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
		if err := conn.WriteJSON(frame); err != nil {
			s.log.Debug("Websocket write failed", "error", err)
			_ = conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case reply := <-replies:
			if !write(reply) {
				return
			}
		case evt := <-mailbox.Events:
			if !write(eventFrame(evt)) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func (s *Server) extendReadDeadline(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(2 * s.pingInterval()))
}

func (s *Server) pingInterval() time.Duration {
	if s.settings.PingInterval <= 0 {
		return 30 * time.Second
	}
	return s.settings.PingInterval
}

func (s *Server) writeTimeout() time.Duration {
	if s.settings.WriteTimeout <= 0 {
		return 10 * time.Second
	}
	return s.settings.WriteTimeout
}
