package transport

import (
	"direct-chat/errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// requireAuth accepts the token from the Authorization header, or from the
// "token" query parameter since browsers cannot set headers on websockets.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	token := c.Query("token")
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, value, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return errors.ErrUnauthenticated
		}
		token = value
	}
	if token == "" {
		return errors.ErrUnauthenticated
	}
	userID, err := s.tokens.ValidateToken(token)
	if err != nil {
		s.log.Debug("Token rejected", "path", c.Path(), "error", err)
		return errors.ErrUnauthenticated
	}
	c.Locals(userIDKey, userID)
	return c.Next()
}

// touchLastSeen never fails the request.
func (s *Server) touchLastSeen(c *fiber.Ctx) error {
	userID := currentUser(c)
	if err := s.services.Presence.Touch(c.UserContext(), userID); err != nil {
		s.log.Warn("Last seen not updated", "user_id", userID, "error", err)
	}
	return c.Next()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Render now so that the logged status is the one sent.
		if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	s.log.Debug("HTTP request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start))
	return nil
}
