// Package transport exposes the services over HTTP and websocket with Fiber,
// and the gRPC health service used by orchestrators.
package transport

import (
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/errors"
	"direct-chat/services"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

const userIDKey = "user_id"

var validate = validator.New()

type TokenValidator interface {
	ValidateToken(token string) (domain.UserID, error)
}

type Services struct {
	Home     services.IHomeService
	Contacts services.IContactService
	Chats    services.IChatService
	Messages services.IMessageService
	Presence services.IPresenceService
}

type Settings struct {
	ConnectionBufferSize int
	PingInterval         time.Duration
	WriteTimeout         time.Duration
	ReadLimit            int64
}

type Server struct {
	log        *slog.Logger
	tokens     TokenValidator
	services   Services
	subscriber contract.ISubscriber
	settings   Settings
}

func NewServer(log *slog.Logger, tokens TokenValidator, services Services,
	subscriber contract.ISubscriber, settings Settings) *Server {
	return &Server{log: log, tokens: tokens, services: services, subscriber: subscriber, settings: settings}
}

// App builds the Fiber application. Every route requires a valid bearer
// token and refreshes the caller's last seen.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "direct-chat",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(recover.New())
	app.Use(s.requestLogger)

	authenticated := app.Group("/", s.requireAuth, s.touchLastSeen)
	authenticated.Get("/", s.home)
	authenticated.Post("/contact/store", s.storeContact)
	authenticated.Post("/chat/start", s.startChat)
	authenticated.Get("/chat/:id/messages", s.getMessages)
	authenticated.Post("/chat/message", s.sendMessage)
	authenticated.Patch("/chat/messages/read", s.markRead)
	authenticated.Patch("/user-status", s.updateUserStatus)

	authenticated.Get("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(s.handleSocket))

	return app
}

// errorHandler renders every error as {"message": ...}. Business errors get
// their status from the errors package, Fiber's own errors keep theirs.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := errors.HTTPStatus(err)
	message := err.Error()
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
		message = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}

func currentUser(c *fiber.Ctx) domain.UserID {
	userID, _ := c.Locals(userIDKey).(domain.UserID)
	return userID
}
