package transport

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type storeContactRequest struct {
	ContactEmail string `json:"contact_email" validate:"required"`
}

type startChatRequest struct {
	Email string `json:"email" validate:"required"`
}

type sendMessageRequest struct {
	ChatID  uint64 `json:"chat_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// updateUserStatusRequest takes either the boolean flag or an explicit status.
type updateUserStatusRequest struct {
	Active *bool   `json:"active" validate:"required_without=Status"`
	Status *string `json:"status" validate:"required_without=Active"`
}

type markReadRequest struct {
	MessageIDs []uint64 `json:"message_ids" validate:"required,min=1,dive,gt=0"`
}

type startChatResponse struct {
	ChatID  domain.ChatID `json:"chat_id"`
	Created bool          `json:"created"`
}

// parse decodes the JSON body into req and validates its tags.
func parse(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("%w: malformed body: %v", errors.ErrValidation, err)
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}

func (s *Server) home(c *fiber.Ctx) error {
	home, err := s.services.Home.Show(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(home)
}

func (s *Server) storeContact(c *fiber.Ctx) error {
	var req storeContactRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	_, err := s.services.Contacts.AddContact(c.UserContext(), domain.AddContactCommand{
		OwnerID:      currentUser(c),
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Contact added successfully."})
}

func (s *Server) startChat(c *fiber.Ctx) error {
	var req startChatRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	chat, created, err := s.services.Chats.StartChat(c.UserContext(), domain.StartChatCommand{
		RequesterID:  currentUser(c),
		PartnerEmail: req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(startChatResponse{ChatID: chat.ID, Created: created})
}

func (s *Server) getMessages(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: invalid chat id %q", errors.ErrValidation, c.Params("id"))
	}
	history, err := s.services.Messages.ListMessages(c.UserContext(), domain.GetMessagesCommand{
		ChatID:      domain.ChatID(id),
		RequesterID: currentUser(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(history)
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	message, err := s.services.Messages.SendMessage(c.UserContext(), domain.SendMessageCommand{
		ChatID:   domain.ChatID(req.ChatID),
		SenderID: currentUser(c),
		Body:     req.Message,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": message})
}

func (s *Server) markRead(c *fiber.Ctx) error {
	var req markReadRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	err := s.services.Messages.MarkRead(c.UserContext(), domain.MarkReadCommand{
		ActorID: currentUser(c),
		MessageIDs: lo.Map(req.MessageIDs, func(id uint64, _ int) domain.MessageID {
			return domain.MessageID(id)
		}),
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) updateUserStatus(c *fiber.Ctx) error {
	var req updateUserStatusRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	var err error
	if req.Status != nil {
		err = s.services.Presence.SetStatus(c.UserContext(), currentUser(c), *req.Status)
	} else {
		err = s.services.Presence.SetActive(c.UserContext(), currentUser(c), *req.Active)
	}
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
