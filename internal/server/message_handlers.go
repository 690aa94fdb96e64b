package server

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/Preeth02/aqi-using-ai/internal/middleware"
	"github.com/Preeth02/aqi-using-ai/internal/models"
	"github.com/Preeth02/aqi-using-ai/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest is the anonymous submission payload
type SendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// AcceptMessagesRequest toggles the mailbox accept-flag
type AcceptMessagesRequest struct {
	AcceptingMessages bool `json:"acceptingMessages"`
}

// SendMessage appends an anonymous message to a user's mailbox. No
// authentication: anyone with the profile link can submit.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if strings.TrimSpace(req.Username) == "" {
		return respondError(c, models.NewValidationError("Username is required"))
	}
	if err := validation.ValidateMessageContent(req.Content); err != nil {
		return respondError(c, models.NewValidationError(err.Error()))
	}

	user, err := s.userRepo.GetCachedByUsername(c.UserContext(), req.Username)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return respondError(c, models.NewNotFoundError("User not found"))
	}
	if !user.IsAcceptingMessages {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewValidationError("User is not accepting messages"))
	}

	message := &models.Message{
		UserID:  user.ID,
		Content: strings.TrimSpace(req.Content),
	}
	if err := s.messageRepo.Append(c.UserContext(), message); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Message sent successfully",
	})
}

// GetMessages returns the authenticated owner's full mailbox
func (s *Server) GetMessages(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, models.NewUnauthorizedError("Not authenticated"))
	}

	messages, err := s.messageRepo.ListByUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"messages": messages,
	})
}

// DeleteMessage removes a single message from the owner's mailbox.
// Deleting someone else's message reports not found, never leaks
// existence.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, models.NewUnauthorizedError("Not authenticated"))
	}

	messageID, err := strconv.ParseUint(c.Params("messageId"), 10, 32)
	if err != nil {
		return respondError(c, models.NewValidationError("Invalid message ID"))
	}

	if err := s.messageRepo.Delete(c.UserContext(), userID, uint(messageID)); err != nil {
		return respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "message deleted",
		slog.Uint64("message_id", messageID))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Message deleted successfully",
	})
}

// GetAcceptMessages reads the live accept-flag from the user record,
// not the token snapshot.
func (s *Server) GetAcceptMessages(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, models.NewUnauthorizedError("Not authenticated"))
	}

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return respondError(c, models.NewNotFoundError("User not found"))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":             true,
		"isAcceptingMessages": user.IsAcceptingMessages,
	})
}

// SetAcceptMessages updates the accept-flag on the user record
func (s *Server) SetAcceptMessages(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return respondError(c, models.NewUnauthorizedError("Not authenticated"))
	}

	var req AcceptMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.userRepo.SetAcceptingMessages(c.UserContext(), userID, req.AcceptingMessages); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":             true,
		"message":             "Message acceptance status updated successfully",
		"isAcceptingMessages": req.AcceptingMessages,
	})
}
