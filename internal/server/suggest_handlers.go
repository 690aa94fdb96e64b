package server

import (
	"github.com/Preeth02/aqi-using-ai/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SuggestMessages relays a completion request to the configured language
// model and returns the raw '||'-delimited suggestion string. The client
// splits it for display.
func (s *Server) SuggestMessages(c *fiber.Ctx) error {
	suggestions, err := s.suggester.SuggestMessages(c.UserContext())
	if err != nil {
		return respondError(c, models.NewUpstreamError("Failed to generate message suggestions", err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":           true,
		"suggestedMessages": suggestions,
	})
}
