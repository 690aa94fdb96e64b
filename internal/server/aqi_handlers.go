package server

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/Preeth02/aqi-using-ai/internal/cache"
	"github.com/Preeth02/aqi-using-ai/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAQI proxies a city air-quality lookup. Responses are cached per
// city so repeated lookups don't burn upstream quota.
func (s *Server) GetAQI(c *fiber.Ctx) error {
	city, err := url.PathUnescape(c.Params("city"))
	if err != nil || strings.TrimSpace(city) == "" {
		return respondError(c, models.NewValidationError("City is required"))
	}
	city = strings.TrimSpace(city)

	var data json.RawMessage
	cacheKey := cache.AQIKey(strings.ToLower(city))
	err = cache.Aside(c.UserContext(), cacheKey, &data, cache.AQITTL, func() error {
		var fetchErr error
		data, fetchErr = s.air.CityAQI(c.UserContext(), city)
		return fetchErr
	})
	if err != nil {
		return respondError(c, models.NewUpstreamError("Failed to fetch air quality data", err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "AQI fetched successfully",
		"data":    data,
	})
}

// SearchStations looks up monitoring stations by keyword
func (s *Server) SearchStations(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		return respondError(c, models.NewValidationError("Keyword is required"))
	}

	data, err := s.air.Search(c.UserContext(), keyword)
	if err != nil {
		return respondError(c, models.NewUpstreamError("Failed to search stations", err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// MapBounds lists stations within a lat/lng bounding box
func (s *Server) MapBounds(c *fiber.Ctx) error {
	latlng := strings.TrimSpace(c.Query("latlng"))
	if latlng == "" {
		return respondError(c, models.NewValidationError("latlng is required"))
	}

	data, err := s.air.Bounds(c.UserContext(), latlng)
	if err != nil {
		return respondError(c, models.NewUpstreamError("Failed to fetch map bounds", err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// StationFeed returns the live feed for a single station by UID
func (s *Server) StationFeed(c *fiber.Ctx) error {
	uid := strings.TrimSpace(c.Params("uid"))
	if uid == "" {
		return respondError(c, models.NewValidationError("Station UID is required"))
	}

	data, err := s.air.StationFeed(c.UserContext(), uid)
	if err != nil {
		return respondError(c, models.NewUpstreamError("Failed to fetch station feed", err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
