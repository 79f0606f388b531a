package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
	"github.com/uttaradit-pharmacy/edextemp/internal/session"
)

type stationInput struct {
	Station string `json:"station" form:"station"`
}

type sessionPayload struct {
	Station          string `json:"station"`
	DefaultDestRoom  string `json:"default_dest_room"`
	LastActivity     string `json:"last_activity"`
	IdleTimeoutSecs  int    `json:"idle_timeout_seconds"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

func (handler *Handler) sessionPayload(active session.Session) sessionPayload {
	return sessionPayload{
		Station:          active.Station,
		DefaultDestRoom:  services.DefaultDestRoom(active.Station),
		LastActivity:     active.LastActivity.In(handler.location).Format("2006-01-02T15:04:05Z07:00"),
		IdleTimeoutSecs:  int(handler.sessions.IdleTimeout().Seconds()),
		ExpiresInSeconds: int(handler.sessions.Remaining(active).Seconds()),
	}
}

// GetSession reports the session state. Routed behind SessionProbe so
// polling it never keeps an idle session alive.
func (handler *Handler) GetSession(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	active, _ := currentSession(c)
	return c.JSON(fiber.Map{
		"user":                 user,
		"must_change_password": user.MustChangePassword,
		"session":              handler.sessionPayload(active),
	})
}

// RecordActivity is the heartbeat; AuthRequired has already slid the timeout.
func (handler *Handler) RecordActivity(c *fiber.Ctx) error {
	active, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(handler.sessionPayload(active))
}

func (handler *Handler) SelectStation(c *fiber.Ctx) error {
	active, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input stationInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	station := strings.TrimSpace(input.Station)
	if !services.IsStation(station) {
		return apiError(c, fiber.StatusBadRequest, "invalid station")
	}

	updated, err := handler.sessions.SetStation(c.UserContext(), active.ID, station)
	if err != nil {
		if errors.Is(err, session.ErrExpired) || errors.Is(err, session.ErrNotFound) {
			handler.clearAuthCookie(c)
			return apiError(c, fiber.StatusUnauthorized, "session expired")
		}
		return respondServiceError(c, err, "failed to select station")
	}
	return c.JSON(handler.sessionPayload(updated))
}

func (handler *Handler) ListStations(c *fiber.Ctx) error {
	return c.JSON(services.Stations())
}
