package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

type loginInput struct {
	PhaID    string `json:"pha_id" form:"pha_id"`
	Password string `json:"password" form:"password"`
}

type forcedPasswordInput struct {
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	input.PhaID = strings.TrimSpace(input.PhaID)
	if input.PhaID == "" || input.Password == "" {
		return apiError(c, fiber.StatusBadRequest, "pha_id and password are required")
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, input.PhaID)
	if handler.loginLimiter.tooManyRecent(limiterKey, now, loginAttemptLimit, loginAttemptWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.authService.Authenticate(input.PhaID, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.addFailure(limiterKey, now, loginAttemptWindow)
			logger.Warnf(c.UserContext(), "failed login for pha_id=%s from %s", input.PhaID, c.IP())
			return apiError(c, fiber.StatusUnauthorized, services.ErrInvalidCredentials.Error())
		}
		return respondServiceError(c, err, "failed to sign in")
	}
	handler.loginLimiter.reset(limiterKey)

	active, err := handler.sessions.Start(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, err, "failed to start session")
	}
	if err := handler.setAuthCookie(c, &user, active); err != nil {
		return respondServiceError(c, err, "failed to sign in")
	}

	logger.Infof(c.UserContext(), "user %s signed in", user.PhaID)
	return c.JSON(fiber.Map{
		"user":                 user,
		"must_change_password": user.MustChangePassword,
		"session":              handler.sessionPayload(active),
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	if active, ok := currentSession(c); ok {
		if err := handler.sessions.End(c.UserContext(), active.ID); err != nil {
			logger.Warnf(c.UserContext(), "end session: %v", err)
		}
	}
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ChangeForcedPassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input forcedPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if err := handler.authService.CompleteForcedPasswordChange(user.ID, input.NewPassword, input.ConfirmPassword); err != nil {
		return respondServiceError(c, err, "failed to change password")
	}
	return c.JSON(fiber.Map{"ok": true})
}
