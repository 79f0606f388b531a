package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/authz"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/session"
)

const (
	authCookieName    = "edextemp_auth"
	contextUserKey    = "current_user"
	contextSessionKey = "current_session"
	requestIDLocalKey = "requestid"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

func currentSession(c *fiber.Ctx) (session.Session, bool) {
	active, ok := c.Locals(contextSessionKey).(session.Session)
	return active, ok
}

// AuthRequired resolves the session and counts the request as activity.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	return handler.authorize(c, true)
}

// SessionProbe resolves the session without sliding its timeout.
func (handler *Handler) SessionProbe(c *fiber.Ctx) error {
	return handler.authorize(c, false)
}

func (handler *Handler) authorize(c *fiber.Ctx, touch bool) error {
	claims, err := handler.parseAuthCookie(c)
	if err != nil {
		return unauthorized(c, "unauthorized")
	}

	active, err := handler.sessions.Resolve(c.UserContext(), claims.SessionID, touch)
	switch {
	case errors.Is(err, session.ErrExpired):
		handler.clearAuthCookie(c)
		return unauthorized(c, "session expired")
	case errors.Is(err, session.ErrNotFound):
		handler.clearAuthCookie(c)
		return unauthorized(c, "unauthorized")
	case err != nil:
		logger.Errorf(c.UserContext(), "resolve session: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "failed to load session")
	}
	if active.UserID != claims.UserID {
		return unauthorized(c, "unauthorized")
	}

	user, err := handler.authService.FindByID(claims.UserID)
	if err != nil || !user.Active {
		_ = handler.sessions.End(c.UserContext(), active.ID)
		handler.clearAuthCookie(c)
		return unauthorized(c, "unauthorized")
	}

	c.Locals(contextUserKey, &user)
	c.Locals(contextSessionKey, active)

	if user.MustChangePassword && !allowedDuringPasswordChange(c) {
		return apiError(c, fiber.StatusForbidden, "password change required")
	}
	return c.Next()
}

func unauthorized(c *fiber.Ctx, message string) error {
	if !strings.HasPrefix(c.Path(), "/api/") && !acceptsJSON(c) {
		return c.Status(fiber.StatusUnauthorized).SendString(message)
	}
	return apiError(c, fiber.StatusUnauthorized, message)
}

func allowedDuringPasswordChange(c *fiber.Ctx) bool {
	switch c.Path() {
	case "/api/auth/change-password", "/api/auth/logout":
		return true
	case "/api/session":
		return c.Method() == fiber.MethodGet
	}
	return false
}

// requirePermission asks the authorizer whether the current user holds
// action on resource regardless of record ownership.
func (handler *Handler) requirePermission(resource authz.Resource, action authz.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := currentUser(c)
		if !ok {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}

		err := handler.authorizer.Check(*user, resource, action, "")
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, authz.ErrForbidden):
			if action == authz.ActionManage {
				return apiError(c, fiber.StatusForbidden, "admin access required")
			}
			return apiError(c, fiber.StatusForbidden, "forbidden")
		default:
			logger.Errorf(c.UserContext(), "authorize %s %s: %v", action, resource, err)
			return apiError(c, fiber.StatusInternalServerError, "failed to authorize request")
		}
	}
}

// StationRequired blocks record creation until the session has picked a station.
func (handler *Handler) StationRequired(c *fiber.Ctx) error {
	active, ok := currentSession(c)
	if !ok || !active.HasStation() {
		return apiError(c, fiber.StatusConflict, "station selection required")
	}
	return c.Next()
}

// RequestContext carries the request id into the user context so service
// and storage logs can be correlated with the access log.
func RequestContext(c *fiber.Ctx) error {
	if requestID, ok := c.Locals(requestIDLocalKey).(string); ok && requestID != "" {
		c.SetUserContext(logger.WithRequestID(c.UserContext(), requestID))
	}
	return c.Next()
}
