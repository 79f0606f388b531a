package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := handler.userService.List()
	if err != nil {
		return respondServiceError(c, err, "failed to load users")
	}
	return c.JSON(users)
}

func (handler *Handler) CreateUser(c *fiber.Ctx) error {
	var input services.UserInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	user, err := handler.userService.Create(input)
	if err != nil {
		return respondServiceError(c, err, "failed to create user")
	}
	logger.Infof(c.UserContext(), "user %s created", user.PhaID)
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (handler *Handler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid user id")
	}
	var input services.UserInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	user, err := handler.userService.Update(id, input)
	if err != nil {
		return respondServiceError(c, err, "failed to update user")
	}
	return c.JSON(user)
}

func (handler *Handler) ToggleUserActive(c *fiber.Ctx) error {
	actor, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid user id")
	}
	user, err := handler.userService.ToggleActive(*actor, id)
	if err != nil {
		return respondServiceError(c, err, "failed to update user")
	}
	logger.Infof(c.UserContext(), "user %s active=%t set by %s", user.PhaID, user.Active, actor.PhaID)
	return c.JSON(user)
}

func (handler *Handler) DeleteUser(c *fiber.Ctx) error {
	actor, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid user id")
	}
	if err := handler.userService.Delete(*actor, id); err != nil {
		return respondServiceError(c, err, "failed to delete user")
	}
	logger.Infof(c.UserContext(), "user %d deleted by %s", id, actor.PhaID)
	return c.JSON(fiber.Map{"ok": true})
}
