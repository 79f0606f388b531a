package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/authz"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

type renameInput struct {
	Name string `json:"name" form:"name"`
}

type avatarInput struct {
	ProfileImage string `json:"profile_image" form:"profile_image"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// profileTarget returns the acting user and the profile being edited. Admins
// may pass ?user_id= to work on someone else's profile; the service refuses
// anyone else.
func profileTarget(c *fiber.Ctx) (*models.User, uint, int, string) {
	actor, ok := currentUser(c)
	if !ok {
		return nil, 0, fiber.StatusUnauthorized, "unauthorized"
	}
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" {
		return actor, actor.ID, 0, ""
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, 0, fiber.StatusBadRequest, "invalid user id"
	}
	return actor, uint(id), 0, ""
}

func (handler *Handler) canManageUsers(actor models.User) bool {
	allowed, err := handler.authorizer.Allowed(actor, authz.ResourceUser, authz.ActionManage, "")
	return err == nil && allowed
}

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	actor, userID, status, message := profileTarget(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	if userID != actor.ID && !handler.canManageUsers(*actor) {
		return apiError(c, fiber.StatusForbidden, services.ErrNotAllowed.Error())
	}
	user, err := handler.userService.Get(userID)
	if err != nil {
		return respondServiceError(c, err, "failed to load profile")
	}
	return c.JSON(user)
}

func (handler *Handler) RenameProfile(c *fiber.Ctx) error {
	actor, userID, status, message := profileTarget(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	var input renameInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	user, err := handler.userService.Rename(*actor, userID, input.Name)
	if err != nil {
		return respondServiceError(c, err, "failed to update profile")
	}
	return c.JSON(user)
}

func (handler *Handler) UpdateAvatar(c *fiber.Ctx) error {
	actor, userID, status, message := profileTarget(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	var input avatarInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	user, err := handler.userService.SetAvatar(*actor, userID, input.ProfileImage)
	if err != nil {
		return respondServiceError(c, err, "failed to update profile image")
	}
	return c.JSON(user)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	actor, userID, status, message := profileTarget(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	var input changePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if input.NewPassword != input.ConfirmPassword {
		return apiError(c, fiber.StatusBadRequest, services.ErrPasswordMismatch.Error())
	}
	if err := handler.userService.ChangePassword(*actor, userID, input.CurrentPassword, input.NewPassword); err != nil {
		return respondServiceError(c, err, "failed to change password")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) GetProfileStats(c *fiber.Ctx) error {
	actor, userID, status, message := profileTarget(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	if userID != actor.ID && !handler.canManageUsers(*actor) {
		return apiError(c, fiber.StatusForbidden, services.ErrNotAllowed.Error())
	}
	stats, err := handler.userService.Stats(userID)
	if err != nil {
		return respondServiceError(c, err, "failed to load profile stats")
	}
	return c.JSON(stats)
}
