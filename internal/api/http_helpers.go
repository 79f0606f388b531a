package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

var errInvalidID = errors.New("invalid id")

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get("Accept")), "application/json")
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

type statusMapping struct {
	err    error
	status int
}

var serviceErrorStatuses = []statusMapping{
	{services.ErrPrepNotFound, fiber.StatusNotFound},
	{services.ErrFormulaNotFound, fiber.StatusNotFound},
	{services.ErrUserNotFound, fiber.StatusNotFound},

	{services.ErrPrepForbidden, fiber.StatusForbidden},
	{services.ErrNotAllowed, fiber.StatusForbidden},
	{services.ErrCannotModifySelf, fiber.StatusForbidden},
	{services.ErrIncorrectPassword, fiber.StatusForbidden},

	{services.ErrDuplicatePhaID, fiber.StatusConflict},
	{services.ErrStationRequired, fiber.StatusConflict},

	{services.ErrAvatarTooLarge, fiber.StatusRequestEntityTooLarge},

	{services.ErrUserNameRequired, fiber.StatusBadRequest},
	{services.ErrPhaIDRequired, fiber.StatusBadRequest},
	{services.ErrPasswordRequired, fiber.StatusBadRequest},
	{services.ErrInvalidRole, fiber.StatusBadRequest},
	{services.ErrCurrentPasswordRequired, fiber.StatusBadRequest},
	{services.ErrInvalidAvatar, fiber.StatusBadRequest},
	{services.ErrWeakPassword, fiber.StatusBadRequest},
	{services.ErrPasswordMismatch, fiber.StatusBadRequest},
	{services.ErrFormulaNameRequired, fiber.StatusBadRequest},
	{services.ErrInvalidCategory, fiber.StatusBadRequest},
	{services.ErrInvalidPrice, fiber.StatusBadRequest},
	{services.ErrInvalidMode, fiber.StatusBadRequest},
	{services.ErrPatientDetailsMissing, fiber.StatusBadRequest},
	{services.ErrDestRoomMissing, fiber.StatusBadRequest},
	{services.ErrInvalidQuantity, fiber.StatusBadRequest},
	{services.ErrLotNumberRequired, fiber.StatusBadRequest},
	{services.ErrInvalidPrepDate, fiber.StatusBadRequest},
	{services.ErrInvalidHistoryFilter, fiber.StatusBadRequest},
}

// respondServiceError maps a service sentinel to its status. Anything
// unrecognised is logged and answered with fallback as a 500.
func respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	for _, mapping := range serviceErrorStatuses {
		if errors.Is(err, mapping.err) {
			return apiError(c, mapping.status, mapping.err.Error())
		}
	}
	logger.Errorf(c.UserContext(), "%s %s: %v", c.Method(), c.Path(), err)
	return apiError(c, fiber.StatusInternalServerError, fallback)
}
