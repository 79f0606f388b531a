package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

func (handler *Handler) ListPreps(c *fiber.Ctx) error {
	preps, err := handler.prepService.List()
	if err != nil {
		return respondServiceError(c, err, "failed to load preps")
	}
	return c.JSON(preps)
}

func (handler *Handler) GetPrep(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid prep id")
	}
	prep, err := handler.prepService.Get(id)
	if err != nil {
		return respondServiceError(c, err, "failed to load prep")
	}
	return c.JSON(prep)
}

// NextLotNumber previews the lot number a new prep would get.
func (handler *Handler) NextLotNumber(c *fiber.Ctx) error {
	lotNo, err := handler.prepService.NextLotNumber()
	if err != nil {
		return respondServiceError(c, err, "failed to generate lot number")
	}
	return c.JSON(fiber.Map{"lot_no": lotNo})
}

func (handler *Handler) CreatePrep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	active, _ := currentSession(c)

	var input services.CreatePrepInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	prep, err := handler.prepService.Create(*user, active.Station, input)
	if err != nil {
		return respondServiceError(c, err, "failed to save prep")
	}
	logger.Infof(c.UserContext(), "prep %d lot=%s created by %s", prep.ID, prep.LotNo, user.PhaID)
	return c.Status(fiber.StatusCreated).JSON(prep)
}

func (handler *Handler) UpdatePrep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid prep id")
	}

	var input services.UpdatePrepInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	prep, err := handler.prepService.Update(*user, id, input)
	if err != nil {
		return respondServiceError(c, err, "failed to update prep")
	}
	return c.JSON(prep)
}

func (handler *Handler) DeletePrep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid prep id")
	}

	if err := handler.prepService.Delete(*user, id); err != nil {
		return respondServiceError(c, err, "failed to delete prep")
	}
	logger.Infof(c.UserContext(), "prep %d deleted by %s", id, user.PhaID)
	return c.JSON(fiber.Map{"ok": true})
}
