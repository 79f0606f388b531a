package api

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

type printRenderFunc func(ctx context.Context, writer io.Writer, prep models.Prep, formula models.Formula) error

func (handler *Handler) PrintLabel(c *fiber.Ctx) error {
	return handler.printDocument(c, handler.renderer.RenderLabel)
}

func (handler *Handler) PrintBatchSheet(c *fiber.Ctx) error {
	return handler.printDocument(c, func(_ context.Context, writer io.Writer, prep models.Prep, formula models.Formula) error {
		return handler.renderer.RenderBatchSheet(writer, prep, formula)
	})
}

func (handler *Handler) PrintBottleLabels(c *fiber.Ctx) error {
	return handler.printDocument(c, handler.renderer.RenderBottleLabels)
}

func (handler *Handler) PrintAllLabels(c *fiber.Ctx) error {
	return handler.printDocument(c, handler.renderer.RenderAllLabels)
}

// printDocument renders one prep. A formula deleted after the prep was saved
// still prints from the snapshot stored on the prep.
func (handler *Handler) printDocument(c *fiber.Ctx, render printRenderFunc) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid prep id")
	}
	prep, err := handler.prepService.Get(id)
	if err != nil {
		return respondServiceError(c, err, "failed to load prep")
	}

	formula, err := handler.formulaService.Get(prep.FormulaID)
	if err != nil {
		if !errors.Is(err, services.ErrFormulaNotFound) {
			return respondServiceError(c, err, "failed to load formula")
		}
		formula = models.Formula{Name: prep.FormulaName, Concentration: prep.Concentration}
	}

	var output bytes.Buffer
	if err := render(c.UserContext(), &output, prep, formula); err != nil {
		logger.Errorf(c.UserContext(), "render prep %d: %v", prep.ID, err)
		return apiError(c, fiber.StatusInternalServerError, "failed to render document")
	}

	c.Type("html", "utf-8")
	return c.Send(output.Bytes())
}
