package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/logger"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

type formulaUpdateInput struct {
	services.FormulaInput
	Password string `json:"password" form:"password"`
}

type confirmPasswordInput struct {
	Password string `json:"password" form:"password"`
}

// formulaView adds the decoded recipe so the editor does not have to tell
// structured rows from legacy free text itself.
type formulaView struct {
	models.Formula
	ExpiryValue     int                   `json:"expiry_value"`
	ExpiryUnit      string                `json:"expiry_unit"`
	IngredientItems []services.Ingredient `json:"ingredient_items"`
	MethodSteps     []string              `json:"method_steps"`
	LegacyContent   bool                  `json:"legacy_content"`
}

func newFormulaView(formula models.Formula) formulaView {
	view := formulaView{
		Formula:     formula,
		ExpiryValue: formula.ExpiryDays,
		ExpiryUnit:  services.ExpiryUnitDays,
	}
	if formula.ExpiresInHours() {
		view.ExpiryValue = -formula.ExpiryDays
		view.ExpiryUnit = services.ExpiryUnitHours
	}

	ingredients := services.ParseIngredients(formula.Ingredients)
	method := services.ParseMethod(formula.Method)
	view.IngredientItems = ingredients.Ingredients
	view.MethodSteps = method.Steps
	view.LegacyContent = (formula.Ingredients != "" && !ingredients.Structured) ||
		(formula.Method != "" && !method.Structured)
	return view
}

func (handler *Handler) ListFormulas(c *fiber.Ctx) error {
	formulas, err := handler.formulaService.List()
	if err != nil {
		return respondServiceError(c, err, "failed to load formulas")
	}
	views := make([]formulaView, 0, len(formulas))
	for _, formula := range formulas {
		views = append(views, newFormulaView(formula))
	}
	return c.JSON(views)
}

func (handler *Handler) GetFormula(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid formula id")
	}
	formula, err := handler.formulaService.Get(id)
	if err != nil {
		return respondServiceError(c, err, "failed to load formula")
	}
	return c.JSON(newFormulaView(formula))
}

func (handler *Handler) CreateFormula(c *fiber.Ctx) error {
	var input services.FormulaInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	formula, err := handler.formulaService.Create(input)
	if err != nil {
		return respondServiceError(c, err, "failed to save formula")
	}
	return c.Status(fiber.StatusCreated).JSON(newFormulaView(formula))
}

func (handler *Handler) UpdateFormula(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid formula id")
	}

	var input formulaUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	formula, err := handler.formulaService.Update(*user, id, input.Password, input.FormulaInput)
	if err != nil {
		return respondServiceError(c, err, "failed to update formula")
	}
	logger.Infof(c.UserContext(), "formula %d updated by %s", formula.ID, user.PhaID)
	return c.JSON(newFormulaView(formula))
}

func (handler *Handler) DeleteFormula(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid formula id")
	}

	var input confirmPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if err := handler.formulaService.Delete(*user, id, input.Password); err != nil {
		return respondServiceError(c, err, "failed to delete formula")
	}
	logger.Infof(c.UserContext(), "formula %d deleted by %s", id, user.PhaID)
	return c.JSON(fiber.Map{"ok": true})
}
