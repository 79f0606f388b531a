package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	summary, err := handler.dashboardService.Summary(handler.now())
	if err != nil {
		return respondServiceError(c, err, "failed to load dashboard")
	}
	return c.JSON(summary)
}
