package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/authz"
)

const defaultMetricsPath = "/metrics"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	if handler.metrics != nil {
		app.Get(handler.metricsPath(), handler.metrics.Handler())
	}

	registerAPIRoutes(app, handler)
	registerPrintRoutes(app, handler)
}

func (handler *Handler) metricsPath() string {
	if handler.metricsRoute == "" {
		return defaultMetricsPath
	}
	return handler.metricsRoute
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangeForcedPassword)

	api.Get("/session", handler.SessionProbe, handler.GetSession)
	api.Post("/session/activity", handler.AuthRequired, handler.RecordActivity)
	api.Post("/session/station", handler.AuthRequired, handler.SelectStation)
	api.Get("/stations", handler.AuthRequired, handler.ListStations)

	api.Get("/dashboard", handler.AuthRequired, handler.GetDashboard)

	preps := api.Group("/preps", handler.AuthRequired)
	preps.Get("", handler.ListPreps)
	preps.Post("", handler.requirePermission(authz.ResourcePrep, authz.ActionCreate), handler.StationRequired, handler.CreatePrep)
	preps.Get("/next-lot", handler.NextLotNumber)
	preps.Get("/:id", handler.GetPrep)
	preps.Put("/:id", handler.UpdatePrep)
	preps.Delete("/:id", handler.DeletePrep)

	history := api.Group("/history", handler.AuthRequired)
	history.Get("", handler.GetHistory)
	history.Get("/export/csv", handler.ExportCSV)
	history.Get("/export/json", handler.ExportJSON)
	history.Get("/export/xlsx", handler.ExportXLSX)

	formulas := api.Group("/formulas", handler.AuthRequired)
	formulas.Get("", handler.ListFormulas)
	formulas.Get("/:id", handler.GetFormula)
	manageFormulas := handler.requirePermission(authz.ResourceFormula, authz.ActionManage)
	formulas.Post("", manageFormulas, handler.CreateFormula)
	formulas.Put("/:id", manageFormulas, handler.UpdateFormula)
	formulas.Delete("/:id", manageFormulas, handler.DeleteFormula)

	users := api.Group("/users", handler.AuthRequired, handler.requirePermission(authz.ResourceUser, authz.ActionManage))
	users.Get("", handler.ListUsers)
	users.Post("", handler.CreateUser)
	users.Put("/:id", handler.UpdateUser)
	users.Delete("/:id", handler.DeleteUser)
	users.Post("/:id/toggle-active", handler.ToggleUserActive)

	profile := api.Group("/profile", handler.AuthRequired)
	profile.Get("", handler.GetProfile)
	profile.Put("", handler.RenameProfile)
	profile.Post("/avatar", handler.UpdateAvatar)
	profile.Post("/password", handler.ChangePassword)
	profile.Get("/stats", handler.GetProfileStats)
}

func registerPrintRoutes(app *fiber.App, handler *Handler) {
	documents := app.Group("/print", handler.AuthRequired)
	documents.Get("/preps/:id/label", handler.PrintLabel)
	documents.Get("/preps/:id/batch-sheet", handler.PrintBatchSheet)
	documents.Get("/preps/:id/bottle-labels", handler.PrintBottleLabels)
	documents.Get("/preps/:id/labels", handler.PrintAllLabels)
}
