package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Spreadsheet apps need the byte order mark to read Thai text as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseHistoryFilter(c *fiber.Ctx) (services.HistoryFilter, error) {
	var filter services.HistoryFilter
	if err := c.QueryParser(&filter); err != nil {
		return services.HistoryFilter{}, services.ErrInvalidHistoryFilter
	}
	return filter, nil
}

func (handler *Handler) GetHistory(c *fiber.Ctx) error {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		return respondServiceError(c, err, "failed to load history")
	}
	preps, err := handler.historyService.Search(filter)
	if err != nil {
		return respondServiceError(c, err, "failed to load history")
	}
	return c.JSON(fiber.Map{
		"entries": preps,
		"total":   len(preps),
	})
}

// exportRows resolves the rows for a download. An empty filter result falls
// back to every record so a download is never blank.
func (handler *Handler) exportRows(c *fiber.Ctx) ([]models.Prep, error) {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		return nil, err
	}
	return handler.exportService.Preps(filter)
}

func (handler *Handler) exportLanguage(c *fiber.Ctx) string {
	if requested := strings.TrimSpace(c.Query("lang")); requested != "" {
		return handler.i18n.NormalizeLanguage(requested)
	}
	return handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	preps, err := handler.exportRows(c)
	if err != nil {
		return respondServiceError(c, err, "failed to fetch preps")
	}
	language := handler.exportLanguage(c)
	now := handler.now().In(handler.location)

	var output bytes.Buffer
	output.Write(utf8BOM)
	writer := csv.NewWriter(&output)
	if err := writer.Write(handler.exportService.Headers(language)); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}
	for _, prep := range preps {
		if err := writer.Write(handler.exportService.Row(language, prep)); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to build export")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, "text/csv; charset=utf-8", services.ExportFileName(now, "csv"))
	return c.Send(output.Bytes())
}

func (handler *Handler) ExportJSON(c *fiber.Ctx) error {
	preps, err := handler.exportRows(c)
	if err != nil {
		return respondServiceError(c, err, "failed to fetch preps")
	}
	now := handler.now().In(handler.location)

	payload := fiber.Map{
		"exported_at": now.Format(time.RFC3339),
		"entries":     handler.exportService.JSONEntries(preps),
	}

	serialized, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, fiber.MIMEApplicationJSON, services.ExportFileName(now, "json"))
	return c.Send(serialized)
}

func (handler *Handler) ExportXLSX(c *fiber.Ctx) error {
	preps, err := handler.exportRows(c)
	if err != nil {
		return respondServiceError(c, err, "failed to fetch preps")
	}
	now := handler.now().In(handler.location)

	var output bytes.Buffer
	if err := handler.exportService.WriteXLSX(&output, handler.exportLanguage(c), preps); err != nil {
		return respondServiceError(c, err, "failed to build export")
	}

	setExportAttachmentHeaders(c, xlsxContentType, services.ExportFileName(now, "xlsx"))
	return c.Send(output.Bytes())
}
