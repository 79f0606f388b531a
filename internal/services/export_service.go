package services

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportFilePrefix = "ED-Extemp"

var exportHeaderKeys = []string{
	"export.id",
	"export.date",
	"export.time",
	"export.formula",
	"export.mode",
	"export.target",
	"export.lot",
	"export.qty",
	"export.prepared_by",
	"export.location",
	"export.expiry",
	"export.note",
}

type ExportTranslator interface {
	Translate(language string, key string) string
}

type ExportHistorySource interface {
	Search(filter HistoryFilter) ([]models.Prep, error)
	All() ([]models.Prep, error)
	Location() *time.Location
}

type ExportJSONEntry struct {
	ID          uint   `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	FormulaName string `json:"formula_name"`
	Mode        string `json:"mode"`
	Target      string `json:"target"`
	LotNo       string `json:"lot_no"`
	Qty         int    `json:"qty"`
	PreparedBy  string `json:"prepared_by"`
	Location    string `json:"location"`
	ExpiryDate  string `json:"expiry_date"`
	Note        string `json:"note"`
}

type ExportService struct {
	history    ExportHistorySource
	translator ExportTranslator
}

func NewExportService(history ExportHistorySource, translator ExportTranslator) *ExportService {
	return &ExportService{history: history, translator: translator}
}

// Preps returns the rows to export. A filter that matches nothing exports
// the full history instead of an empty file.
func (service *ExportService) Preps(filter HistoryFilter) ([]models.Prep, error) {
	preps, err := service.history.Search(filter)
	if err != nil {
		return nil, err
	}
	if len(preps) > 0 {
		return preps, nil
	}
	return service.history.All()
}

func (service *ExportService) Headers(language string) []string {
	headers := make([]string, 0, len(exportHeaderKeys))
	for _, key := range exportHeaderKeys {
		headers = append(headers, service.translator.Translate(language, key))
	}
	return headers
}

func (service *ExportService) Row(language string, prep models.Prep) []string {
	entry := service.entry(prep)
	return []string{
		strconv.FormatUint(uint64(entry.ID), 10),
		entry.Date,
		entry.Time,
		entry.FormulaName,
		service.modeLabel(language, prep.Mode),
		entry.Target,
		entry.LotNo,
		strconv.Itoa(entry.Qty),
		entry.PreparedBy,
		entry.Location,
		entry.ExpiryDate,
		entry.Note,
	}
}

func (service *ExportService) JSONEntries(preps []models.Prep) []ExportJSONEntry {
	entries := make([]ExportJSONEntry, 0, len(preps))
	for _, prep := range preps {
		entries = append(entries, service.entry(prep))
	}
	return entries
}

func (service *ExportService) WriteXLSX(writer io.Writer, language string, preps []models.Prep) error {
	book := excelize.NewFile()
	defer book.Close()

	sheet := service.translator.Translate(language, "export.sheet")
	if err := book.SetSheetName(book.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := book.SetSheetRow(sheet, "A1", stringsToCells(service.Headers(language))); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for index, prep := range preps {
		cell, err := excelize.CoordinatesToCellName(1, index+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, stringsToCells(service.Row(language, prep))); err != nil {
			return fmt.Errorf("write row %d: %w", index+2, err)
		}
	}

	return book.Write(writer)
}

func ExportFileName(now time.Time, extension string) string {
	return fmt.Sprintf("%s_%s.%s", exportFilePrefix, now.Format(prepDateLayout), extension)
}

func (service *ExportService) entry(prep models.Prep) ExportJSONEntry {
	return ExportJSONEntry{
		ID:          prep.ID,
		Date:        prep.Date,
		Time:        prep.CreatedAt.In(service.history.Location()).Format("15:04"),
		FormulaName: prep.FormulaName,
		Mode:        prep.Mode,
		Target:      prep.Target,
		LotNo:       prep.LotNo,
		Qty:         prep.Qty,
		PreparedBy:  prep.PreparedBy,
		Location:    prep.Location,
		ExpiryDate:  prep.ExpiryDate,
		Note:        prep.Note,
	}
}

func (service *ExportService) modeLabel(language string, mode string) string {
	if mode == models.ModePatient || mode == models.ModeStock {
		return service.translator.Translate(language, "mode."+mode)
	}
	return mode
}

func stringsToCells(values []string) *[]any {
	cells := make([]any, len(values))
	for index, value := range values {
		cells[index] = value
	}
	return &cells
}
