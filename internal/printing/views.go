package printing

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/services"
)

const bottleLabelsPerPage = 3

type documentView struct {
	Title string
	T     map[string]string
}

type labelView struct {
	documentView
	FormulaName   string
	Concentration string
	Patient       string
	LotNo         string
	PrepDate      string
	Expiry        string
	Storage       string
	PreparedBy    string
	Location      string
	Barcode       template.URL
}

type batchSheetView struct {
	documentView
	FormulaName   string
	Concentration string
	LotNo         string
	Qty           int
	Target        string
	PrepDate      string
	Expiry        string
	Ingredients   services.FormulaContent
	Method        services.FormulaContent
}

type bottleLabel struct {
	Name       string
	Number     string
	PrepDate   string
	Expiry     string
	PreparedBy string
	Storage    string
	QRCode     template.URL
}

type bottleLabelsView struct {
	documentView
	Pages [][]bottleLabel
}

type allLabelsView struct {
	documentView
	Label  labelView
	Bottle bottleLabelsView
}

func labelPatient(prep models.Prep, messages map[string]string) string {
	if prep.Mode != models.ModePatient {
		return messages["label.stock"]
	}
	name := dashIfEmpty(prep.PatientName)
	if hn := strings.TrimSpace(prep.HN); hn != "" {
		return name + " (" + hn + ")"
	}
	return name
}

func formulaStorage(formula models.Formula) string {
	if storage := strings.TrimSpace(formula.Storage); storage != "" {
		return storage
	}
	return services.DefaultFormulaStorage
}

func bottleName(prep models.Prep, formula models.Formula) string {
	if name := strings.TrimSpace(formula.ShortName); name != "" {
		return name
	}
	return prep.FormulaName
}

// paginateBottleLabels numbers one label per unit of qty and groups them
// into pages.
func paginateBottleLabels(base bottleLabel, qty int) [][]bottleLabel {
	if qty <= 0 {
		return nil
	}
	pages := make([][]bottleLabel, 0, (qty+bottleLabelsPerPage-1)/bottleLabelsPerPage)
	for index := 0; index < qty; index++ {
		if index%bottleLabelsPerPage == 0 {
			pages = append(pages, make([]bottleLabel, 0, bottleLabelsPerPage))
		}
		label := base
		label.Number = strconv.Itoa(index+1) + "/" + strconv.Itoa(qty)
		pages[len(pages)-1] = append(pages[len(pages)-1], label)
	}
	return pages
}

func dashIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
