package services

import (
	"sort"
	"time"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
)

const dashboardRecentLimit = 5

type DashboardPrepReader interface {
	ListBetweenDates(from string, to string) ([]models.Prep, error)
}

type FormulaTotal struct {
	FormulaName string `json:"formula_name"`
	Qty         int    `json:"qty"`
}

type DashboardSummary struct {
	MonthStart    string         `json:"month_start"`
	MonthEnd      string         `json:"month_end"`
	MonthTotal    int            `json:"month_total"`
	TodayTotal    int            `json:"today_total"`
	PatientTotal  int            `json:"patient_total"`
	StockQty      int            `json:"stock_qty"`
	Recent        []models.Prep  `json:"recent"`
	FormulaTotals []FormulaTotal `json:"formula_totals"`
}

type DashboardService struct {
	preps    DashboardPrepReader
	location *time.Location
}

func NewDashboardService(preps DashboardPrepReader, location *time.Location) *DashboardService {
	if location == nil {
		location = time.UTC
	}
	return &DashboardService{preps: preps, location: location}
}

func (service *DashboardService) Summary(now time.Time) (DashboardSummary, error) {
	local := now.In(service.location)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, service.location)
	monthEnd := monthStart.AddDate(0, 1, -1)

	summary := DashboardSummary{
		MonthStart: monthStart.Format(prepDateLayout),
		MonthEnd:   monthEnd.Format(prepDateLayout),
	}

	preps, err := service.preps.ListBetweenDates(summary.MonthStart, summary.MonthEnd)
	if err != nil {
		return DashboardSummary{}, err
	}

	return summarizeMonth(summary, preps, local.Format(prepDateLayout)), nil
}

func summarizeMonth(summary DashboardSummary, preps []models.Prep, today string) DashboardSummary {
	totals := make(map[string]int)
	summary.MonthTotal = len(preps)
	for _, prep := range preps {
		if prep.Date == today {
			summary.TodayTotal++
		}
		switch prep.Mode {
		case models.ModePatient:
			summary.PatientTotal++
		case models.ModeStock:
			summary.StockQty += prep.Qty
		}
		totals[prep.FormulaName] += prep.Qty
	}

	recent := make([]models.Prep, len(preps))
	copy(recent, preps)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].ID > recent[j].ID
	})
	if len(recent) > dashboardRecentLimit {
		recent = recent[:dashboardRecentLimit]
	}
	summary.Recent = recent

	summary.FormulaTotals = make([]FormulaTotal, 0, len(totals))
	for name, qty := range totals {
		summary.FormulaTotals = append(summary.FormulaTotals, FormulaTotal{FormulaName: name, Qty: qty})
	}
	sort.Slice(summary.FormulaTotals, func(i, j int) bool {
		left, right := summary.FormulaTotals[i], summary.FormulaTotals[j]
		if left.Qty != right.Qty {
			return left.Qty > right.Qty
		}
		return left.FormulaName < right.FormulaName
	})
	return summary
}
