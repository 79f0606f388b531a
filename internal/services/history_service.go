package services

import (
	"errors"
	"strings"
	"time"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
)

const (
	TimeWindowMorning   = "morning"
	TimeWindowAfternoon = "afternoon"
)

var ErrInvalidHistoryFilter = errors.New("invalid history filter")

// Minutes since local midnight, both bounds inclusive.
var timeWindows = map[string][2]int{
	TimeWindowMorning:   {8*60 + 30, 13*60 + 30},
	TimeWindowAfternoon: {13*60 + 31, 16*60 + 30},
}

type HistoryPrepReader interface {
	List() ([]models.Prep, error)
}

type HistoryFormulaReader interface {
	List() ([]models.Formula, error)
}

type HistoryFilter struct {
	Search   string `query:"search"`
	Location string `query:"location"`
	Mode     string `query:"mode"`
	Time     string `query:"time"`
	DateFrom string `query:"date_from"`
	DateTo   string `query:"date_to"`
}

func (filter HistoryFilter) Normalize() HistoryFilter {
	return HistoryFilter{
		Search:   strings.TrimSpace(filter.Search),
		Location: strings.TrimSpace(filter.Location),
		Mode:     strings.TrimSpace(filter.Mode),
		Time:     strings.TrimSpace(filter.Time),
		DateFrom: strings.TrimSpace(filter.DateFrom),
		DateTo:   strings.TrimSpace(filter.DateTo),
	}
}

func (filter HistoryFilter) Validate() error {
	if filter.Mode != "" && filter.Mode != models.ModePatient && filter.Mode != models.ModeStock {
		return ErrInvalidHistoryFilter
	}
	if filter.Time != "" {
		if _, ok := timeWindows[filter.Time]; !ok {
			return ErrInvalidHistoryFilter
		}
	}
	if filter.DateFrom != "" && !ValidDate(filter.DateFrom) {
		return ErrInvalidHistoryFilter
	}
	if filter.DateTo != "" && !ValidDate(filter.DateTo) {
		return ErrInvalidHistoryFilter
	}
	return nil
}

func (filter HistoryFilter) IsEmpty() bool {
	return filter == HistoryFilter{}
}

type HistoryService struct {
	preps    HistoryPrepReader
	formulas HistoryFormulaReader
	location *time.Location
}

func NewHistoryService(preps HistoryPrepReader, formulas HistoryFormulaReader, location *time.Location) *HistoryService {
	if location == nil {
		location = time.UTC
	}
	return &HistoryService{preps: preps, formulas: formulas, location: location}
}

func (service *HistoryService) Location() *time.Location {
	return service.location
}

// All returns every prep, newest first.
func (service *HistoryService) All() ([]models.Prep, error) {
	return service.preps.List()
}

func (service *HistoryService) Search(filter HistoryFilter) ([]models.Prep, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	preps, err := service.preps.List()
	if err != nil {
		return nil, err
	}
	if filter.IsEmpty() {
		return preps, nil
	}

	codes := map[uint]string{}
	if filter.Search != "" {
		formulas, err := service.formulas.List()
		if err != nil {
			return nil, err
		}
		for _, formula := range formulas {
			codes[formula.ID] = formula.Code
		}
	}

	matched := make([]models.Prep, 0, len(preps))
	for _, prep := range preps {
		if matchesHistoryFilter(prep, filter, codes[prep.FormulaID], service.location) {
			matched = append(matched, prep)
		}
	}
	return matched, nil
}

func matchesHistoryFilter(prep models.Prep, filter HistoryFilter, formulaCode string, location *time.Location) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		haystack := []string{prep.FormulaName, formulaCode, prep.Target, prep.PreparedBy, prep.LotNo}
		found := false
		for _, value := range haystack {
			if value != "" && strings.Contains(strings.ToLower(value), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.Location != "" && prep.Location != filter.Location {
		return false
	}
	if filter.Mode != "" && prep.Mode != filter.Mode {
		return false
	}
	if filter.DateFrom != "" && prep.Date < filter.DateFrom {
		return false
	}
	if filter.DateTo != "" && prep.Date > filter.DateTo {
		return false
	}
	if filter.Time != "" && !InTimeWindow(prep.CreatedAt, filter.Time, location) {
		return false
	}
	return true
}

// InTimeWindow reports whether the local wall-clock minute of value falls
// inside the named window.
func InTimeWindow(value time.Time, window string, location *time.Location) bool {
	bounds, ok := timeWindows[window]
	if !ok {
		return false
	}
	if location == nil {
		location = time.UTC
	}
	local := value.In(location)
	minute := local.Hour()*60 + local.Minute()
	return minute >= bounds[0] && minute <= bounds[1]
}
