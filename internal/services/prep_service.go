package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uttaradit-pharmacy/edextemp/internal/authz"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPrepNotFound          = errors.New("prep not found")
	ErrPrepForbidden         = errors.New("not allowed to modify this prep")
	ErrStationRequired       = errors.New("station is required")
	ErrInvalidMode           = errors.New("invalid mode")
	ErrPatientDetailsMissing = errors.New("hn and patient name are required")
	ErrDestRoomMissing       = errors.New("destination room is required")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrLotNumberRequired     = errors.New("lot number is required")
)

type PrepRepository interface {
	List() ([]models.Prep, error)
	FindByID(prepID uint) (models.Prep, error)
	MaxID() (uint, error)
	Create(prep *models.Prep) error
	Save(prep *models.Prep) error
	Delete(prepID uint) error
}

type PrepFormulaReader interface {
	FindByID(formulaID uint) (models.Formula, error)
}

type PrepAuthorizer interface {
	CanModifyPrep(actor models.User, prep models.Prep, action authz.Action) bool
}

type CreatePrepInput struct {
	FormulaID   uint   `json:"formula_id" form:"formula_id"`
	Mode        string `json:"mode" form:"mode"`
	HN          string `json:"hn" form:"hn"`
	PatientName string `json:"patient_name" form:"patient_name"`
	DestRoom    string `json:"dest_room" form:"dest_room"`
	LotNo       string `json:"lot_no" form:"lot_no"`
	Date        string `json:"date" form:"date"`
	Qty         int    `json:"qty" form:"qty"`
	Note        string `json:"note" form:"note"`
}

// UpdatePrepInput carries the editable fields; nil leaves a field unchanged.
type UpdatePrepInput struct {
	Date        *string `json:"date"`
	LotNo       *string `json:"lot_no"`
	Qty         *int    `json:"qty"`
	ExpiryDate  *string `json:"expiry_date"`
	Note        *string `json:"note"`
	HN          *string `json:"hn"`
	PatientName *string `json:"patient_name"`
	DestRoom    *string `json:"dest_room"`
}

type PrepService struct {
	preps      PrepRepository
	formulas   PrepFormulaReader
	authorizer PrepAuthorizer
	location   *time.Location
	now        func() time.Time
	onCreated  func(models.Prep)
}

type PrepServiceOption func(*PrepService)

func WithPrepClock(now func() time.Time) PrepServiceOption {
	return func(service *PrepService) {
		service.now = now
	}
}

func WithPrepCreatedHook(hook func(models.Prep)) PrepServiceOption {
	return func(service *PrepService) {
		service.onCreated = hook
	}
}

func NewPrepService(preps PrepRepository, formulas PrepFormulaReader, authorizer PrepAuthorizer, location *time.Location, options ...PrepServiceOption) *PrepService {
	if location == nil {
		location = time.UTC
	}
	service := &PrepService{
		preps:      preps,
		formulas:   formulas,
		authorizer: authorizer,
		location:   location,
		now:        time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

func (service *PrepService) List() ([]models.Prep, error) {
	return service.preps.List()
}

func (service *PrepService) Get(prepID uint) (models.Prep, error) {
	prep, err := service.preps.FindByID(prepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Prep{}, ErrPrepNotFound
		}
		return models.Prep{}, err
	}
	return prep, nil
}

// NextLotNumber previews the lot number a new prep would receive.
func (service *PrepService) NextLotNumber() (string, error) {
	maxID, err := service.preps.MaxID()
	if err != nil {
		return "", err
	}
	return GenerateLotNumber(service.now().In(service.location), maxID+1), nil
}

func (service *PrepService) Create(actor models.User, station string, input CreatePrepInput) (models.Prep, error) {
	station = strings.TrimSpace(station)
	if station == "" {
		return models.Prep{}, ErrStationRequired
	}

	formula, err := service.formulas.FindByID(input.FormulaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Prep{}, ErrFormulaNotFound
		}
		return models.Prep{}, err
	}

	now := service.now().In(service.location)
	prep := models.Prep{
		FormulaID:     formula.ID,
		FormulaName:   formula.Name,
		Concentration: formula.Concentration,
		Mode:          strings.TrimSpace(input.Mode),
		HN:            strings.TrimSpace(input.HN),
		PatientName:   strings.TrimSpace(input.PatientName),
		DestRoom:      strings.TrimSpace(input.DestRoom),
		LotNo:         strings.TrimSpace(input.LotNo),
		Date:          strings.TrimSpace(input.Date),
		Qty:           input.Qty,
		Note:          strings.TrimSpace(input.Note),
		PreparedBy:    actor.Name,
		UserPhaID:     actor.PhaID,
		Location:      station,
	}

	if prep.Date == "" {
		prep.Date = now.Format(prepDateLayout)
	}
	if prep.Qty == 0 {
		prep.Qty = 1
	}
	if prep.Mode == models.ModeStock && prep.DestRoom == "" {
		prep.DestRoom = DefaultDestRoom(station)
	}
	if err := finalizePrepFields(&prep); err != nil {
		return models.Prep{}, err
	}

	expiry, err := ComputeExpiry(prep.Date, formula.ExpiryDays, now, service.location)
	if err != nil {
		return models.Prep{}, err
	}
	prep.ExpiryDate = expiry

	if prep.LotNo == "" {
		lot, err := service.NextLotNumber()
		if err != nil {
			return models.Prep{}, fmt.Errorf("generate lot number: %w", err)
		}
		prep.LotNo = lot
	}

	if err := service.preps.Create(&prep); err != nil {
		return models.Prep{}, err
	}
	if service.onCreated != nil {
		service.onCreated(prep)
	}
	return prep, nil
}

// Update never recomputes the expiry from the formula; only an explicit
// expiry_date changes it.
func (service *PrepService) Update(actor models.User, prepID uint, input UpdatePrepInput) (models.Prep, error) {
	prep, err := service.Get(prepID)
	if err != nil {
		return models.Prep{}, err
	}
	if !service.authorizer.CanModifyPrep(actor, prep, authz.ActionUpdate) {
		return models.Prep{}, ErrPrepForbidden
	}

	assignTrimmed(&prep.Date, input.Date)
	assignTrimmed(&prep.LotNo, input.LotNo)
	assignTrimmed(&prep.ExpiryDate, input.ExpiryDate)
	assignTrimmed(&prep.Note, input.Note)
	assignTrimmed(&prep.HN, input.HN)
	assignTrimmed(&prep.PatientName, input.PatientName)
	assignTrimmed(&prep.DestRoom, input.DestRoom)
	if input.Qty != nil {
		prep.Qty = *input.Qty
	}

	if err := finalizePrepFields(&prep); err != nil {
		return models.Prep{}, err
	}
	if prep.LotNo == "" {
		return models.Prep{}, ErrLotNumberRequired
	}

	if err := service.preps.Save(&prep); err != nil {
		return models.Prep{}, err
	}
	return prep, nil
}

func (service *PrepService) Delete(actor models.User, prepID uint) error {
	prep, err := service.Get(prepID)
	if err != nil {
		return err
	}
	if !service.authorizer.CanModifyPrep(actor, prep, authz.ActionDelete) {
		return ErrPrepForbidden
	}
	return service.preps.Delete(prepID)
}

// BuildTarget renders the human-readable recipient of a prep.
func BuildTarget(mode string, hn string, patientName string, destRoom string) string {
	if mode == models.ModePatient {
		return fmt.Sprintf("HN: %s - %s", hn, patientName)
	}
	return fmt.Sprintf("Stock → %s", destRoom)
}

func finalizePrepFields(prep *models.Prep) error {
	switch prep.Mode {
	case models.ModePatient:
		if prep.HN == "" || prep.PatientName == "" {
			return ErrPatientDetailsMissing
		}
		prep.DestRoom = ""
	case models.ModeStock:
		if prep.DestRoom == "" {
			return ErrDestRoomMissing
		}
		prep.HN = ""
		prep.PatientName = ""
	default:
		return ErrInvalidMode
	}

	if !ValidDate(prep.Date) {
		return ErrInvalidPrepDate
	}
	if prep.Qty <= 0 {
		return ErrInvalidQuantity
	}

	prep.Target = BuildTarget(prep.Mode, prep.HN, prep.PatientName, prep.DestRoom)
	return nil
}

func assignTrimmed(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}
