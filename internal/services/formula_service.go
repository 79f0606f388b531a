package services

import (
	"errors"
	"strings"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"gorm.io/gorm"
)

const DefaultFormulaStorage = "เก็บในตู้เย็น 2-8°C"

var (
	ErrFormulaNotFound     = errors.New("formula not found")
	ErrFormulaNameRequired = errors.New("formula name is required")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidPrice        = errors.New("price must not be negative")
)

type FormulaRepository interface {
	List() ([]models.Formula, error)
	FindByID(formulaID uint) (models.Formula, error)
	Create(formula *models.Formula) error
	Save(formula *models.Formula) error
	Delete(formulaID uint) error
}

// PasswordVerifier confirms the acting admin's password before edits and deletes.
type PasswordVerifier interface {
	VerifyPassword(userID uint, password string) error
}

type FormulaInput struct {
	Code          string       `json:"code" form:"code"`
	Name          string       `json:"name" form:"name"`
	ShortName     string       `json:"short_name" form:"short_name"`
	Description   string       `json:"description" form:"description"`
	Concentration string       `json:"concentration" form:"concentration"`
	ExpiryValue   int          `json:"expiry_value" form:"expiry_value"`
	ExpiryUnit    string       `json:"expiry_unit" form:"expiry_unit"`
	Category      string       `json:"category" form:"category"`
	Price         float64      `json:"price" form:"price"`
	Storage       string       `json:"storage" form:"storage"`
	PackageSize   string       `json:"package_size" form:"package_size"`
	Ingredients   []Ingredient `json:"ingredients"`
	Method        []string     `json:"method"`
}

type FormulaService struct {
	formulas  FormulaRepository
	passwords PasswordVerifier
}

func NewFormulaService(formulas FormulaRepository, passwords PasswordVerifier) *FormulaService {
	return &FormulaService{formulas: formulas, passwords: passwords}
}

func (service *FormulaService) List() ([]models.Formula, error) {
	return service.formulas.List()
}

func (service *FormulaService) Get(formulaID uint) (models.Formula, error) {
	formula, err := service.formulas.FindByID(formulaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Formula{}, ErrFormulaNotFound
		}
		return models.Formula{}, err
	}
	return formula, nil
}

func (service *FormulaService) Create(input FormulaInput) (models.Formula, error) {
	formula := models.Formula{}
	if err := applyFormulaInput(&formula, input); err != nil {
		return models.Formula{}, err
	}
	if err := service.formulas.Create(&formula); err != nil {
		return models.Formula{}, err
	}
	return formula, nil
}

func (service *FormulaService) Update(actor models.User, formulaID uint, password string, input FormulaInput) (models.Formula, error) {
	if err := service.passwords.VerifyPassword(actor.ID, password); err != nil {
		return models.Formula{}, err
	}

	formula, err := service.Get(formulaID)
	if err != nil {
		return models.Formula{}, err
	}
	if err := applyFormulaInput(&formula, input); err != nil {
		return models.Formula{}, err
	}
	if err := service.formulas.Save(&formula); err != nil {
		return models.Formula{}, err
	}
	return formula, nil
}

// Delete leaves existing preps untouched; they carry their own formula snapshot.
func (service *FormulaService) Delete(actor models.User, formulaID uint, password string) error {
	if err := service.passwords.VerifyPassword(actor.ID, password); err != nil {
		return err
	}
	if _, err := service.Get(formulaID); err != nil {
		return err
	}
	return service.formulas.Delete(formulaID)
}

func applyFormulaInput(formula *models.Formula, input FormulaInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrFormulaNameRequired
	}

	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = models.CategoryOther
	}
	if !models.ValidCategory(category) {
		return ErrInvalidCategory
	}
	if input.Price < 0 {
		return ErrInvalidPrice
	}

	storage := strings.TrimSpace(input.Storage)
	if storage == "" {
		storage = DefaultFormulaStorage
	}

	formula.Code = strings.TrimSpace(input.Code)
	formula.Name = name
	formula.ShortName = strings.TrimSpace(input.ShortName)
	formula.Description = strings.TrimSpace(input.Description)
	formula.Concentration = strings.TrimSpace(input.Concentration)
	formula.ExpiryDays = NormalizeExpiryInput(input.ExpiryValue, input.ExpiryUnit)
	formula.Category = category
	formula.Price = input.Price
	formula.Storage = storage
	formula.PackageSize = strings.TrimSpace(input.PackageSize)
	formula.Ingredients = EncodeIngredients(input.Ingredients)
	formula.Method = EncodeMethod(input.Method)
	return nil
}
