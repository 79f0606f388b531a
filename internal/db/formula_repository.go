package db

import (
	"fmt"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"gorm.io/gorm"
)

type FormulaRepository struct {
	database *gorm.DB
}

func NewFormulaRepository(database *gorm.DB) *FormulaRepository {
	return &FormulaRepository{database: database}
}

func (repo *FormulaRepository) Count() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Formula{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count formulas: %w", err)
	}
	return count, nil
}

func (repo *FormulaRepository) List() ([]models.Formula, error) {
	formulas := make([]models.Formula, 0)
	if err := repo.database.Order("id ASC").Find(&formulas).Error; err != nil {
		return nil, fmt.Errorf("list formulas: %w", err)
	}
	return formulas, nil
}

func (repo *FormulaRepository) FindByID(formulaID uint) (models.Formula, error) {
	var formula models.Formula
	if err := repo.database.First(&formula, formulaID).Error; err != nil {
		return models.Formula{}, fmt.Errorf("find formula %d: %w", formulaID, err)
	}
	return formula, nil
}

func (repo *FormulaRepository) Create(formula *models.Formula) error {
	if err := repo.database.Create(formula).Error; err != nil {
		return fmt.Errorf("create formula: %w", err)
	}
	return nil
}

func (repo *FormulaRepository) CreateBatch(formulas []models.Formula) error {
	if len(formulas) == 0 {
		return nil
	}
	if err := repo.database.Create(&formulas).Error; err != nil {
		return fmt.Errorf("create %d formulas: %w", len(formulas), err)
	}
	return nil
}

func (repo *FormulaRepository) Save(formula *models.Formula) error {
	if err := repo.database.Save(formula).Error; err != nil {
		return fmt.Errorf("save formula %d: %w", formula.ID, err)
	}
	return nil
}

func (repo *FormulaRepository) Delete(formulaID uint) error {
	if err := repo.database.Delete(&models.Formula{}, formulaID).Error; err != nil {
		return fmt.Errorf("delete formula %d: %w", formulaID, err)
	}
	return nil
}
