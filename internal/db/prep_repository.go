package db

import (
	"fmt"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"gorm.io/gorm"
)

type PrepRepository struct {
	database *gorm.DB
}

func NewPrepRepository(database *gorm.DB) *PrepRepository {
	return &PrepRepository{database: database}
}

// List returns every prep, newest first.
func (repo *PrepRepository) List() ([]models.Prep, error) {
	preps := make([]models.Prep, 0)
	if err := repo.database.Order("id DESC").Find(&preps).Error; err != nil {
		return nil, fmt.Errorf("list preps: %w", err)
	}
	return preps, nil
}

// ListBetweenDates filters on the prepared date, both bounds inclusive.
func (repo *PrepRepository) ListBetweenDates(from string, to string) ([]models.Prep, error) {
	preps := make([]models.Prep, 0)
	if err := repo.database.
		Where("date >= ? AND date <= ?", from, to).
		Order("id DESC").
		Find(&preps).Error; err != nil {
		return nil, fmt.Errorf("list preps %s..%s: %w", from, to, err)
	}
	return preps, nil
}

func (repo *PrepRepository) ListByPreparer(preparedBy string) ([]models.Prep, error) {
	preps := make([]models.Prep, 0)
	if err := repo.database.
		Where("prepared_by = ?", preparedBy).
		Order("id DESC").
		Find(&preps).Error; err != nil {
		return nil, fmt.Errorf("list preps by preparer: %w", err)
	}
	return preps, nil
}

func (repo *PrepRepository) FindByID(prepID uint) (models.Prep, error) {
	var prep models.Prep
	if err := repo.database.First(&prep, prepID).Error; err != nil {
		return models.Prep{}, fmt.Errorf("find prep %d: %w", prepID, err)
	}
	return prep, nil
}

func (repo *PrepRepository) MaxID() (uint, error) {
	var maxID *uint
	if err := repo.database.Model(&models.Prep{}).Select("MAX(id)").Scan(&maxID).Error; err != nil {
		return 0, fmt.Errorf("max prep id: %w", err)
	}
	if maxID == nil {
		return 0, nil
	}
	return *maxID, nil
}

func (repo *PrepRepository) Create(prep *models.Prep) error {
	if err := repo.database.Create(prep).Error; err != nil {
		return fmt.Errorf("create prep: %w", err)
	}
	return nil
}

func (repo *PrepRepository) Save(prep *models.Prep) error {
	if err := repo.database.Save(prep).Error; err != nil {
		return fmt.Errorf("save prep %d: %w", prep.ID, err)
	}
	return nil
}

func (repo *PrepRepository) Delete(prepID uint) error {
	if err := repo.database.Delete(&models.Prep{}, prepID).Error; err != nil {
		return fmt.Errorf("delete prep %d: %w", prepID, err)
	}
	return nil
}
