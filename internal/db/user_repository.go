package db

import (
	"fmt"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) CountUsers() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (repo *UserRepository) List() ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, fmt.Errorf("find user %d: %w", userID, err)
	}
	return user, nil
}

func (repo *UserRepository) FindByPhaID(phaID string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("pha_id = ?", phaID).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("find user by pha_id: %w", err)
	}
	return user, nil
}

func (repo *UserRepository) ExistsByPhaID(phaID string, excludeID uint) (bool, error) {
	query := repo.database.Model(&models.User{}).Where("pha_id = ?", phaID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var matched int64
	if err := query.Count(&matched).Error; err != nil {
		return false, fmt.Errorf("check pha_id: %w", err)
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	if err := repo.database.Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (repo *UserRepository) Save(user *models.User) error {
	if err := repo.database.Save(user).Error; err != nil {
		return fmt.Errorf("save user %d: %w", user.ID, err)
	}
	return nil
}

func (repo *UserRepository) UpdateByID(userID uint, updates map[string]any) error {
	if err := repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update user %d: %w", userID, err)
	}
	return nil
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	err := repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	}).Error
	if err != nil {
		return fmt.Errorf("update password for user %d: %w", userID, err)
	}
	return nil
}

func (repo *UserRepository) Delete(userID uint) error {
	if err := repo.database.Delete(&models.User{}, userID).Error; err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	return nil
}
