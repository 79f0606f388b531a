package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/security"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectPassword  = errors.New("incorrect password")
)

type AuthUserRepository interface {
	FindByPhaID(phaID string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

// Authenticate never tells the caller which check failed.
func (service *AuthService) Authenticate(phaID string, password string) (models.User, error) {
	normalizedID := strings.TrimSpace(phaID)
	if normalizedID == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := service.users.FindByPhaID(normalizedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !user.Active || !security.PasswordMatches(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// VerifyPassword re-checks the acting user's password before sensitive edits.
func (service *AuthService) VerifyPassword(userID uint, password string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	if !security.PasswordMatches(user.PasswordHash, password) {
		return ErrIncorrectPassword
	}
	return nil
}

// CompleteForcedPasswordChange sets a new password and clears the
// must-change flag.
func (service *AuthService) CompleteForcedPasswordChange(userID uint, newPassword string, confirmPassword string) error {
	if err := ValidatePasswordChange(newPassword, confirmPassword); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return service.users.UpdatePassword(userID, hash, false)
}
