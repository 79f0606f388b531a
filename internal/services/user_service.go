package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/security"
	"gorm.io/gorm"
)

const MaxAvatarBytes = 5 * 1024 * 1024

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrDuplicatePhaID          = errors.New("pha_id already exists")
	ErrUserNameRequired        = errors.New("name is required")
	ErrPhaIDRequired           = errors.New("pha_id is required")
	ErrPasswordRequired        = errors.New("password is required")
	ErrInvalidRole             = errors.New("invalid role")
	ErrCannotModifySelf        = errors.New("cannot deactivate or delete your own account")
	ErrCurrentPasswordRequired = errors.New("current password is required")
	ErrAvatarTooLarge          = errors.New("profile image must not exceed 5 MB")
	ErrInvalidAvatar           = errors.New("invalid profile image")
	ErrNotAllowed              = errors.New("not allowed")
)

var presetAvatars = map[string]struct{}{
	models.DefaultProfileImage:       {},
	"/avatars/female-pharmacist.png": {},
}

type UserRepository interface {
	List() ([]models.User, error)
	FindByID(userID uint) (models.User, error)
	ExistsByPhaID(phaID string, excludeID uint) (bool, error)
	Create(user *models.User) error
	UpdateByID(userID uint, updates map[string]any) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
	Delete(userID uint) error
}

type UserPrepReader interface {
	ListByPreparer(preparedBy string) ([]models.Prep, error)
}

type UserInput struct {
	Name         string `json:"name" form:"name"`
	PhaID        string `json:"pha_id" form:"pha_id"`
	Password     string `json:"password" form:"password"`
	Role         string `json:"role" form:"role"`
	ProfileImage string `json:"profile_image" form:"profile_image"`
}

type ProfileStats struct {
	TotalPreps       int `json:"total_preps"`
	TotalQty         int `json:"total_qty"`
	DistinctFormulas int `json:"distinct_formulas"`
}

type UserService struct {
	users UserRepository
	preps UserPrepReader
}

func NewUserService(users UserRepository, preps UserPrepReader) *UserService {
	return &UserService{users: users, preps: preps}
}

func (service *UserService) List() ([]models.User, error) {
	return service.users.List()
}

func (service *UserService) Get(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (service *UserService) Create(input UserInput) (models.User, error) {
	name, phaID, role, err := normalizeUserInput(input)
	if err != nil {
		return models.User{}, err
	}
	if input.Password == "" {
		return models.User{}, ErrPasswordRequired
	}
	if err := ValidatePasswordStrength(input.Password); err != nil {
		return models.User{}, err
	}
	if err := service.ensureUniquePhaID(phaID, 0); err != nil {
		return models.User{}, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	image := strings.TrimSpace(input.ProfileImage)
	if image == "" {
		image = models.DefaultProfileImage
	}
	if err := validateAvatar(image); err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:         name,
		PhaID:        phaID,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		ProfileImage: image,
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Update applies an admin edit. A non-empty password replaces the current one
// and forces the user to choose a new password at next login.
func (service *UserService) Update(userID uint, input UserInput) (models.User, error) {
	if _, err := service.Get(userID); err != nil {
		return models.User{}, err
	}

	name, phaID, role, err := normalizeUserInput(input)
	if err != nil {
		return models.User{}, err
	}
	if err := service.ensureUniquePhaID(phaID, userID); err != nil {
		return models.User{}, err
	}

	updates := map[string]any{
		"name":   name,
		"pha_id": phaID,
		"role":   role,
	}
	if image := strings.TrimSpace(input.ProfileImage); image != "" {
		if err := validateAvatar(image); err != nil {
			return models.User{}, err
		}
		updates["profile_image"] = image
	}
	if input.Password != "" {
		if err := ValidatePasswordStrength(input.Password); err != nil {
			return models.User{}, err
		}
		hash, err := security.HashPassword(input.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = hash
		updates["must_change_password"] = true
	}

	if err := service.users.UpdateByID(userID, updates); err != nil {
		return models.User{}, err
	}
	return service.Get(userID)
}

func (service *UserService) ToggleActive(actor models.User, userID uint) (models.User, error) {
	if actor.ID == userID {
		return models.User{}, ErrCannotModifySelf
	}
	user, err := service.Get(userID)
	if err != nil {
		return models.User{}, err
	}

	if err := service.users.UpdateByID(userID, map[string]any{"active": !user.Active}); err != nil {
		return models.User{}, err
	}
	user.Active = !user.Active
	return user, nil
}

func (service *UserService) Delete(actor models.User, userID uint) error {
	if actor.ID == userID {
		return ErrCannotModifySelf
	}
	if _, err := service.Get(userID); err != nil {
		return err
	}
	return service.users.Delete(userID)
}

// Rename is open to the profile owner and to admins, as are SetAvatar and ChangePassword.
func (service *UserService) Rename(actor models.User, userID uint, name string) (models.User, error) {
	if err := ensureProfileAccess(actor, userID); err != nil {
		return models.User{}, err
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.User{}, ErrUserNameRequired
	}
	if _, err := service.Get(userID); err != nil {
		return models.User{}, err
	}

	if err := service.users.UpdateByID(userID, map[string]any{"name": trimmed}); err != nil {
		return models.User{}, err
	}
	return service.Get(userID)
}

func (service *UserService) SetAvatar(actor models.User, userID uint, image string) (models.User, error) {
	if err := ensureProfileAccess(actor, userID); err != nil {
		return models.User{}, err
	}
	trimmed := strings.TrimSpace(image)
	if err := validateAvatar(trimmed); err != nil {
		return models.User{}, err
	}
	if _, err := service.Get(userID); err != nil {
		return models.User{}, err
	}

	if err := service.users.UpdateByID(userID, map[string]any{"profile_image": trimmed}); err != nil {
		return models.User{}, err
	}
	return service.Get(userID)
}

// ChangePassword asks for the current password only when a non-admin edits
// their own profile.
func (service *UserService) ChangePassword(actor models.User, userID uint, currentPassword string, newPassword string) error {
	if err := ensureProfileAccess(actor, userID); err != nil {
		return err
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	target, err := service.Get(userID)
	if err != nil {
		return err
	}
	if actor.ID == userID && !actor.IsAdmin() {
		if currentPassword == "" {
			return ErrCurrentPasswordRequired
		}
		if !security.PasswordMatches(target.PasswordHash, currentPassword) {
			return ErrIncorrectPassword
		}
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return service.users.UpdatePassword(userID, hash, false)
}

func (service *UserService) Stats(userID uint) (ProfileStats, error) {
	user, err := service.Get(userID)
	if err != nil {
		return ProfileStats{}, err
	}

	preps, err := service.preps.ListByPreparer(user.Name)
	if err != nil {
		return ProfileStats{}, err
	}
	return summarizeProfile(preps), nil
}

func summarizeProfile(preps []models.Prep) ProfileStats {
	stats := ProfileStats{TotalPreps: len(preps)}
	formulas := make(map[uint]struct{}, len(preps))
	for _, prep := range preps {
		stats.TotalQty += prep.Qty
		formulas[prep.FormulaID] = struct{}{}
	}
	stats.DistinctFormulas = len(formulas)
	return stats
}

func (service *UserService) ensureUniquePhaID(phaID string, excludeID uint) error {
	exists, err := service.users.ExistsByPhaID(phaID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicatePhaID
	}
	return nil
}

func ensureProfileAccess(actor models.User, userID uint) error {
	if actor.ID == userID || actor.IsAdmin() {
		return nil
	}
	return ErrNotAllowed
}

func normalizeUserInput(input UserInput) (string, string, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", "", "", ErrUserNameRequired
	}
	phaID := strings.TrimSpace(input.PhaID)
	if phaID == "" {
		return "", "", "", ErrPhaIDRequired
	}

	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return "", "", "", ErrInvalidRole
	}
	return name, phaID, role, nil
}

// validateAvatar accepts a preset path or a base64 image data URI.
func validateAvatar(image string) error {
	if _, ok := presetAvatars[image]; ok {
		return nil
	}

	const marker = ";base64,"
	if !strings.HasPrefix(image, "data:image/") {
		return ErrInvalidAvatar
	}
	separator := strings.Index(image, marker)
	if separator < 0 {
		return ErrInvalidAvatar
	}

	payload := image[separator+len(marker):]
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxAvatarBytes+2 {
		return ErrAvatarTooLarge
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalidAvatar
	}
	if len(decoded) > MaxAvatarBytes {
		return ErrAvatarTooLarge
	}
	return nil
}
