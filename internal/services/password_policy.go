package services

import "errors"

const MinPasswordLength = 4

var (
	ErrWeakPassword     = errors.New("password must be at least 4 characters")
	ErrPasswordMismatch = errors.New("password confirmation does not match")
)

func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func ValidatePasswordChange(password string, confirmation string) error {
	if err := ValidatePasswordStrength(password); err != nil {
		return err
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}
