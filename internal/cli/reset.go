package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/uttaradit-pharmacy/edextemp/internal/db"
	"github.com/uttaradit-pharmacy/edextemp/internal/security"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 10

// RunResetPasswordCommand replaces the password of the account with the
// given pha_id by a generated temporary one and forces a change at next
// login. The temporary password is written to out.
func RunResetPasswordCommand(database *gorm.DB, phaID string, out io.Writer) error {
	normalized := strings.TrimSpace(phaID)
	if normalized == "" {
		return errors.New("pha_id is required")
	}

	users := db.NewUserRepository(database)
	user, err := users.FindByPhaID(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s not found", normalized)
		}
		return fmt.Errorf("load user: %w", err)
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}
	passwordHash, err := security.HashPassword(temporaryPassword)
	if err != nil {
		return fmt.Errorf("hash temporary password: %w", err)
	}

	if err := users.UpdatePassword(user.ID, passwordHash, true); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	fmt.Fprintf(out, "Password reset for %s (%s)\n", user.Name, user.PhaID)
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "The user must choose a new password at next login.")
	return nil
}
