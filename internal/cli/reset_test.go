package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uttaradit-pharmacy/edextemp/internal/db"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/security"
	"gorm.io/gorm"
)

func openResetTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "edextemp-reset-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func TestRunResetPasswordCommand(t *testing.T) {
	database := openResetTestDatabase(t)

	hash, err := security.HashPassword("1234")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Name: "Somchai", PhaID: "pha001", PasswordHash: hash, Role: models.RoleUser, Active: true}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	var out bytes.Buffer
	if err := RunResetPasswordCommand(database, " pha001 ", &out); err != nil {
		t.Fatalf("RunResetPasswordCommand() unexpected error: %v", err)
	}

	var temporaryPassword string
	for _, line := range strings.Split(out.String(), "\n") {
		if value, ok := strings.CutPrefix(line, "Temporary password: "); ok {
			temporaryPassword = value
		}
	}
	if len(temporaryPassword) != temporaryPasswordLength {
		t.Fatalf("expected a %d character temporary password in output %q", temporaryPasswordLength, out.String())
	}

	var stored models.User
	if err := database.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !stored.MustChangePassword {
		t.Fatal("expected must_change_password to be set")
	}
	if !security.PasswordMatches(stored.PasswordHash, temporaryPassword) {
		t.Fatal("expected stored hash to match the printed temporary password")
	}
	if security.PasswordMatches(stored.PasswordHash, "1234") {
		t.Fatal("expected the old password to stop working")
	}
}

func TestRunResetPasswordCommandRejectsUnknownUser(t *testing.T) {
	database := openResetTestDatabase(t)

	tests := []struct {
		name  string
		phaID string
		want  string
	}{
		{name: "blank", phaID: "  ", want: "pha_id is required"},
		{name: "missing", phaID: "pha404", want: "user pha404 not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := RunResetPasswordCommand(database, tc.phaID, &bytes.Buffer{})
			if err == nil || err.Error() != tc.want {
				t.Fatalf("expected error %q, got %v", tc.want, err)
			}
		})
	}
}
