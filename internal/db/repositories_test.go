package db

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"gorm.io/gorm"
)

func newTestRepositories(t *testing.T) *Repositories {
	t.Helper()
	database := openSQLiteForMigrationTest(t, filepath.Join(t.TempDir(), "edextemp-repo.db"))
	return NewRepositories(database)
}

func TestUserRepositoryListsByIDAscendingAndDetectsDuplicates(t *testing.T) {
	repos := newTestRepositories(t)

	for _, phaID := range []string{"PHA-2", "PHA-1"} {
		user := models.User{Name: "User " + phaID, PhaID: phaID, PasswordHash: "hash", Role: models.RoleUser, Active: true}
		if err := repos.Users.Create(&user); err != nil {
			t.Fatalf("create user %s: %v", phaID, err)
		}
	}

	users, err := repos.Users.List()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 || users[0].PhaID != "PHA-2" || users[1].PhaID != "PHA-1" {
		t.Fatalf("expected insertion (id) order, got %#v", users)
	}

	exists, err := repos.Users.ExistsByPhaID("PHA-1", 0)
	if err != nil {
		t.Fatalf("exists by pha id: %v", err)
	}
	if !exists {
		t.Fatal("expected PHA-1 to exist")
	}

	exists, err = repos.Users.ExistsByPhaID("PHA-1", users[1].ID)
	if err != nil {
		t.Fatalf("exists by pha id excluding self: %v", err)
	}
	if exists {
		t.Fatal("expected PHA-1 to be ignored when excluding its own id")
	}

	duplicate := models.User{Name: "Dup", PhaID: "PHA-1", PasswordHash: "hash", Role: models.RoleUser}
	if err := repos.Users.Create(&duplicate); err == nil {
		t.Fatal("expected unique index to reject duplicate pha_id")
	}
}

func TestPrepRepositoryOrderingAndMaxID(t *testing.T) {
	repos := newTestRepositories(t)

	maxID, err := repos.Preps.MaxID()
	if err != nil {
		t.Fatalf("max id on empty table: %v", err)
	}
	if maxID != 0 {
		t.Fatalf("expected max id 0 on empty table, got %d", maxID)
	}

	dates := []string{"2026-09-30", "2026-10-01", "2026-10-15"}
	for _, date := range dates {
		prep := models.Prep{
			FormulaID:   1,
			FormulaName: "Cefazolin",
			Mode:        models.ModeStock,
			Target:      "Stock → คลินิกตา",
			LotNo:       "LOT-" + date,
			Date:        date,
			ExpiryDate:  date,
			Qty:         2,
			PreparedBy:  "Somchai",
			Location:    "ห้องจ่ายยาผู้ป่วยนอก",
		}
		if err := repos.Preps.Create(&prep); err != nil {
			t.Fatalf("create prep: %v", err)
		}
	}

	preps, err := repos.Preps.List()
	if err != nil {
		t.Fatalf("list preps: %v", err)
	}
	if len(preps) != 3 || preps[0].Date != "2026-10-15" {
		t.Fatalf("expected newest prep first, got %#v", preps)
	}

	maxID, err = repos.Preps.MaxID()
	if err != nil {
		t.Fatalf("max id: %v", err)
	}
	if maxID != preps[0].ID {
		t.Fatalf("expected max id %d, got %d", preps[0].ID, maxID)
	}

	october, err := repos.Preps.ListBetweenDates("2026-10-01", "2026-10-31")
	if err != nil {
		t.Fatalf("list between dates: %v", err)
	}
	if len(october) != 2 {
		t.Fatalf("expected 2 october preps, got %d", len(october))
	}
}

func TestRepositoriesWrapNotFound(t *testing.T) {
	repos := newTestRepositories(t)

	lookups := []struct {
		name   string
		find   func() error
		prefix string
	}{
		{name: "user", find: func() error { _, err := repos.Users.FindByID(99); return err }, prefix: "find user 99"},
		{name: "user by pha_id", find: func() error { _, err := repos.Users.FindByPhaID("nobody"); return err }, prefix: "find user by pha_id"},
		{name: "formula", find: func() error { _, err := repos.Formulas.FindByID(99); return err }, prefix: "find formula 99"},
		{name: "prep", find: func() error { _, err := repos.Preps.FindByID(99); return err }, prefix: "find prep 99"},
	}

	for _, lookup := range lookups {
		t.Run(lookup.name, func(t *testing.T) {
			err := lookup.find()
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				t.Fatalf("expected wrapped ErrRecordNotFound, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), lookup.prefix) {
				t.Fatalf("expected error to start with %q, got %q", lookup.prefix, err.Error())
			}
		})
	}
}
