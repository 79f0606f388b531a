//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
)

func TestOpenPostgresAppliesMigrations(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("edextemp"),
		postgres.WithUsername("edextemp"),
		postgres.WithPassword("edextemp"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	database, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(database)
	})

	repos := NewRepositories(database)
	formula := models.Formula{Code: "CEF", Name: "Cefazolin", Concentration: "50 mg/mL", ExpiryDays: 7, Category: models.CategoryAntibiotic, PackageSize: "5 mL"}
	if err := repos.Formulas.Create(&formula); err != nil {
		t.Fatalf("create formula: %v", err)
	}

	loaded, err := repos.Formulas.FindByID(formula.ID)
	if err != nil {
		t.Fatalf("find formula: %v", err)
	}
	if loaded.PackageSize != "5 mL" {
		t.Fatalf("expected package size to round-trip, got %q", loaded.PackageSize)
	}

	// second run must be a no-op
	if err := applyEmbeddedMigrations(database, postgresDialect); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
}
