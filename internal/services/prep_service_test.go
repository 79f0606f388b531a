package services

import (
	"errors"
	"testing"
	"time"

	"github.com/uttaradit-pharmacy/edextemp/internal/authz"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
)

var prepTestZone = time.FixedZone("ICT", 7*60*60)

func newPrepServiceFixture(t *testing.T, existing ...models.Prep) (*PrepService, *stubPrepRepo) {
	t.Helper()
	authorizer, err := authz.New()
	if err != nil {
		t.Fatalf("authz.New() unexpected error: %v", err)
	}
	formulas := newStubFormulaRepo(
		models.Formula{ID: 1, Name: "Fortified Cefazolin Eye Drops", Concentration: "50 mg/mL", ExpiryDays: 7},
		models.Formula{ID: 2, Name: "Autologous Serum Eye Drops", Concentration: "20%", ExpiryDays: -48},
	)
	preps := newStubPrepRepo(existing...)
	now := time.Date(2026, time.March, 10, 9, 15, 0, 0, prepTestZone)
	service := NewPrepService(preps, formulas, authorizer, prepTestZone, WithPrepClock(func() time.Time { return now }))
	return service, preps
}

func TestPrepServiceCreatePatient(t *testing.T) {
	service, _ := newPrepServiceFixture(t, models.Prep{ID: 41})
	actor := models.User{ID: 2, Name: "Somchai", PhaID: "P001", Role: models.RoleUser, Active: true}

	prep, err := service.Create(actor, StationOPD, CreatePrepInput{
		FormulaID:   1,
		Mode:        models.ModePatient,
		HN:          "123456",
		PatientName: "นาย ทดสอบ",
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if prep.Target != "HN: 123456 - นาย ทดสอบ" {
		t.Fatalf("unexpected target %q", prep.Target)
	}
	if prep.Date != "2026-03-10" || prep.ExpiryDate != "2026-03-17" {
		t.Fatalf("unexpected dates %q -> %q", prep.Date, prep.ExpiryDate)
	}
	if prep.LotNo != "LOT-202603-042" {
		t.Fatalf("unexpected lot %q", prep.LotNo)
	}
	if prep.Qty != 1 || prep.PreparedBy != "Somchai" || prep.UserPhaID != "P001" || prep.Location != StationOPD {
		t.Fatalf("unexpected prep %#v", prep)
	}
	if prep.FormulaName != "Fortified Cefazolin Eye Drops" || prep.Concentration != "50 mg/mL" {
		t.Fatalf("expected formula snapshot, got %#v", prep)
	}
}

func TestPrepServiceCreateStockDefaultsRoomFromStation(t *testing.T) {
	service, _ := newPrepServiceFixture(t)
	actor := models.User{ID: 2, Name: "Somchai", Role: models.RoleUser, Active: true}

	prep, err := service.Create(actor, StationSurgery, CreatePrepInput{FormulaID: 2, Mode: models.ModeStock, Qty: 4, LotNo: "CUSTOM-1"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if prep.DestRoom != RoomEmergency || prep.Target != "Stock → "+RoomEmergency {
		t.Fatalf("unexpected stock target %q", prep.Target)
	}
	if prep.LotNo != "CUSTOM-1" || prep.Qty != 4 {
		t.Fatalf("expected provided lot and qty, got %#v", prep)
	}
	if prep.ExpiryDate != "2026-03-12T09:15:00+07:00" {
		t.Fatalf("expected hour-based expiry, got %q", prep.ExpiryDate)
	}
}

func TestPrepServiceCreateValidation(t *testing.T) {
	service, _ := newPrepServiceFixture(t)
	actor := models.User{ID: 2, Name: "Somchai", Role: models.RoleUser, Active: true}

	testCases := []struct {
		name    string
		station string
		input   CreatePrepInput
		want    error
	}{
		{name: "missing station", station: "", input: CreatePrepInput{FormulaID: 1, Mode: models.ModeStock, DestRoom: "A"}, want: ErrStationRequired},
		{name: "unknown formula", station: StationOPD, input: CreatePrepInput{FormulaID: 99, Mode: models.ModeStock}, want: ErrFormulaNotFound},
		{name: "bad mode", station: StationOPD, input: CreatePrepInput{FormulaID: 1, Mode: "ward"}, want: ErrInvalidMode},
		{name: "missing patient", station: StationOPD, input: CreatePrepInput{FormulaID: 1, Mode: models.ModePatient, HN: "1"}, want: ErrPatientDetailsMissing},
		{name: "negative qty", station: StationOPD, input: CreatePrepInput{FormulaID: 1, Mode: models.ModeStock, Qty: -1}, want: ErrInvalidQuantity},
		{name: "bad date", station: StationOPD, input: CreatePrepInput{FormulaID: 1, Mode: models.ModeStock, Date: "10/03/2026"}, want: ErrInvalidPrepDate},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := service.Create(actor, testCase.station, testCase.input); !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
		})
	}
}

func TestPrepServiceCreateRunsHook(t *testing.T) {
	authorizer, err := authz.New()
	if err != nil {
		t.Fatalf("authz.New() unexpected error: %v", err)
	}
	var created []models.Prep
	service := NewPrepService(
		newStubPrepRepo(),
		newStubFormulaRepo(models.Formula{ID: 1, Name: "A", ExpiryDays: 7}),
		authorizer,
		prepTestZone,
		WithPrepCreatedHook(func(prep models.Prep) { created = append(created, prep) }),
	)

	if _, err := service.Create(models.User{Name: "U", Active: true}, StationOPD, CreatePrepInput{FormulaID: 1, Mode: models.ModeStock}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if len(created) != 1 || created[0].DestRoom != RoomEyeClinic {
		t.Fatalf("expected hook to observe the created prep, got %#v", created)
	}
}

func TestPrepServiceUpdatePermissions(t *testing.T) {
	existing := models.Prep{
		ID: 5, FormulaID: 1, FormulaName: "A", Mode: models.ModePatient, HN: "1", PatientName: "P",
		Target: "HN: 1 - P", LotNo: "LOT-202603-005", Date: "2026-03-01", ExpiryDate: "2026-03-08", Qty: 1,
		PreparedBy: "Somchai", Location: StationOPD,
	}
	service, preps := newPrepServiceFixture(t, existing)

	author := models.User{ID: 2, Name: "Somchai", Role: models.RoleUser, Active: true}
	other := models.User{ID: 3, Name: "Malee", Role: models.RoleUser, Active: true}
	admin := models.User{ID: 1, Name: "Admin", Role: models.RoleAdmin, Active: true}

	qty := 3
	note := "remade"
	if _, err := service.Update(other, 5, UpdatePrepInput{Qty: &qty}); !errors.Is(err, ErrPrepForbidden) {
		t.Fatalf("expected ErrPrepForbidden for non-author, got %v", err)
	}

	updated, err := service.Update(author, 5, UpdatePrepInput{Qty: &qty, Note: &note})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.Qty != 3 || updated.Note != "remade" || updated.ExpiryDate != "2026-03-08" {
		t.Fatalf("unexpected update result %#v", updated)
	}

	hn := "777"
	updated, err = service.Update(admin, 5, UpdatePrepInput{HN: &hn})
	if err != nil {
		t.Fatalf("admin Update() unexpected error: %v", err)
	}
	if updated.Target != "HN: 777 - P" {
		t.Fatalf("expected recomputed target, got %q", updated.Target)
	}

	zero := 0
	if _, err := service.Update(admin, 5, UpdatePrepInput{Qty: &zero}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	if err := service.Delete(other, 5); !errors.Is(err, ErrPrepForbidden) {
		t.Fatalf("expected ErrPrepForbidden on delete, got %v", err)
	}
	if err := service.Delete(author, 5); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, ok := preps.preps[5]; ok {
		t.Fatalf("expected prep to be deleted")
	}
	if err := service.Delete(admin, 5); !errors.Is(err, ErrPrepNotFound) {
		t.Fatalf("expected ErrPrepNotFound, got %v", err)
	}
}
