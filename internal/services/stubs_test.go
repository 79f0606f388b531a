package services

import (
	"sort"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/security"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newStubUserRepo(users ...models.User) *stubUserRepo {
	stub := &stubUserRepo{users: map[uint]models.User{}}
	for _, user := range users {
		stub.users[user.ID] = user
		if user.ID > stub.nextID {
			stub.nextID = user.ID
		}
	}
	return stub
}

func (stub *stubUserRepo) CountUsers() (int64, error) {
	return int64(len(stub.users)), nil
}

func (stub *stubUserRepo) List() ([]models.User, error) {
	result := make([]models.User, 0, len(stub.users))
	for _, user := range stub.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (stub *stubUserRepo) FindByID(userID uint) (models.User, error) {
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubUserRepo) FindByPhaID(phaID string) (models.User, error) {
	for _, user := range stub.users {
		if user.PhaID == phaID {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (stub *stubUserRepo) ExistsByPhaID(phaID string, excludeID uint) (bool, error) {
	for _, user := range stub.users {
		if user.PhaID == phaID && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubUserRepo) Create(user *models.User) error {
	stub.nextID++
	user.ID = stub.nextID
	stub.users[user.ID] = *user
	return nil
}

func (stub *stubUserRepo) UpdateByID(userID uint, updates map[string]any) error {
	user, ok := stub.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range updates {
		switch column {
		case "name":
			user.Name = value.(string)
		case "pha_id":
			user.PhaID = value.(string)
		case "role":
			user.Role = value.(string)
		case "profile_image":
			user.ProfileImage = value.(string)
		case "password_hash":
			user.PasswordHash = value.(string)
		case "must_change_password":
			user.MustChangePassword = value.(bool)
		case "active":
			user.Active = value.(bool)
		}
	}
	stub.users[userID] = user
	return nil
}

func (stub *stubUserRepo) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	return stub.UpdateByID(userID, map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	})
}

func (stub *stubUserRepo) Delete(userID uint) error {
	delete(stub.users, userID)
	return nil
}

type stubFormulaRepo struct {
	formulas map[uint]models.Formula
	nextID   uint
}

func newStubFormulaRepo(formulas ...models.Formula) *stubFormulaRepo {
	stub := &stubFormulaRepo{formulas: map[uint]models.Formula{}}
	for _, formula := range formulas {
		stub.formulas[formula.ID] = formula
		if formula.ID > stub.nextID {
			stub.nextID = formula.ID
		}
	}
	return stub
}

func (stub *stubFormulaRepo) Count() (int64, error) {
	return int64(len(stub.formulas)), nil
}

func (stub *stubFormulaRepo) List() ([]models.Formula, error) {
	result := make([]models.Formula, 0, len(stub.formulas))
	for _, formula := range stub.formulas {
		result = append(result, formula)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (stub *stubFormulaRepo) FindByID(formulaID uint) (models.Formula, error) {
	formula, ok := stub.formulas[formulaID]
	if !ok {
		return models.Formula{}, gorm.ErrRecordNotFound
	}
	return formula, nil
}

func (stub *stubFormulaRepo) Create(formula *models.Formula) error {
	stub.nextID++
	formula.ID = stub.nextID
	stub.formulas[formula.ID] = *formula
	return nil
}

func (stub *stubFormulaRepo) CreateBatch(formulas []models.Formula) error {
	for index := range formulas {
		if err := stub.Create(&formulas[index]); err != nil {
			return err
		}
	}
	return nil
}

func (stub *stubFormulaRepo) Save(formula *models.Formula) error {
	stub.formulas[formula.ID] = *formula
	return nil
}

func (stub *stubFormulaRepo) Delete(formulaID uint) error {
	delete(stub.formulas, formulaID)
	return nil
}

type stubPrepRepo struct {
	preps  map[uint]models.Prep
	nextID uint
}

func newStubPrepRepo(preps ...models.Prep) *stubPrepRepo {
	stub := &stubPrepRepo{preps: map[uint]models.Prep{}}
	for _, prep := range preps {
		stub.preps[prep.ID] = prep
		if prep.ID > stub.nextID {
			stub.nextID = prep.ID
		}
	}
	return stub
}

func (stub *stubPrepRepo) List() ([]models.Prep, error) {
	result := make([]models.Prep, 0, len(stub.preps))
	for _, prep := range stub.preps {
		result = append(result, prep)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (stub *stubPrepRepo) ListBetweenDates(from string, to string) ([]models.Prep, error) {
	all, _ := stub.List()
	result := make([]models.Prep, 0, len(all))
	for _, prep := range all {
		if prep.Date >= from && prep.Date <= to {
			result = append(result, prep)
		}
	}
	return result, nil
}

func (stub *stubPrepRepo) ListByPreparer(preparedBy string) ([]models.Prep, error) {
	all, _ := stub.List()
	result := make([]models.Prep, 0, len(all))
	for _, prep := range all {
		if prep.PreparedBy == preparedBy {
			result = append(result, prep)
		}
	}
	return result, nil
}

func (stub *stubPrepRepo) FindByID(prepID uint) (models.Prep, error) {
	prep, ok := stub.preps[prepID]
	if !ok {
		return models.Prep{}, gorm.ErrRecordNotFound
	}
	return prep, nil
}

func (stub *stubPrepRepo) MaxID() (uint, error) {
	var maxID uint
	for id := range stub.preps {
		if id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

func (stub *stubPrepRepo) Create(prep *models.Prep) error {
	stub.nextID++
	prep.ID = stub.nextID
	stub.preps[prep.ID] = *prep
	return nil
}

func (stub *stubPrepRepo) Save(prep *models.Prep) error {
	stub.preps[prep.ID] = *prep
	return nil
}

func (stub *stubPrepRepo) Delete(prepID uint) error {
	delete(stub.preps, prepID)
	return nil
}

func mustHashPassword(t interface{ Fatalf(string, ...any) }, password string) string {
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}
