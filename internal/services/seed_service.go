package services

import (
	"fmt"

	"github.com/uttaradit-pharmacy/edextemp/internal/models"
	"github.com/uttaradit-pharmacy/edextemp/internal/security"
)

const (
	seedAdminName     = "Admin"
	seedAdminPhaID    = "Admin"
	seedAdminPassword = "1234"
)

type SeedUserRepository interface {
	CountUsers() (int64, error)
	Create(user *models.User) error
}

type SeedFormulaRepository interface {
	Count() (int64, error)
	CreateBatch(formulas []models.Formula) error
}

type SeedResult struct {
	AdminCreated    bool
	FormulasCreated int
}

type SeedService struct {
	users    SeedUserRepository
	formulas SeedFormulaRepository
}

func NewSeedService(users SeedUserRepository, formulas SeedFormulaRepository) *SeedService {
	return &SeedService{users: users, formulas: formulas}
}

// Seed creates the bootstrap admin and the sample formula catalog. Each part
// runs only while its table is empty, so repeated runs are no-ops.
func (service *SeedService) Seed() (SeedResult, error) {
	result := SeedResult{}

	userCount, err := service.users.CountUsers()
	if err != nil {
		return result, fmt.Errorf("count users: %w", err)
	}
	if userCount == 0 {
		hash, err := security.HashPassword(seedAdminPassword)
		if err != nil {
			return result, fmt.Errorf("hash admin password: %w", err)
		}
		admin := models.User{
			Name:               seedAdminName,
			PhaID:              seedAdminPhaID,
			PasswordHash:       hash,
			Role:               models.RoleAdmin,
			Active:             true,
			MustChangePassword: true,
			ProfileImage:       models.DefaultProfileImage,
		}
		if err := service.users.Create(&admin); err != nil {
			return result, fmt.Errorf("create admin: %w", err)
		}
		result.AdminCreated = true
	}

	formulaCount, err := service.formulas.Count()
	if err != nil {
		return result, fmt.Errorf("count formulas: %w", err)
	}
	if formulaCount == 0 {
		catalog := SampleFormulas()
		if err := service.formulas.CreateBatch(catalog); err != nil {
			return result, fmt.Errorf("create formulas: %w", err)
		}
		result.FormulasCreated = len(catalog)
	}

	return result, nil
}

func SampleFormulas() []models.Formula {
	return []models.Formula{
		{
			Code:          "CEF50",
			Name:          "Fortified Cefazolin Eye Drops",
			ShortName:     "Cefazolin",
			Description:   "ยาหยอดตาปฏิชีวนะ Cefazolin ความเข้มข้นสูง",
			Concentration: "50 mg/mL",
			ExpiryDays:    7,
			Category:      models.CategoryAntibiotic,
			Price:         150,
			Storage:       DefaultFormulaStorage,
			Ingredients:   "- Cefazolin 1g vial x 1\n- Artificial Tears 15 mL x 1",
			Method:        "1. เตรียมในตู้ปลอดเชื้อ\n2. ละลาย Cefazolin ด้วย Artificial Tears\n3. ดูดยาใส่ขวดหยอดตา\n4. ติดฉลาก เก็บในตู้เย็น 2-8°C",
		},
		{
			Code:          "GEN14",
			Name:          "Fortified Gentamicin Eye Drops",
			ShortName:     "Gentamicin",
			Description:   "ยาหยอดตาปฏิชีวนะ Gentamicin ความเข้มข้นสูง",
			Concentration: "14 mg/mL",
			ExpiryDays:    7,
			Category:      models.CategoryAntibiotic,
			Price:         120,
			Storage:       DefaultFormulaStorage,
			Ingredients:   "- Gentamicin Inj 80mg/2mL x 1\n- Artificial Tears 15 mL x 1",
			Method:        "1. เตรียมในตู้ปลอดเชื้อ\n2. ดูด Gentamicin injection\n3. ผสมกับ Artificial Tears\n4. ติดฉลาก เก็บตู้เย็น 2-8°C",
		},
		{
			Code:          "VAN25",
			Name:          "Fortified Vancomycin Eye Drops",
			ShortName:     "Vancomycin",
			Description:   "ยาหยอดตาปฏิชีวนะ Vancomycin",
			Concentration: "25 mg/mL",
			ExpiryDays:    7,
			Category:      models.CategoryAntibiotic,
			Price:         350,
			Storage:       DefaultFormulaStorage,
			Ingredients:   "- Vancomycin 500mg vial x 1\n- SWFI 10 mL\n- Artificial Tears 15 mL",
			Method:        "1. ละลาย Vancomycin ด้วย SWFI 10 mL\n2. ดูด 5 mL ผสม Artificial Tears 15 mL\n3. บรรจุขวดหยอดตา\n4. เก็บตู้เย็น 2-8°C",
		},
		{
			Code:          "AMB15",
			Name:          "Amphotericin B Eye Drops",
			ShortName:     "Amphotericin B",
			Description:   "ยาหยอดตาต้านเชื้อรา",
			Concentration: "1.5 mg/mL",
			ExpiryDays:    7,
			Category:      models.CategoryAntifungal,
			Price:         280,
			Storage:       "เก็บในตู้เย็น 2-8°C ห่อฟอยล์กันแสง",
			Ingredients:   "- Amphotericin B 50mg vial x 1\n- SWFI 10 mL\n- D5W 15 mL",
			Method:        "1. ละลาย Amphotericin B ด้วย SWFI\n2. เจือจางด้วย D5W\n3. กรอง 0.22 µm filter\n4. บรรจุขวด ห่อฟอยล์กันแสง",
		},
		{
			Code:          "AUTO20",
			Name:          "Autologous Serum Eye Drops",
			ShortName:     "Autologous Serum",
			Description:   "ยาหยอดตาจาก Serum ผู้ป่วย",
			Concentration: "20%",
			ExpiryDays:    30,
			Category:      models.CategoryLubricant,
			Price:         0,
			Storage:       "เก็บ -20°C",
			Ingredients:   "- เลือดผู้ป่วย (clotted blood)\n- NSS (Normal Saline)",
			Method:        "1. เจาะเลือด 20 mL\n2. ปั่นเหวี่ยง 3000 rpm 10 นาที\n3. ดูด Serum เจือจาง NSS 1:4\n4. บรรจุขวด เก็บ -20°C",
		},
		{
			Code:          "VOR10",
			Name:          "Voriconazole Eye Drops",
			ShortName:     "Voriconazole",
			Description:   "ยาหยอดตาต้านเชื้อรา Voriconazole",
			Concentration: "10 mg/mL (1%)",
			ExpiryDays:    14,
			Category:      models.CategoryAntifungal,
			Price:         500,
			Storage:       DefaultFormulaStorage,
			Ingredients:   "- Voriconazole 200mg vial x 1\n- SWFI 19 mL",
			Method:        "1. ละลาย Voriconazole 200mg ด้วย SWFI 19 mL\n2. ได้ ~10 mg/mL\n3. บรรจุขวดหยอดตา\n4. เก็บตู้เย็น 2-8°C",
		},
	}
}
