package models

import "time"

const (
	CategoryAntibiotic = "antibiotic"
	CategoryAntifungal = "antifungal"
	CategorySteroid    = "steroid"
	CategoryLubricant  = "lubricant"
	CategoryOther      = "other"
)

const DefaultExpiryDays = 7

// Formula is a compounding recipe. ExpiryDays is a signed shelf life:
// positive values count days, negative values count hours.
type Formula struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"not null;default:''" json:"code"`
	Name          string    `gorm:"not null" json:"name"`
	ShortName     string    `json:"short_name"`
	Description   string    `json:"description"`
	Concentration string    `json:"concentration"`
	ExpiryDays    int       `gorm:"not null;default:7" json:"expiry_days"`
	Category      string    `gorm:"not null;default:other" json:"category"`
	Price         float64   `gorm:"not null;default:0" json:"price"`
	Storage       string    `json:"storage"`
	Ingredients   string    `json:"ingredients"`
	Method        string    `json:"method"`
	PackageSize   string    `json:"package_size"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (formula Formula) ExpiresInHours() bool {
	return formula.ExpiryDays < 0
}

func ValidCategory(category string) bool {
	switch category {
	case CategoryAntibiotic, CategoryAntifungal, CategorySteroid, CategoryLubricant, CategoryOther:
		return true
	default:
		return false
	}
}
