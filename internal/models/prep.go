package models

import "time"

const (
	ModePatient = "patient"
	ModeStock   = "stock"
)

type Prep struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FormulaID     uint      `gorm:"not null;index" json:"formula_id"`
	FormulaName   string    `gorm:"not null" json:"formula_name"`
	Concentration string    `json:"concentration"`
	Mode          string    `gorm:"not null" json:"mode"`
	Target        string    `gorm:"not null" json:"target"`
	HN            string    `gorm:"column:hn" json:"hn"`
	PatientName   string    `json:"patient_name"`
	DestRoom      string    `json:"dest_room"`
	LotNo         string    `gorm:"not null" json:"lot_no"`
	Date          string    `gorm:"not null;index" json:"date"`
	ExpiryDate    string    `gorm:"not null" json:"expiry_date"`
	Qty           int       `gorm:"not null;default:1" json:"qty"`
	Note          string    `json:"note"`
	PreparedBy    string    `gorm:"not null;index" json:"prepared_by"`
	UserPhaID     string    `gorm:"column:user_pha_id" json:"user_pha_id"`
	Location      string    `gorm:"not null" json:"location"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
