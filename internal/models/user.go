package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const DefaultProfileImage = "/avatars/male-pharmacist.png"

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"not null" json:"name"`
	PhaID              string    `gorm:"column:pha_id;uniqueIndex;not null" json:"pha_id"`
	PasswordHash       string    `gorm:"not null" json:"-"`
	Role               string    `gorm:"not null;default:user" json:"role"`
	Active             bool      `gorm:"not null;default:true" json:"active"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"must_change_password"`
	ProfileImage       string    `json:"profile_image"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}

func (user User) IsAdmin() bool {
	return user.Role == RoleAdmin
}
