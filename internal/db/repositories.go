package db

import "gorm.io/gorm"

type Repositories struct {
	Users    *UserRepository
	Formulas *FormulaRepository
	Preps    *PrepRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(database),
		Formulas: NewFormulaRepository(database),
		Preps:    NewPrepRepository(database),
	}
}
