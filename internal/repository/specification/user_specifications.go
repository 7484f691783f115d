package specification

import "gorm.io/gorm"

type ByID struct {
	ID int64
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByGoogleSub struct {
	Sub string
}

func (s ByGoogleSub) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("google_sub = ?", s.Sub)
}
