package specification

import "gorm.io/gorm"

type ByThreadKey struct {
	ThreadKey string
}

func (s ByThreadKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_key = ?", s.ThreadKey)
}

type ByThreadID struct {
	ThreadID int64
}

func (s ByThreadID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadID)
}

// NewestFirst orders by creation time, breaking ties on id so equal
// timestamps keep insertion order.
type NewestFirst struct{}

func (s NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

type Limit struct {
	N int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.N)
}
