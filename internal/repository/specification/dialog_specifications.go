package specification

import "gorm.io/gorm"

// ByCorpus filters corpus records by dataset name
type ByCorpus struct {
	Corpus string
}

func (s ByCorpus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("corpus = ?", s.Corpus)
}

// BySessionID filters rows written on behalf of one dialog session
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByReferenceID looks up a report by its public reference (COMP123456)
type ByReferenceID struct {
	ReferenceID string
}

func (s ByReferenceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("reference_id = ?", s.ReferenceID)
}

// ByStatus filters on a status column
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
