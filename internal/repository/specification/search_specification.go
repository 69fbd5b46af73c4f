package specification

import (
	"strings"

	"gorm.io/gorm"
)

// DocumentContains matches corpus documents containing every term, case-insensitively.
// LOWER + LIKE works on both postgres and sqlite.
type DocumentContains struct {
	Terms []string
}

func (s DocumentContains) Apply(db *gorm.DB) *gorm.DB {
	for _, term := range s.Terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		db = db.Where("LOWER(document) LIKE ?", "%"+term+"%")
	}
	return db
}
