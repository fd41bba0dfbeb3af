package specification

import (
	"migratemate-be/internal/entity"

	"gorm.io/gorm"
)

// WithStatus filters cancellation attempts by workflow status
type WithStatus struct {
	Status entity.CancellationStatus
}

func (s WithStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}
