package model

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`
	MonthlyPrice     int64     `gorm:"type:bigint;not null"` // minor currency units
	Status           string    `gorm:"type:varchar(50);not null;default:'active'"`
	CurrentPeriodEnd time.Time `gorm:"not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
