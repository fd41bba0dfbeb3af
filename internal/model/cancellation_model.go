package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Cancellation GORM model for one cancellation attempt.
// Field names and enum values are part of the external contract; a partial
// unique index on (user_id) WHERE status = 'started' enforces at most one
// open attempt per user (created in cmd/migrate).
type Cancellation struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	SubscriptionID  uuid.UUID `gorm:"type:uuid;not null;index"`
	DownsellVariant string    `gorm:"type:varchar(1);not null"`                 // A, B
	Status          string    `gorm:"type:varchar(50);default:'started';index"` // started, downsell_accepted, confirmed
	Reason          *string   `gorm:"type:varchar(50)"`
	ReasonOther     *string   `gorm:"type:varchar(500)"`

	AcceptedDownsell      bool   `gorm:"default:false"`
	DownsellOriginalPrice *int64 `gorm:"type:bigint"`
	DownsellOfferedPrice  *int64 `gorm:"type:bigint"`

	SessionID *string `gorm:"type:varchar(32)"`
	UserAgent *string `gorm:"type:varchar(500)"`
	IPAddress *string `gorm:"type:varchar(45)"`

	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	// Relations
	Subscription Subscription `gorm:"foreignKey:SubscriptionID"`
	User         User         `gorm:"foreignKey:UserID"`
}

func (Cancellation) TableName() string {
	return "cancellations"
}

// CancellationEvent is the audit trail row written alongside every durable
// workflow transition, in the same transaction.
type CancellationEvent struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CancellationID uuid.UUID      `gorm:"type:uuid;not null;index"`
	EventType      string         `gorm:"type:varchar(50);not null"` // CANCELLATION_STARTED, DOWNSELL_ACCEPTED, CANCELLATION_CONFIRMED
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (CancellationEvent) TableName() string {
	return "cancellation_events"
}
