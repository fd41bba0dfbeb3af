package entity

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus for the billing subscription owned by the billing system.
// This service only ever moves active -> pending_cancellation.
type SubscriptionStatus string

const (
	SubscriptionStatusActive              SubscriptionStatus = "active"
	SubscriptionStatusPendingCancellation SubscriptionStatus = "pending_cancellation"
	SubscriptionStatusCancelled           SubscriptionStatus = "cancelled"
)

type Subscription struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	MonthlyPrice     int64 // minor currency units
	Status           SubscriptionStatus
	CurrentPeriodEnd time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
