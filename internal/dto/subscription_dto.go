package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatusResponse for checking the subscription's current state
type SubscriptionStatusResponse struct {
	Id               uuid.UUID `json:"id"`
	Status           string    `json:"status"` // active, pending_cancellation, cancelled
	MonthlyPrice     int64     `json:"monthly_price"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
}
