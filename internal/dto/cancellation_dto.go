package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Open Workflow ---

// OpenWorkflowRequest starts (or resumes) a cancellation flow for a subscription
type OpenWorkflowRequest struct {
	SubscriptionId uuid.UUID `json:"subscription_id" validate:"required"`
	SessionId      string    `json:"session_id,omitempty"`
}

// OpenWorkflowResponse after opening the flow; the variant is sticky per attempt
type OpenWorkflowResponse struct {
	AttemptId       uuid.UUID                `json:"attempt_id"`
	DownsellVariant string                   `json:"downsell_variant"`
	OriginalPrice   int64                    `json:"original_price"`
	OfferedPrice    int64                    `json:"offered_price"`
	Snapshot        WorkflowSnapshotResponse `json:"snapshot"`
}

// --- Intents ---

// IntentRequest carries a single workflow action. The payload fields are
// interpreted by kind; unused ones stay empty.
type IntentRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=answer accept_offer decline_offer confirm keep_subscription back close"`
	Answer      string `json:"answer,omitempty"`
	Reason      string `json:"reason,omitempty"`
	ReasonOther string `json:"reason_other,omitempty"`
}

// --- Snapshot ---

// WorkflowSnapshotResponse mirrors what the UI renders between intents
type WorkflowSnapshotResponse struct {
	Step          string `json:"step"`
	OfferAccepted bool   `json:"offer_accepted"`
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
}

// --- Async Email Jobs ---

// Email job kinds carried on the in-process bus
const (
	EmailJobDownsellApplied       = "downsell_applied"
	EmailJobCancellationConfirmed = "cancellation_confirmed"
)

// PublishCancellationEmailMessage is the payload queued for the email worker
type PublishCancellationEmailMessage struct {
	Kind         string    `json:"kind"`
	UserId       uuid.UUID `json:"user_id"`
	AttemptId    uuid.UUID `json:"attempt_id"`
	OfferedPrice int64     `json:"offered_price,omitempty"`
	PeriodEnd    time.Time `json:"period_end,omitempty"`
}

// --- Attempt Detail ---

// CancellationAttemptResponse for reading a persisted attempt record
type CancellationAttemptResponse struct {
	Id               uuid.UUID  `json:"id"`
	SubscriptionId   uuid.UUID  `json:"subscription_id"`
	DownsellVariant  string     `json:"downsell_variant"`
	Status           string     `json:"status"`
	Reason           string     `json:"reason,omitempty"`
	ReasonOther      string     `json:"reason_other,omitempty"`
	AcceptedDownsell bool       `json:"accepted_downsell"`
	OriginalPrice    *int64     `json:"downsell_original_price,omitempty"`
	OfferedPrice     *int64     `json:"downsell_offered_price,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
