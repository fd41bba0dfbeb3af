package entity

import (
	"time"

	"github.com/google/uuid"
)

// DownsellVariant is the experiment arm assigned to a cancellation attempt.
// A = no downsell offer shown, B = downsell offer eligible.
type DownsellVariant string

const (
	VariantA DownsellVariant = "A"
	VariantB DownsellVariant = "B"
)

// CancellationStatus advances monotonically and never regresses once confirmed.
type CancellationStatus string

const (
	CancellationStatusStarted          CancellationStatus = "started"
	CancellationStatusDownsellAccepted CancellationStatus = "downsell_accepted"
	CancellationStatusConfirmed        CancellationStatus = "confirmed"
)

// CancellationReason is the closed set of reasons a user can pick.
type CancellationReason string

const (
	ReasonTooExpensive    CancellationReason = "too_expensive"
	ReasonNotUsing        CancellationReason = "not_using"
	ReasonMissingFeatures CancellationReason = "missing_features"
	ReasonTechnicalIssues CancellationReason = "technical_issues"
	ReasonCompetitor      CancellationReason = "competitor"
	ReasonTemporaryPause  CancellationReason = "temporary_pause"
	ReasonOther           CancellationReason = "other"
)

// CancellationReasons lists every valid reason, in display order.
var CancellationReasons = []CancellationReason{
	ReasonTooExpensive,
	ReasonNotUsing,
	ReasonMissingFeatures,
	ReasonTechnicalIssues,
	ReasonCompetitor,
	ReasonTemporaryPause,
	ReasonOther,
}

// CancellationAttempt represents one cancellation journey, from open to closed.
type CancellationAttempt struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	SubscriptionID  uuid.UUID
	DownsellVariant DownsellVariant
	Status          CancellationStatus
	Reason          *CancellationReason
	ReasonOther     *string

	AcceptedDownsell      bool
	DownsellOriginalPrice *int64 // minor currency units, captured on downsell accept
	DownsellOfferedPrice  *int64

	// Provenance, sanitized before it ever reaches here.
	SessionID *string
	UserAgent *string
	IPAddress *string

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpen reports whether the attempt can still be resumed.
func (a *CancellationAttempt) IsOpen() bool {
	return a.Status == CancellationStatusStarted
}

func (a *CancellationAttempt) IsConfirmed() bool {
	return a.Status == CancellationStatusConfirmed
}
