// The cancellation workflow state machine. One machine per open attempt;
// durable transitions go through the RecordStore and the machine never
// advances past a failed persistence call.
package state

import (
	"context"
	"sync"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/pkg/apperrors"
	"migratemate-be/pkg/cancelflow/validation"

	"github.com/google/uuid"
)

type Step string

const (
	StepReason       Step = "reason"
	StepDownsell     Step = "downsell"
	StepConfirmation Step = "confirmation"
	StepClosed       Step = "closed"
)

// Step 1 answers
const (
	AnswerStillLooking = "still_looking"
	AnswerFoundJob     = "found_job"
)

// RecordStore is the narrow persistence surface the machine drives.
// Implementations must be idempotent for a repeated transition.
type RecordStore interface {
	RecordDownsellAcceptance(ctx context.Context, attemptId uuid.UUID, originalPrice, offeredPrice int64) error
	RecordConfirmation(ctx context.Context, attemptId uuid.UUID, reason entity.CancellationReason, reasonOther string) error
}

// Snapshot is the value passed to the presentation boundary after every
// intent. It is a copy; nothing here is shared mutable state.
type Snapshot struct {
	Step          Step   `json:"step"`
	OfferAccepted bool   `json:"offer_accepted"`
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
}

// Intents

type Intent interface {
	intentName() string
}

type Answer struct {
	Value string
}

type AcceptOffer struct{}

type DeclineOffer struct{}

type Confirm struct {
	Reason      string
	ReasonOther string
}

type KeepSubscription struct{}

type Back struct{}

type Close struct{}

func (Answer) intentName() string           { return "answer" }
func (AcceptOffer) intentName() string      { return "accept_offer" }
func (DeclineOffer) intentName() string     { return "decline_offer" }
func (Confirm) intentName() string          { return "confirm" }
func (KeepSubscription) intentName() string { return "keep_subscription" }
func (Back) intentName() string             { return "back" }
func (Close) intentName() string            { return "close" }

// Machine holds the in-memory workflow position for one attempt. Intents
// are serialized by a mutex, so no two transitions run concurrently for the
// same attempt.
type Machine struct {
	mu sync.Mutex

	attemptId     uuid.UUID
	variant       entity.DownsellVariant
	originalPrice int64
	offeredPrice  int64
	store         RecordStore

	step            Step
	answer          string
	offerAccepted   bool
	downsellVisited bool

	snapMu sync.RWMutex
	snap   Snapshot
}

// NewMachine starts a machine at the reason step. The variant and attempt
// must already be resolved; prices are the downsell snapshot candidates in
// minor currency units.
func NewMachine(attemptId uuid.UUID, variant entity.DownsellVariant, originalPrice, offeredPrice int64, store RecordStore) *Machine {
	m := &Machine{
		attemptId:     attemptId,
		variant:       variant,
		originalPrice: originalPrice,
		offeredPrice:  offeredPrice,
		store:         store,
		step:          StepReason,
	}
	m.publishSnapshot(false, nil)
	return m
}

func (m *Machine) AttemptId() uuid.UUID {
	return m.attemptId
}

func (m *Machine) Variant() entity.DownsellVariant {
	return m.variant
}

func (m *Machine) OriginalPrice() int64 {
	return m.originalPrice
}

func (m *Machine) OfferedPrice() int64 {
	return m.offeredPrice
}

// Snapshot returns the last published snapshot. Safe to call while a
// transition is in flight; Loading is true for its duration.
func (m *Machine) Snapshot() Snapshot {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	return m.snap
}

// Submit applies one intent and returns the resulting snapshot. On error the
// machine stays in its pre-transition step and the error is also carried in
// the snapshot for rendering.
func (m *Machine) Submit(ctx context.Context, intent Intent) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step == StepClosed {
		err := apperrors.InvalidState("workflow is closed; reopen to start over")
		return m.publishSnapshot(false, err), err
	}

	var err error
	switch it := intent.(type) {
	case Answer:
		err = m.applyAnswer(it)
	case AcceptOffer:
		err = m.applyAcceptOffer(ctx)
	case DeclineOffer:
		err = m.applyDeclineOffer()
	case Confirm:
		err = m.applyConfirm(ctx, it)
	case KeepSubscription:
		err = m.applyKeepSubscription()
	case Back:
		err = m.applyBack()
	case Close:
		m.step = StepClosed
	default:
		err = apperrors.InvalidState("unknown intent")
	}

	return m.publishSnapshot(false, err), err
}

func (m *Machine) applyAnswer(it Answer) error {
	if m.step != StepReason {
		return apperrors.InvalidState("answer is only accepted on the reason step")
	}
	if it.Value != AnswerStillLooking && it.Value != AnswerFoundJob {
		return apperrors.InvalidEnum("answer", it.Value)
	}

	m.answer = it.Value
	if m.variant == entity.VariantB && it.Value == AnswerStillLooking {
		m.step = StepDownsell
		m.downsellVisited = true
	} else {
		m.step = StepConfirmation
		m.offerAccepted = false
	}
	return nil
}

func (m *Machine) applyAcceptOffer(ctx context.Context) error {
	if m.step != StepDownsell {
		return apperrors.InvalidState("no downsell offer to accept")
	}
	if err := validation.ValidatePricing(m.originalPrice, m.offeredPrice); err != nil {
		return err
	}

	m.publishSnapshot(true, nil)
	if err := m.store.RecordDownsellAcceptance(ctx, m.attemptId, m.originalPrice, m.offeredPrice); err != nil {
		return err
	}

	m.offerAccepted = true
	m.step = StepConfirmation
	return nil
}

func (m *Machine) applyDeclineOffer() error {
	if m.step != StepDownsell {
		return apperrors.InvalidState("no downsell offer to decline")
	}
	m.offerAccepted = false
	m.step = StepConfirmation
	return nil
}

func (m *Machine) applyConfirm(ctx context.Context, it Confirm) error {
	if m.step != StepConfirmation {
		return apperrors.InvalidState("confirmation is only accepted on the confirmation step")
	}

	reason, reasonOther, err := validation.ValidateReason(it.Reason, it.ReasonOther)
	if err != nil {
		return err
	}

	m.publishSnapshot(true, nil)
	if err := m.store.RecordConfirmation(ctx, m.attemptId, reason, reasonOther); err != nil {
		return err
	}

	m.step = StepClosed
	return nil
}

func (m *Machine) applyKeepSubscription() error {
	if m.step != StepConfirmation {
		return apperrors.InvalidState("keep-subscription is only accepted on the confirmation step")
	}
	// Abandonment: the attempt stays un-confirmed for later resumption.
	m.step = StepClosed
	return nil
}

func (m *Machine) applyBack() error {
	switch m.step {
	case StepDownsell:
		m.step = StepReason
		m.offerAccepted = false
		m.downsellVisited = false
	case StepConfirmation:
		if m.downsellVisited {
			// Only the in-memory flag resets; an already-persisted downsell
			// acceptance stays recorded until the attempt is confirmed.
			m.offerAccepted = false
			m.step = StepDownsell
		} else {
			m.step = StepReason
		}
	default:
		return apperrors.InvalidState("nothing to go back to")
	}
	return nil
}

func (m *Machine) publishSnapshot(loading bool, err error) Snapshot {
	snap := Snapshot{
		Step:          m.step,
		OfferAccepted: m.offerAccepted,
		Loading:       loading,
	}
	if err != nil {
		snap.Error = err.Error()
	}

	m.snapMu.Lock()
	m.snap = snap
	m.snapMu.Unlock()
	return snap
}
