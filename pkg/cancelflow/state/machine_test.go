package state

import (
	"context"
	"errors"
	"testing"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	acceptCalls  int
	confirmCalls int

	lastOriginal int64
	lastOffered  int64
	lastReason   entity.CancellationReason
	lastOther    string

	acceptErr  error
	confirmErr error
}

func (f *fakeStore) RecordDownsellAcceptance(ctx context.Context, attemptId uuid.UUID, originalPrice, offeredPrice int64) error {
	f.acceptCalls++
	if f.acceptErr != nil {
		return f.acceptErr
	}
	f.lastOriginal = originalPrice
	f.lastOffered = offeredPrice
	return nil
}

func (f *fakeStore) RecordConfirmation(ctx context.Context, attemptId uuid.UUID, reason entity.CancellationReason, reasonOther string) error {
	f.confirmCalls++
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.lastReason = reason
	f.lastOther = reasonOther
	return nil
}

func newTestMachine(variant entity.DownsellVariant, store RecordStore) *Machine {
	return NewMachine(uuid.New(), variant, 2500, 1500, store)
}

func TestVariantANeverReachesDownsell(t *testing.T) {
	m := newTestMachine(entity.VariantA, &fakeStore{})

	snap, err := m.Submit(context.Background(), Answer{Value: AnswerStillLooking})
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, snap.Step)
	assert.False(t, snap.OfferAccepted)
}

func TestVariantBStillLookingReachesDownsell(t *testing.T) {
	m := newTestMachine(entity.VariantB, &fakeStore{})

	snap, err := m.Submit(context.Background(), Answer{Value: AnswerStillLooking})
	require.NoError(t, err)
	assert.Equal(t, StepDownsell, snap.Step)
}

func TestVariantBFoundJobSkipsDownsell(t *testing.T) {
	m := newTestMachine(entity.VariantB, &fakeStore{})

	snap, err := m.Submit(context.Background(), Answer{Value: AnswerFoundJob})
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, snap.Step)
	assert.False(t, snap.OfferAccepted)
}

func TestAnswerRejectsUnknownValue(t *testing.T) {
	m := newTestMachine(entity.VariantB, &fakeStore{})

	snap, err := m.Submit(context.Background(), Answer{Value: "maybe"})
	assert.Equal(t, apperrors.CodeInvalidEnum, apperrors.CodeOf(err))
	assert.Equal(t, StepReason, snap.Step)
	assert.NotEmpty(t, snap.Error)
}

func TestAcceptOfferPersistsAndAdvances(t *testing.T) {
	store := &fakeStore{}
	m := newTestMachine(entity.VariantB, store)

	_, err := m.Submit(context.Background(), Answer{Value: AnswerStillLooking})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), AcceptOffer{})
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, snap.Step)
	assert.True(t, snap.OfferAccepted)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, store.acceptCalls)
	assert.Equal(t, int64(2500), store.lastOriginal)
	assert.Equal(t, int64(1500), store.lastOffered)
}

func TestAcceptOfferFailureKeepsStep(t *testing.T) {
	store := &fakeStore{acceptErr: apperrors.Persistence("record downsell acceptance", errors.New("db down"))}
	m := newTestMachine(entity.VariantB, store)

	_, err := m.Submit(context.Background(), Answer{Value: AnswerStillLooking})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), AcceptOffer{})
	assert.Equal(t, apperrors.CodePersistence, apperrors.CodeOf(err))
	assert.Equal(t, StepDownsell, snap.Step)
	assert.False(t, snap.OfferAccepted)
	assert.False(t, snap.Loading)

	// Retry succeeds and advances
	store.acceptErr = nil
	snap, err = m.Submit(context.Background(), AcceptOffer{})
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, snap.Step)
	assert.True(t, snap.OfferAccepted)
}

func TestDeclineOfferAdvancesWithoutPersistence(t *testing.T) {
	store := &fakeStore{}
	m := newTestMachine(entity.VariantB, store)

	_, err := m.Submit(context.Background(), Answer{Value: AnswerStillLooking})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), DeclineOffer{})
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, snap.Step)
	assert.False(t, snap.OfferAccepted)
	assert.Zero(t, store.acceptCalls)
}

func TestConfirmClosesWorkflow(t *testing.T) {
	store := &fakeStore{}
	m := newTestMachine(entity.VariantA, store)

	_, err := m.Submit(context.Background(), Answer{Value: AnswerFoundJob})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), Confirm{Reason: "too_expensive"})
	require.NoError(t, err)
	assert.Equal(t, StepClosed, snap.Step)
	assert.Equal(t, 1, store.confirmCalls)
	assert.Equal(t, entity.ReasonTooExpensive, store.lastReason)
}

func TestConfirmWithInvalidReasonStays(t *testing.T) {
	store := &fakeStore{}
	m := newTestMachine(entity.VariantA, store)

	_, err := m.Submit(context.Background(), Answer{Value: AnswerFoundJob})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), Confirm{Reason: "other", ReasonOther: "   "})
	assert.Equal(t, apperrors.CodeEmptyRequiredField, apperrors.CodeOf(err))
	assert.Equal(t, StepConfirmation, snap.Step)
	assert.Zero(t, store.confirmCalls, "validation errors must never reach storage")
}

func TestConfirmFailureStaysOnConfirmation(t *testing.T) {
	store := &fakeStore{confirmErr: apperrors.Persistence("record confirmation", errors.New("timeout"))}
	m := newTestMachine(entity.VariantA, store)

	_, err := m.Submit(context.Background(), Answer{Value: AnswerFoundJob})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), Confirm{Reason: "not_using"})
	assert.Equal(t, apperrors.CodePersistence, apperrors.CodeOf(err))
	assert.Equal(t, StepConfirmation, snap.Step)
	assert.False(t, snap.Loading)
}

func TestKeepSubscriptionClosesWithoutConfirming(t *testing.T) {
	store := &fakeStore{}
	m := newTestMachine(entity.VariantA, store)

	_, err := m.Submit(context.Background(), Answer{Value: AnswerFoundJob})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), KeepSubscription{})
	require.NoError(t, err)
	assert.Equal(t, StepClosed, snap.Step)
	assert.Zero(t, store.confirmCalls)
}

func TestBackFromDownsellClearsDownsellState(t *testing.T) {
	m := newTestMachine(entity.VariantB, &fakeStore{})

	_, err := m.Submit(context.Background(), Answer{Value: AnswerStillLooking})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), Back{})
	require.NoError(t, err)
	assert.Equal(t, StepReason, snap.Step)

	// After going back, found_job skips the downsell entirely
	snap, err = m.Submit(context.Background(), Answer{Value: AnswerFoundJob})
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, snap.Step)

	snap, err = m.Submit(context.Background(), Back{})
	require.NoError(t, err)
	assert.Equal(t, StepReason, snap.Step, "downsell was not visited on this pass")
}

func TestBackFromConfirmationReturnsToVisitedDownsell(t *testing.T) {
	store := &fakeStore{}
	m := newTestMachine(entity.VariantB, store)

	_, err := m.Submit(context.Background(), Answer{Value: AnswerStillLooking})
	require.NoError(t, err)
	_, err = m.Submit(context.Background(), AcceptOffer{})
	require.NoError(t, err)

	snap, err := m.Submit(context.Background(), Back{})
	require.NoError(t, err)
	assert.Equal(t, StepDownsell, snap.Step)
	assert.False(t, snap.OfferAccepted, "in-memory acceptance resets on back")
	assert.Equal(t, 1, store.acceptCalls, "persisted acceptance is not reverted")
}

func TestCloseFromAnyStep(t *testing.T) {
	m := newTestMachine(entity.VariantB, &fakeStore{})

	snap, err := m.Submit(context.Background(), Close{})
	require.NoError(t, err)
	assert.Equal(t, StepClosed, snap.Step)

	// Closed is terminal within the session
	_, err = m.Submit(context.Background(), Answer{Value: AnswerFoundJob})
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
}

func TestIntentsOutOfOrderAreRejected(t *testing.T) {
	m := newTestMachine(entity.VariantB, &fakeStore{})

	_, err := m.Submit(context.Background(), AcceptOffer{})
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))

	_, err = m.Submit(context.Background(), Confirm{Reason: "too_expensive"})
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))

	_, err = m.Submit(context.Background(), Back{})
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
}
