package service

import (
	"context"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/pkg/apperrors"
	"migratemate-be/internal/repository/specification"
	"migratemate-be/internal/repository/unitofwork"
	"migratemate-be/pkg/events"

	"github.com/google/uuid"
)

// cancellationRecordStore is the durable side of the workflow: every status
// transition lands in one transaction together with its audit row, and
// confirmation also flips the subscription in the same transaction.
type cancellationRecordStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func newCancellationRecordStore(uowFactory unitofwork.RepositoryFactory) *cancellationRecordStore {
	return &cancellationRecordStore{
		uowFactory: uowFactory,
	}
}

func (s *cancellationRecordStore) FindOpenAttempt(ctx context.Context, userId uuid.UUID) (*entity.CancellationAttempt, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CancellationRepository().FindOpenAttempt(ctx, userId)
}

func (s *cancellationRecordStore) Create(ctx context.Context, attempt *entity.CancellationAttempt) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return apperrors.Persistence("begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.CancellationRepository().Create(ctx, attempt); err != nil {
		return err
	}
	err := uow.CancellationRepository().AppendEvent(ctx, attempt.ID, events.TypeCancellationStarted, map[string]interface{}{
		"downsell_variant": string(attempt.DownsellVariant),
	})
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return apperrors.Persistence("commit attempt creation", err)
	}
	return nil
}

func (s *cancellationRecordStore) RecordDownsellAcceptance(ctx context.Context, attemptId uuid.UUID, originalPrice, offeredPrice int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return apperrors.Persistence("begin transaction", err)
	}
	defer uow.Rollback()

	applied, err := uow.CancellationRepository().RecordDownsellAcceptance(ctx, attemptId, originalPrice, offeredPrice)
	if err != nil {
		return err
	}
	if !applied {
		// Retry of an applied transition: the audit row from the first
		// application already exists.
		return nil
	}
	err = uow.CancellationRepository().AppendEvent(ctx, attemptId, events.TypeDownsellAccepted, map[string]interface{}{
		"original_price": originalPrice,
		"offered_price":  offeredPrice,
	})
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return apperrors.Persistence("commit downsell acceptance", err)
	}
	return nil
}

func (s *cancellationRecordStore) RecordConfirmation(ctx context.Context, attemptId uuid.UUID, reason entity.CancellationReason, reasonOther string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return apperrors.Persistence("begin transaction", err)
	}
	defer uow.Rollback()

	repo := uow.CancellationRepository()
	applied, err := repo.RecordConfirmation(ctx, attemptId, reason, reasonOther)
	if err != nil {
		return err
	}
	if !applied {
		// Retry of an applied transition: audit row and subscription flip
		// already happened with the first confirmation.
		return nil
	}

	attempt, err := repo.FindOne(ctx, specification.ByID{ID: attemptId})
	if err != nil {
		return err
	}
	if attempt == nil {
		return apperrors.InvalidState("cancellation attempt not found")
	}

	err = repo.AppendEvent(ctx, attemptId, events.TypeCancellationConfirmed, map[string]interface{}{
		"reason":            string(reason),
		"accepted_downsell": attempt.AcceptedDownsell,
	})
	if err != nil {
		return err
	}

	// The subscription flips in the same transaction as the confirmation:
	// either both land or neither does.
	if err := uow.SubscriptionRepository().MarkPendingCancellation(ctx, attempt.UserID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return apperrors.Persistence("commit cancellation confirmation", err)
	}
	return nil
}
