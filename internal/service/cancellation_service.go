package service

import (
	"context"
	"encoding/json"
	"time"

	"migratemate-be/internal/dto"
	"migratemate-be/internal/entity"
	"migratemate-be/internal/pkg/apperrors"
	"migratemate-be/internal/pkg/lock"
	"migratemate-be/internal/pkg/logger"
	"migratemate-be/internal/repository/memory"
	"migratemate-be/internal/repository/specification"
	"migratemate-be/internal/repository/unitofwork"
	"migratemate-be/pkg/cancelflow/assign"
	"migratemate-be/pkg/cancelflow/state"
	"migratemate-be/pkg/cancelflow/validation"
	"migratemate-be/pkg/events"
	pktNats "migratemate-be/pkg/nats"

	"github.com/google/uuid"
)

type ICancellationService interface {
	OpenWorkflow(ctx context.Context, userId uuid.UUID, req *dto.OpenWorkflowRequest, userAgent, ipAddress string) (*dto.OpenWorkflowResponse, error)
	SubmitIntent(ctx context.Context, userId uuid.UUID, req *dto.IntentRequest) (*dto.WorkflowSnapshotResponse, error)
	GetSnapshot(ctx context.Context, userId uuid.UUID) (*dto.WorkflowSnapshotResponse, error)
	ShowAttempt(ctx context.Context, userId uuid.UUID, attemptId uuid.UUID) (*dto.CancellationAttemptResponse, error)
}

type cancellationService struct {
	uowFactory       unitofwork.RepositoryFactory
	recordStore      *cancellationRecordStore
	assigner         *assign.Assigner
	sessions         *memory.WorkflowSessionRepository
	locker           lock.UserLocker
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
	discountCents    int64
}

func NewCancellationService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *memory.WorkflowSessionRepository,
	locker lock.UserLocker,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	discountCents int64,
) ICancellationService {
	recordStore := newCancellationRecordStore(uowFactory)
	return &cancellationService{
		uowFactory:       uowFactory,
		recordStore:      recordStore,
		assigner:         assign.NewAssigner(recordStore),
		sessions:         sessions,
		locker:           locker,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
		discountCents:    discountCents,
	}
}

func (c *cancellationService) OpenWorkflow(ctx context.Context, userId uuid.UUID, req *dto.OpenWorkflowRequest, userAgent, ipAddress string) (*dto.OpenWorkflowResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: req.SubscriptionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil // Not found
	}
	if sub.Status == entity.SubscriptionStatusCancelled {
		return nil, apperrors.InvalidState("subscription is already cancelled")
	}

	// Best effort: keeps two tabs from racing past the open-attempt lookup.
	// The partial unique index on started attempts backstops it either way.
	release, _ := c.locker.AcquireOpenLock(ctx, userId)
	defer release()

	prov := assign.Provenance{
		SessionID: validation.SanitizeSessionID(req.SessionId),
		UserAgent: validation.SanitizeUserAgent(userAgent),
		IPAddress: validation.SanitizeIPAddress(ipAddress),
	}
	attempt, created, err := c.assigner.GetOrAssign(ctx, userId, sub.ID, prov)
	if err != nil {
		return nil, err
	}

	originalPrice := sub.MonthlyPrice
	offeredPrice := c.offeredPriceFor(originalPrice)

	// Never trust a variant loaded from storage without checking it.
	variant, err := validation.ValidateVariant(string(attempt.DownsellVariant))
	if err != nil {
		return nil, err
	}

	// Opening always restarts the journey at the reason step. The attempt and
	// its variant stay pinned; only the in-memory position resets.
	machine := state.NewMachine(attempt.ID, variant, originalPrice, offeredPrice, c.recordStore)
	c.sessions.Save(userId.String(), machine)

	if created && c.eventPublisher != nil {
		evt := events.NewCancellationStarted(attempt.ID.String(), userId.String(), string(attempt.DownsellVariant))
		// We log error but don't fail the request as the event bus is auxiliary
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.log.Warn("cancellation", "failed to publish CANCELLATION_STARTED event", map[string]interface{}{
				"attempt_id": attempt.ID.String(),
				"error":      err.Error(),
			})
		}
	}

	snap := machine.Snapshot()
	return &dto.OpenWorkflowResponse{
		AttemptId:       attempt.ID,
		DownsellVariant: string(attempt.DownsellVariant),
		OriginalPrice:   originalPrice,
		OfferedPrice:    offeredPrice,
		Snapshot:        mapSnapshot(snap),
	}, nil
}

func (c *cancellationService) SubmitIntent(ctx context.Context, userId uuid.UUID, req *dto.IntentRequest) (*dto.WorkflowSnapshotResponse, error) {
	machine, ok := c.sessions.Get(userId.String())
	if !ok {
		return nil, apperrors.InvalidState("no open cancellation workflow for this user")
	}

	intent, err := mapIntent(req)
	if err != nil {
		return nil, err
	}

	snap, err := machine.Submit(ctx, intent)
	if err != nil {
		return nil, err
	}

	c.dispatchSideEffects(ctx, userId, machine, intent, req)

	if snap.Step == state.StepClosed {
		c.sessions.Delete(userId.String())
	}

	res := mapSnapshot(snap)
	return &res, nil
}

func (c *cancellationService) GetSnapshot(ctx context.Context, userId uuid.UUID) (*dto.WorkflowSnapshotResponse, error) {
	machine, ok := c.sessions.Get(userId.String())
	if !ok {
		return nil, nil // Not found
	}
	res := mapSnapshot(machine.Snapshot())
	return &res, nil
}

func (c *cancellationService) ShowAttempt(ctx context.Context, userId uuid.UUID, attemptId uuid.UUID) (*dto.CancellationAttemptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	attempt, err := uow.CancellationRepository().FindOne(ctx,
		specification.ByID{ID: attemptId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, nil // Not found
	}

	res := dto.CancellationAttemptResponse{
		Id:               attempt.ID,
		SubscriptionId:   attempt.SubscriptionID,
		DownsellVariant:  string(attempt.DownsellVariant),
		Status:           string(attempt.Status),
		AcceptedDownsell: attempt.AcceptedDownsell,
		OriginalPrice:    attempt.DownsellOriginalPrice,
		OfferedPrice:     attempt.DownsellOfferedPrice,
		CompletedAt:      attempt.CompletedAt,
		CreatedAt:        attempt.CreatedAt,
	}
	if attempt.Reason != nil {
		res.Reason = string(*attempt.Reason)
	}
	if attempt.ReasonOther != nil {
		res.ReasonOther = *attempt.ReasonOther
	}
	return &res, nil
}

// offeredPriceFor applies the configured discount. The offer never leaves the
// (0, original] window; a discount bigger than the price just waives nothing.
func (c *cancellationService) offeredPriceFor(originalPrice int64) int64 {
	offered := originalPrice - c.discountCents
	if offered <= 0 {
		offered = originalPrice
	}
	return offered
}

// dispatchSideEffects runs the post-commit fanout for durable transitions:
// bus events for downstream systems and an email job on the worker queue.
// All of it is auxiliary, failures are logged and swallowed.
func (c *cancellationService) dispatchSideEffects(ctx context.Context, userId uuid.UUID, machine *state.Machine, intent state.Intent, req *dto.IntentRequest) {
	switch intent.(type) {
	case state.AcceptOffer:
		if c.eventPublisher != nil {
			evt := events.NewDownsellAccepted(machine.AttemptId().String(), userId.String(), machine.OriginalPrice(), machine.OfferedPrice())
			if err := c.eventPublisher.Publish(ctx, evt); err != nil {
				c.log.Warn("cancellation", "failed to publish DOWNSELL_ACCEPTED event", map[string]interface{}{
					"attempt_id": machine.AttemptId().String(),
					"error":      err.Error(),
				})
			}
		}
		c.queueEmailJob(ctx, dto.PublishCancellationEmailMessage{
			Kind:         dto.EmailJobDownsellApplied,
			UserId:       userId,
			AttemptId:    machine.AttemptId(),
			OfferedPrice: machine.OfferedPrice(),
		})

	case state.Confirm:
		if c.eventPublisher != nil {
			evt := events.NewCancellationConfirmed(machine.AttemptId().String(), userId.String(), req.Reason)
			if err := c.eventPublisher.Publish(ctx, evt); err != nil {
				c.log.Warn("cancellation", "failed to publish CANCELLATION_CONFIRMED event", map[string]interface{}{
					"attempt_id": machine.AttemptId().String(),
					"error":      err.Error(),
				})
			}
		}

		periodEnd := time.Time{}
		uow := c.uowFactory.NewUnitOfWork(ctx)
		if sub, err := uow.SubscriptionRepository().FindByUserId(ctx, userId); err == nil && sub != nil {
			periodEnd = sub.CurrentPeriodEnd
		}
		c.queueEmailJob(ctx, dto.PublishCancellationEmailMessage{
			Kind:      dto.EmailJobCancellationConfirmed,
			UserId:    userId,
			AttemptId: machine.AttemptId(),
			PeriodEnd: periodEnd,
		})
	}
}

func (c *cancellationService) queueEmailJob(ctx context.Context, msg dto.PublishCancellationEmailMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("cancellation", "failed to marshal email job", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		c.log.Warn("cancellation", "failed to queue email job", map[string]interface{}{
			"kind":  msg.Kind,
			"error": err.Error(),
		})
	}
}

func mapIntent(req *dto.IntentRequest) (state.Intent, error) {
	switch req.Kind {
	case "answer":
		return state.Answer{Value: req.Answer}, nil
	case "accept_offer":
		return state.AcceptOffer{}, nil
	case "decline_offer":
		return state.DeclineOffer{}, nil
	case "confirm":
		return state.Confirm{Reason: req.Reason, ReasonOther: req.ReasonOther}, nil
	case "keep_subscription":
		return state.KeepSubscription{}, nil
	case "back":
		return state.Back{}, nil
	case "close":
		return state.Close{}, nil
	default:
		return nil, apperrors.InvalidEnum("kind", req.Kind)
	}
}

func mapSnapshot(snap state.Snapshot) dto.WorkflowSnapshotResponse {
	return dto.WorkflowSnapshotResponse{
		Step:          string(snap.Step),
		OfferAccepted: snap.OfferAccepted,
		Loading:       snap.Loading,
		Error:         snap.Error,
	}
}
