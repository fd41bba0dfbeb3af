package implementation

import (
	"context"
	"encoding/json"
	"time"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/model"
	"migratemate-be/internal/pkg/apperrors"
	"migratemate-be/internal/repository/contract"
	"migratemate-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type cancellationRepositoryImpl struct {
	db *gorm.DB
}

// NewCancellationRepository creates a new cancellation attempt repository
func NewCancellationRepository(db *gorm.DB) contract.CancellationRepository {
	return &cancellationRepositoryImpl{db: db}
}

func (r *cancellationRepositoryImpl) Create(ctx context.Context, attempt *entity.CancellationAttempt) error {
	modelAttempt := &model.Cancellation{
		ID:              attempt.ID,
		UserID:          attempt.UserID,
		SubscriptionID:  attempt.SubscriptionID,
		DownsellVariant: string(attempt.DownsellVariant),
		Status:          string(attempt.Status),
		SessionID:       attempt.SessionID,
		UserAgent:       attempt.UserAgent,
		IPAddress:       attempt.IPAddress,
	}

	if err := r.db.WithContext(ctx).Create(modelAttempt).Error; err != nil {
		return apperrors.Persistence("create cancellation attempt", err)
	}

	attempt.ID = modelAttempt.ID
	attempt.CreatedAt = modelAttempt.CreatedAt
	attempt.UpdatedAt = modelAttempt.UpdatedAt
	return nil
}

func (r *cancellationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CancellationAttempt, error) {
	var modelAttempt model.Cancellation
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&modelAttempt).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apperrors.Persistence("find cancellation attempt", err)
	}

	return r.mapToEntity(&modelAttempt), nil
}

func (r *cancellationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationAttempt, error) {
	var modelAttempts []*model.Cancellation
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&modelAttempts).Error; err != nil {
		return nil, apperrors.Persistence("list cancellation attempts", err)
	}

	var attempts []*entity.CancellationAttempt
	for _, ma := range modelAttempts {
		attempts = append(attempts, r.mapToEntity(ma))
	}

	return attempts, nil
}

func (r *cancellationRepositoryImpl) FindOpenAttempt(ctx context.Context, userId uuid.UUID) (*entity.CancellationAttempt, error) {
	return r.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.WithStatus{Status: entity.CancellationStatusStarted},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *cancellationRepositoryImpl) RecordDownsellAcceptance(ctx context.Context, attemptId uuid.UUID, originalPrice, offeredPrice int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Cancellation{}).
		Where("id = ? AND status = ?", attemptId, string(entity.CancellationStatusStarted)).
		Updates(map[string]interface{}{
			"status":                  string(entity.CancellationStatusDownsellAccepted),
			"accepted_downsell":       true,
			"downsell_original_price": originalPrice,
			"downsell_offered_price":  offeredPrice,
		})
	if res.Error != nil {
		return false, apperrors.Persistence("record downsell acceptance", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// No row matched: either the attempt is missing, the transition was
	// already applied (retry, no-op), or the attempt has moved past started.
	current, err := r.FindOne(ctx, specification.ByID{ID: attemptId})
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, apperrors.InvalidState("cancellation attempt not found")
	}
	if current.Status == entity.CancellationStatusDownsellAccepted {
		return false, nil
	}
	return false, apperrors.InvalidState("downsell can only be accepted from a started attempt")
}

func (r *cancellationRepositoryImpl) RecordConfirmation(ctx context.Context, attemptId uuid.UUID, reason entity.CancellationReason, reasonOther string) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       string(entity.CancellationStatusConfirmed),
		"reason":       string(reason),
		"completed_at": now,
	}
	if reason == entity.ReasonOther {
		updates["reason_other"] = reasonOther
	}

	// accepted_downsell and the pricing snapshot are deliberately untouched:
	// a confirmation after an accepted downsell keeps the snapshot intact.
	res := r.db.WithContext(ctx).Model(&model.Cancellation{}).
		Where("id = ? AND status <> ?", attemptId, string(entity.CancellationStatusConfirmed)).
		Updates(updates)
	if res.Error != nil {
		return false, apperrors.Persistence("record confirmation", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	current, err := r.FindOne(ctx, specification.ByID{ID: attemptId})
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, apperrors.InvalidState("cancellation attempt not found")
	}
	if current.IsConfirmed() {
		// Retry of an applied transition, keep the first completed_at and
		// reason.
		return false, nil
	}
	return false, apperrors.InvalidState("confirmation did not apply")
}

func (r *cancellationRepositoryImpl) AppendEvent(ctx context.Context, cancellationId uuid.UUID, eventType string, payload map[string]interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Persistence("encode cancellation event", err)
	}

	event := &model.CancellationEvent{
		CancellationID: cancellationId,
		EventType:      eventType,
		Payload:        datatypes.JSON(raw),
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return apperrors.Persistence("append cancellation event", err)
	}
	return nil
}

// mapToEntity converts model.Cancellation to entity.CancellationAttempt
func (r *cancellationRepositoryImpl) mapToEntity(ma *model.Cancellation) *entity.CancellationAttempt {
	attempt := &entity.CancellationAttempt{
		ID:                    ma.ID,
		UserID:                ma.UserID,
		SubscriptionID:        ma.SubscriptionID,
		DownsellVariant:       entity.DownsellVariant(ma.DownsellVariant),
		Status:                entity.CancellationStatus(ma.Status),
		ReasonOther:           ma.ReasonOther,
		AcceptedDownsell:      ma.AcceptedDownsell,
		DownsellOriginalPrice: ma.DownsellOriginalPrice,
		DownsellOfferedPrice:  ma.DownsellOfferedPrice,
		SessionID:             ma.SessionID,
		UserAgent:             ma.UserAgent,
		IPAddress:             ma.IPAddress,
		CompletedAt:           ma.CompletedAt,
		CreatedAt:             ma.CreatedAt,
		UpdatedAt:             ma.UpdatedAt,
	}
	if ma.Reason != nil {
		reason := entity.CancellationReason(*ma.Reason)
		attempt.Reason = &reason
	}
	return attempt
}
