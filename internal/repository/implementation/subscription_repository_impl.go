package implementation

import (
	"context"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/model"
	"migratemate-be/internal/pkg/apperrors"
	"migratemate-be/internal/repository/contract"
	"migratemate-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type subscriptionRepositoryImpl struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &subscriptionRepositoryImpl{db: db}
}

func (r *subscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var modelSub model.Subscription
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&modelSub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apperrors.Persistence("find subscription", err)
	}

	return r.mapToEntity(&modelSub), nil
}

func (r *subscriptionRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	return r.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *subscriptionRepositoryImpl) MarkPendingCancellation(ctx context.Context, userId uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ? AND status = ?", userId, string(entity.SubscriptionStatusActive)).
		Update("status", string(entity.SubscriptionStatusPendingCancellation))
	if res.Error != nil {
		return apperrors.Persistence("mark subscription pending cancellation", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing updated: fine when the subscription is already marked, an
	// error when there is no subscription at all for the user.
	sub, err := r.FindByUserId(ctx, userId)
	if err != nil {
		return err
	}
	if sub == nil {
		return apperrors.InvalidState("no subscription found for user")
	}
	return nil
}

func (r *subscriptionRepositoryImpl) mapToEntity(ms *model.Subscription) *entity.Subscription {
	return &entity.Subscription{
		ID:               ms.ID,
		UserID:           ms.UserID,
		MonthlyPrice:     ms.MonthlyPrice,
		Status:           entity.SubscriptionStatus(ms.Status),
		CurrentPeriodEnd: ms.CurrentPeriodEnd,
		CreatedAt:        ms.CreatedAt,
		UpdatedAt:        ms.UpdatedAt,
	}
}
