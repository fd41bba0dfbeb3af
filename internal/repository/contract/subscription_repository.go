package contract

import (
	"context"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/repository/specification"

	"github.com/google/uuid"
)

// SubscriptionRepository reads the billing subscription and performs the one
// write this service is allowed: marking it pending_cancellation.
type SubscriptionRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)
	MarkPendingCancellation(ctx context.Context, userId uuid.UUID) error
}
