package contract

import (
	"context"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/repository/specification"

	"github.com/google/uuid"
)

// CancellationRepository owns the lifecycle of cancellation attempt records.
// Status transitions are idempotent: re-applying an already-applied
// transition is a no-op, never an error.
type CancellationRepository interface {
	Create(ctx context.Context, attempt *entity.CancellationAttempt) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CancellationAttempt, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationAttempt, error)

	// FindOpenAttempt returns the newest started attempt for the user, or nil.
	FindOpenAttempt(ctx context.Context, userId uuid.UUID) (*entity.CancellationAttempt, error)

	// RecordDownsellAcceptance moves started -> downsell_accepted and captures
	// the pricing snapshot. applied is false when the attempt was already
	// downsell_accepted and nothing changed.
	RecordDownsellAcceptance(ctx context.Context, attemptId uuid.UUID, originalPrice, offeredPrice int64) (applied bool, err error)

	// RecordConfirmation moves the attempt to confirmed, sets reason and
	// completed_at. applied is false when the attempt was already confirmed
	// and nothing changed.
	RecordConfirmation(ctx context.Context, attemptId uuid.UUID, reason entity.CancellationReason, reasonOther string) (applied bool, err error)

	// AppendEvent writes an audit row for a durable workflow transition.
	AppendEvent(ctx context.Context, cancellationId uuid.UUID, eventType string, payload map[string]interface{}) error
}
