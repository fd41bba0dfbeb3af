// A/B arm assignment for cancellation attempts. An arm is drawn at most once
// per open attempt and never re-rolled on reopen.
package assign

import (
	"context"
	"crypto/rand"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// AttemptStore is the slice of the cancellation repository the assigner needs.
type AttemptStore interface {
	FindOpenAttempt(ctx context.Context, userId uuid.UUID) (*entity.CancellationAttempt, error)
	Create(ctx context.Context, attempt *entity.CancellationAttempt) error
}

// Provenance is the optional, already-sanitized request metadata recorded on
// a freshly created attempt.
type Provenance struct {
	SessionID string
	UserAgent string
	IPAddress string
}

type Assigner struct {
	store AttemptStore
	draw  func() entity.DownsellVariant
}

func NewAssigner(store AttemptStore) *Assigner {
	return &Assigner{
		store: store,
		draw:  drawVariant,
	}
}

// NewAssignerWithDraw injects the variant source. Tests use it to force an
// arm; production code uses NewAssigner.
func NewAssignerWithDraw(store AttemptStore, draw func() entity.DownsellVariant) *Assigner {
	return &Assigner{store: store, draw: draw}
}

// drawVariant flips an unbiased coin from the OS entropy source.
func drawVariant() entity.DownsellVariant {
	var buf [1]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// rand.Read on supported platforms does not fail; if it ever does,
		// panicking beats silently biasing the experiment.
		panic("assign: crypto/rand unavailable: " + err.Error())
	}
	if buf[0]&1 == 0 {
		return entity.VariantA
	}
	return entity.VariantB
}

// GetOrAssign resolves the active attempt for the user: the newest open
// attempt when one exists (its variant is returned unchanged), otherwise a
// new started attempt with a freshly drawn variant. Reloads and reopens
// therefore never re-roll the coin or spawn a sibling open attempt.
// created reports whether a fresh attempt was inserted by this call.
func (a *Assigner) GetOrAssign(ctx context.Context, userId, subscriptionId uuid.UUID, prov Provenance) (attempt *entity.CancellationAttempt, created bool, err error) {
	existing, err := a.store.FindOpenAttempt(ctx, userId)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	attempt = &entity.CancellationAttempt{
		UserID:          userId,
		SubscriptionID:  subscriptionId,
		DownsellVariant: a.draw(),
		Status:          entity.CancellationStatusStarted,
	}
	if prov.SessionID != "" {
		attempt.SessionID = &prov.SessionID
	}
	if prov.UserAgent != "" {
		attempt.UserAgent = &prov.UserAgent
	}
	if prov.IPAddress != "" {
		attempt.IPAddress = &prov.IPAddress
	}

	if err := a.store.Create(ctx, attempt); err != nil {
		// A concurrent open may have slipped in between the lookup and the
		// insert (the storage layer keeps a partial unique index on open
		// attempts per user). Re-resolve before giving up.
		if existing, findErr := a.store.FindOpenAttempt(ctx, userId); findErr == nil && existing != nil {
			return existing, false, nil
		}
		return nil, false, apperrors.Persistence("create cancellation attempt", err)
	}

	return attempt, true, nil
}
