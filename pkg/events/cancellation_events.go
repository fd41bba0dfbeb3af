package events

import "time"

// Event type codes published on the bus. External consumers (billing,
// lifecycle emails, experiment analysis) key off these.
const (
	TypeCancellationStarted   = "CANCELLATION_STARTED"
	TypeDownsellAccepted      = "DOWNSELL_ACCEPTED"
	TypeCancellationConfirmed = "CANCELLATION_CONFIRMED"
)

func NewCancellationStarted(attemptId, userId, variant string) Event {
	return BaseEvent{
		Type: TypeCancellationStarted,
		Data: map[string]interface{}{
			"cancellation_id":  attemptId,
			"user_id":          userId,
			"downsell_variant": variant,
		},
		OccurredAt: time.Now(),
	}
}

func NewDownsellAccepted(attemptId, userId string, originalPrice, offeredPrice int64) Event {
	return BaseEvent{
		Type: TypeDownsellAccepted,
		Data: map[string]interface{}{
			"cancellation_id": attemptId,
			"user_id":         userId,
			"original_price":  originalPrice,
			"offered_price":   offeredPrice,
		},
		OccurredAt: time.Now(),
	}
}

func NewCancellationConfirmed(attemptId, userId, reason string) Event {
	return BaseEvent{
		Type: TypeCancellationConfirmed,
		Data: map[string]interface{}{
			"cancellation_id": attemptId,
			"user_id":         userId,
			"reason":          reason,
		},
		OccurredAt: time.Now(),
	}
}
