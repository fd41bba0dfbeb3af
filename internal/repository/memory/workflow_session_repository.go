package memory

import (
	"time"

	"migratemate-be/pkg/cancelflow/state"

	"github.com/patrickmn/go-cache"
)

// WorkflowSessionRepository keeps in-flight cancellation state machines per
// user. Entries expire on their own; reopening after expiry re-resolves the
// open attempt from storage, so nothing durable lives here.
type WorkflowSessionRepository struct {
	cache *cache.Cache
}

func NewWorkflowSessionRepository() *WorkflowSessionRepository {
	// Default expiration of 1 hour, purge expired entries every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &WorkflowSessionRepository{
		cache: c,
	}
}

func (r *WorkflowSessionRepository) Save(userId string, machine *state.Machine) {
	r.cache.Set(userId, machine, cache.DefaultExpiration)
}

func (r *WorkflowSessionRepository) Get(userId string) (*state.Machine, bool) {
	if x, found := r.cache.Get(userId); found {
		return x.(*state.Machine), true
	}
	return nil, false
}

func (r *WorkflowSessionRepository) Delete(userId string) {
	r.cache.Delete(userId)
}
