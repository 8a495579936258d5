package registry

import (
	"sort"
	"sync"

	"github.com/toyz/weave/internal/interception"
	"github.com/toyz/weave/internal/models"
)

// modelRegistry implements the ModelStore interface
type modelRegistry struct {
	mu     sync.RWMutex
	models map[models.TypeIdentity]*interception.InterceptionModel
}

// NewModelRegistry creates an empty, concurrency-safe model registry
func NewModelRegistry() ModelStore {
	return &modelRegistry{
		models: make(map[models.TypeIdentity]*interception.InterceptionModel),
	}
}

// Put stores the model for a component; a second Put for the same identity replaces the first
func (r *modelRegistry) Put(identity models.TypeIdentity, model *interception.InterceptionModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[identity] = model
}

// Get retrieves the model of a component
func (r *modelRegistry) Get(identity models.TypeIdentity) (*interception.InterceptionModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	model, ok := r.models[identity]
	return model, ok
}

// Remove drops the model of an undeployed component
func (r *modelRegistry) Remove(identity models.TypeIdentity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[identity]; !ok {
		return false
	}
	delete(r.models, identity)
	return true
}

// List returns the registered identities, sorted
func (r *modelRegistry) List() []models.TypeIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]models.TypeIdentity, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered models
func (r *modelRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}
