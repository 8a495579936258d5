package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/interception"
	"github.com/toyz/weave/internal/models"
)

// InterceptorMetadata is the resolved definition of one declared interceptor. It is the
// InterceptorRef handed to interception models.
type InterceptorMetadata struct {
	Declaration *models.InterceptorDeclaration
	Priority    int
	types       map[models.InterceptionType]bool
	enablement  int // position in the enabled list, -1 when not listed
}

// OwningType implements interception.InterceptorRef
func (m *InterceptorMetadata) OwningType() models.TypeIdentity {
	return m.Declaration.Identity
}

// IsEligible implements interception.InterceptorRef
func (m *InterceptorMetadata) IsEligible(t models.InterceptionType) bool {
	return m.types[t]
}

func (m *InterceptorMetadata) String() string {
	return m.Declaration.Identity.String()
}

// EnablementOptions controls which binding-style interceptors take part in resolution and in what order
type EnablementOptions struct {
	// Enabled lists interceptor identities in enablement order. When empty every
	// interceptor not marked disabled is enabled.
	Enabled []models.TypeIdentity
	// Priorities overrides declared priorities by identity
	Priorities map[models.TypeIdentity]int
}

// interceptorRegistry implements the InterceptorDefinitions interface
type interceptorRegistry struct {
	mu           sync.RWMutex
	interceptors map[models.TypeIdentity]*InterceptorMetadata
	bindings     BindingTypeRegistry
	options      EnablementOptions
	logger       *slog.Logger
}

// NewInterceptorRegistry creates an interceptor registry matching bindings through the
// given binding type registry
func NewInterceptorRegistry(bindings BindingTypeRegistry, options EnablementOptions, logger *slog.Logger) InterceptorDefinitions {
	if logger == nil {
		logger = slog.Default()
	}
	return &interceptorRegistry{
		interceptors: make(map[models.TypeIdentity]*InterceptorMetadata),
		bindings:     bindings,
		options:      options,
		logger:       logger,
	}
}

// Register adds an interceptor declaration
func (r *interceptorRegistry) Register(decl *models.InterceptorDeclaration) error {
	if decl == nil {
		return fmt.Errorf("interceptor declaration cannot be nil")
	}
	if decl.Identity == "" {
		return fmt.Errorf("interceptor identity cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.interceptors[decl.Identity]; exists {
		return weaveerrors.Newf(weaveerrors.RegistrationErrorCode,
			"interceptor '%s' is already registered at %s", decl.Identity, existing.Declaration.Location).
			WithLocation(weaveerrors.SourceLocation{File: decl.Location.File, Line: decl.Location.Line})
	}

	meta := &InterceptorMetadata{
		Declaration: decl,
		Priority:    decl.Priority,
		types:       make(map[models.InterceptionType]bool, len(decl.Types)),
		enablement:  -1,
	}
	for _, t := range decl.Types {
		meta.types[t] = true
	}
	if priority, ok := r.options.Priorities[decl.Identity]; ok {
		meta.Priority = priority
	}
	for i, id := range r.options.Enabled {
		if id == decl.Identity {
			meta.enablement = i
			break
		}
	}

	r.interceptors[decl.Identity] = meta
	r.logger.Debug("interceptor registered", "interceptor", decl.Identity.String(), "priority", meta.Priority, "bindings", len(decl.Bindings))
	return nil
}

// Get retrieves an interceptor by identity
func (r *interceptorRegistry) Get(identity models.TypeIdentity) (*InterceptorMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.interceptors[identity]
	return meta, ok
}

// List returns all interceptors in resolution order
func (r *interceptorRegistry) List() []*InterceptorMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*InterceptorMetadata, 0, len(r.interceptors))
	for _, meta := range r.interceptors {
		list = append(list, meta)
	}
	sortInterceptors(list)
	return list
}

// PlainInterceptorMetadata implements interception.InterceptorMetadataReader for legacy
// class lists. Legacy declarations do not require the interceptor to be enabled.
func (r *interceptorRegistry) PlainInterceptorMetadata(class string) (interception.InterceptorRef, bool) {
	meta, ok := r.Get(models.TypeIdentity(class))
	if !ok {
		return nil, false
	}
	return meta, true
}

// ResolveInterceptors returns the enabled interceptors eligible for t whose bindings are all
// present in the given collection, ordered by priority, then enablement order, then identity.
func (r *interceptorRegistry) ResolveInterceptors(t models.InterceptionType, bindings []models.Binding) []interception.InterceptorRef {
	if len(bindings) == 0 {
		return nil
	}
	available := models.NewBindingSet(bindings...)

	r.mu.RLock()
	var matched []*InterceptorMetadata
	for _, meta := range r.interceptors {
		if !r.enabled(meta) || !meta.IsEligible(t) {
			continue
		}
		if r.matches(meta, available) {
			matched = append(matched, meta)
		}
	}
	r.mu.RUnlock()

	sortInterceptors(matched)
	refs := make([]interception.InterceptorRef, len(matched))
	for i, meta := range matched {
		refs[i] = meta
	}
	return refs
}

func (r *interceptorRegistry) enabled(meta *InterceptorMetadata) bool {
	if meta.Declaration.Disabled {
		return false
	}
	if len(r.options.Enabled) == 0 {
		return true
	}
	return meta.enablement >= 0
}

// matches requires at least one interceptor binding and every one of them to be available.
// Values of non-binding kinds are not compared.
func (r *interceptorRegistry) matches(meta *InterceptorMetadata, available models.BindingSet) bool {
	required := r.bindings.FlattenBindings(meta.Declaration.Bindings)
	if len(required) == 0 {
		return false
	}
	for _, b := range required {
		candidate, ok := available[b.Kind]
		if !ok {
			return false
		}
		if decl, known := r.bindings.BindingType(b.Kind); known && decl.NonBinding {
			continue
		}
		if candidate.Value != b.Value {
			return false
		}
	}
	return true
}

func sortInterceptors(list []*InterceptorMetadata) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.enablement != b.enablement {
			// listed interceptors come before unlisted ones
			if a.enablement < 0 {
				return false
			}
			if b.enablement < 0 {
				return true
			}
			return a.enablement < b.enablement
		}
		return a.Declaration.Identity < b.Declaration.Identity
	})
}
