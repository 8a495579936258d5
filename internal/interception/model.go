package interception

import (
	"sort"

	"github.com/toyz/weave/internal/models"
)

// TargetClassMetadata records which interception methods a component declares on itself
type TargetClassMetadata struct {
	Identity models.TypeIdentity
	types    map[models.InterceptionType]bool
}

// NewTargetClassMetadata builds target class metadata from a component descriptor
func NewTargetClassMetadata(desc *models.ComponentDescriptor) *TargetClassMetadata {
	return &TargetClassMetadata{
		Identity: desc.Identity,
		types:    desc.DeclaredInterceptionTypes(),
	}
}

// IsEligible reports whether the component intercepts the given type itself
func (m *TargetClassMetadata) IsEligible(t models.InterceptionType) bool {
	return m != nil && m.types[t]
}

// HasSerializationOrInvocationMethods reports whether the component declares its own
// AROUND_INVOKE, AROUND_TIMEOUT, PRE_PASSIVATE or POST_ACTIVATE methods
func (m *TargetClassMetadata) HasSerializationOrInvocationMethods() bool {
	return m.IsEligible(models.AroundInvoke) ||
		m.IsEligible(models.AroundTimeout) ||
		m.IsEligible(models.PrePassivate) ||
		m.IsEligible(models.PostActivate)
}

// Types returns the self-intercepted types in declaration order
func (m *TargetClassMetadata) Types() []models.InterceptionType {
	var types []models.InterceptionType
	for _, t := range models.AllInterceptionTypes() {
		if m.IsEligible(t) {
			types = append(types, t)
		}
	}
	return types
}

// InterceptionModel is the immutable set of interceptor chains of one component
type InterceptionModel struct {
	identity          models.TypeIdentity
	global            map[models.InterceptionType][]InterceptorRef
	methodBound       map[models.InterceptionType]map[string][]InterceptorRef
	ignoringGlobal    map[string]bool
	targetClass       *TargetClassMetadata
	allInterceptors   []InterceptorRef
	interceptedMethod []string
}

// Identity returns the component the model was built for
func (m *InterceptionModel) Identity() models.TypeIdentity {
	return m.identity
}

// ClassInterceptors returns the class-wide chain for an interception type
func (m *InterceptionModel) ClassInterceptors(t models.InterceptionType) []InterceptorRef {
	return copyRefs(m.global[t])
}

// MethodInterceptors returns the chain bound to one method for an interception type
func (m *InterceptionModel) MethodInterceptors(t models.InterceptionType, method string) []InterceptorRef {
	return copyRefs(m.methodBound[t][method])
}

// Interceptors returns the chain the invocation layer runs. Lifecycle types ignore method.
// Business types combine the class-wide chain, unless the method ignores class-level
// interceptors, with the method-bound chain; an interceptor appearing in both runs once.
func (m *InterceptionModel) Interceptors(t models.InterceptionType, method string) []InterceptorRef {
	if t.IsLifecycleCallback() {
		return copyRefs(m.global[t])
	}

	var chain []InterceptorRef
	if !m.ignoringGlobal[method] {
		chain = appendDistinct(chain, m.global[t]...)
	}
	return appendDistinct(chain, m.methodBound[t][method]...)
}

// AllInterceptors returns every distinct interceptor in the model, in first-seen order
func (m *InterceptionModel) AllInterceptors() []InterceptorRef {
	return copyRefs(m.allInterceptors)
}

// IsEmpty reports whether the model holds no interceptor at all
func (m *InterceptionModel) IsEmpty() bool {
	return len(m.allInterceptors) == 0
}

// IgnoresGlobalInterceptors reports whether the method is marked to exclude class-level interceptors
func (m *InterceptionModel) IgnoresGlobalInterceptors(method string) bool {
	return m.ignoringGlobal[method]
}

// Methods returns the names of methods with a method-bound chain, sorted
func (m *InterceptionModel) Methods() []string {
	return append([]string(nil), m.interceptedMethod...)
}

// TargetClass returns the component's self-interception metadata, nil for interceptors
func (m *InterceptionModel) TargetClass() *TargetClassMetadata {
	return m.targetClass
}

// HasTargetClassInterceptors reports whether the component intercepts itself
func (m *InterceptionModel) HasTargetClassInterceptors() bool {
	return m.targetClass != nil && len(m.targetClass.types) > 0
}

// ModelSnapshot is a plain view of an InterceptionModel for reports and inspection
type ModelSnapshot struct {
	Identity       models.TypeIdentity                                          `json:"identity"`
	Class          map[models.InterceptionType][]models.TypeIdentity            `json:"class,omitempty"`
	Methods        map[string]map[models.InterceptionType][]models.TypeIdentity `json:"methods,omitempty"`
	IgnoringGlobal []string                                                     `json:"ignoring_class_interceptors,omitempty"`
	TargetClass    []models.InterceptionType                                    `json:"target_class,omitempty"`
}

// Snapshot returns the serializable view of the model
func (m *InterceptionModel) Snapshot() ModelSnapshot {
	snapshot := ModelSnapshot{Identity: m.identity}

	for _, t := range models.AllInterceptionTypes() {
		if refs := m.global[t]; len(refs) > 0 {
			if snapshot.Class == nil {
				snapshot.Class = make(map[models.InterceptionType][]models.TypeIdentity)
			}
			snapshot.Class[t] = owners(refs)
		}
		for method, refs := range m.methodBound[t] {
			if len(refs) == 0 {
				continue
			}
			if snapshot.Methods == nil {
				snapshot.Methods = make(map[string]map[models.InterceptionType][]models.TypeIdentity)
			}
			if snapshot.Methods[method] == nil {
				snapshot.Methods[method] = make(map[models.InterceptionType][]models.TypeIdentity)
			}
			snapshot.Methods[method][t] = owners(refs)
		}
	}

	for method := range m.ignoringGlobal {
		snapshot.IgnoringGlobal = append(snapshot.IgnoringGlobal, method)
	}
	sort.Strings(snapshot.IgnoringGlobal)

	if m.targetClass != nil {
		snapshot.TargetClass = m.targetClass.Types()
	}
	return snapshot
}

func owners(refs []InterceptorRef) []models.TypeIdentity {
	ids := make([]models.TypeIdentity, len(refs))
	for i, ref := range refs {
		ids[i] = ref.OwningType()
	}
	return ids
}

func copyRefs(refs []InterceptorRef) []InterceptorRef {
	if len(refs) == 0 {
		return nil
	}
	return append([]InterceptorRef(nil), refs...)
}

func appendDistinct(chain []InterceptorRef, refs ...InterceptorRef) []InterceptorRef {
	for _, ref := range refs {
		if !containsRef(chain, ref) {
			chain = append(chain, ref)
		}
	}
	return chain
}

func containsRef(chain []InterceptorRef, ref InterceptorRef) bool {
	for _, existing := range chain {
		if existing == ref {
			return true
		}
	}
	return false
}
