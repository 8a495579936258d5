package interception

import (
	"sync"

	"github.com/toyz/weave/internal/models"
)

const component = models.TypeIdentity("example.com/shop.Cart")

type fakeRef struct {
	owner models.TypeIdentity
	types map[models.InterceptionType]bool
}

func newRef(owner string, types ...models.InterceptionType) *fakeRef {
	ref := &fakeRef{owner: models.TypeIdentity(owner), types: make(map[models.InterceptionType]bool)}
	for _, t := range types {
		ref.types[t] = true
	}
	return ref
}

func (r *fakeRef) OwningType() models.TypeIdentity          { return r.owner }
func (r *fakeRef) IsEligible(t models.InterceptionType) bool { return r.types[t] }

// fakeReader resolves legacy interceptor classes by name
type fakeReader map[string]InterceptorRef

func (r fakeReader) PlainInterceptorMetadata(class string) (InterceptorRef, bool) {
	ref, ok := r[class]
	return ref, ok
}

// passthroughNormalizer treats every annotation as a binding and has no composed bindings
type passthroughNormalizer struct{}

func (passthroughNormalizer) FilterBindings(annotations []models.Binding) []models.Binding {
	return annotations
}

func (passthroughNormalizer) FlattenBindings(bindings []models.Binding) []models.Binding {
	return bindings
}

type ownBindings struct{}

func (ownBindings) MergeClassBindings(desc *models.ComponentDescriptor, _ []string) (models.BindingSet, error) {
	return models.NewBindingSet(desc.Bindings...), nil
}

// bindingRule maps a binding kind to the interceptor it resolves to
type bindingRule struct {
	kind models.BindingKind
	ref  *fakeRef
}

// fakeResolver returns, in rule order, every eligible interceptor whose kind is present
type fakeResolver struct {
	mu    sync.Mutex
	rules []bindingRule
	calls []models.InterceptionType
}

func (r *fakeResolver) ResolveInterceptors(t models.InterceptionType, bindings []models.Binding) []InterceptorRef {
	r.mu.Lock()
	r.calls = append(r.calls, t)
	r.mu.Unlock()

	set := models.NewBindingSet(bindings...)
	var refs []InterceptorRef
	for _, rule := range r.rules {
		if set.Has(rule.kind) && rule.ref.IsEligible(t) {
			refs = append(refs, rule.ref)
		}
	}
	return refs
}

type fakeRegistry struct {
	mu     sync.Mutex
	models map[models.TypeIdentity]*InterceptionModel
	puts   int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{models: make(map[models.TypeIdentity]*InterceptionModel)}
}

func (r *fakeRegistry) Put(identity models.TypeIdentity, model *InterceptionModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[identity] = model
	r.puts++
}

func (r *fakeRegistry) get(identity models.TypeIdentity) (*InterceptionModel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	model, ok := r.models[identity]
	return model, ok
}

func owningTypes(refs []InterceptorRef) []string {
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.OwningType().String()
	}
	return ids
}
