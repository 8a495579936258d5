package interception

import (
	"sort"

	"github.com/toyz/weave/internal/models"
)

// Registration is one chain contributed by a collector. An empty Method registers a
// class-wide chain.
type Registration struct {
	Type         models.InterceptionType
	Method       string
	Interceptors []InterceptorRef
}

// Contribution is everything one collector found for a component
type Contribution struct {
	Registrations []Registration
	// ExcludedMethods are methods marked to skip class-level legacy interceptors
	ExcludedMethods []string
}

func (c *Contribution) intercept(t models.InterceptionType, refs ...InterceptorRef) {
	c.Registrations = append(c.Registrations, Registration{Type: t, Interceptors: refs})
}

func (c *Contribution) interceptMethod(t models.InterceptionType, method string, refs ...InterceptorRef) {
	c.Registrations = append(c.Registrations, Registration{Type: t, Method: method, Interceptors: refs})
}

// Builder accumulates interceptor chains for one component. A Builder is not safe for
// concurrent use; each initialization owns its own.
type Builder struct {
	identity       models.TypeIdentity
	global         map[models.InterceptionType][]InterceptorRef
	methodBound    map[models.InterceptionType]map[string][]InterceptorRef
	ignoringGlobal map[string]bool
	targetClass    *TargetClassMetadata
}

// NewBuilder creates an empty builder for the component
func NewBuilder(identity models.TypeIdentity) *Builder {
	return &Builder{
		identity:       identity,
		global:         make(map[models.InterceptionType][]InterceptorRef),
		methodBound:    make(map[models.InterceptionType]map[string][]InterceptorRef),
		ignoringGlobal: make(map[string]bool),
	}
}

// Intercept appends interceptors to the class-wide chain of t
func (b *Builder) Intercept(t models.InterceptionType, refs ...InterceptorRef) *Builder {
	if len(refs) > 0 {
		b.global[t] = append(b.global[t], refs...)
	}
	return b
}

// InterceptMethod appends interceptors to the chain of t bound to method
func (b *Builder) InterceptMethod(t models.InterceptionType, method string, refs ...InterceptorRef) *Builder {
	if len(refs) == 0 {
		return b
	}
	if b.methodBound[t] == nil {
		b.methodBound[t] = make(map[string][]InterceptorRef)
	}
	b.methodBound[t][method] = append(b.methodBound[t][method], refs...)
	return b
}

// IgnoreGlobalInterceptors marks method as excluding class-level interceptors
func (b *Builder) IgnoreGlobalInterceptors(method string) *Builder {
	b.ignoringGlobal[method] = true
	return b
}

// SetTargetClass records the component's own interception methods
func (b *Builder) SetTargetClass(meta *TargetClassMetadata) *Builder {
	b.targetClass = meta
	return b
}

// Apply merges a collector contribution into the builder, preserving registration order
func (b *Builder) Apply(c *Contribution) *Builder {
	if c == nil {
		return b
	}
	for _, method := range c.ExcludedMethods {
		b.IgnoreGlobalInterceptors(method)
	}
	for _, r := range c.Registrations {
		if r.Method == "" {
			b.Intercept(r.Type, r.Interceptors...)
		} else {
			b.InterceptMethod(r.Type, r.Method, r.Interceptors...)
		}
	}
	return b
}

// Build produces an immutable model from the accumulated chains
func (b *Builder) Build() *InterceptionModel {
	model := &InterceptionModel{
		identity:       b.identity,
		global:         make(map[models.InterceptionType][]InterceptorRef, len(b.global)),
		methodBound:    make(map[models.InterceptionType]map[string][]InterceptorRef, len(b.methodBound)),
		ignoringGlobal: make(map[string]bool, len(b.ignoringGlobal)),
		targetClass:    b.targetClass,
	}

	methods := make(map[string]bool)
	for _, t := range models.AllInterceptionTypes() {
		if refs, ok := b.global[t]; ok {
			model.global[t] = copyRefs(refs)
			model.allInterceptors = appendDistinct(model.allInterceptors, refs...)
		}
		bound, ok := b.methodBound[t]
		if !ok {
			continue
		}
		model.methodBound[t] = make(map[string][]InterceptorRef, len(bound))
		names := make([]string, 0, len(bound))
		for method := range bound {
			names = append(names, method)
		}
		sort.Strings(names)
		for _, method := range names {
			model.methodBound[t][method] = copyRefs(bound[method])
			model.allInterceptors = appendDistinct(model.allInterceptors, bound[method]...)
			methods[method] = true
		}
	}
	for method := range b.ignoringGlobal {
		model.ignoringGlobal[method] = true
	}
	for method := range methods {
		model.interceptedMethod = append(model.interceptedMethod, method)
	}
	sort.Strings(model.interceptedMethod)
	return model
}
