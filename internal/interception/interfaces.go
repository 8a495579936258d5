package interception

import "github.com/toyz/weave/internal/models"

// InterceptorRef is an opaque handle to an interceptor definition. Chains of refs are kept
// in the order the resolver produced them. Refs are compared with ==, so implementations
// must be comparable (usually pointers).
type InterceptorRef interface {
	// OwningType is the identity of the type implementing the interceptor
	OwningType() models.TypeIdentity
	// IsEligible reports whether the interceptor declares a method for the interception type
	IsEligible(t models.InterceptionType) bool
}

// BindingNormalizer filters raw member annotations down to interceptor bindings and flattens
// composed bindings into the set of kinds they imply.
type BindingNormalizer interface {
	FilterBindings(annotations []models.Binding) []models.Binding
	FlattenBindings(bindings []models.Binding) []models.Binding
}

// ClassBindingMerger computes the effective class-level bindings of a component, including
// bindings inherited from its stereotypes.
type ClassBindingMerger interface {
	MergeClassBindings(desc *models.ComponentDescriptor, stereotypes []string) (models.BindingSet, error)
}

// InterceptorResolver maps a binding collection to the ordered interceptors matching it.
// Implementations must be safe for concurrent reads.
type InterceptorResolver interface {
	ResolveInterceptors(t models.InterceptionType, bindings []models.Binding) []InterceptorRef
}

// InterceptorMetadataReader supplies metadata for explicitly declared (legacy) interceptor classes
type InterceptorMetadataReader interface {
	PlainInterceptorMetadata(class string) (InterceptorRef, bool)
}

// ModelRegistry receives finished interception models keyed by component identity
type ModelRegistry interface {
	Put(identity models.TypeIdentity, model *InterceptionModel)
}

// MethodSelector decides which methods of a component are business methods eligible for interception
type MethodSelector interface {
	BusinessMethods(desc *models.ComponentDescriptor) []models.MethodDescriptor
}

// MethodSelectorFunc adapts a function to MethodSelector
type MethodSelectorFunc func(desc *models.ComponentDescriptor) []models.MethodDescriptor

// BusinessMethods implements MethodSelector
func (f MethodSelectorFunc) BusinessMethods(desc *models.ComponentDescriptor) []models.MethodDescriptor {
	return f(desc)
}
