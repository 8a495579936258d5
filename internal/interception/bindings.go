package interception

import (
	"github.com/toyz/weave/internal/models"
)

// CollectBindings resolves interceptors from the interceptor bindings of the component,
// its constructor and its business methods. classBindings are the effective class-level
// bindings, stereotypes included.
func CollectBindings(desc *models.ComponentDescriptor, businessMethods []models.MethodDescriptor, classBindings models.BindingSet, normalizer BindingNormalizer, resolver InterceptorResolver) (*Contribution, error) {
	c := &Contribution{}

	collectLifecycleBound(c, classBindings, resolver)

	if err := collectConstructorBound(c, desc, classBindings, normalizer, resolver); err != nil {
		return nil, err
	}
	for _, method := range businessMethods {
		if err := collectMethodBound(c, desc, method, classBindings, normalizer, resolver); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func collectLifecycleBound(c *Contribution, classBindings models.BindingSet, resolver InterceptorResolver) {
	if len(classBindings) == 0 {
		return
	}
	bindings := classBindings.Values()
	for _, t := range models.LifecycleBindingTypes() {
		if resolved := resolver.ResolveInterceptors(t, bindings); len(resolved) > 0 {
			c.intercept(t, resolved...)
		}
	}
}

func collectConstructorBound(c *Contribution, desc *models.ComponentDescriptor, classBindings models.BindingSet, normalizer BindingNormalizer, resolver InterceptorResolver) error {
	member := desc.Constructor.Name
	if member == "" {
		member = "constructor"
	}
	bindings, err := memberBindings(normalizer, desc.Identity, member, classBindings, desc.Constructor.Bindings)
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		return nil
	}
	if resolved := resolver.ResolveInterceptors(models.AroundConstruct, bindings.Values()); len(resolved) > 0 {
		c.intercept(models.AroundConstruct, resolved...)
	}
	return nil
}

func collectMethodBound(c *Contribution, desc *models.ComponentDescriptor, method models.MethodDescriptor, classBindings models.BindingSet, normalizer BindingNormalizer, resolver InterceptorResolver) error {
	bindings, err := memberBindings(normalizer, desc.Identity, method.Name, classBindings, method.Bindings)
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		return nil
	}

	values := bindings.Values()
	for _, t := range []models.InterceptionType{models.AroundInvoke, models.AroundTimeout} {
		resolved := resolver.ResolveInterceptors(t, values)
		if len(resolved) == 0 {
			continue
		}
		if err := ValidateMethod(desc, method, resolved[0].OwningType().String()); err != nil {
			return err
		}
		c.interceptMethod(t, method.Name, resolved...)
	}
	return nil
}
