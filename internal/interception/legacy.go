package interception

import (
	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
)

// CollectLegacy gathers interceptors declared by explicit class lists on the component,
// its constructor and its business methods.
func CollectLegacy(desc *models.ComponentDescriptor, businessMethods []models.MethodDescriptor, reader InterceptorMetadataReader) (*Contribution, error) {
	c := &Contribution{}

	if err := collectClassDeclared(c, desc, reader); err != nil {
		return nil, err
	}
	if err := collectConstructorDeclared(c, desc, reader); err != nil {
		return nil, err
	}
	for _, method := range businessMethods {
		if err := collectMethodDeclared(c, desc, method, reader); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func collectClassDeclared(c *Contribution, desc *models.ComponentDescriptor, reader InterceptorMetadataReader) error {
	excludeAroundConstruct := desc.Constructor.ExcludeClassInterceptors

	for _, class := range desc.InterceptorClasses {
		interceptor, err := plainInterceptor(desc, class, reader)
		if err != nil {
			return err
		}
		for _, t := range models.AllInterceptionTypes() {
			// exclusion on the constructor suppresses class-level AROUND_CONSTRUCT only
			if excludeAroundConstruct && t == models.AroundConstruct {
				continue
			}
			if interceptor.IsEligible(t) {
				c.intercept(t, interceptor)
			}
		}
	}
	return nil
}

func collectConstructorDeclared(c *Contribution, desc *models.ComponentDescriptor, reader InterceptorMetadataReader) error {
	for _, class := range desc.Constructor.InterceptorClasses {
		interceptor, err := plainInterceptor(desc, class, reader)
		if err != nil {
			return err
		}
		c.intercept(models.AroundConstruct, interceptor)
	}
	return nil
}

func collectMethodDeclared(c *Contribution, desc *models.ComponentDescriptor, method models.MethodDescriptor, reader InterceptorMetadataReader) error {
	if method.ExcludeClassInterceptors {
		c.ExcludedMethods = append(c.ExcludedMethods, method.Name)
	}

	if len(method.InterceptorClasses) == 0 {
		return nil
	}
	if err := ValidateMethod(desc, method, method.InterceptorClasses[0]); err != nil {
		return err
	}

	refs := make([]InterceptorRef, 0, len(method.InterceptorClasses))
	for _, class := range method.InterceptorClasses {
		interceptor, err := plainInterceptor(desc, class, reader)
		if err != nil {
			return err
		}
		refs = append(refs, interceptor)
	}

	t := models.AroundInvoke
	if method.Timeout {
		t = models.AroundTimeout
	}
	c.interceptMethod(t, method.Name, refs...)
	return nil
}

func plainInterceptor(desc *models.ComponentDescriptor, class string, reader InterceptorMetadataReader) (InterceptorRef, error) {
	interceptor, ok := reader.PlainInterceptorMetadata(class)
	if !ok {
		return nil, weaveerrors.NewUnknownInterceptorError(desc.Identity.String(), class).
			WithLocation(location(desc.Location))
	}
	return interceptor, nil
}
