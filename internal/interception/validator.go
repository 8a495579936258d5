package interception

import (
	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
)

// ValidateMethod rejects interception of a final business method. owner names the first
// interceptor bound to it.
func ValidateMethod(desc *models.ComponentDescriptor, method models.MethodDescriptor, owner string) error {
	if !method.Final {
		return nil
	}
	return weaveerrors.NewFinalMethodWithInterceptorsError(desc.Identity.String(), method.Name, owner).
		WithLocation(location(method.Location))
}

// ValidateComponent checks the structural preconditions of a component that needs an
// interception proxy. It is a no-op when the model is empty and the component does not
// intercept itself.
func ValidateComponent(desc *models.ComponentDescriptor, model *InterceptionModel, selfIntercepting bool) error {
	if model.IsEmpty() && !selfIntercepting {
		return nil
	}

	if desc.Final {
		return weaveerrors.NewFinalClassWithInterceptorsError(desc.Identity.String()).
			WithLocation(location(desc.Location))
	}

	if desc.Constructor.Private {
		return weaveerrors.NewNonProxyableConstructorError(desc.Identity.String(), desc.Constructor.Name).
			WithLocation(location(desc.Constructor.Location))
	}

	for _, name := range model.Methods() {
		method, ok := desc.Method(name)
		if !ok {
			continue
		}
		for _, t := range []models.InterceptionType{models.AroundInvoke, models.AroundTimeout} {
			chain := model.MethodInterceptors(t, name)
			if len(chain) == 0 {
				continue
			}
			if err := ValidateMethod(desc, method, chain[0].OwningType().String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func location(loc models.SourceLocation) weaveerrors.SourceLocation {
	return weaveerrors.SourceLocation{File: loc.File, Line: loc.Line}
}
