package interception

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/toyz/weave/internal/models"
)

// Options wires the collaborators an Initializer reads from
type Options struct {
	Reader        InterceptorMetadataReader
	Normalizer    BindingNormalizer
	ClassBindings ClassBindingMerger
	Resolver      InterceptorResolver
	Registry      ModelRegistry
	Methods       MethodSelector // defaults to DefaultMethodSelector
	Logger        *slog.Logger   // defaults to slog.Default()
}

// Result is the outcome of one successful initialization
type Result struct {
	Model *InterceptionModel
	// Registered is false when the model was empty and the component does not intercept itself
	Registered bool
}

// Initializer builds and registers the interception model of components. It holds no
// per-component state, so one Initializer may serve concurrent Init calls.
type Initializer struct {
	opts   Options
	logger *slog.Logger
}

// NewInitializer validates the options and creates an Initializer
func NewInitializer(opts Options) (*Initializer, error) {
	switch {
	case opts.Reader == nil:
		return nil, fmt.Errorf("interceptor metadata reader is required")
	case opts.Normalizer == nil:
		return nil, fmt.Errorf("binding normalizer is required")
	case opts.ClassBindings == nil:
		return nil, fmt.Errorf("class binding merger is required")
	case opts.Resolver == nil:
		return nil, fmt.Errorf("interceptor resolver is required")
	case opts.Registry == nil:
		return nil, fmt.Errorf("model registry is required")
	}
	if opts.Methods == nil {
		opts.Methods = DefaultMethodSelector
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Initializer{opts: opts, logger: logger}, nil
}

// Init resolves the interception model of one component and registers it when it is
// non-empty or the component intercepts itself. Any error aborts this component only;
// nothing is registered on failure.
func (i *Initializer) Init(ctx context.Context, desc *models.ComponentDescriptor) (*Result, error) {
	logger := i.logger.With("component", desc.Identity.String())
	builder := NewBuilder(desc.Identity)

	// target class scan
	selfIntercepting := false
	if !desc.Interceptor {
		target := NewTargetClassMetadata(desc)
		builder.SetTargetClass(target)
		selfIntercepting = target.HasSerializationOrInvocationMethods()
	}

	businessMethods := i.opts.Methods.BusinessMethods(desc)
	logger.Debug("business methods discovered", "count", len(businessMethods), "self_intercepting", selfIntercepting)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	legacy, err := CollectLegacy(desc, businessMethods, i.opts.Reader)
	if err != nil {
		return nil, err
	}
	builder.Apply(legacy)
	logger.Debug("legacy interceptors collected", "registrations", len(legacy.Registrations), "excluded_methods", len(legacy.ExcludedMethods))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	classBindings, err := i.opts.ClassBindings.MergeClassBindings(desc, desc.Stereotypes)
	if err != nil {
		return nil, err
	}
	bound, err := CollectBindings(desc, businessMethods, classBindings, i.opts.Normalizer, i.opts.Resolver)
	if err != nil {
		return nil, err
	}
	builder.Apply(bound)
	logger.Debug("binding interceptors collected", "class_bindings", len(classBindings), "registrations", len(bound.Registrations))

	model := builder.Build()
	if model.IsEmpty() && !selfIntercepting {
		logger.Debug("no interception required")
		return &Result{Model: model}, nil
	}

	if err := ValidateComponent(desc, model, selfIntercepting); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.opts.Registry.Put(desc.Identity, model)
	logger.Debug("interception model registered", "interceptors", len(model.AllInterceptors()), "methods", len(model.Methods()))
	return &Result{Model: model, Registered: true}, nil
}
