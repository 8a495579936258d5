package interception

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
)

func newTestInitializer(t *testing.T, registry *fakeRegistry) *Initializer {
	t.Helper()
	initializer, err := NewInitializer(Options{
		Reader:        legacyReader(),
		Normalizer:    passthroughNormalizer{},
		ClassBindings: ownBindings{},
		Resolver:      newResolver(),
		Registry:      registry,
	})
	require.NoError(t, err)
	return initializer
}

func TestNewInitializerRequiresCollaborators(t *testing.T) {
	valid := Options{
		Reader:        legacyReader(),
		Normalizer:    passthroughNormalizer{},
		ClassBindings: ownBindings{},
		Resolver:      newResolver(),
		Registry:      newFakeRegistry(),
	}

	tests := []struct {
		name   string
		mutate func(*Options)
		errMsg string
	}{
		{name: "reader", mutate: func(o *Options) { o.Reader = nil }, errMsg: "interceptor metadata reader is required"},
		{name: "normalizer", mutate: func(o *Options) { o.Normalizer = nil }, errMsg: "binding normalizer is required"},
		{name: "class bindings", mutate: func(o *Options) { o.ClassBindings = nil }, errMsg: "class binding merger is required"},
		{name: "resolver", mutate: func(o *Options) { o.Resolver = nil }, errMsg: "interceptor resolver is required"},
		{name: "registry", mutate: func(o *Options) { o.Registry = nil }, errMsg: "model registry is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			_, err := NewInitializer(opts)
			assert.EqualError(t, err, tt.errMsg)
		})
	}

	initializer, err := NewInitializer(valid)
	require.NoError(t, err)
	assert.NotNil(t, initializer)
}

func TestInitRegistersBoundInterceptors(t *testing.T) {
	registry := newFakeRegistry()
	initializer := newTestInitializer(t, registry)

	desc := &models.ComponentDescriptor{
		Identity: component,
		Bindings: []models.Binding{{Kind: "Logged"}, {Kind: "Audited"}},
		Methods:  []models.MethodDescriptor{{Name: "Checkout"}},
	}

	result, err := initializer.Init(context.Background(), desc)
	require.NoError(t, err)
	assert.True(t, result.Registered)
	assert.Equal(t, []string{"shop.LoggingInterceptor", "shop.AuditInterceptor"},
		owningTypes(result.Model.Interceptors(models.AroundInvoke, "Checkout")))

	stored, ok := registry.get(component)
	require.True(t, ok)
	assert.Same(t, result.Model, stored)
}

func TestInitCombinesLegacyAndBoundChains(t *testing.T) {
	registry := newFakeRegistry()
	initializer := newTestInitializer(t, registry)

	desc := &models.ComponentDescriptor{
		Identity:           component,
		InterceptorClasses: []string{"shop.Trace"},
		Methods: []models.MethodDescriptor{
			{Name: "Checkout", Bindings: []models.Binding{{Kind: "Logged"}}},
			{Name: "Browse", ExcludeClassInterceptors: true, InterceptorClasses: []string{"shop.Metrics"}},
		},
	}

	result, err := initializer.Init(context.Background(), desc)
	require.NoError(t, err)

	model := result.Model
	assert.Equal(t, []string{"shop.Trace", "shop.LoggingInterceptor"}, owningTypes(model.Interceptors(models.AroundInvoke, "Checkout")))
	assert.Equal(t, []string{"shop.Metrics"}, owningTypes(model.Interceptors(models.AroundInvoke, "Browse")))
	assert.Equal(t, []string{"shop.Trace"}, owningTypes(model.ClassInterceptors(models.PostConstruct)))
}

func TestInitOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		desc       *models.ComponentDescriptor
		registered bool
		code       weaveerrors.ErrorCode
	}{
		{
			name: "no interception",
			desc: &models.ComponentDescriptor{
				Identity: component,
				Methods:  []models.MethodDescriptor{{Name: "Checkout"}},
			},
		},
		{
			name: "self intercepting",
			desc: &models.ComponentDescriptor{
				Identity: component,
				Methods: []models.MethodDescriptor{
					{Name: "Around", InterceptionMethods: []models.InterceptionType{models.AroundInvoke}},
				},
			},
			registered: true,
		},
		{
			name: "lifecycle self interception only",
			desc: &models.ComponentDescriptor{
				Identity: component,
				Methods: []models.MethodDescriptor{
					{Name: "Init", InterceptionMethods: []models.InterceptionType{models.PostConstruct}},
				},
			},
		},
		{
			name: "interceptor skips target class scan",
			desc: &models.ComponentDescriptor{
				Identity:    component,
				Interceptor: true,
				Methods: []models.MethodDescriptor{
					{Name: "Around", InterceptionMethods: []models.InterceptionType{models.AroundInvoke}},
				},
			},
		},
		{
			name: "final class",
			desc: &models.ComponentDescriptor{
				Identity: component,
				Final:    true,
				Bindings: []models.Binding{{Kind: "Logged"}},
				Methods:  []models.MethodDescriptor{{Name: "Checkout"}},
			},
			code: weaveerrors.FinalClassWithInterceptorsErrorCode,
		},
		{
			name: "final class without interception",
			desc: &models.ComponentDescriptor{
				Identity: component,
				Final:    true,
				Methods:  []models.MethodDescriptor{{Name: "Checkout"}},
			},
		},
		{
			name: "private constructor",
			desc: &models.ComponentDescriptor{
				Identity:           component,
				InterceptorClasses: []string{"shop.Trace"},
				Constructor:        models.ConstructorDescriptor{Name: "newCart", Private: true},
			},
			code: weaveerrors.NonProxyableConstructorErrorCode,
		},
		{
			name: "unknown legacy interceptor",
			desc: &models.ComponentDescriptor{
				Identity:           component,
				InterceptorClasses: []string{"shop.Missing"},
			},
			code: weaveerrors.UnknownInterceptorErrorCode,
		},
		{
			name: "binding conflict",
			desc: &models.ComponentDescriptor{
				Identity: component,
				Methods: []models.MethodDescriptor{
					{Name: "Checkout", Bindings: []models.Binding{{Kind: "Logged"}, {Kind: "Logged", Value: "debug"}}},
				},
			},
			code: weaveerrors.BindingConflictErrorCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := newFakeRegistry()
			result, err := newTestInitializer(t, registry).Init(context.Background(), tt.desc)

			if tt.code != weaveerrors.UnknownErrorCode {
				assert.Nil(t, result)
				assert.Equal(t, tt.code, weaveerrors.CodeOf(err))
				assert.Zero(t, registry.puts, "nothing is registered on failure")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.registered, result.Registered)
			_, stored := registry.get(component)
			assert.Equal(t, tt.registered, stored)
		})
	}
}

func TestInitInterceptorHasNoTargetClass(t *testing.T) {
	desc := &models.ComponentDescriptor{
		Identity:    component,
		Interceptor: true,
		Bindings:    []models.Binding{{Kind: "Logged"}},
		Methods: []models.MethodDescriptor{
			{Name: "Checkout"},
			{Name: "Around", InterceptionMethods: []models.InterceptionType{models.AroundInvoke}},
		},
	}

	result, err := newTestInitializer(t, newFakeRegistry()).Init(context.Background(), desc)
	require.NoError(t, err)
	assert.True(t, result.Registered)
	assert.Nil(t, result.Model.TargetClass())
	assert.Equal(t, []string{"Checkout"}, result.Model.Methods(), "interception methods are not business methods")
}

func TestInitCancelled(t *testing.T) {
	registry := newFakeRegistry()
	initializer := newTestInitializer(t, registry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := initializer.Init(ctx, &models.ComponentDescriptor{
		Identity: component,
		Bindings: []models.Binding{{Kind: "Logged"}},
		Methods:  []models.MethodDescriptor{{Name: "Checkout"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, registry.puts)
}

func TestInitCustomMethodSelector(t *testing.T) {
	registry := newFakeRegistry()
	initializer, err := NewInitializer(Options{
		Reader:        legacyReader(),
		Normalizer:    passthroughNormalizer{},
		ClassBindings: ownBindings{},
		Resolver:      newResolver(),
		Registry:      registry,
		Methods: MethodSelectorFunc(func(desc *models.ComponentDescriptor) []models.MethodDescriptor {
			return desc.Methods[:1]
		}),
	})
	require.NoError(t, err)

	result, err := initializer.Init(context.Background(), &models.ComponentDescriptor{
		Identity: component,
		Bindings: []models.Binding{{Kind: "Logged"}},
		Methods:  []models.MethodDescriptor{{Name: "Checkout"}, {Name: "Browse"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Checkout"}, result.Model.Methods())
}

func TestInitConcurrent(t *testing.T) {
	registry := newFakeRegistry()
	initializer := newTestInitializer(t, registry)

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = initializer.Init(context.Background(), &models.ComponentDescriptor{
				Identity: models.TypeIdentity(fmt.Sprintf("example.com/shop.Cart%d", i)),
				Bindings: []models.Binding{{Kind: "Logged"}},
				Methods:  []models.MethodDescriptor{{Name: "Checkout"}},
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, n, registry.puts)
	for i := 0; i < n; i++ {
		model, ok := registry.get(models.TypeIdentity(fmt.Sprintf("example.com/shop.Cart%d", i)))
		require.True(t, ok)
		assert.Equal(t, []string{"shop.LoggingInterceptor"}, owningTypes(model.Interceptors(models.AroundInvoke, "Checkout")))
	}
}
