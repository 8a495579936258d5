package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/interception"
	"github.com/toyz/weave/internal/models"
)

var aroundInvoke = []models.InterceptionType{models.AroundInvoke}

func declare(identity string, priority int, bindings ...models.Binding) *models.InterceptorDeclaration {
	return &models.InterceptorDeclaration{
		Identity: models.TypeIdentity(identity),
		Priority: priority,
		Bindings: bindings,
		Types:    aroundInvoke,
	}
}

func newTestInterceptors(t *testing.T, options EnablementOptions, decls ...*models.InterceptorDeclaration) InterceptorDefinitions {
	t.Helper()
	r := NewInterceptorRegistry(newTestBindings(t), options, nil)
	for _, decl := range decls {
		require.NoError(t, r.Register(decl))
	}
	return r
}

func identities(refs []interception.InterceptorRef) []string {
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.OwningType().String()
	}
	return ids
}

func TestResolveInterceptorsOrdering(t *testing.T) {
	logged := models.Binding{Kind: "Logged"}
	decls := func() []*models.InterceptorDeclaration {
		return []*models.InterceptorDeclaration{
			declare("shop.Zeta", 10, logged),
			declare("shop.Alpha", 10, logged),
			declare("shop.First", 1, logged),
			declare("shop.Late", 100, logged),
		}
	}

	tests := []struct {
		name     string
		options  EnablementOptions
		expected []string
	}{
		{
			name:     "priority then identity",
			expected: []string{"shop.First", "shop.Alpha", "shop.Zeta", "shop.Late"},
		},
		{
			name:     "enabled list restricts and orders ties",
			options:  EnablementOptions{Enabled: []models.TypeIdentity{"shop.Zeta", "shop.Alpha"}},
			expected: []string{"shop.Zeta", "shop.Alpha"},
		},
		{
			name:     "priority override",
			options:  EnablementOptions{Priorities: map[models.TypeIdentity]int{"shop.Late": 0}},
			expected: []string{"shop.Late", "shop.First", "shop.Alpha", "shop.Zeta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestInterceptors(t, tt.options, decls()...)
			assert.Equal(t, tt.expected, identities(r.ResolveInterceptors(models.AroundInvoke, []models.Binding{logged})))
			assert.Len(t, r.List(), 4, "listing ignores enablement")
		})
	}
}

func TestResolveInterceptorsMatching(t *testing.T) {
	disabled := declare("shop.Disabled", 1, models.Binding{Kind: "Logged"})
	disabled.Disabled = true
	lifecycle := declare("shop.Lifecycle", 1, models.Binding{Kind: "Logged"})
	lifecycle.Types = []models.InterceptionType{models.PostConstruct}

	r := newTestInterceptors(t, EnablementOptions{},
		declare("shop.Logging", 1, models.Binding{Kind: "Logged"}),
		declare("shop.Debug", 2, models.Binding{Kind: "Logged", Value: "debug"}),
		declare("shop.Both", 3, models.Binding{Kind: "Logged"}, models.Binding{Kind: "Audited"}),
		declare("shop.Secure", 4, models.Binding{Kind: "Secured"}),
		declare("shop.Tracing", 5, models.Binding{Kind: "Traced", Value: "root"}),
		declare("shop.Unbound", 6),
		disabled,
		lifecycle,
	)

	tests := []struct {
		name     string
		t        models.InterceptionType
		bindings []models.Binding
		expected []string
	}{
		{name: "no bindings", t: models.AroundInvoke, expected: []string{}},
		{name: "single binding", t: models.AroundInvoke, bindings: []models.Binding{{Kind: "Logged"}}, expected: []string{"shop.Logging"}},
		{name: "values must match", t: models.AroundInvoke, bindings: []models.Binding{{Kind: "Logged", Value: "debug"}}, expected: []string{"shop.Debug"}},
		{
			name:     "all bindings required",
			t:        models.AroundInvoke,
			bindings: []models.Binding{{Kind: "Audited"}, {Kind: "Logged"}},
			expected: []string{"shop.Logging", "shop.Both"},
		},
		{
			name:     "interceptor bindings are flattened",
			t:        models.AroundInvoke,
			bindings: []models.Binding{{Kind: "Audited"}, {Kind: "Logged"}, {Kind: "Secured"}},
			expected: []string{"shop.Logging", "shop.Both", "shop.Secure"},
		},
		{name: "non-binding values ignored", t: models.AroundInvoke, bindings: []models.Binding{{Kind: "Traced", Value: "child"}}, expected: []string{"shop.Tracing"}},
		{name: "eligibility per type", t: models.PostConstruct, bindings: []models.Binding{{Kind: "Logged"}}, expected: []string{"shop.Lifecycle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, identities(r.ResolveInterceptors(tt.t, tt.bindings)))
		})
	}
}

func TestInterceptorRegistration(t *testing.T) {
	r := newTestInterceptors(t, EnablementOptions{Enabled: []models.TypeIdentity{"shop.Other"}},
		declare("shop.Logging", 1, models.Binding{Kind: "Logged"}))

	err := r.Register(declare("shop.Logging", 2))
	assert.True(t, weaveerrors.HasCode(err, weaveerrors.RegistrationErrorCode))
	assert.EqualError(t, r.Register(nil), "interceptor declaration cannot be nil")
	assert.EqualError(t, r.Register(&models.InterceptorDeclaration{}), "interceptor identity cannot be empty")

	meta, ok := r.Get("shop.Logging")
	require.True(t, ok)
	assert.Equal(t, 1, meta.Priority)
	assert.Equal(t, "shop.Logging", meta.String())

	// legacy lookup ignores enablement
	ref, ok := r.PlainInterceptorMetadata("shop.Logging")
	require.True(t, ok)
	assert.Same(t, meta, ref)
	assert.Empty(t, r.ResolveInterceptors(models.AroundInvoke, []models.Binding{{Kind: "Logged"}}))

	_, ok = r.PlainInterceptorMetadata("shop.Missing")
	assert.False(t, ok)
}

func TestResolveInterceptorsConcurrent(t *testing.T) {
	r := newTestInterceptors(t, EnablementOptions{},
		declare("shop.Logging", 1, models.Binding{Kind: "Logged"}),
		declare("shop.Audit", 2, models.Binding{Kind: "Audited"}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			refs := r.ResolveInterceptors(models.AroundInvoke, []models.Binding{{Kind: "Logged"}, {Kind: "Audited"}})
			assert.Equal(t, []string{"shop.Logging", "shop.Audit"}, identities(refs))
		}()
	}
	wg.Wait()
}
