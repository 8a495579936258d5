package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
)

const pkgPath = "github.com/acme/shop/orders"

func TestParseSourceComponent(t *testing.T) {
	source := `package orders

import audit "github.com/acme/shop/audit"

//weave::component
//weave::binding Logged
//weave::binding Secured -Value=admin
//weave::stereotype Monitored
//weave::interceptors TraceInterceptor,audit.Interceptor
type OrderService struct{}

//weave::binding Logged
//weave::exclude_class_interceptors
func NewOrderService() *OrderService { return &OrderService{} }

//weave::binding Audited
//weave::final
func (s *OrderService) Place(id string) error { return nil }

//weave::timeout
func (s *OrderService) Expire() {}

func (s OrderService) helper() {}

//weave::around_invoke
func (s *OrderService) Intercept() {}
`

	p := NewParser(nil)
	metadata, err := p.ParseSource(pkgPath, "orders.go", source)
	require.NoError(t, err)

	assert.Equal(t, "orders", metadata.PackageName)
	require.Len(t, metadata.Components, 1)
	c := metadata.Components[0]

	assert.Equal(t, models.TypeIdentity(pkgPath+".OrderService"), c.Identity)
	assert.Equal(t, "OrderService", c.Name)
	assert.False(t, c.Final)
	assert.False(t, c.Interceptor)
	assert.Equal(t, []models.Binding{
		{Kind: "Logged"},
		{Kind: "Secured", Value: "admin"},
	}, c.Bindings)
	assert.Equal(t, []string{"Monitored"}, c.Stereotypes)
	assert.Equal(t, []string{
		pkgPath + ".TraceInterceptor",
		"github.com/acme/shop/audit.Interceptor",
	}, c.InterceptorClasses)
	assert.Equal(t, "orders.go:10", c.Location.String())

	assert.Equal(t, "NewOrderService", c.Constructor.Name)
	assert.False(t, c.Constructor.Private)
	assert.True(t, c.Constructor.ExcludeClassInterceptors)
	assert.Equal(t, []models.Binding{{Kind: "Logged"}}, c.Constructor.Bindings)

	require.Len(t, c.Methods, 4)
	place, ok := c.Method("Place")
	require.True(t, ok)
	assert.True(t, place.Final)
	assert.False(t, place.Private)
	assert.Equal(t, []models.Binding{{Kind: "Audited"}}, place.Bindings)

	expire, _ := c.Method("Expire")
	assert.True(t, expire.Timeout)

	helper, _ := c.Method("helper")
	assert.True(t, helper.Private)

	intercept, _ := c.Method("Intercept")
	assert.Equal(t, []models.InterceptionType{models.AroundInvoke}, intercept.InterceptionMethods)
	assert.True(t, intercept.IsInterceptionMethod())
}

func TestParseSourceDeclarations(t *testing.T) {
	source := `package orders

//weave::binding_type Logged
type Logged struct{}

//weave::binding_type Secure -Includes=Logged,Audited -NonBinding
type Secure struct{}

//weave::stereotype_type Monitored
//weave::binding Logged
//weave::stereotype Base
type Monitored struct{}

//weave::interceptor -Priority=10
//weave::binding Logged
type LoggingInterceptor struct{}

//weave::around_invoke
func (i *LoggingInterceptor) Log() {}

//weave::post_construct
//weave::pre_destroy
func (i *LoggingInterceptor) Lifecycle() {}

//weave::around_invoke
func (i *LoggingInterceptor) Again() {}

//weave::interceptor -Disabled
type Off struct{}
`

	metadata, err := NewParser(nil).ParseSource(pkgPath, "decls.go", source)
	require.NoError(t, err)
	assert.Empty(t, metadata.Components)

	require.Len(t, metadata.BindingTypes, 2)
	assert.Equal(t, models.BindingKind("Logged"), metadata.BindingTypes[0].Kind)
	assert.False(t, metadata.BindingTypes[0].NonBinding)
	assert.Equal(t, models.BindingKind("Secure"), metadata.BindingTypes[1].Kind)
	assert.Equal(t, []models.BindingKind{"Logged", "Audited"}, metadata.BindingTypes[1].Includes)
	assert.True(t, metadata.BindingTypes[1].NonBinding)

	require.Len(t, metadata.Stereotypes, 1)
	assert.Equal(t, "Monitored", metadata.Stereotypes[0].Name)
	assert.Equal(t, []models.Binding{{Kind: "Logged"}}, metadata.Stereotypes[0].Bindings)
	assert.Equal(t, []string{"Base"}, metadata.Stereotypes[0].Stereotypes)

	require.Len(t, metadata.Interceptors, 2)
	logging := metadata.Interceptors[0]
	assert.Equal(t, models.TypeIdentity(pkgPath+".LoggingInterceptor"), logging.Identity)
	assert.Equal(t, 10, logging.Priority)
	assert.False(t, logging.Disabled)
	assert.Equal(t, []models.Binding{{Kind: "Logged"}}, logging.Bindings)
	assert.Equal(t, []models.InterceptionType{models.AroundInvoke, models.PostConstruct, models.PreDestroy}, logging.Types)

	assert.True(t, metadata.Interceptors[1].Disabled)
	assert.Empty(t, metadata.Interceptors[1].Types)
}

func TestParseSourceConstructors(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantName    string
		wantPrivate bool
	}{
		{
			name: "exported convention",
			source: `package orders
//weave::component
type Cart struct{}
func NewCart() *Cart { return nil }
`,
			wantName: "NewCart",
		},
		{
			name: "unexported convention is private",
			source: `package orders
//weave::component
type Cart struct{}
func newCart() *Cart { return nil }
`,
			wantName:    "newCart",
			wantPrivate: true,
		},
		{
			name: "explicit constructor wins",
			source: `package orders
//weave::component
type Cart struct{}
func NewCart() *Cart { return nil }
//weave::constructor Cart
func BuildCart() *Cart { return nil }
`,
			wantName: "BuildCart",
		},
		{
			name: "no constructor",
			source: `package orders
//weave::component
type Cart struct{}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata, err := NewParser(nil).ParseSource(pkgPath, "cart.go", tt.source)
			require.NoError(t, err)
			require.Len(t, metadata.Components, 1)
			ctor := metadata.Components[0].Constructor
			assert.Equal(t, tt.wantName, ctor.Name)
			assert.Equal(t, tt.wantPrivate, ctor.Private)
		})
	}
}

func TestParseSourceFinalAndInterceptorComponent(t *testing.T) {
	source := `package orders

//weave::component
//weave::final
//weave::interceptor
//weave::binding Logged
type Self struct{}

//weave::around_invoke
func (s *Self) Around() {}
`
	metadata, err := NewParser(nil).ParseSource(pkgPath, "self.go", source)
	require.NoError(t, err)
	require.Len(t, metadata.Components, 1)
	assert.True(t, metadata.Components[0].Final)
	assert.True(t, metadata.Components[0].Interceptor)
	require.Len(t, metadata.Interceptors, 1)
	assert.Equal(t, metadata.Components[0].Identity, metadata.Interceptors[0].Identity)
}

func TestParseSourceErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantCode weaveerrors.ErrorCode
		wantMsg  string
	}{
		{
			name: "unknown annotation",
			source: `package orders
//weave::component -Mode=Transient
type Cart struct{}
`,
			wantCode: weaveerrors.SyntaxErrorCode,
			wantMsg:  "unknown parameter 'Mode'",
		},
		{
			name: "method annotation on type",
			source: `package orders
//weave::timeout
type Cart struct{}
`,
			wantCode: weaveerrors.SyntaxErrorCode,
			wantMsg:  "cannot be attached to a type",
		},
		{
			name: "stray function",
			source: `package orders
//weave::binding Logged
func Helper() {}
`,
			wantCode: weaveerrors.ValidationErrorCode,
			wantMsg:  "is not a constructor",
		},
		{
			name: "two explicit constructors",
			source: `package orders
//weave::component
type Cart struct{}
//weave::constructor Cart
func A() *Cart { return nil }
//weave::constructor Cart
func B() *Cart { return nil }
`,
			wantCode: weaveerrors.ValidationErrorCode,
			wantMsg:  "more than one constructor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseSource(pkgPath, "bad.go", tt.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.True(t, weaveerrors.HasCode(err, tt.wantCode))

			var multi *weaveerrors.MultipleErrors
			require.ErrorAs(t, err, &multi)
			require.Equal(t, 1, multi.Count())
			assert.Equal(t, "bad.go", multi.Errors[0].Location().File)
		})
	}
}

func TestParseSourceSyntaxError(t *testing.T) {
	_, err := NewParser(nil).ParseSource(pkgPath, "broken.go", "package orders\nfunc {")
	require.Error(t, err)
	assert.True(t, weaveerrors.HasCode(err, weaveerrors.SyntaxErrorCode))
}

func TestParseDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", `package orders

//weave::component
//weave::binding Logged
type A struct{}
`)
	writeFile(t, dir, "b.go", `package orders

//weave::interceptor
//weave::binding Logged
type LoggingInterceptor struct{}

//weave::around_invoke
func (l *LoggingInterceptor) Around() {}
`)
	writeFile(t, dir, "a_test.go", `package orders

//weave::component
type Ignored struct{}
`)

	metadata, err := NewParser(nil).ParseDirectory(dir, pkgPath)
	require.NoError(t, err)
	require.Len(t, metadata.Components, 1)
	assert.Equal(t, "A", metadata.Components[0].Name)
	require.Len(t, metadata.Interceptors, 1)
	assert.Equal(t, []models.InterceptionType{models.AroundInvoke}, metadata.Interceptors[0].Types)
}

func TestParseDirectoryEmpty(t *testing.T) {
	_, err := NewParser(nil).ParseDirectory(t.TempDir(), pkgPath)
	assert.ErrorContains(t, err, "no Go packages found")
}

func TestQualifyClass(t *testing.T) {
	tests := []struct {
		class string
		want  string
	}{
		{class: "Audit", want: pkgPath + ".Audit"},
		{class: "github.com/acme/x.Audit", want: "github.com/acme/x.Audit"},
		{class: "unknown.Audit", want: "unknown.Audit"},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			assert.Equal(t, tt.want, qualifyClass(pkgPath, nil, tt.class))
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseSourceKeepsRepeatedBindings(t *testing.T) {
	source := `package orders

//weave::component
type OrderService struct{}

//weave::binding Audited
//weave::binding Audited
func (s *OrderService) Place() {}
`

	metadata, err := NewParser(nil).ParseSource(pkgPath, "orders.go", source)
	require.NoError(t, err)
	require.Len(t, metadata.Components, 1)

	place, ok := metadata.Components[0].Method("Place")
	require.True(t, ok)
	assert.Equal(t, []models.Binding{{Kind: "Audited"}, {Kind: "Audited"}}, place.Bindings)
}
