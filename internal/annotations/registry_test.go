package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	err := r.Register(ComponentAnnotation, ComponentAnnotationSchema)
	require.NoError(t, err)
	assert.True(t, r.IsRegistered(ComponentAnnotation))

	err = r.Register(ComponentAnnotation, ComponentAnnotationSchema)
	assert.ErrorContains(t, err, "already registered")

	err = r.Register(FinalAnnotation, ComponentAnnotationSchema)
	assert.ErrorContains(t, err, "does not match")

	_, err = r.GetSchema(TimeoutAnnotation)
	assert.ErrorContains(t, err, "not registered")
}

func TestRegistryRejectsInvalidSchemas(t *testing.T) {
	tests := []struct {
		name   string
		schema AnnotationSchema
	}{
		{
			name:   "no targets",
			schema: AnnotationSchema{Type: TimeoutAnnotation},
		},
		{
			name:   "inverted arg bounds",
			schema: AnnotationSchema{
				Type:    TimeoutAnnotation,
				Names:   []string{"timeout"},
				Targets: TargetMethod,
				MinArgs: 2,
				MaxArgs: 1,
			},
		},
		{
			name:   "no keywords",
			schema: AnnotationSchema{Type: TimeoutAnnotation, Targets: TargetMethod},
		},
		{
			name:   "keyword of another type",
			schema: AnnotationSchema{Type: TimeoutAnnotation, Names: []string{"around_timeout"}, Targets: TargetMethod},
		},
		{
			name: "empty parameter name",
			schema: AnnotationSchema{
				Type:       TimeoutAnnotation,
				Names:      []string{"timeout"},
				Targets:    TargetMethod,
				Parameters: map[string]ParameterSpec{"": {Type: StringType}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(TimeoutAnnotation, tt.schema)
			assert.ErrorContains(t, err, "invalid schema")
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltinSchemas(r))

	tests := []struct {
		keyword  string
		wantType AnnotationType
		wantErr  bool
	}{
		{keyword: "component", wantType: ComponentAnnotation},
		{keyword: "binding_type", wantType: BindingTypeAnnotation},
		{keyword: "around_invoke", wantType: InterceptionMethodAnnotation},
		{keyword: "pre_passivate", wantType: InterceptionMethodAnnotation},
		{keyword: "interception_method", wantErr: true},
		{keyword: "route", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			schema, err := r.Lookup(tt.keyword)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown annotation type")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, schema.Type)
			assert.Contains(t, schema.Names, tt.keyword)
		})
	}

	names := r.Names()
	assert.Len(t, names, 18)
	assert.IsIncreasing(t, names)
}

func TestRegistryNarrowedKeywords(t *testing.T) {
	narrowed := InterceptionMethodAnnotationSchema
	narrowed.Names = []string{"around_invoke"}
	r := NewRegistry()
	require.NoError(t, r.Register(InterceptionMethodAnnotation, narrowed))

	_, err := r.Lookup("around_invoke")
	require.NoError(t, err)
	_, err = r.Lookup("around_timeout")
	assert.ErrorContains(t, err, "unknown annotation type")
	assert.Equal(t, []string{"around_invoke"}, r.Names())
}

func TestBuiltinSchemas(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltinSchemas(r))

	types := r.ListTypes()
	assert.Len(t, types, len(GetBuiltinSchemas()))
	for i := 1; i < len(types); i++ {
		assert.Less(t, types[i-1], types[i])
	}

	for _, schema := range GetBuiltinSchemas() {
		assert.NotEmpty(t, schema.Examples, schema.Type.String())
		parser := NewParser(r)
		for _, example := range schema.Examples {
			parsed, err := parser.ParseAnnotation(example, SourceLocation{File: "example.go", Line: 1})
			require.NoError(t, err, example)
			assert.Equal(t, schema.Type, parsed.Type, example)
		}
	}
}

func TestAnnotationTypeRoundTrip(t *testing.T) {
	for _, schema := range GetBuiltinSchemas() {
		if schema.Type == InterceptionMethodAnnotation {
			continue
		}
		parsed, err := ParseAnnotationType(schema.Type.String())
		require.NoError(t, err)
		assert.Equal(t, schema.Type, parsed)
	}

	for _, name := range []string{"post_construct", "pre_destroy", "around_timeout"} {
		parsed, err := ParseAnnotationType(name)
		require.NoError(t, err)
		assert.Equal(t, InterceptionMethodAnnotation, parsed)
	}

	_, err := ParseAnnotationType("middleware")
	assert.Error(t, err)
}
