package annotations

import "fmt"

// Built-in annotation schemas

var ComponentAnnotationSchema = AnnotationSchema{
	Type:        ComponentAnnotation,
	Names:       []string{"component"},
	Description: "Marks a struct as a managed component whose interception model is resolved",
	Targets:     TargetType,
	Examples:    []string{"//weave::component"},
}

var FinalAnnotationSchema = AnnotationSchema{
	Type:        FinalAnnotation,
	Names:       []string{"final"},
	Description: "Marks a component type or method as final; final declarations cannot be proxied",
	Targets:     TargetType | TargetMethod,
	Examples:    []string{"//weave::final"},
}

var BindingAnnotationSchema = AnnotationSchema{
	Type:         BindingAnnotation,
	Names:        []string{"binding"},
	Description:  "Declares an interceptor binding on a component, constructor, method, interceptor or stereotype",
	Targets:      TargetType | TargetFunc | TargetMethod,
	MinArgs:      1,
	MaxArgs:      -1,
	ArgValidator: ValidateTypeName,
	Parameters: map[string]ParameterSpec{
		"Value": ValueParameterSpec(),
	},
	Examples: []string{
		"//weave::binding Logged",
		"//weave::binding Logged,Audited",
		"//weave::binding Secured -Value=admin",
	},
}

var StereotypeAnnotationSchema = AnnotationSchema{
	Type:         StereotypeAnnotation,
	Names:        []string{"stereotype"},
	Description:  "Applies stereotypes to a component or to another stereotype",
	Targets:      TargetType,
	MinArgs:      1,
	MaxArgs:      -1,
	ArgValidator: ValidateTypeName,
	Examples:     []string{"//weave::stereotype Monitored"},
}

var InterceptorsAnnotationSchema = AnnotationSchema{
	Type:         InterceptorsAnnotation,
	Names:        []string{"interceptors"},
	Description:  "Lists interceptor classes explicitly, without bindings",
	Targets:      TargetType | TargetFunc | TargetMethod,
	MinArgs:      1,
	MaxArgs:      -1,
	ArgValidator: ValidateTypeName,
	Examples: []string{
		"//weave::interceptors AuditInterceptor",
		"//weave::interceptors AuditInterceptor,github.com/acme/shared.TraceInterceptor",
	},
}

var InterceptorAnnotationSchema = AnnotationSchema{
	Type:        InterceptorAnnotation,
	Names:       []string{"interceptor"},
	Description: "Declares a struct as an interceptor",
	Targets:     TargetType,
	Parameters: map[string]ParameterSpec{
		"Priority": PriorityParameterSpec(),
		"Disabled": FlagParameterSpec("Excludes the interceptor from binding resolution"),
	},
	Examples: []string{
		"//weave::interceptor",
		"//weave::interceptor -Priority=100",
		"//weave::interceptor -Disabled",
	},
}

var BindingTypeAnnotationSchema = AnnotationSchema{
	Type:         BindingTypeAnnotation,
	Names:        []string{"binding_type"},
	Description:  "Declares an interceptor binding type",
	Targets:      TargetType,
	MinArgs:      1,
	MaxArgs:      1,
	ArgValidator: ValidateTypeName,
	Parameters: map[string]ParameterSpec{
		"Includes":   IncludesParameterSpec(),
		"NonBinding": FlagParameterSpec("The binding value is ignored when matching interceptors"),
	},
	Examples: []string{
		"//weave::binding_type Logged",
		"//weave::binding_type Secure -Includes=Logged,Audited",
		"//weave::binding_type Traced -NonBinding",
	},
}

var StereotypeTypeAnnotationSchema = AnnotationSchema{
	Type:         StereotypeTypeAnnotation,
	Names:        []string{"stereotype_type"},
	Description:  "Declares a stereotype; combine with //weave::binding and //weave::stereotype",
	Targets:      TargetType,
	MinArgs:      1,
	MaxArgs:      1,
	ArgValidator: ValidateTypeName,
	Examples:     []string{"//weave::stereotype_type Monitored"},
}

var ConstructorAnnotationSchema = AnnotationSchema{
	Type:         ConstructorAnnotation,
	Names:        []string{"constructor"},
	Description:  "Selects the constructor function of a component",
	Targets:      TargetFunc,
	MinArgs:      1,
	MaxArgs:      1,
	ArgValidator: ValidateTypeName,
	Examples:     []string{"//weave::constructor OrderService"},
}

var ExcludeClassInterceptorsAnnotationSchema = AnnotationSchema{
	Type:        ExcludeClassInterceptorsAnnotation,
	Names:       []string{"exclude_class_interceptors"},
	Description: "Suppresses class-level interceptor classes for a constructor or method",
	Targets:     TargetFunc | TargetMethod,
	Examples:    []string{"//weave::exclude_class_interceptors"},
}

var TimeoutAnnotationSchema = AnnotationSchema{
	Type:        TimeoutAnnotation,
	Names:       []string{"timeout"},
	Description: "Marks a method as a timeout callback",
	Targets:     TargetMethod,
	Examples:    []string{"//weave::timeout"},
}

var InterceptionMethodAnnotationSchema = AnnotationSchema{
	Type: InterceptionMethodAnnotation,
	Names: []string{
		"post_construct", "pre_destroy", "pre_passivate", "post_activate",
		"around_construct", "around_invoke", "around_timeout",
	},
	Description: "Marks a method as an interception method of its type",
	Targets:     TargetMethod,
	Examples: []string{
		"//weave::around_invoke",
		"//weave::post_construct",
		"//weave::around_timeout",
	},
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		ComponentAnnotationSchema,
		FinalAnnotationSchema,
		BindingAnnotationSchema,
		StereotypeAnnotationSchema,
		InterceptorsAnnotationSchema,
		InterceptorAnnotationSchema,
		BindingTypeAnnotationSchema,
		StereotypeTypeAnnotationSchema,
		ConstructorAnnotationSchema,
		ExcludeClassInterceptorsAnnotationSchema,
		TimeoutAnnotationSchema,
		InterceptionMethodAnnotationSchema,
	}
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type.String(), err)
		}
	}
	return nil
}
