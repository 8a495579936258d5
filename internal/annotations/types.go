package annotations

import "fmt"

// AnnotationType represents the type of a //weave:: annotation
type AnnotationType int

const (
	ComponentAnnotation AnnotationType = iota
	FinalAnnotation
	BindingAnnotation
	StereotypeAnnotation
	InterceptorsAnnotation
	InterceptorAnnotation
	BindingTypeAnnotation
	StereotypeTypeAnnotation
	ConstructorAnnotation
	ExcludeClassInterceptorsAnnotation
	TimeoutAnnotation
	InterceptionMethodAnnotation
)

// interception method markers share InterceptionMethodAnnotation; the marker name is kept in Name
var interceptionMethodNames = map[string]bool{
	"post_construct":   true,
	"pre_destroy":      true,
	"pre_passivate":    true,
	"post_activate":    true,
	"around_construct": true,
	"around_invoke":    true,
	"around_timeout":   true,
}

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case ComponentAnnotation:
		return "component"
	case FinalAnnotation:
		return "final"
	case BindingAnnotation:
		return "binding"
	case StereotypeAnnotation:
		return "stereotype"
	case InterceptorsAnnotation:
		return "interceptors"
	case InterceptorAnnotation:
		return "interceptor"
	case BindingTypeAnnotation:
		return "binding_type"
	case StereotypeTypeAnnotation:
		return "stereotype_type"
	case ConstructorAnnotation:
		return "constructor"
	case ExcludeClassInterceptorsAnnotation:
		return "exclude_class_interceptors"
	case TimeoutAnnotation:
		return "timeout"
	case InterceptionMethodAnnotation:
		return "interception_method"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts an annotation name to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "component":
		return ComponentAnnotation, nil
	case "final":
		return FinalAnnotation, nil
	case "binding":
		return BindingAnnotation, nil
	case "stereotype":
		return StereotypeAnnotation, nil
	case "interceptors":
		return InterceptorsAnnotation, nil
	case "interceptor":
		return InterceptorAnnotation, nil
	case "binding_type":
		return BindingTypeAnnotation, nil
	case "stereotype_type":
		return StereotypeTypeAnnotation, nil
	case "constructor":
		return ConstructorAnnotation, nil
	case "exclude_class_interceptors":
		return ExcludeClassInterceptorsAnnotation, nil
	case "timeout":
		return TimeoutAnnotation, nil
	}
	if interceptionMethodNames[s] {
		return InterceptionMethodAnnotation, nil
	}
	return 0, fmt.Errorf("unknown annotation type: %s", s)
}

// Target is the kind of declaration an annotation may be attached to
type Target int

const (
	TargetType Target = 1 << iota
	TargetFunc
	TargetMethod
)

func (t Target) String() string {
	switch t {
	case TargetType:
		return "type"
	case TargetFunc:
		return "function"
	case TargetMethod:
		return "method"
	default:
		return "declaration"
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// ParsedAnnotation represents a fully parsed annotation with typed parameters
type ParsedAnnotation struct {
	Type       AnnotationType         // Annotation type enum
	Name       string                 // Annotation name as written
	Args       []string               // Positional arguments, comma lists flattened
	Parameters map[string]interface{} // Named parameters: string, int, bool or []string
	Location   SourceLocation         // Source location
	Raw        string                 // Original annotation text
}

// Arg returns the positional argument at i, or "" when absent
func (p *ParsedAnnotation) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		switch v := value.(type) {
		case string:
			return v
		case []string:
			if len(v) == 1 {
				return v[0]
			}
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer parameter value with optional default
func (p *ParsedAnnotation) GetInt(paramName string, defaultValue ...int) int {
	if value, exists := p.Parameters[paramName]; exists {
		if intValue, ok := value.(int); ok {
			return intValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetStringSlice returns a string slice parameter value with optional default
func (p *ParsedAnnotation) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := p.Parameters[paramName]; exists {
		switch v := value.(type) {
		case []string:
			return v
		case string:
			return []string{v}
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type        ParameterType           // Parameter type
	Required    bool                    // Whether parameter is required
	Description string                  // Parameter description
	Validator   func(interface{}) error // Checks the converted value, optional
}

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type         AnnotationType           // Annotation type enum
	Names        []string                 // Keywords following //weave::
	Description  string                   // Human-readable description
	Targets      Target                   // Declarations the annotation may be attached to
	MinArgs      int                      // Minimum positional arguments
	MaxArgs      int                      // Maximum positional arguments, -1 for unbounded
	ArgValidator func(string) error       // Checks each positional argument, optional
	Parameters   map[string]ParameterSpec // Parameter specifications
	Examples     []string                 // Usage examples
}
