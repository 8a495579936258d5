package annotations

import (
	"fmt"
	"go/token"
	"strings"
)

// Shared validation functions for annotation arguments and parameters

// ValidateTypeName validates a type reference: a Go identifier, optionally qualified by an
// import path as in github.com/acme/shared.TraceInterceptor
func ValidateTypeName(name string) error {
	if name == "" {
		return fmt.Errorf("type name cannot be empty")
	}
	pkg, ident := "", name
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		pkg, ident = name[:dot], name[dot+1:]
		if pkg == "" || strings.HasSuffix(pkg, "/") {
			return fmt.Errorf("'%s' has an empty package path", name)
		}
	}
	if !token.IsIdentifier(ident) {
		return fmt.Errorf("'%s' is not a valid type name", name)
	}
	return nil
}

// ValidateTypeNames validates a list of type references without repeats
func ValidateTypeNames(v interface{}) error {
	names, ok := v.([]string)
	if !ok {
		return fmt.Errorf("expects a list of type names, got %T", v)
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := ValidateTypeName(name); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("'%s' is listed more than once", name)
		}
		seen[name] = true
	}
	return nil
}

// ValidateBindingValue validates the qualifying member value of a binding
func ValidateBindingValue(v interface{}) error {
	value, ok := v.(string)
	if !ok {
		return fmt.Errorf("expects a string value, got %T", v)
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value cannot be blank")
	}
	return nil
}

// Shared parameter specifications

// ValueParameterSpec returns the Value parameter specification of //weave::binding
func ValueParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Description: "Qualifying member value of the binding",
		Validator:   ValidateBindingValue,
	}
}

// PriorityParameterSpec returns the Priority parameter specification of //weave::interceptor
func PriorityParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        IntType,
		Description: "Resolution order among interceptors matching the same bindings, lower first",
	}
}

// IncludesParameterSpec returns the Includes parameter specification of //weave::binding_type
func IncludesParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringSliceType,
		Description: "Binding types this binding type is annotated with",
		Validator:   ValidateTypeNames,
	}
}

// FlagParameterSpec returns a bool parameter specification
func FlagParameterSpec(description string) ParameterSpec {
	return ParameterSpec{
		Type:        BoolType,
		Description: description,
	}
}
