package models

import "fmt"

// InterceptionType identifies when an interceptor applies to a component
type InterceptionType int

const (
	PostConstruct InterceptionType = iota
	PreDestroy
	PrePassivate
	PostActivate
	AroundConstruct
	AroundInvoke
	AroundTimeout
)

var interceptionTypeNames = [...]string{
	PostConstruct:   "post_construct",
	PreDestroy:      "pre_destroy",
	PrePassivate:    "pre_passivate",
	PostActivate:    "post_activate",
	AroundConstruct: "around_construct",
	AroundInvoke:    "around_invoke",
	AroundTimeout:   "around_timeout",
}

// String returns the annotation name of the interception type
func (t InterceptionType) String() string {
	if t < 0 || int(t) >= len(interceptionTypeNames) {
		return "unknown"
	}
	return interceptionTypeNames[t]
}

// IsLifecycleCallback reports whether the type is intercepted with a single class-wide chain.
// AROUND_INVOKE and AROUND_TIMEOUT are resolved per business method.
func (t InterceptionType) IsLifecycleCallback() bool {
	return t != AroundInvoke && t != AroundTimeout
}

// MarshalText implements encoding.TextMarshaler
func (t InterceptionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *InterceptionType) UnmarshalText(text []byte) error {
	parsed, err := ParseInterceptionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseInterceptionType converts an annotation name to an InterceptionType
func ParseInterceptionType(s string) (InterceptionType, error) {
	for i, name := range interceptionTypeNames {
		if name == s {
			return InterceptionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown interception type: %s", s)
}

// AllInterceptionTypes returns every interception type in declaration order
func AllInterceptionTypes() []InterceptionType {
	return []InterceptionType{
		PostConstruct,
		PreDestroy,
		PrePassivate,
		PostActivate,
		AroundConstruct,
		AroundInvoke,
		AroundTimeout,
	}
}

// LifecycleBindingTypes are the lifecycle events resolved once per class from class-level bindings
func LifecycleBindingTypes() []InterceptionType {
	return []InterceptionType{PostConstruct, PreDestroy, PrePassivate, PostActivate}
}

// TypeIdentity is the registry key of a component: "<import path>.<TypeName>"
type TypeIdentity string

// NewTypeIdentity joins a package path and a type name
func NewTypeIdentity(pkgPath, name string) TypeIdentity {
	if pkgPath == "" {
		return TypeIdentity(name)
	}
	return TypeIdentity(pkgPath + "." + name)
}

// Name returns the unqualified type name
func (id TypeIdentity) Name() string {
	s := string(id)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
		if s[i] == '/' {
			break
		}
	}
	return s
}

func (id TypeIdentity) String() string {
	return string(id)
}
