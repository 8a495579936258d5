package models

import "fmt"

// SourceLocation points at the declaration a descriptor was read from
type SourceLocation struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

func (l SourceLocation) String() string {
	if l.File == "" {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ComponentDescriptor is the introspectable shape of a managed component type.
// Descriptors are produced by the descriptor reader and are read-only afterwards.
type ComponentDescriptor struct {
	Identity    TypeIdentity
	Name        string
	PackagePath string

	Final       bool // the type cannot be proxied by subclassing
	Interceptor bool // the type is itself an interceptor

	Bindings           []Binding // interceptor bindings declared on the type
	Stereotypes        []string
	InterceptorClasses []string // legacy style interceptor class list

	Constructor ConstructorDescriptor
	Methods     []MethodDescriptor

	Location SourceLocation
}

// ConstructorDescriptor describes the constructor selected for injection
type ConstructorDescriptor struct {
	Name                     string
	Private                  bool
	Bindings                 []Binding
	InterceptorClasses       []string
	ExcludeClassInterceptors bool
	Location                 SourceLocation
}

// MethodDescriptor describes one method of a component type
type MethodDescriptor struct {
	Name    string
	Final   bool
	Private bool
	Static  bool
	Timeout bool // the method is a timeout callback

	Bindings                 []Binding
	InterceptorClasses       []string
	ExcludeClassInterceptors bool

	// InterceptionMethods lists the interception types this method implements when
	// the declaring type intercepts itself (or is an interceptor).
	InterceptionMethods []InterceptionType

	Location SourceLocation
}

// IsInterceptionMethod reports whether the method is an interception method of its type
func (m MethodDescriptor) IsInterceptionMethod() bool {
	return len(m.InterceptionMethods) > 0
}

// Method returns the descriptor of the named method
func (d *ComponentDescriptor) Method(name string) (MethodDescriptor, bool) {
	for _, m := range d.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodDescriptor{}, false
}

// DeclaredInterceptionTypes returns the interception types implemented by methods of the type itself
func (d *ComponentDescriptor) DeclaredInterceptionTypes() map[InterceptionType]bool {
	declared := make(map[InterceptionType]bool)
	for _, m := range d.Methods {
		for _, t := range m.InterceptionMethods {
			declared[t] = true
		}
	}
	return declared
}

// InterceptorDeclaration describes a type declared as a binding-style or legacy interceptor
type InterceptorDeclaration struct {
	Identity TypeIdentity
	Name     string
	Bindings []Binding
	Priority int
	Disabled bool
	Types    []InterceptionType // interception methods the interceptor declares
	Location SourceLocation
}

// BindingTypeDeclaration declares an interceptor binding kind
type BindingTypeDeclaration struct {
	Kind       BindingKind
	Includes   []BindingKind // meta-bindings, expanded transitively when flattening
	NonBinding bool          // the qualifying value is ignored when matching
	Location   SourceLocation
}

// StereotypeDeclaration declares a stereotype contributing class-level bindings
type StereotypeDeclaration struct {
	Name        string
	Bindings    []Binding
	Stereotypes []string
	Location    SourceLocation
}

// PackageMetadata collects everything declared in one scanned package
type PackageMetadata struct {
	PackageName  string
	PackagePath  string
	Components   []*ComponentDescriptor
	Interceptors []*InterceptorDeclaration
	BindingTypes []*BindingTypeDeclaration
	Stereotypes  []*StereotypeDeclaration
}
