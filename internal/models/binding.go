package models

import "sort"

// BindingKind names an interceptor binding annotation type
type BindingKind string

// Binding is one interceptor binding annotation instance
type Binding struct {
	Kind  BindingKind `json:"kind"`
	Value string      `json:"value,omitempty"` // qualifying member value, empty when unset
}

// String renders the binding the way it is written in source
func (b Binding) String() string {
	if b.Value == "" {
		return "@" + string(b.Kind)
	}
	return "@" + string(b.Kind) + "(" + b.Value + ")"
}

// BindingSet holds the single winning binding per kind at one resolution point
type BindingSet map[BindingKind]Binding

// NewBindingSet indexes bindings by kind, later entries replacing earlier ones
func NewBindingSet(bindings ...Binding) BindingSet {
	set := make(BindingSet, len(bindings))
	for _, b := range bindings {
		set[b.Kind] = b
	}
	return set
}

// Clone returns a shallow copy that can be modified independently
func (s BindingSet) Clone() BindingSet {
	clone := make(BindingSet, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

// Values returns the bindings ordered by kind
func (s BindingSet) Values() []Binding {
	values := make([]Binding, 0, len(s))
	for _, b := range s {
		values = append(values, b)
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Kind < values[j].Kind
	})
	return values
}

// Kinds returns the binding kinds ordered by name
func (s BindingSet) Kinds() []BindingKind {
	kinds := make([]BindingKind, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Has reports whether a binding of the kind is present
func (s BindingSet) Has(kind BindingKind) bool {
	_, ok := s[kind]
	return ok
}
