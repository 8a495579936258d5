package registry

import (
	"fmt"
	"log/slog"
	"sync"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
)

// bindingRegistry implements the BindingTypeRegistry interface
type bindingRegistry struct {
	mu           sync.RWMutex
	bindingTypes map[models.BindingKind]*models.BindingTypeDeclaration
	stereotypes  map[string]*models.StereotypeDeclaration
	logger       *slog.Logger
}

// NewBindingRegistry creates an empty binding type registry
func NewBindingRegistry(logger *slog.Logger) BindingTypeRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &bindingRegistry{
		bindingTypes: make(map[models.BindingKind]*models.BindingTypeDeclaration),
		stereotypes:  make(map[string]*models.StereotypeDeclaration),
		logger:       logger,
	}
}

// RegisterBindingType adds an interceptor binding type
func (r *bindingRegistry) RegisterBindingType(decl *models.BindingTypeDeclaration) error {
	if decl == nil {
		return fmt.Errorf("binding type declaration cannot be nil")
	}
	if decl.Kind == "" {
		return fmt.Errorf("binding type name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.bindingTypes[decl.Kind]; exists {
		return weaveerrors.Newf(weaveerrors.RegistrationErrorCode,
			"binding type '%s' is already registered at %s", decl.Kind, existing.Location).
			WithLocation(weaveerrors.SourceLocation{File: decl.Location.File, Line: decl.Location.Line})
	}
	r.bindingTypes[decl.Kind] = decl
	return nil
}

// RegisterStereotype adds a stereotype
func (r *bindingRegistry) RegisterStereotype(decl *models.StereotypeDeclaration) error {
	if decl == nil {
		return fmt.Errorf("stereotype declaration cannot be nil")
	}
	if decl.Name == "" {
		return fmt.Errorf("stereotype name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.stereotypes[decl.Name]; exists {
		return weaveerrors.Newf(weaveerrors.RegistrationErrorCode,
			"stereotype '%s' is already registered at %s", decl.Name, existing.Location).
			WithLocation(weaveerrors.SourceLocation{File: decl.Location.File, Line: decl.Location.Line})
	}
	r.stereotypes[decl.Name] = decl
	return nil
}

// BindingType retrieves a binding type by kind
func (r *bindingRegistry) BindingType(kind models.BindingKind) (*models.BindingTypeDeclaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decl, ok := r.bindingTypes[kind]
	return decl, ok
}

// FilterBindings keeps only annotations whose kind is a registered binding type
func (r *bindingRegistry) FilterBindings(annotations []models.Binding) []models.Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := make([]models.Binding, 0, len(annotations))
	for _, a := range annotations {
		if _, ok := r.bindingTypes[a.Kind]; !ok {
			r.logger.Debug("ignoring annotation that is not an interceptor binding", "kind", string(a.Kind))
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}

// FlattenBindings expands meta-bindings transitively and clears the value of non-binding
// kinds. Directly declared bindings are all kept, in order, so a kind written twice still
// reaches the conflict check. Bindings implied by expansion are dropped when an identical
// binding is already present.
func (r *bindingRegistry) FlattenBindings(bindings []models.Binding) []models.Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flattened := make([]models.Binding, 0, len(bindings))
	seen := make(map[models.Binding]bool)
	for _, b := range bindings {
		b = r.normalize(b)
		seen[b] = true
		flattened = append(flattened, b)
	}

	var expand func(kind models.BindingKind, path map[models.BindingKind]bool)
	expand = func(kind models.BindingKind, path map[models.BindingKind]bool) {
		decl, ok := r.bindingTypes[kind]
		if !ok || path[kind] {
			return
		}
		path[kind] = true
		for _, included := range decl.Includes {
			implied := r.normalize(models.Binding{Kind: included})
			if !seen[implied] {
				seen[implied] = true
				flattened = append(flattened, implied)
			}
			expand(included, path)
		}
		delete(path, kind)
	}

	for _, b := range bindings {
		expand(b.Kind, make(map[models.BindingKind]bool))
	}
	return flattened
}

// normalize clears the value of non-binding kinds. Callers hold r.mu.
func (r *bindingRegistry) normalize(b models.Binding) models.Binding {
	if decl, ok := r.bindingTypes[b.Kind]; ok && decl.NonBinding {
		b.Value = ""
	}
	return b
}

// MergeClassBindings computes the effective class-level bindings of a component: its own
// bindings plus those inherited from stereotypes for kinds it does not declare itself.
func (r *bindingRegistry) MergeClassBindings(desc *models.ComponentDescriptor, stereotypes []string) (models.BindingSet, error) {
	own, err := r.collapse(desc, "class", r.FlattenBindings(r.FilterBindings(desc.Bindings)))
	if err != nil {
		return nil, err
	}

	inherited, err := r.stereotypeBindings(desc, stereotypes)
	if err != nil {
		return nil, err
	}
	// several stereotypes may contribute the same binding
	inheritedSet, err := r.collapse(desc, "stereotypes", r.FlattenBindings(distinct(inherited)))
	if err != nil {
		return nil, err
	}

	for kind, binding := range inheritedSet {
		if !own.Has(kind) {
			own[kind] = binding
		}
	}
	return own, nil
}

// collapse indexes flattened bindings by kind; a kind appearing twice is a conflict
func (r *bindingRegistry) collapse(desc *models.ComponentDescriptor, level string, bindings []models.Binding) (models.BindingSet, error) {
	set := make(models.BindingSet, len(bindings))
	for _, b := range bindings {
		if set.Has(b.Kind) {
			return nil, weaveerrors.NewBindingConflictError(desc.Identity.String(), level, string(b.Kind)).
				WithLocation(weaveerrors.SourceLocation{File: desc.Location.File, Line: desc.Location.Line})
		}
		set[b.Kind] = b
	}
	return set, nil
}

func distinct(bindings []models.Binding) []models.Binding {
	seen := make(map[models.Binding]bool, len(bindings))
	out := make([]models.Binding, 0, len(bindings))
	for _, b := range bindings {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}

func (r *bindingRegistry) stereotypeBindings(desc *models.ComponentDescriptor, stereotypes []string) ([]models.Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bindings []models.Binding
	visited := make(map[string]bool)
	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		visited[name] = true
		decl, ok := r.stereotypes[name]
		if !ok {
			return weaveerrors.Newf(weaveerrors.ValidationErrorCode, "unknown stereotype '%s' on %s", name, desc.Identity).
				WithContext("component", desc.Identity.String()).
				WithContext("stereotype", name).
				WithSuggestion(fmt.Sprintf("Declare %s with //weave::stereotype_type", name))
		}
		for _, b := range decl.Bindings {
			if _, known := r.bindingTypes[b.Kind]; known {
				bindings = append(bindings, b)
			}
		}
		for _, nested := range decl.Stereotypes {
			if err := visit(nested); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range stereotypes {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return bindings, nil
}
