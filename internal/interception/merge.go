package interception

import (
	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
)

// MergeMemberBindings merges the bindings declared on one member over the class-level bindings.
// Member bindings override class bindings of the same kind. Two bindings of one kind declared
// on the member itself are a conflict. classBindings is never modified.
func MergeMemberBindings(component models.TypeIdentity, member string, classBindings models.BindingSet, memberBindings []models.Binding) (models.BindingSet, error) {
	merged := classBindings.Clone()
	processed := make(map[models.BindingKind]struct{}, len(memberBindings))

	for _, binding := range memberBindings {
		if _, seen := processed[binding.Kind]; seen {
			return nil, weaveerrors.NewBindingConflictError(component.String(), member, string(binding.Kind))
		}
		processed[binding.Kind] = struct{}{}
		merged[binding.Kind] = binding
	}
	return merged, nil
}

// memberBindings normalizes the raw bindings declared on a member and merges them over the
// class-level set.
func memberBindings(normalizer BindingNormalizer, component models.TypeIdentity, member string, classBindings models.BindingSet, declared []models.Binding) (models.BindingSet, error) {
	flattened := normalizer.FlattenBindings(normalizer.FilterBindings(declared))
	return MergeMemberBindings(component, member, classBindings, flattened)
}
