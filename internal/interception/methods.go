package interception

import "github.com/toyz/weave/internal/models"

// DefaultMethodSelector selects methods that are neither static nor private and are not
// interception methods of the component itself.
var DefaultMethodSelector MethodSelector = MethodSelectorFunc(BusinessMethods)

// BusinessMethods returns the interceptable methods of a component in declaration order
func BusinessMethods(desc *models.ComponentDescriptor) []models.MethodDescriptor {
	methods := make([]models.MethodDescriptor, 0, len(desc.Methods))
	for _, m := range desc.Methods {
		if m.Static || m.Private || m.IsInterceptionMethod() {
			continue
		}
		methods = append(methods, m)
	}
	return methods
}
