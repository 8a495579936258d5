package registry

import (
	"github.com/toyz/weave/internal/interception"
	"github.com/toyz/weave/internal/models"
)

// BindingTypeRegistry tracks interceptor binding types and stereotypes across packages
type BindingTypeRegistry interface {
	interception.BindingNormalizer
	interception.ClassBindingMerger
	RegisterBindingType(decl *models.BindingTypeDeclaration) error
	RegisterStereotype(decl *models.StereotypeDeclaration) error
	BindingType(kind models.BindingKind) (*models.BindingTypeDeclaration, bool)
}

// InterceptorDefinitions tracks declared interceptors and resolves bindings against them
type InterceptorDefinitions interface {
	interception.InterceptorResolver
	interception.InterceptorMetadataReader
	Register(decl *models.InterceptorDeclaration) error
	Get(identity models.TypeIdentity) (*InterceptorMetadata, bool)
	List() []*InterceptorMetadata
}

// ModelStore holds finished interception models keyed by component identity
type ModelStore interface {
	interception.ModelRegistry
	Get(identity models.TypeIdentity) (*interception.InterceptionModel, bool)
	Remove(identity models.TypeIdentity) bool
	List() []models.TypeIdentity
	Len() int
}
