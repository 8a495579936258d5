package parser

import (
	"go/ast"
	"go/token"

	"github.com/toyz/weave/internal/models"
)

// DescriptorReader defines the interface for reading component descriptors and interceptor
// declarations out of Go source
type DescriptorReader interface {
	ParseDirectory(dir, pkgPath string) (*models.PackageMetadata, error)
	ParseFiles(fset *token.FileSet, pkgPath string, files []*ast.File) (*models.PackageMetadata, error)
}
