package adapters

import (
	"fmt"
	"strings"

	"github.com/toyz/weave/pkg/inspect"
)

// New creates the default adapter of the named framework: gin, echo or fiber
func New(framework string) (inspect.Server, error) {
	switch strings.ToLower(framework) {
	case "gin":
		return NewDefaultGinAdapter(), nil
	case "echo":
		return NewDefaultEchoAdapter(), nil
	case "fiber":
		return NewDefaultFiberAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported framework %q (expected gin, echo or fiber)", framework)
	}
}
