package inspect

import "context"

// Server is implemented by the web framework adapters serving a Service
type Server interface {
	// Mount registers the inspection routes
	Mount(service *Service)
	// Start serves on addr and blocks until the server stops
	Start(addr string) error
	// Stop gracefully shuts the server down
	Stop(ctx context.Context) error
	// Name returns the adapter name
	Name() string
}
