package adapters

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/toyz/weave/pkg/inspect"
)

// FiberAdapter implements inspect.Server for the Fiber framework
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a new Fiber adapter
func NewFiberAdapter(app *fiber.App) *FiberAdapter {
	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a new Fiber adapter without the startup banner
func NewDefaultFiberAdapter() *FiberAdapter {
	return NewFiberAdapter(fiber.New(fiber.Config{DisableStartupMessage: true}))
}

// Mount registers the inspection routes
func (fa *FiberAdapter) Mount(service *inspect.Service) {
	fa.app.Get(inspect.ModelsPath, func(c *fiber.Ctx) error {
		status, body := service.ListModels()
		return send(c, status, body)
	})
	fa.app.Get(inspect.ModelsPath+"/*", func(c *fiber.Ctx) error {
		status, body := service.GetModel(c.Params("*"))
		return send(c, status, body)
	})
}

func send(c *fiber.Ctx, status int, body []byte) error {
	c.Set(fiber.HeaderContentType, inspect.ContentType)
	return c.Status(status).Send(body)
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}
