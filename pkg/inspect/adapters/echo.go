package adapters

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/weave/pkg/inspect"
)

// EchoAdapter implements inspect.Server for the Echo framework
type EchoAdapter struct {
	engine *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with a quiet Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return NewEchoAdapter(e)
}

// Mount registers the inspection routes
func (ea *EchoAdapter) Mount(service *inspect.Service) {
	ea.engine.GET(inspect.ModelsPath, func(c echo.Context) error {
		status, body := service.ListModels()
		return c.Blob(status, inspect.ContentType, body)
	})
	ea.engine.GET(inspect.ModelsPath+"/*", func(c echo.Context) error {
		status, body := service.GetModel(c.Param("*"))
		return c.Blob(status, inspect.ContentType, body)
	})
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	if err := ea.engine.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}
