package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/interception"
	"github.com/toyz/weave/internal/models"
	"github.com/toyz/weave/internal/registry"
	"github.com/toyz/weave/internal/utils"
)

// Deployer loads annotated packages, registers their declarations and initializes the
// interception model of every component
type Deployer struct {
	config      Config
	loader      PackageLoader
	diagnostics *utils.DiagnosticSystem
	logger      *slog.Logger

	bindings     registry.BindingTypeRegistry
	interceptors registry.InterceptorDefinitions
	store        registry.ModelStore
}

// NewDeployer creates a deployer. A nil diagnostics system prints nothing.
func NewDeployer(cfg Config, loader PackageLoader, diagnostics *utils.DiagnosticSystem, logger *slog.Logger) *Deployer {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings := cfg.settings()
	bindings := registry.NewBindingRegistry(logger)
	return &Deployer{
		config:      cfg,
		loader:      loader,
		diagnostics: diagnostics,
		logger:      logger,
		bindings:    bindings,
		interceptors: registry.NewInterceptorRegistry(bindings, registry.EnablementOptions{
			Enabled:    settings.Interceptors.EnabledInterceptors(),
			Priorities: settings.Interceptors.PriorityOverrides(),
		}, logger),
		store: registry.NewModelRegistry(),
	}
}

// Store returns the registry holding the deployed interception models
func (d *Deployer) Store() registry.ModelStore {
	return d.store
}

// Interceptors returns the registered interceptor definitions
func (d *Deployer) Interceptors() registry.InterceptorDefinitions {
	return d.interceptors
}

// Undeploy discards the interception model of a component
func (d *Deployer) Undeploy(identity models.TypeIdentity) bool {
	removed := d.store.Remove(identity)
	if removed {
		d.logger.Info("component undeployed", "component", identity.String())
	}
	return removed
}

// Deploy runs a full deployment. Loading and registration errors abort the run; component
// initialization errors are collected and returned together with the report, and never
// affect sibling components.
func (d *Deployer) Deploy(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := d.logger.With("run_id", report.RunID)

	d.diagnostics.WeaveHeader("Deploying interception models")
	for _, pattern := range d.config.Patterns {
		d.diagnostics.SourcePath(pattern)
	}

	d.diagnostics.PhaseHeader("Loading packages")
	packages, err := d.loader.Load(ctx, d.config.Patterns)
	if err != nil {
		return nil, err
	}
	report.Packages = len(packages)
	for _, pkg := range packages {
		d.diagnostics.PhaseItem(fmt.Sprintf("%s (%d components)", pkg.PackagePath, len(pkg.Components)))
	}

	d.diagnostics.PhaseHeader("Registering declarations")
	if err := d.register(packages); err != nil {
		return nil, err
	}
	d.warnUnknownEnabled()

	components := collectComponents(packages)
	d.diagnostics.PhaseHeader("Initializing components")
	logger.Info("initializing components", "components_count", len(components))

	report.Components, err = d.initialize(ctx, components, logger)
	report.Duration = time.Since(report.StartedAt)

	d.diagnostics.Summary("Deployment summary", map[string]interface{}{
		"packages":   report.Packages,
		"components": len(report.Components),
		"registered": report.Registered(),
		"failed":     report.Failed(),
	})
	d.diagnostics.DeploymentComplete(report.Failed())
	return report, err
}

// register adds binding types first, then stereotypes and interceptors, so declarations may
// reference each other across packages
func (d *Deployer) register(packages []*models.PackageMetadata) error {
	errs := weaveerrors.NewMultipleErrors()

	for _, pkg := range packages {
		for _, decl := range pkg.BindingTypes {
			if err := d.bindings.RegisterBindingType(decl); err != nil {
				errs.Add(err)
				continue
			}
			d.diagnostics.PhaseItem("binding type " + string(decl.Kind))
		}
	}
	for _, pkg := range packages {
		for _, decl := range pkg.Stereotypes {
			if err := d.bindings.RegisterStereotype(decl); err != nil {
				errs.Add(err)
				continue
			}
			d.diagnostics.PhaseItem("stereotype " + decl.Name)
		}
	}
	for _, pkg := range packages {
		for _, decl := range pkg.Interceptors {
			if err := d.interceptors.Register(decl); err != nil {
				errs.Add(weaveerrors.WrapRegisterError("interceptor", decl.Identity.String(), err))
				continue
			}
			d.diagnostics.PhaseItem("interceptor " + decl.Identity.String())
		}
	}
	return errs.ErrorOrNil()
}

func (d *Deployer) warnUnknownEnabled() {
	for _, id := range d.config.settings().Interceptors.EnabledInterceptors() {
		if _, ok := d.interceptors.Get(id); !ok {
			d.diagnostics.Warn("enabled interceptor %s is not declared in any scanned package", id)
		}
	}
}

// initialize runs Init for every component with bounded concurrency. Goroutines never return
// an error so one failing component cannot cancel its siblings.
func (d *Deployer) initialize(ctx context.Context, components []*models.ComponentDescriptor, logger *slog.Logger) ([]ComponentOutcome, error) {
	initializer, err := interception.NewInitializer(interception.Options{
		Reader:        d.interceptors,
		Normalizer:    d.bindings,
		ClassBindings: d.bindings,
		Resolver:      d.interceptors,
		Registry:      d.store,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	outcomes := make([]ComponentOutcome, len(components))
	failures := make([]error, len(components))

	var g errgroup.Group
	g.SetLimit(d.config.settings().Deployment.Concurrency)
	for i, desc := range components {
		g.Go(func() error {
			outcome := ComponentOutcome{Identity: desc.Identity, Location: desc.Location.String()}
			result, err := initializer.Init(ctx, desc)
			if err != nil {
				failures[i] = err
				if weaveerrors.CodeOf(err) == weaveerrors.UnknownErrorCode {
					// plain errors such as context cancellation
					failures[i] = weaveerrors.WrapDeploymentError(desc.Identity.String(), err)
				}
				outcome.Code = weaveerrors.CodeOf(failures[i]).String()
				outcome.Error = err.Error()
			} else {
				outcome.Registered = result.Registered
				if result.Registered {
					snapshot := result.Model.Snapshot()
					outcome.Snapshot = &snapshot
				}
			}
			outcomes[i] = outcome
			return nil
		})
	}
	// closures report through failures, Wait never returns an error
	g.Wait()

	errs := weaveerrors.NewMultipleErrors()
	for i, outcome := range outcomes {
		switch {
		case failures[i] != nil:
			errs.Add(failures[i])
			d.diagnostics.PhaseFailure(fmt.Sprintf("%s: %s", outcome.Identity, outcome.Code))
		case outcome.Registered:
			d.diagnostics.PhaseItem(outcome.Identity.String())
		default:
			d.diagnostics.Verbose("%s requires no interception", outcome.Identity)
		}
	}
	return outcomes, errs.ErrorOrNil()
}

// collectComponents returns every component sorted by identity
func collectComponents(packages []*models.PackageMetadata) []*models.ComponentDescriptor {
	var components []*models.ComponentDescriptor
	for _, pkg := range packages {
		components = append(components, pkg.Components...)
	}
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].Identity < components[j].Identity
	})
	return components
}
