package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/toyz/weave/internal/cli"
	"github.com/toyz/weave/internal/config"
	"github.com/toyz/weave/internal/utils"
	"github.com/toyz/weave/pkg/inspect"
	"github.com/toyz/weave/pkg/inspect/adapters"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1 // loading, registration or component initialization failed
	exitUsage   = 2
)

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("weave", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configFlag    = flags.String("config", config.DefaultFileName, "Path to the weave.yaml configuration file")
		formatFlag    = flags.String("format", "text", "Report format: text or json")
		loaderFlag    = flags.String("loader", "packages", "Package loader: packages (go list) or dirs (directory scan)")
		moduleFlag    = flags.String("module", "", "Custom module name for import paths (defaults to go.mod module, dirs loader only)")
		serveFlag     = flags.String("serve", "", "Serve the deployed models over HTTP on this address after deployment")
		frameworkFlag = flags.String("framework", "gin", "Web framework for -serve: gin, echo or fiber")
		verboseFlag   = flags.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag     = flags.Bool("quiet", false, "Only show errors and final results")
		helpFlag      = flags.Bool("help", false, "Show help information")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: weave [options] <package-patterns...>\n\n")
		fmt.Fprintf(stderr, "Weave Interception Model Deployer\n")
		fmt.Fprintf(stderr, "Scans packages for weave:: annotations and resolves the interception model of every component.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nPackage Patterns:\n")
		fmt.Fprintf(stderr, "  ./...              Scan current directory and all subdirectories recursively\n")
		fmt.Fprintf(stderr, "  ./internal/...     Scan internal directory and all its subdirectories\n")
		fmt.Fprintf(stderr, "  ./internal/orders  Scan only the specific package\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  weave ./...                                # Deploy everything\n")
		fmt.Fprintf(stderr, "  weave -format json ./... > models.json     # Machine readable report\n")
		fmt.Fprintf(stderr, "  weave -serve :8080 -framework echo ./...   # Inspect models over HTTP\n")
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *helpFlag {
		flags.Usage()
		return exitOK
	}

	patterns := flags.Args()
	if len(patterns) == 0 {
		fmt.Fprintf(stderr, "Error: At least one package pattern is required\n\n")
		flags.Usage()
		return exitUsage
	}
	if *formatFlag != "text" && *formatFlag != "json" {
		fmt.Fprintf(stderr, "Error: unknown format %q (expected text or json)\n", *formatFlag)
		return exitUsage
	}

	reporter := cli.NewDiagnosticReporter(*verboseFlag)
	reporter.SetOutput(stderr)

	settings, err := loadSettings(flags, *configFlag)
	if err != nil {
		reporter.ReportError(err)
		return exitFailure
	}

	var diagnostics *utils.DiagnosticSystem
	if *quietFlag {
		diagnostics = utils.NewQuietDiagnostics()
	} else if *verboseFlag {
		diagnostics = utils.NewVerboseDiagnostics()
	} else {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if *formatFlag == "json" {
		// the report owns stdout
		diagnostics.SetOutput(stderr, stderr)
	} else {
		diagnostics.SetOutput(stdout, stderr)
	}

	logger := settings.Logging.NewLogger(stderr)
	cfg := cli.Config{
		Patterns:   patterns,
		ModuleName: *moduleFlag,
		Verbose:    *verboseFlag,
		Settings:   settings,
	}

	var loader cli.PackageLoader
	switch *loaderFlag {
	case "packages":
		loader = cli.NewPackagesLoader("", logger)
	case "dirs":
		loader = cli.NewDirectoryLoader(cfg.ModuleName, logger)
	default:
		fmt.Fprintf(stderr, "Error: unknown loader %q (expected packages or dirs)\n", *loaderFlag)
		return exitUsage
	}

	if *verboseFlag {
		diagnostics.List("Package patterns: %s", strings.Join(patterns, ", "))
		diagnostics.List("Concurrency: %d", settings.Deployment.Concurrency)
		if cfg.ModuleName != "" {
			diagnostics.List("Custom module: %s", cfg.ModuleName)
		}
	}

	deployer := cli.NewDeployer(cfg, loader, diagnostics, logger)
	report, deployErr := deployer.Deploy(ctx)
	if report == nil {
		reporter.ReportError(deployErr)
		return exitFailure
	}

	if *formatFlag == "json" {
		err = report.WriteJSON(stdout)
	} else {
		err = report.WriteText(stdout)
	}
	if err != nil {
		diagnostics.Error("Failed to write report: %v", err)
		return exitFailure
	}

	code := exitOK
	if deployErr != nil {
		reporter.ReportError(deployErr)
		code = exitFailure
	}

	if *serveFlag != "" {
		if err := serve(ctx, *frameworkFlag, *serveFlag, inspect.NewService(deployer.Store()), diagnostics); err != nil {
			diagnostics.Error("Inspection server failed: %v", err)
			return exitFailure
		}
	}
	return code
}

// loadSettings reads the configuration file. The default file is optional; an explicit
// -config path must exist.
func loadSettings(flags *flag.FlagSet, path string) (*config.Config, error) {
	explicit := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	if explicit {
		return config.Load(path)
	}
	return config.LoadOptional(path)
}

// serve runs the inspection server until ctx is cancelled
func serve(ctx context.Context, framework, addr string, service *inspect.Service, diagnostics *utils.DiagnosticSystem) error {
	server, err := adapters.New(framework)
	if err != nil {
		return err
	}
	server.Mount(service)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()
	diagnostics.Info("Serving interception models with %s on %s%s", server.Name(), addr, inspect.ModelsPath)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}
