package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/tools/go/packages"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
	"github.com/toyz/weave/internal/parser"
	"github.com/toyz/weave/internal/utils"
)

// PackageLoader turns package patterns into package metadata
type PackageLoader interface {
	Load(ctx context.Context, patterns []string) ([]*models.PackageMetadata, error)
}

// PackagesLoader loads packages through golang.org/x/tools/go/packages, which resolves
// patterns and import paths the way the go command does
type PackagesLoader struct {
	Dir    string
	reader *parser.Parser
	logger *slog.Logger
}

// NewPackagesLoader creates a loader rooted at dir ("" means the working directory)
func NewPackagesLoader(dir string, logger *slog.Logger) *PackagesLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PackagesLoader{Dir: dir, reader: parser.NewParser(logger), logger: logger}
}

// Load implements PackageLoader
func (l *PackagesLoader) Load(ctx context.Context, patterns []string) ([]*models.PackageMetadata, error) {
	cfg := &packages.Config{
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:     l.Dir,
		Context: ctx,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, weaveerrors.WrapFileSystemError("load", strings.Join(patterns, " "), err)
	}
	l.logger.Info("packages loaded", "packages_count", len(pkgs))

	errs := weaveerrors.NewMultipleErrors()
	var metas []*models.PackageMetadata
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			l.logger.Warn("package load error", "package", pkg.PkgPath, "error", e.Msg)
		}
		if len(pkg.Syntax) == 0 {
			continue
		}
		meta, err := l.reader.ParseFiles(pkg.Fset, pkg.PkgPath, pkg.Syntax)
		if err != nil {
			errs.Add(err)
		}
		if meta != nil {
			metas = append(metas, meta)
		}
	}
	return metas, errs.ErrorOrNil()
}

// DirectoryLoader scans directories on disk and derives import paths from go.mod. It needs no
// go toolchain.
type DirectoryLoader struct {
	ModuleName string
	scanner    *DirectoryScanner
	gomod      *utils.GoModParser
	reader     *parser.Parser
	logger     *slog.Logger
}

// NewDirectoryLoader creates a directory based loader
func NewDirectoryLoader(moduleName string, logger *slog.Logger) *DirectoryLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryLoader{
		ModuleName: moduleName,
		scanner:    NewDirectoryScanner(),
		gomod:      utils.NewGoModParser(),
		reader:     parser.NewParser(logger),
		logger:     logger,
	}
}

// Load implements PackageLoader
func (l *DirectoryLoader) Load(ctx context.Context, patterns []string) ([]*models.PackageMetadata, error) {
	dirs, err := l.scanner.ScanDirectories(patterns)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, weaveerrors.New(weaveerrors.ValidationErrorCode, "no Go packages found in specified directories").
			WithContext("patterns", patterns).
			WithSuggestion("Ensure the directories contain Go files").
			WithSuggestion("Try scanning parent directories or use './...' pattern")
	}

	errs := weaveerrors.NewMultipleErrors()
	var metas []*models.PackageMetadata
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		importPath, err := l.gomod.ImportPathForDir(dir, l.ModuleName)
		if err != nil {
			errs.Add(weaveerrors.Wrap(weaveerrors.ConfigurationErrorCode,
				fmt.Sprintf("failed to resolve import path of %s", dir), err).
				WithSuggestion("Try specifying -module explicitly"))
			continue
		}
		meta, err := l.reader.ParseDirectory(dir, importPath)
		if err != nil {
			errs.Add(err)
		}
		if meta != nil {
			metas = append(metas, meta)
		}
	}
	l.logger.Info("packages loaded", "packages_count", len(metas))
	return metas, errs.ErrorOrNil()
}
