package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/weave/internal/annotations"
	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
)

// Parser reads //weave:: annotations from Go source into package metadata
type Parser struct {
	fileSet     *token.FileSet
	annotations *annotations.ParticipleParser
	logger      *slog.Logger
}

// NewParser creates a new descriptor reader
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		fileSet:     token.NewFileSet(),
		annotations: annotations.NewParser(annotations.DefaultRegistry()),
		logger:      logger,
	}
}

// ParseSource parses source code from a string, mostly for tests
func (p *Parser) ParseSource(pkgPath, filename, source string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, weaveerrors.WrapParseError(filename, err)
	}
	return p.ParseFiles(p.fileSet, pkgPath, []*ast.File{file})
}

// ParseDirectory parses the Go files of a single package directory
func (p *Parser) ParseDirectory(dir, pkgPath string) (*models.PackageMetadata, error) {
	pkgs, err := parser.ParseDir(p.fileSet, dir, nil, parser.ParseComments)
	if err != nil {
		return nil, weaveerrors.WrapFileSystemError("parse", dir, err)
	}

	var names []string
	for name := range pkgs {
		if strings.HasSuffix(name, "_test") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no Go packages found in directory %s", dir)
	}
	if len(names) > 1 {
		return nil, fmt.Errorf("multiple packages found in directory %s: %s", dir, strings.Join(names, ", "))
	}

	pkg := pkgs[names[0]]
	fileNames := make([]string, 0, len(pkg.Files))
	for fileName := range pkg.Files {
		if strings.HasSuffix(fileName, "_test.go") {
			continue
		}
		fileNames = append(fileNames, fileName)
	}
	sort.Strings(fileNames)

	files := make([]*ast.File, 0, len(fileNames))
	for _, fileName := range fileNames {
		files = append(files, pkg.Files[fileName])
	}
	return p.ParseFiles(p.fileSet, pkgPath, files)
}

// declaration is one annotated type, function or method
type declaration struct {
	name        string
	receiver    string // receiver type name for methods
	file        *ast.File
	location    models.SourceLocation
	annotations []*annotations.ParsedAnnotation
}

func (d *declaration) has(t annotations.AnnotationType) bool {
	return d.first(t) != nil
}

func (d *declaration) first(t annotations.AnnotationType) *annotations.ParsedAnnotation {
	for _, a := range d.annotations {
		if a.Type == t {
			return a
		}
	}
	return nil
}

func (d *declaration) all(t annotations.AnnotationType) []*annotations.ParsedAnnotation {
	var found []*annotations.ParsedAnnotation
	for _, a := range d.annotations {
		if a.Type == t {
			found = append(found, a)
		}
	}
	return found
}

// packageScan is the raw result of walking the files of one package
type packageScan struct {
	name    string
	types   []*declaration
	funcs   []*declaration
	methods map[string][]*declaration
}

// ParseFiles builds package metadata from already parsed files. Every malformed annotation is
// reported; the returned metadata holds whatever could be read.
func (p *Parser) ParseFiles(fset *token.FileSet, pkgPath string, files []*ast.File) (*models.PackageMetadata, error) {
	errs := weaveerrors.NewMultipleErrors()
	scan := &packageScan{methods: make(map[string][]*declaration)}

	for _, file := range files {
		if scan.name == "" {
			scan.name = file.Name.Name
		}
		p.scanFile(fset, file, scan, errs)
	}

	metadata := &models.PackageMetadata{
		PackageName: scan.name,
		PackagePath: pkgPath,
	}
	p.buildMetadata(pkgPath, scan, metadata, errs)

	p.logger.Debug("package parsed",
		"package", pkgPath,
		"components", len(metadata.Components),
		"interceptors", len(metadata.Interceptors),
		"binding_types", len(metadata.BindingTypes),
		"stereotypes", len(metadata.Stereotypes))

	return metadata, errs.ErrorOrNil()
}

// ExtractAnnotations parses the //weave:: lines of a comment group, checking that each may be
// attached to the given declaration kind
func (p *Parser) ExtractAnnotations(fset *token.FileSet, doc *ast.CommentGroup, target annotations.Target, errs *weaveerrors.MultipleErrors) []*annotations.ParsedAnnotation {
	if doc == nil {
		return nil
	}
	var parsed []*annotations.ParsedAnnotation
	for _, comment := range doc.List {
		if !strings.Contains(comment.Text, AnnotationPrefix) || !annotations.IsAnnotation(comment.Text) {
			continue
		}
		pos := fset.Position(comment.Pos())
		loc := annotations.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}

		annotation, err := p.annotations.ParseAnnotation(comment.Text, loc)
		if err == nil {
			err = p.annotations.ValidateTarget(annotation, target)
		}
		if err != nil {
			errs.Add(weaveerrors.WrapParseError("annotation", err).
				WithLocation(weaveerrors.SourceLocation{File: loc.File, Line: loc.Line, Column: loc.Column}).
				WithContext("annotation", strings.TrimSpace(comment.Text)))
			continue
		}
		parsed = append(parsed, annotation)
	}
	return parsed
}

func (p *Parser) scanFile(fset *token.FileSet, file *ast.File, scan *packageScan, errs *weaveerrors.MultipleErrors) {
	for _, decl := range file.Decls {
		switch node := decl.(type) {
		case *ast.GenDecl:
			if node.Tok != token.TYPE {
				continue
			}
			for _, spec := range node.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := typeSpec.Doc
				if doc == nil && len(node.Specs) == 1 {
					doc = node.Doc
				}
				found := p.ExtractAnnotations(fset, doc, annotations.TargetType, errs)
				if len(found) == 0 {
					continue
				}
				scan.types = append(scan.types, &declaration{
					name:        typeSpec.Name.Name,
					file:        file,
					location:    location(fset, typeSpec.Pos()),
					annotations: found,
				})
			}
		case *ast.FuncDecl:
			receiver := receiverTypeName(node)
			target := annotations.TargetFunc
			if receiver != "" {
				target = annotations.TargetMethod
			}
			d := &declaration{
				name:        node.Name.Name,
				receiver:    receiver,
				file:        file,
				location:    location(fset, node.Pos()),
				annotations: p.ExtractAnnotations(fset, node.Doc, target, errs),
			}
			if receiver != "" {
				scan.methods[receiver] = append(scan.methods[receiver], d)
			} else {
				scan.funcs = append(scan.funcs, d)
			}
		}
	}
}

func (p *Parser) buildMetadata(pkgPath string, scan *packageScan, metadata *models.PackageMetadata, errs *weaveerrors.MultipleErrors) {
	constructors := p.constructorsByType(scan, errs)

	for _, t := range scan.types {
		identity := models.NewTypeIdentity(pkgPath, t.name)
		methods := p.buildMethods(pkgPath, scan.methods[t.name])

		if t.has(annotations.BindingTypeAnnotation) {
			a := t.first(annotations.BindingTypeAnnotation)
			decl := &models.BindingTypeDeclaration{
				Kind:       models.BindingKind(a.Arg(0)),
				NonBinding: a.GetBool("NonBinding"),
				Location:   t.location,
			}
			for _, include := range a.GetStringSlice("Includes") {
				decl.Includes = append(decl.Includes, models.BindingKind(include))
			}
			metadata.BindingTypes = append(metadata.BindingTypes, decl)
		}

		if t.has(annotations.StereotypeTypeAnnotation) {
			metadata.Stereotypes = append(metadata.Stereotypes, &models.StereotypeDeclaration{
				Name:        t.first(annotations.StereotypeTypeAnnotation).Arg(0),
				Bindings:    bindingsOf(t),
				Stereotypes: argsOf(t, annotations.StereotypeAnnotation),
				Location:    t.location,
			})
		}

		isInterceptor := t.has(annotations.InterceptorAnnotation)
		if isInterceptor {
			a := t.first(annotations.InterceptorAnnotation)
			metadata.Interceptors = append(metadata.Interceptors, &models.InterceptorDeclaration{
				Identity: identity,
				Name:     t.name,
				Bindings: bindingsOf(t),
				Priority: a.GetInt("Priority"),
				Disabled: a.GetBool("Disabled"),
				Types:    declaredTypes(methods),
				Location: t.location,
			})
		}

		if !t.has(annotations.ComponentAnnotation) {
			continue
		}
		component := &models.ComponentDescriptor{
			Identity:           identity,
			Name:               t.name,
			PackagePath:        pkgPath,
			Final:              t.has(annotations.FinalAnnotation),
			Interceptor:        isInterceptor,
			Bindings:           bindingsOf(t),
			Stereotypes:        argsOf(t, annotations.StereotypeAnnotation),
			InterceptorClasses: classesOf(pkgPath, t),
			Methods:            methods,
			Location:           t.location,
		}
		if ctor, ok := constructors[t.name]; ok {
			component.Constructor = models.ConstructorDescriptor{
				Name:                     ctor.name,
				Private:                  !ast.IsExported(ctor.name),
				Bindings:                 bindingsOf(ctor),
				InterceptorClasses:       classesOf(pkgPath, ctor),
				ExcludeClassInterceptors: ctor.has(annotations.ExcludeClassInterceptorsAnnotation),
				Location:                 ctor.location,
			}
		}
		metadata.Components = append(metadata.Components, component)
		p.logger.Debug("component discovered", "component", identity.String(), "methods", len(methods))
	}

	p.checkStrayFunctions(scan, constructors, errs)
}

// constructorsByType selects one constructor per type: an explicit //weave::constructor wins
// over the New<Type>/new<Type> naming convention
func (p *Parser) constructorsByType(scan *packageScan, errs *weaveerrors.MultipleErrors) map[string]*declaration {
	constructors := make(map[string]*declaration)
	explicit := make(map[string]bool)

	for _, fn := range scan.funcs {
		a := fn.first(annotations.ConstructorAnnotation)
		if a == nil {
			continue
		}
		typeName := a.Arg(0)
		if explicit[typeName] {
			errs.Add(weaveerrors.Newf(weaveerrors.ValidationErrorCode,
				"type %s declares more than one constructor", typeName).
				WithLocation(errorLocation(fn.location)).
				WithContext("constructor", fn.name).
				WithSuggestion("Keep a single //weave::constructor per type"))
			continue
		}
		explicit[typeName] = true
		constructors[typeName] = fn
	}

	for _, t := range scan.types {
		if explicit[t.name] {
			continue
		}
		for _, fn := range scan.funcs {
			if fn.name == ExportedConstructorPrefix+t.name || fn.name == UnexportedConstructorPrefix+t.name {
				constructors[t.name] = fn
				break
			}
		}
	}
	return constructors
}

// checkStrayFunctions reports interception annotations on functions that are not constructors
func (p *Parser) checkStrayFunctions(scan *packageScan, constructors map[string]*declaration, errs *weaveerrors.MultipleErrors) {
	used := make(map[*declaration]bool, len(constructors))
	for _, ctor := range constructors {
		used[ctor] = true
	}
	for _, fn := range scan.funcs {
		if used[fn] || len(fn.annotations) == 0 {
			continue
		}
		if fn.has(annotations.ConstructorAnnotation) {
			continue
		}
		errs.Add(weaveerrors.Newf(weaveerrors.ValidationErrorCode,
			"function %s carries interception annotations but is not a constructor", fn.name).
			WithLocation(errorLocation(fn.location)).
			WithSuggestion("Name the function New<Type> or add //weave::constructor <Type>"))
	}
}

func (p *Parser) buildMethods(pkgPath string, decls []*declaration) []models.MethodDescriptor {
	methods := make([]models.MethodDescriptor, 0, len(decls))
	for _, d := range decls {
		method := models.MethodDescriptor{
			Name:                     d.name,
			Final:                    d.has(annotations.FinalAnnotation),
			Private:                  !ast.IsExported(d.name),
			Timeout:                  d.has(annotations.TimeoutAnnotation),
			Bindings:                 bindingsOf(d),
			InterceptorClasses:       classesOf(pkgPath, d),
			ExcludeClassInterceptors: d.has(annotations.ExcludeClassInterceptorsAnnotation),
			Location:                 d.location,
		}
		for _, a := range d.all(annotations.InterceptionMethodAnnotation) {
			t, err := models.ParseInterceptionType(a.Name)
			if err != nil {
				continue
			}
			method.InterceptionMethods = append(method.InterceptionMethods, t)
		}
		methods = append(methods, method)
	}
	return methods
}

// declaredTypes lists the interception types an interceptor implements, in declaration order
func declaredTypes(methods []models.MethodDescriptor) []models.InterceptionType {
	seen := make(map[models.InterceptionType]bool)
	var types []models.InterceptionType
	for _, m := range methods {
		for _, t := range m.InterceptionMethods {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	return types
}

func bindingsOf(d *declaration) []models.Binding {
	var bindings []models.Binding
	for _, a := range d.all(annotations.BindingAnnotation) {
		value := a.GetString("Value")
		for _, kind := range a.Args {
			bindings = append(bindings, models.Binding{Kind: models.BindingKind(kind), Value: value})
		}
	}
	return bindings
}

func argsOf(d *declaration, t annotations.AnnotationType) []string {
	var args []string
	for _, a := range d.all(t) {
		args = append(args, a.Args...)
	}
	return args
}

func classesOf(pkgPath string, d *declaration) []string {
	var classes []string
	for _, class := range argsOf(d, annotations.InterceptorsAnnotation) {
		classes = append(classes, qualifyClass(pkgPath, d.file, class))
	}
	return classes
}

// qualifyClass turns an interceptor class reference into a type identity. Bare names refer to
// the declaring package, alias.Name is resolved through the file imports, anything with a
// slash is taken as already qualified.
func qualifyClass(pkgPath string, file *ast.File, class string) string {
	if strings.Contains(class, "/") {
		return class
	}
	dot := strings.Index(class, ".")
	if dot < 0 {
		return models.NewTypeIdentity(pkgPath, class).String()
	}
	alias, name := class[:dot], class[dot+1:]
	if file != nil {
		for _, imp := range file.Imports {
			importPath, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			local := path.Base(importPath)
			if imp.Name != nil {
				local = imp.Name.Name
			}
			if local == alias {
				return models.NewTypeIdentity(importPath, name).String()
			}
		}
	}
	return class
}

func receiverTypeName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	// generic receivers: T[K] or T[K, V]
	switch recv := expr.(type) {
	case *ast.IndexExpr:
		expr = recv.X
	case *ast.IndexListExpr:
		expr = recv.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func location(fset *token.FileSet, pos token.Pos) models.SourceLocation {
	position := fset.Position(pos)
	return models.SourceLocation{File: position.Filename, Line: position.Line}
}

func errorLocation(loc models.SourceLocation) weaveerrors.SourceLocation {
	return weaveerrors.SourceLocation{File: loc.File, Line: loc.Line}
}
