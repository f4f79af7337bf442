// Package loader reads declarations out of Go source files. It implements
// resolver.UnitResolver on top of go/parser and the ast inspector.
package loader

import (
	stderrors "errors"
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/models"
	"github.com/toyz/restmeta/internal/utils"
)

// DefaultCacheSize is the number of parsed units kept when no size is configured
const DefaultCacheSize = 512

// Options configures a GoSourceResolver
type Options struct {
	ModulePath string // import path of ModuleRoot, overrides go.mod lookup
	ModuleRoot string // directory ModulePath refers to, defaults to the working directory
	CacheSize  int    // parsed units kept in memory
	Registry   annotations.AnnotationRegistry
	Logger     *zap.Logger
}

// GoSourceResolver turns Go source files into units of type and method
// declarations. Parsed units are cached until the file changes on disk.
type GoSourceResolver struct {
	reader     *utils.FileReader
	modules    *utils.GoModParser
	parser     *annotations.ParticipleParser
	units      *utils.Cache[string, *models.Unit]
	modulePath string
	moduleRoot string
	logger     *zap.Logger
}

// NewGoSourceResolver creates a resolver for Go source files
func NewGoSourceResolver(opts Options) *GoSourceResolver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}

	moduleRoot := opts.ModuleRoot
	if opts.ModulePath != "" {
		if moduleRoot == "" {
			moduleRoot, _ = os.Getwd()
		}
		if abs, err := filepath.Abs(moduleRoot); err == nil {
			moduleRoot = abs
		}
	}

	reader := utils.NewFileReaderWithSize(size)
	return &GoSourceResolver{
		reader:     reader,
		modules:    utils.NewGoModParser(reader),
		parser:     annotations.NewParticipleParser(opts.Registry),
		units:      utils.NewSizedCache[string, *models.Unit](size),
		modulePath: opts.ModulePath,
		moduleRoot: moduleRoot,
		logger:     logger,
	}
}

// CachedUnits returns the number of units held in the cache
func (r *GoSourceResolver) CachedUnits() int {
	return r.units.Size()
}

// ResolveUnit implements resolver.UnitResolver. A declaration that does not
// parse is recorded in the Failures of the type or method it is attached to,
// so one bad declaration never fails the whole unit. Only unreadable or
// syntactically invalid Go source is an error.
func (r *GoSourceResolver) ResolveUnit(path string) (*models.Unit, error) {
	clean := filepath.Clean(path)
	if unit, ok := r.units.GetWithFileValidation(clean, clean); ok {
		return unit, nil
	}

	file, err := r.reader.ParseGoFile(clean)
	if err != nil {
		return nil, errors.WrapParseError(clean, err)
	}

	unit := &models.Unit{
		Path:        clean,
		PackageName: file.Name.Name,
		PackagePath: r.packagePath(filepath.Dir(clean), file.Name.Name),
		Methods:     make(map[string][]models.MethodDeclarations),
	}

	failed := 0
	insp := inspector.New([]*ast.File{file})
	nodeTypes := []ast.Node{(*ast.GenDecl)(nil), (*ast.FuncDecl)(nil)}

	insp.WithStack(nodeTypes, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}

		switch node := n.(type) {
		case *ast.GenDecl:
			// only package-level type declarations
			if node.Tok != token.TYPE || len(stack) != 2 {
				return false
			}
			for _, spec := range node.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(node.Specs) == 1 {
					doc = node.Doc
				}
				decls, errs := r.parseDoc(doc, ts.Name.Name)
				failed += len(errs)
				decl := r.typeDeclarations(unit, clean, ts, decls)
				decl.Failures = errs
				unit.Types = append(unit.Types, decl)
			}
			return false

		case *ast.FuncDecl:
			if node.Recv != nil && len(node.Recv.List) > 0 {
				decls, errs := r.parseDoc(node.Doc, node.Name.Name)
				failed += len(errs)
				receiver := receiverName(node.Recv.List[0].Type)
				if receiver != "" {
					unit.Methods[receiver] = append(unit.Methods[receiver], models.MethodDeclarations{
						Name:         node.Name.Name,
						Receiver:     receiver,
						Exported:     node.Name.IsExported(),
						Location:     r.location(node.Name.Pos()),
						Declarations: decls,
						Failures:     errs,
					})
				}
			}
			return false
		}
		return true
	})

	if err := r.units.SetWithFileInfo(clean, unit, clean); err != nil {
		r.logger.Debug("unit not cached", zap.String("path", clean), zap.Error(err))
	}

	r.logger.Debug("resolved unit",
		zap.String("path", clean),
		zap.String("package", unit.PackagePath),
		zap.Int("types", len(unit.Types)),
		zap.Int("receivers", len(unit.Methods)),
		zap.Int("failed", failed))
	return unit, nil
}

func (r *GoSourceResolver) typeDeclarations(unit *models.Unit, path string, ts *ast.TypeSpec, decls []*annotations.ParsedAnnotation) *models.TypeDeclarations {
	for _, decl := range decls {
		if decl.Type == annotations.HandleAnnotation {
			r.logger.Debug("handle declaration on a type is ignored",
				zap.String("type", ts.Name.Name),
				zap.String("at", fmt.Sprintf("%s:%d", decl.Location.File, decl.Location.Line)))
		}
	}

	return &models.TypeDeclarations{
		ID:           unit.QualifiedName(ts.Name.Name),
		Name:         ts.Name.Name,
		PackageName:  unit.PackageName,
		PackagePath:  unit.PackagePath,
		File:         path,
		Location:     r.location(ts.Name.Pos()),
		Declarations: decls,
	}
}

// parseDoc parses every declaration line of a doc comment
func (r *GoSourceResolver) parseDoc(doc *ast.CommentGroup, target string) ([]*annotations.ParsedAnnotation, []errors.Error) {
	if doc == nil {
		return nil, nil
	}

	var decls []*annotations.ParsedAnnotation
	var errs []errors.Error

	for _, comment := range doc.List {
		if !annotations.IsDeclaration(comment.Text) {
			continue
		}

		decl, err := r.parser.ParseDeclaration(comment.Text, r.location(comment.Slash))
		if err != nil {
			errs = append(errs, grammarErrors(err, comment.Text)...)
			continue
		}
		decl.Target = target
		decls = append(decls, decl)
	}

	return decls, errs
}

func (r *GoSourceResolver) location(pos token.Pos) annotations.SourceLocation {
	p := r.reader.Position(pos)
	return annotations.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}

// packagePath derives the import path of dir. Without a module override or an
// enclosing go.mod the bare package name is used.
func (r *GoSourceResolver) packagePath(dir, packageName string) string {
	if r.modulePath != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			if importPath, err := utils.BuildPackagePath(r.modulePath, r.moduleRoot, abs); err == nil {
				return importPath
			}
		}
	}

	importPath, err := r.modules.PackagePath(dir)
	if err != nil {
		r.logger.Debug("no module for directory, using package name",
			zap.String("dir", dir),
			zap.String("package", packageName),
			zap.Error(err))
		return packageName
	}
	return importPath
}

// receiverName returns the receiver's type name without pointer or type parameters
func receiverName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.Ident:
			return e.Name
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		default:
			return ""
		}
	}
}

// grammarErrors converts declaration grammar errors into restmeta errors
func grammarErrors(err error, raw string) []errors.Error {
	var multi *annotations.MultipleAnnotationErrors
	if stderrors.As(err, &multi) {
		result := make([]errors.Error, 0, len(multi.Errors))
		for _, e := range multi.Errors {
			result = append(result, grammarError(e, raw))
		}
		return result
	}

	var single annotations.AnnotationError
	if stderrors.As(err, &single) {
		return []errors.Error{grammarError(single, raw)}
	}

	return []errors.Error{errors.WrapParseError("declaration", err)}
}

func grammarError(err annotations.AnnotationError, raw string) errors.Error {
	loc := errors.SourceLocation(err.Location())

	var base *errors.BaseError
	switch e := err.(type) {
	case *annotations.SyntaxError:
		syntax := errors.NewSyntaxError(e.Msg, loc, raw)
		if e.Hint != "" {
			syntax.WithSuggestion(e.Hint)
		}
		return syntax
	case *annotations.ValidationError:
		base = errors.Newf(errors.ValidationErrorCode, "parameter '%s': expected %s, got %s", e.Parameter, e.Expected, e.Actual).
			WithContext("parameter", e.Parameter)
	case *annotations.SchemaError:
		base = errors.New(errors.ValidationErrorCode, e.Msg)
	default:
		base = errors.New(errors.SyntaxErrorCode, err.Error())
	}

	base.WithLocation(loc).WithContext("declaration", raw)
	if hint := err.Suggestion(); hint != "" {
		base.WithSuggestion(hint)
	}
	return base
}
