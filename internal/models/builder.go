package models

import (
	"go/token"
	"strings"

	"github.com/toyz/restmeta/internal/annotations"
)

// DeclarationBuilder provides a fluent interface for building TypeDeclarations
// without going through source files. In-memory declaration sources use it.
type DeclarationBuilder struct {
	decl *TypeDeclarations
}

// NewDeclarationBuilder starts a type declared in the given package
func NewDeclarationBuilder(packagePath, typeName string) *DeclarationBuilder {
	packageName := packagePath
	if idx := strings.LastIndex(packagePath, "/"); idx != -1 {
		packageName = packagePath[idx+1:]
	}
	return &DeclarationBuilder{
		decl: &TypeDeclarations{
			ID:          QualifiedName(packagePath, typeName),
			Name:        typeName,
			PackageName: packageName,
			PackagePath: packagePath,
		},
	}
}

// InFile records the originating source unit
func (b *DeclarationBuilder) InFile(path string) *DeclarationBuilder {
	b.decl.File = path
	b.decl.Location = annotations.SourceLocation{File: path, Line: 1, Column: 1}
	return b
}

// WithResource adds a resource marker with optional representations
func (b *DeclarationBuilder) WithResource(representations ...string) *DeclarationBuilder {
	params := map[string]interface{}{}
	if len(representations) > 0 {
		params["Representations"] = representations
	}
	return b.WithDeclaration(annotations.NewAnnotation(annotations.ResourceAnnotation, params))
}

// WithRoute adds a route declaration with the given payload
func (b *DeclarationBuilder) WithRoute(params map[string]interface{}) *DeclarationBuilder {
	return b.WithDeclaration(annotations.NewAnnotation(annotations.RouteAnnotation, params))
}

// WithDeclaration adds any class-level declaration record
func (b *DeclarationBuilder) WithDeclaration(decl *annotations.ParsedAnnotation) *DeclarationBuilder {
	if decl.Target == "" {
		decl.Target = b.decl.Name
	}
	b.decl.Declarations = append(b.decl.Declarations, decl)
	return b
}

// WithMethod adds a method carrying one handle declaration per target.
// Export status follows Go rules for the method name.
func (b *DeclarationBuilder) WithMethod(name string, handleTargets ...interface{}) *DeclarationBuilder {
	method := MethodDeclarations{
		Name:     name,
		Receiver: b.decl.Name,
		Exported: token.IsExported(name),
	}
	for _, target := range handleTargets {
		decl := annotations.NewAnnotation(annotations.HandleAnnotation, map[string]interface{}{"For": target})
		decl.Target = name
		method.Declarations = append(method.Declarations, decl)
	}
	b.decl.Methods = append(b.decl.Methods, method)
	return b
}

// Build returns the assembled declarations
func (b *DeclarationBuilder) Build() *TypeDeclarations {
	return b.decl
}
