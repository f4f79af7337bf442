package models

import (
	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/internal/errors"
)

// MethodDeclarations is a method together with the declarations in its doc comment
type MethodDeclarations struct {
	Name         string                          // method name
	Receiver     string                          // receiver type name without pointer or type parameters
	Exported     bool                            // whether the method is exported
	Location     annotations.SourceLocation      // position of the method name
	Declarations []*annotations.ParsedAnnotation // handle declarations and anything else attached
	Failures     []errors.Error                  // declarations in the doc comment that did not parse
}

// TypeDeclarations is one declared type and everything declared on it. It is the
// input the resolver consumes for a single resource candidate.
type TypeDeclarations struct {
	ID           string                          // <import path>.<TypeName>
	Name         string                          // bare type name
	PackageName  string                          // Go package name
	PackagePath  string                          // import path of the package
	File         string                          // originating source unit
	Location     annotations.SourceLocation      // position of the type name
	Declarations []*annotations.ParsedAnnotation // class-level declarations in order
	Methods      []MethodDeclarations            // methods in declaration order
	Failures     []errors.Error                  // class-level declarations that did not parse
}

// IsResource reports whether any class-level declaration marks the type as a resource
func (t *TypeDeclarations) IsResource() bool {
	return len(t.OfType(annotations.ResourceAnnotation)) > 0
}

// OfType returns the class-level declarations of one kind in declaration order
func (t *TypeDeclarations) OfType(kind annotations.AnnotationType) []*annotations.ParsedAnnotation {
	var result []*annotations.ParsedAnnotation
	for _, decl := range t.Declarations {
		if decl.Type == kind {
			result = append(result, decl)
		}
	}
	return result
}

// Routes returns the route declarations in declaration order
func (t *TypeDeclarations) Routes() []*annotations.ParsedAnnotation {
	return t.OfType(annotations.RouteAnnotation)
}

// ExportedMethods returns the exported methods in declaration order
func (t *TypeDeclarations) ExportedMethods() []MethodDeclarations {
	var result []MethodDeclarations
	for _, method := range t.Methods {
		if method.Exported {
			result = append(result, method)
		}
	}
	return result
}

// Err returns the declaration failures of the type and its methods as one
// *errors.MultipleErrors, or nil when every declaration parsed
func (t *TypeDeclarations) Err() error {
	var failures *errors.MultipleErrors
	for _, e := range t.Failures {
		errors.AddToMultiple(&failures, e)
	}
	for _, method := range t.Methods {
		for _, e := range method.Failures {
			errors.AddToMultiple(&failures, e)
		}
	}
	return failures.ErrorOrNil()
}

// Clone returns a copy whose slices can be appended to without touching the
// original. Declaration records are shared.
func (t *TypeDeclarations) Clone() *TypeDeclarations {
	clone := *t
	clone.Declarations = append([]*annotations.ParsedAnnotation(nil), t.Declarations...)
	clone.Methods = append([]MethodDeclarations(nil), t.Methods...)
	clone.Failures = append([]errors.Error(nil), t.Failures...)
	return &clone
}

// Unit is one resolved source unit: the types it declares and the methods it
// declares, keyed by receiver type name. Methods may belong to types declared
// in another unit of the same package.
type Unit struct {
	Path        string                          // source unit path
	PackageName string                          // Go package name
	PackagePath string                          // import path of the package
	Types       []*TypeDeclarations             // types in declaration order
	Methods     map[string][]MethodDeclarations // receiver type name -> methods
}

// QualifiedName builds the identifier of a type declared in this unit's package
func (u *Unit) QualifiedName(typeName string) string {
	return QualifiedName(u.PackagePath, typeName)
}

// QualifiedName joins an import path and a type name into a type identifier
func QualifiedName(packagePath, typeName string) string {
	if packagePath == "" {
		return typeName
	}
	return packagePath + "." + typeName
}
