package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/restmeta/internal/annotations"
)

func TestDeclarationBuilder(t *testing.T) {
	decl := NewDeclarationBuilder("example.com/billing/invoices", "Invoice").
		InFile("invoice.go").
		WithResource("json").
		WithRoute(map[string]interface{}{"Name": "get", "Pattern": "/invoice/:id"}).
		WithMethod("HandleGet", "get").
		WithMethod("helper", "list").
		Build()

	assert.Equal(t, "example.com/billing/invoices.Invoice", decl.ID)
	assert.Equal(t, "invoices", decl.PackageName)
	assert.Equal(t, "invoice.go", decl.File)
	assert.True(t, decl.IsResource())

	routes := decl.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "Invoice", routes[0].Target)

	exported := decl.ExportedMethods()
	require.Len(t, exported, 1)
	assert.Equal(t, "HandleGet", exported[0].Name)
	assert.Equal(t, "Invoice", exported[0].Receiver)
	require.Len(t, exported[0].Declarations, 1)
	assert.Equal(t, "get", exported[0].Declarations[0].GetString("For"))
	assert.False(t, decl.Methods[1].Exported)
}

func TestTypeDeclarations_NotResource(t *testing.T) {
	decl := NewDeclarationBuilder("", "Plain").
		WithRoute(map[string]interface{}{"Name": "get"}).
		Build()

	assert.Equal(t, "Plain", decl.ID)
	assert.False(t, decl.IsResource())
	assert.Len(t, decl.OfType(annotations.RouteAnnotation), 1)
	assert.Empty(t, decl.OfType(annotations.HandleAnnotation))
}

func TestTypeDeclarations_Clone(t *testing.T) {
	original := NewDeclarationBuilder("example.com/app", "Invoice").
		WithResource().
		WithMethod("HandleGet", "get").
		Build()

	clone := original.Clone()
	clone.Methods = append(clone.Methods, MethodDeclarations{Name: "HandleList", Exported: true})
	clone.Declarations = append(clone.Declarations, annotations.NewAnnotation(annotations.RouteAnnotation, nil))

	assert.Len(t, original.Methods, 1)
	assert.Len(t, original.Declarations, 1)
	assert.Len(t, clone.Methods, 2)
	assert.Same(t, original.Declarations[0], clone.Declarations[0])
}

func TestUnit_QualifiedName(t *testing.T) {
	unit := &Unit{PackagePath: "example.com/app/invoices"}
	assert.Equal(t, "example.com/app/invoices.Invoice", unit.QualifiedName("Invoice"))
	assert.Equal(t, "Invoice", QualifiedName("", "Invoice"))
}
