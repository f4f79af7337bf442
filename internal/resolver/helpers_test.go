package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/internal/models"
)

const shopPackage = "example.com/shop/billing"

func route(name, pattern string, extra ...interface{}) map[string]interface{} {
	params := map[string]interface{}{"Name": name, "Pattern": pattern}
	for i := 0; i+1 < len(extra); i += 2 {
		params[extra[i].(string)] = extra[i+1]
	}
	return params
}

func routeDecls(params ...map[string]interface{}) []*annotations.ParsedAnnotation {
	decls := make([]*annotations.ParsedAnnotation, len(params))
	for i, p := range params {
		decls[i] = annotations.NewAnnotation(annotations.RouteAnnotation, p)
	}
	return decls
}

func handleMethod(name string, exported bool, targets ...interface{}) models.MethodDeclarations {
	method := models.MethodDeclarations{Name: name, Exported: exported}
	for _, target := range targets {
		method.Declarations = append(method.Declarations,
			annotations.NewAnnotation(annotations.HandleAnnotation, map[string]interface{}{"For": target}))
	}
	return method
}

// invoice is the reference resource: get and list routes, list is the origin,
// handleGet handles get
func invoice() *models.TypeDeclarations {
	decl := models.NewDeclarationBuilder(shopPackage, "Invoice").
		WithResource("json").
		WithRoute(route("get", "/invoice/:id", "Verbs", []string{"read"})).
		WithRoute(route("list", "/invoice", "Verbs", []string{"read"}, "Collection", true, "Origin", true)).
		Build()
	decl.Methods = append(decl.Methods, handleMethod("handleGet", true, "get"))
	return decl
}

func plainType(name string) *models.TypeDeclarations {
	return models.NewDeclarationBuilder(shopPackage, name).Build()
}

// touch creates empty files so discovery can enumerate them
func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
}
