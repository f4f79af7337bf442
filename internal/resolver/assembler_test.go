package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/models"
	"github.com/toyz/restmeta/pkg/restmeta"
)

func TestAssembler_InvoiceScenario(t *testing.T) {
	class, ok, err := NewAssembler(nil, nil).Assemble(invoice())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, shopPackage+".Invoice", class.ClassName)
	assert.Equal(t, []string{"get", "list"}, class.RouteNames())
	assert.Equal(t, "list", class.OriginRouteName)
	assert.Equal(t, []string{"json"}, class.Representations)
	assert.True(t, class.Frozen())

	get, _ := class.Route("get")
	assert.Equal(t, "handleGet", get.HandleMethodName)
	assert.Equal(t, "/invoice/:id", get.RoutePattern)
	assert.Equal(t, []restmeta.Verb{restmeta.VerbRead}, get.Verbs)

	list, _ := class.Route("list")
	assert.True(t, list.IsCollection)
	assert.False(t, list.HasHandleCall())
}

func TestAssembler_NotAResource(t *testing.T) {
	class, ok, err := NewAssembler(nil, nil).Assemble(plainType("Customer"))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, class)
}

func TestAssembler_NoRoutes(t *testing.T) {
	decl := models.NewDeclarationBuilder(shopPackage, "Empty").WithResource().Build()

	_, ok, err := NewAssembler(nil, nil).Assemble(decl)
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrNoRoutesDeclared)
}

func TestAssembler_DeclarationFailures(t *testing.T) {
	decl := invoice()
	decl.Failures = []errors.Error{errors.NewSyntaxError("bad route", errors.SourceLocation{File: "invoice.go", Line: 4}, "//rest::route")}

	class, ok, err := NewAssembler(nil, nil).Assemble(decl)
	assert.True(t, ok)
	assert.Nil(t, class)

	var multi *errors.MultipleErrors
	require.ErrorAs(t, err, &multi)
	assert.True(t, multi.HasCode(errors.SyntaxErrorCode))

	class, ok, err = NewAssembler(nil, nil).Assemble(invoice())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, class)
}

func TestAssembler_MergesRepresentations(t *testing.T) {
	decl := models.NewDeclarationBuilder(shopPackage, "Invoice").
		WithResource("json", "xml").
		WithResource("xml", "csv").
		WithRoute(route("get", "/invoice/:id")).
		Build()

	class, _, err := NewAssembler(nil, nil).Assemble(decl)
	require.NoError(t, err)
	assert.Equal(t, []string{"json", "xml", "csv"}, class.Representations)
}

func TestAssembler_DuplicateNamesAcrossTypes(t *testing.T) {
	assembler := NewAssembler(nil, nil)

	for _, name := range []string{"Invoice", "Order"} {
		decl := models.NewDeclarationBuilder(shopPackage, name).
			WithResource().
			WithRoute(route("get", "/"+name+"/:id")).
			Build()
		_, _, err := assembler.Assemble(decl)
		assert.NoError(t, err, name)
	}
}

func TestAssembler_HandlePolicies(t *testing.T) {
	build := func() *models.TypeDeclarations {
		return models.NewDeclarationBuilder(shopPackage, "Invoice").
			WithResource().
			WithRoute(route("get", "/invoice/:id", "Verbs", []string{"read"})).
			WithRoute(route("remove", "/invoice/:id", "Verbs", []string{"delete"}, "Action", "RemoveInvoice")).
			WithRoute(route("edit", "/invoice/:id/edit", "Verbs", []string{"update"}, "RequireHandle", true)).
			WithMethod("HandleGet", "get").
			Build()
	}

	tests := []struct {
		name    string
		policy  HandlePolicy
		missing string
	}{
		{"none", NoHandleRequired, ""},
		{"nil policy", nil, ""},
		{"without action", RequireHandleWithoutAction, "edit"},
		{"verbs", RequireHandleForVerbs(restmeta.VerbDelete), "remove"},
		{"verbs satisfied", RequireHandleForVerbs(restmeta.VerbRead), ""},
		{"declared", RequireDeclaredHandle, "edit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, ok, err := NewAssembler(tt.policy, nil).Assemble(build())
			require.True(t, ok)

			if tt.missing == "" {
				require.NoError(t, err)
				get, _ := class.Route("get")
				assert.Equal(t, "HandleGet", get.HandleMethodName)
				return
			}

			assert.ErrorIs(t, err, ErrMissingRequiredHandle)
			var metaErr *errors.MetadataError
			require.ErrorAs(t, err, &metaErr)
			assert.Equal(t, tt.missing, metaErr.RouteName)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestAssembler_RecordsRequiresHandle(t *testing.T) {
	decl := models.NewDeclarationBuilder(shopPackage, "Invoice").
		WithResource().
		WithRoute(route("get", "/invoice/:id")).
		WithRoute(route("run", "/invoice/:id/run", "Action", "Run")).
		WithMethod("HandleGet", "get").
		Build()

	class, _, err := NewAssembler(RequireHandleWithoutAction, nil).Assemble(decl)
	require.NoError(t, err)

	get, _ := class.Route("get")
	run, _ := class.Route("run")
	assert.True(t, get.NeedsHandleCall())
	assert.False(t, run.NeedsHandleCall())
}

func TestAssembler_Idempotent(t *testing.T) {
	decl := invoice()
	assembler := NewAssembler(nil, nil)

	first, _, err := assembler.Assemble(decl)
	require.NoError(t, err)
	second, _, err := assembler.Assemble(decl)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
}

func TestAssembler_StopsAtFirstViolation(t *testing.T) {
	decl := models.NewDeclarationBuilder(shopPackage, "Invoice").
		WithResource().
		WithRoute(route("get", "/a")).
		WithRoute(route("get", "/b")).
		WithMethod("HandleEdit", "edit").
		Build()

	_, _, err := NewAssembler(nil, nil).Assemble(decl)
	assert.ErrorIs(t, err, ErrDuplicateRouteName)
	assert.NotErrorIs(t, err, ErrUnknownHandleTarget)
}
