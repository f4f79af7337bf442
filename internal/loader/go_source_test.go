package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/internal/errors"
)

const invoiceSource = `package billing

// Invoice is billed to a customer.
//
//rest::resource -Representations=json,xml
//rest::route -Name=get -Pattern=/invoice/:id -Verbs=read -Conditions=id:[0-9]+
//rest::route list /invoice -Verbs=read -Collection -Origin
type Invoice struct{}

// Customer is not a resource
type Customer struct{}

//rest::handle get
func (i *Invoice) HandleGet() {}

//rest::handle list
func (i *Invoice) handleList() {}

func (c Customer) Name() string {
	// local types are not package declarations
	//rest::resource
	type local struct{}
	_ = local{}
	return ""
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestGoSourceResolver_ResolveUnit(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":             "module example.com/shop\n\ngo 1.22\n",
		"billing/invoice.go": invoiceSource,
	})
	path := filepath.Join(root, "billing", "invoice.go")

	unit, err := NewGoSourceResolver(Options{}).ResolveUnit(path)
	require.NoError(t, err)

	assert.Equal(t, "billing", unit.PackageName)
	assert.Equal(t, "example.com/shop/billing", unit.PackagePath)
	require.Len(t, unit.Types, 2)

	invoice := unit.Types[0]
	assert.Equal(t, "example.com/shop/billing.Invoice", invoice.ID)
	assert.Equal(t, "Invoice", invoice.Name)
	assert.Equal(t, path, invoice.File)
	assert.Equal(t, 8, invoice.Location.Line)
	assert.True(t, invoice.IsResource())

	routes := invoice.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "get", routes[0].GetString("Name"))
	assert.Equal(t, map[string]string{"id": "[0-9]+"}, routes[0].GetStringMap("Conditions"))
	assert.Equal(t, 6, routes[0].Location.Line)
	assert.Equal(t, "Invoice", routes[0].Target)
	assert.Equal(t, "list", routes[1].GetString("Name"))
	assert.Equal(t, "/invoice", routes[1].GetString("Pattern"))
	assert.True(t, routes[1].GetBool("Origin"))

	customer := unit.Types[1]
	assert.False(t, customer.IsResource())

	methods := unit.Methods["Invoice"]
	require.Len(t, methods, 2)
	assert.Equal(t, "HandleGet", methods[0].Name)
	assert.True(t, methods[0].Exported)
	require.Len(t, methods[0].Declarations, 1)
	assert.Equal(t, annotations.HandleAnnotation, methods[0].Declarations[0].Type)
	assert.Equal(t, "get", methods[0].Declarations[0].GetString("For"))
	assert.False(t, methods[1].Exported)

	require.Len(t, unit.Methods["Customer"], 1)
	assert.Empty(t, unit.Methods["Customer"][0].Declarations)
}

func TestGoSourceResolver_GroupedAndGenericTypes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"store.go": `package store

//rest::resource
//rest::route get /a
type Single struct{}

type (
	// grouped spec docs belong to the spec
	//rest::resource
	//rest::route get /b
	Grouped struct{}

	Plain struct{}
)

//rest::resource
//rest::route get /list
type List[T any] struct{}

//rest::handle get
func (l *List[T]) HandleGet() {}

type Pair[K comparable, V any] struct{}

func (p Pair[K, V]) Keys() {}
`,
	})

	unit, err := NewGoSourceResolver(Options{}).ResolveUnit(filepath.Join(root, "store.go"))
	require.NoError(t, err)

	require.Len(t, unit.Types, 5)
	assert.True(t, unit.Types[0].IsResource(), "Single")
	assert.True(t, unit.Types[1].IsResource(), "Grouped")
	assert.False(t, unit.Types[2].IsResource(), "Plain")
	assert.True(t, unit.Types[3].IsResource(), "List")

	require.Len(t, unit.Methods["List"], 1)
	assert.Equal(t, "List", unit.Methods["List"][0].Receiver)
	require.Len(t, unit.Methods["Pair"], 1)
}

func TestGoSourceResolver_NoModuleUsesPackageName(t *testing.T) {
	root := writeTree(t, map[string]string{
		"widgets/widget.go": "package widgets\n\n//rest::resource\n//rest::route get /w\ntype Widget struct{}\n",
	})

	unit, err := NewGoSourceResolver(Options{}).ResolveUnit(filepath.Join(root, "widgets", "widget.go"))
	require.NoError(t, err)
	assert.Equal(t, "widgets", unit.PackagePath)
	assert.Equal(t, "widgets.Widget", unit.Types[0].ID)
}

func TestGoSourceResolver_ModuleOverride(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":            "module example.com/ignored\n",
		"widgets/widget.go": "package widgets\n\ntype Widget struct{}\n",
	})

	r := NewGoSourceResolver(Options{ModulePath: "example.com/override", ModuleRoot: root})
	unit, err := r.ResolveUnit(filepath.Join(root, "widgets", "widget.go"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/override/widgets", unit.PackagePath)
}

func TestGoSourceResolver_GrammarErrors(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bad.go": `package bad

//rest::route get /bad -Collection=maybe
//rest::bogus
type Bad struct{}

//rest::handle get extra
func (b *Bad) Handle() {}
`,
	})
	path := filepath.Join(root, "bad.go")

	r := NewGoSourceResolver(Options{})
	unit, err := r.ResolveUnit(path)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CachedUnits())

	require.Len(t, unit.Types, 1)
	bad := unit.Types[0]
	require.Len(t, bad.Failures, 2)
	for _, e := range bad.Failures {
		assert.Equal(t, path, e.Location().File)
	}
	assert.Equal(t, 3, bad.Failures[0].Location().Line)
	assert.Equal(t, errors.ValidationErrorCode, bad.Failures[0].ErrorCode())
	assert.Equal(t, 4, bad.Failures[1].Location().Line)
	assert.Equal(t, errors.SyntaxErrorCode, bad.Failures[1].ErrorCode())

	methods := unit.Methods["Bad"]
	require.Len(t, methods, 1)
	require.Len(t, methods[0].Failures, 1)
	assert.Equal(t, 7, methods[0].Failures[0].Location().Line)

	bad.Methods = methods
	var multi *errors.MultipleErrors
	require.ErrorAs(t, bad.Err(), &multi)
	assert.Equal(t, 3, multi.Count())
}

func TestGoSourceResolver_GoSyntaxError(t *testing.T) {
	root := writeTree(t, map[string]string{"broken.go": "package broken\n\nfunc {\n"})

	_, err := NewGoSourceResolver(Options{}).ResolveUnit(filepath.Join(root, "broken.go"))
	require.Error(t, err)

	var typed errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.SyntaxErrorCode, typed.ErrorCode())
}

func TestGoSourceResolver_CacheInvalidation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"widget.go": "package widgets\n\n//rest::resource\n//rest::route get /w\ntype Widget struct{}\n",
	})
	path := filepath.Join(root, "widget.go")
	r := NewGoSourceResolver(Options{CacheSize: 4})

	first, err := r.ResolveUnit(path)
	require.NoError(t, err)
	second, err := r.ResolveUnit(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, r.CachedUnits())

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("package widgets\n\ntype Widget struct{}\n\ntype Gadget struct{}\n"), 0644))

	third, err := r.ResolveUnit(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Types, 2)
	assert.False(t, third.Types[0].IsResource())
}

func TestReceiverName(t *testing.T) {
	root := writeTree(t, map[string]string{
		"recv.go": `package recv

type T struct{}
type G[A any] struct{}

func (T) ByValue()        {}
func (*T) ByPointer()     {}
func (t *(T)) Parenthesed() {}
func (g *G[A]) Generic()  {}
`,
	})

	unit, err := NewGoSourceResolver(Options{}).ResolveUnit(filepath.Join(root, "recv.go"))
	require.NoError(t, err)
	assert.Len(t, unit.Methods["T"], 3)
	assert.Len(t, unit.Methods["G"], 1)
}
