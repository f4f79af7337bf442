package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceSource = `package billing

//rest::resource -Representations=json
//rest::route get /invoice/:id -Verbs=read
//rest::route list /invoice -Verbs=read,create -Collection -Origin
type Invoice struct{}

//rest::handle get
func (i *Invoice) HandleGet() {}
`

const brokenSource = `package billing

//rest::resource
//rest::route get /refund
type Refund struct{}

//rest::handle edit
func (r *Refund) HandleEdit() {}
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["go.mod"] = "module example.com/shop\n"
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompileCommand(t *testing.T) {
	root := writeProject(t, map[string]string{"billing/invoice.go": invoiceSource})
	chdir(t, root)

	out, _, err := run(t, "compile", "./...")
	require.NoError(t, err)
	assert.Contains(t, out, "example.com/shop/billing.Invoice (2 routes)")
	assert.Contains(t, out, "Compilation complete")
}

func TestCompileCommand_ReportsFailures(t *testing.T) {
	root := writeProject(t, map[string]string{"billing/refund.go": brokenSource})
	chdir(t, root)

	_, errOut, err := run(t, "compile", ".")
	require.Error(t, err)
	assert.Contains(t, errOut, "Compilation Failed")
	assert.Contains(t, errOut, "Type: UnknownHandleTargetError")
}

func TestCompileCommand_InvalidFlag(t *testing.T) {
	chdir(t, t.TempDir())

	_, errOut, err := run(t, "compile", "--format=xml", ".")
	require.Error(t, err)
	assert.Contains(t, errOut, "Error: ")
	assert.Contains(t, errOut, "output.format")
}

func TestRoutesCommand(t *testing.T) {
	root := writeProject(t, map[string]string{"billing/invoice.go": invoiceSource})
	chdir(t, root)

	out, _, err := run(t, "routes", "--format=json", ".")
	require.NoError(t, err)

	var routes []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &routes), out)
	require.Len(t, routes, 2)
	assert.Equal(t, "get", routes[0]["name"])
	assert.Equal(t, "HandleGet", routes[0]["handle"])
}

func TestRoutesCommand_FromConfigFile(t *testing.T) {
	root := writeProject(t, map[string]string{
		"billing/invoice.go": invoiceSource,
		"restmeta.yaml":      "roots: [./billing]\noutput:\n  format: yaml\n",
	})
	chdir(t, root)

	out, _, err := run(t, "routes")
	require.NoError(t, err)
	assert.Contains(t, out, "class: example.com/shop/billing.Invoice")
}

func TestGenerateAndCleanCommands(t *testing.T) {
	root := writeProject(t, map[string]string{"billing/invoice.go": invoiceSource})
	chdir(t, root)

	outDir := filepath.Join(root, "routes")
	_, _, err := run(t, "generate", "--package=routes", "-o", outDir, "./billing")
	require.NoError(t, err)

	generated := filepath.Join(outDir, "autogen_routes.go")
	require.FileExists(t, generated)
	source, err := os.ReadFile(generated)
	require.NoError(t, err)
	assert.Contains(t, string(source), "package routes")

	out, _, err := run(t, "clean", "./...")
	require.NoError(t, err)
	assert.Contains(t, out, "1 generated file(s) removed")
	assert.NoFileExists(t, generated)
}

func TestCleanCommand_RequiresRoots(t *testing.T) {
	chdir(t, t.TempDir())

	_, errOut, err := run(t, "clean")
	require.Error(t, err)
	assert.Contains(t, errOut, "at least one root is required")
}
