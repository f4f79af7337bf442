package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/resolver"
	"github.com/toyz/restmeta/internal/utils"
	"github.com/toyz/restmeta/pkg/restmeta"
)

const billingSource = `package billing

//rest::resource -Representations=json
//rest::route -Name=get -Pattern=/invoice/:id -Verbs=read
//rest::route list /invoice -Verbs=read,create -Collection -Origin
type Invoice struct{}

//rest::handle get
func (i *Invoice) HandleGet() {}

//rest::handle list
func (i *Invoice) HandleList() {}
`

const brokenSource = `package billing

//rest::resource
//rest::route -Name=!!! -Pattern=/refund
type Refund struct{}
`

func sourceTree(t *testing.T, files map[string]string) string {
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

func testRunner(t *testing.T, root string) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := validConfig()
	cfg.Roots = []string{root}

	var out, errOut bytes.Buffer
	diagnostics := utils.NewDiagnosticSystemWithWriters(utils.DiagnosticVerbose, &out, &errOut)
	return NewRunner(&cfg, diagnostics, nil), &out, &errOut
}

func TestRunner_Compile(t *testing.T) {
	root := sourceTree(t, map[string]string{"billing/invoice.go": billingSource})
	runner, out, _ := testRunner(t, root)

	compiled, err := runner.Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/shop/billing.Invoice"}, compiled.ClassNames())

	summary := runner.Summary()
	assert.Len(t, summary.RunID, 36)
	assert.Equal(t, 1, summary.Resources)
	assert.Equal(t, 2, summary.Routes)
	assert.Equal(t, 0, summary.Failures)
	assert.Equal(t, "1 resources, 2 routes, 0 failures", summary.String())

	assert.Contains(t, out.String(), "Discovery:")
	assert.Contains(t, out.String(), "✓ 1 resource type(s)")
	assert.Contains(t, out.String(), "✓ example.com/shop/billing.Invoice (2 routes)")

	runner.PrintSummary("Compilation complete")
	assert.Contains(t, out.String(), "Resources compiled: 1")
}

func TestRunner_CompileKeepsGoodTypes(t *testing.T) {
	root := sourceTree(t, map[string]string{
		"billing/invoice.go": billingSource,
		"billing/refund.go":  brokenSource,
	})
	runner, _, errOut := testRunner(t, root)

	compiled, err := runner.Compile()
	require.Error(t, err)
	assert.ErrorIs(t, err, resolver.ErrEmptyRouteName)
	assert.Equal(t, []string{"example.com/shop/billing.Invoice"}, compiled.ClassNames())
	assert.Equal(t, 1, runner.Summary().Failures)
	assert.Contains(t, errOut.String(), "✗ ")
	assert.Contains(t, errOut.String(), "example.com/shop/billing.Refund: ")

	runner.Reporter().ReportError(err)
	assert.Contains(t, errOut.String(), "Type: EmptyRouteNameError")
}

func TestRunner_CompileSurvivesBrokenSource(t *testing.T) {
	root := sourceTree(t, map[string]string{
		"billing/invoice.go": billingSource,
		"billing/notes.go":   "package billing\n\n//rest::route get /notes -Collection=maybe\ntype Notes struct{}\n",
		"scratch/scratch.go": "package scratch\n\nfunc {\n",
	})
	runner, out, _ := testRunner(t, root)

	compiled, err := runner.Compile()
	require.Error(t, err)
	require.NotNil(t, compiled)
	assert.Equal(t, []string{"example.com/shop/billing.Invoice"}, compiled.ClassNames())
	assert.Equal(t, 2, runner.Summary().Failures)
	assert.Contains(t, out.String(), "2 source unit(s) or type(s) could not be read")
}

func TestRunner_CompileWithoutRoots(t *testing.T) {
	runner, _, _ := testRunner(t, "")
	runner.config.Roots = nil

	compiled, err := runner.Compile()
	assert.Nil(t, compiled)
	assert.ErrorIs(t, err, errors.New(errors.ConfigurationErrorCode, ""))
}

func TestRunner_Routes(t *testing.T) {
	root := sourceTree(t, map[string]string{"billing/invoice.go": billingSource})
	runner, _, _ := testRunner(t, root)
	runner.config.Output.Format = "json"

	var buf bytes.Buffer
	require.NoError(t, runner.Routes(&buf))

	var routes []restmeta.RouteInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &routes))
	require.Len(t, routes, 2)
	assert.Equal(t, "HandleList", routes[1].Handle)
	assert.Equal(t, []restmeta.Verb{restmeta.VerbRead, restmeta.VerbCreate}, routes[1].Verbs)
}

func TestRunner_Generate(t *testing.T) {
	root := sourceTree(t, map[string]string{"billing/invoice.go": billingSource})
	runner, _, _ := testRunner(t, root)

	outDir := filepath.Join(t.TempDir(), "routes")
	path, err := runner.Generate(outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, DefaultOutputFile), path)
	assert.Equal(t, []string{path}, runner.Summary().GeneratedFiles)

	source, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(source), `restmeta.NewClassMetaData("example.com/shop/billing.Invoice")`)
	assert.Regexp(t, `HandleMethodName:\s+"HandleList"`, string(source))
}

func TestRunner_GenerateWritesNothingOnFailure(t *testing.T) {
	root := sourceTree(t, map[string]string{"billing/refund.go": brokenSource})
	runner, _, _ := testRunner(t, root)

	outDir := filepath.Join(t.TempDir(), "routes")
	_, err := runner.Generate(outDir)
	require.Error(t, err)
	assert.NoDirExists(t, outDir)
}

func TestCleaner(t *testing.T) {
	root := sourceTree(t, map[string]string{
		"routes/autogen_routes.go": "package routes\n",
		"other/autogen_other.go":   "package other\n",
		"routes/keep.go":           "package routes\n",
	})

	removed, err := NewCleaner(DefaultOutputFile).CleanGeneratedFiles([]string{root + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "routes", "autogen_routes.go")}, removed)
	assert.FileExists(t, filepath.Join(root, "other", "autogen_other.go"))
	assert.FileExists(t, filepath.Join(root, "routes", "keep.go"))

	removed, err = NewCleaner("").CleanGeneratedFiles([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "other", "autogen_other.go")}, removed)
}
