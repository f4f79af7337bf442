package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/toyz/restmeta/pkg/restmeta"
)

func sampleTable(t *testing.T) *restmeta.Table {
	t.Helper()

	invoice := restmeta.NewClassMetaData("example.com/shop/billing.Invoice")
	invoice.AddRepresentation("json")
	require.NoError(t, invoice.AddRoute(&restmeta.RouteMetaData{Name: "get", RoutePattern: "/invoice/:id", Verbs: []restmeta.Verb{restmeta.VerbRead}, HandleMethodName: "HandleGet"}))
	require.NoError(t, invoice.AddRoute(&restmeta.RouteMetaData{Name: "list", RoutePattern: "/invoice", Verbs: []restmeta.Verb{restmeta.VerbRead, restmeta.VerbCreate}, IsCollection: true, ActionClassName: "ListAction"}))
	require.NoError(t, invoice.SetOriginRoute("list"))

	return restmeta.NewTable(invoice)
}

func TestParseOutputFormat(t *testing.T) {
	for in, expected := range map[string]OutputFormat{"": FormatTable, "TABLE": FormatTable, "json": FormatJSON, " yaml ": FormatYAML} {
		format, err := ParseOutputFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, format, in)
	}

	_, err := ParseOutputFormat("xml")
	assert.ErrorContains(t, err, "unknown output format 'xml'")
}

func TestRenderRoutes_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRoutes(&buf, sampleTable(t), FormatTable))

	out := buf.String()
	for _, expected := range []string{"CLASS", "PATTERN", "example.com/shop/billing.Invoice", "/invoice/:id", "HandleGet", "read,create", "origin collection action=ListAction"} {
		assert.Contains(t, out, expected)
	}
}

func TestRenderRoutes_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRoutes(&buf, sampleTable(t), FormatJSON))

	var routes []restmeta.RouteInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &routes))
	require.Len(t, routes, 2)
	assert.Equal(t, "get", routes[0].Name)
	assert.Equal(t, []string{"id"}, routes[0].Variables)
	assert.True(t, routes[1].Origin)
}

func TestRenderRoutes_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRoutes(&buf, sampleTable(t), FormatYAML))

	var routes []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &routes))
	require.Len(t, routes, 2)
	assert.Equal(t, "list", routes[1]["name"])
	assert.Equal(t, "ListAction", routes[1]["action"])
	assert.Equal(t, []interface{}{"read", "create"}, routes[1]["verbs"])
}

func TestRenderResources(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResources(&buf, sampleTable(t), FormatTable))
	assert.Contains(t, buf.String(), "REPRESENTATIONS")
	assert.Contains(t, buf.String(), "get,list")

	buf.Reset()
	require.NoError(t, RenderResources(&buf, sampleTable(t), FormatYAML))
	assert.Contains(t, buf.String(), "class: example.com/shop/billing.Invoice")
	assert.Contains(t, buf.String(), "origin: list")

	buf.Reset()
	require.NoError(t, RenderResources(&buf, sampleTable(t), FormatJSON))
	var classes []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &classes))
	require.Len(t, classes, 1)
	assert.Len(t, classes[0]["routes"], 2)
}
