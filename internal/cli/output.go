package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/toyz/restmeta/pkg/restmeta"
)

// OutputFormat selects how compiled metadata is printed
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat resolves a format name
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(name))); format {
	case FormatTable, FormatJSON, FormatYAML:
		return format, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format '%s' (expected table, json or yaml)", name)
	}
}

// RenderRoutes writes the flattened route table
func RenderRoutes(w io.Writer, compiled *restmeta.Table, format OutputFormat) error {
	routes := compiled.Routes()

	switch format {
	case FormatJSON:
		return writeJSON(w, routes)
	case FormatYAML:
		return writeYAML(w, routes)
	}

	t := newTable("CLASS", "ROUTE", "VERBS", "PATTERN", "HANDLE", "FLAGS")
	for _, route := range routes {
		t.Row(
			route.ClassName,
			route.Name,
			strings.Join(restmeta.VerbStrings(route.Verbs), ","),
			route.Pattern,
			route.Handle,
			routeFlags(route),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// RenderResources writes one entry per compiled resource
func RenderResources(w io.Writer, compiled *restmeta.Table, format OutputFormat) error {
	classes := compiled.Classes()

	switch format {
	case FormatJSON:
		return writeJSON(w, classes)
	case FormatYAML:
		return writeYAML(w, classes)
	}

	t := newTable("CLASS", "ROUTES", "ORIGIN", "REPRESENTATIONS")
	for _, class := range classes {
		t.Row(
			class.ClassName,
			strings.Join(class.RouteNames(), ","),
			class.OriginRouteName,
			strings.Join(class.Representations, ","),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func routeFlags(route restmeta.RouteInfo) string {
	var flags []string
	if route.Origin {
		flags = append(flags, "origin")
	}
	if route.Collection {
		flags = append(flags, "collection")
	}
	if route.Action != "" {
		flags = append(flags, "action="+route.Action)
	}
	return strings.Join(flags, " ")
}

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
