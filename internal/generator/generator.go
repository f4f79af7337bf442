// Package generator writes a Go source file that rebuilds a compiled route
// table through the pkg/restmeta builder API, so applications can load the
// table without scanning sources at runtime.
package generator

import (
	"bytes"
	"fmt"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/utils"
	"github.com/toyz/restmeta/pkg/restmeta"
)

// RestmetaImportPath is imported by every generated file
const RestmetaImportPath = "github.com/toyz/restmeta/pkg/restmeta"

// Generator renders route table source files
type Generator struct {
	packageName string
	fileName    string
}

// New creates a generator for the given package and file name
func New(packageName, fileName string) (*Generator, error) {
	if !token.IsIdentifier(packageName) {
		return nil, errors.ConfigurationError("output.package", fmt.Sprintf("'%s' is not a valid package name", packageName))
	}
	if filepath.Base(fileName) != fileName || !strings.HasSuffix(fileName, ".go") {
		return nil, errors.ConfigurationError("output.file", fmt.Sprintf("'%s' must be a plain .go file name", fileName))
	}
	return &Generator{packageName: packageName, fileName: fileName}, nil
}

// FileName returns the name of generated files
func (g *Generator) FileName() string {
	return g.fileName
}

type fileData struct {
	Package string
	Import  string
	Classes []*restmeta.ClassMetaData
}

// Generate renders formatted source for the table
func (g *Generator) Generate(compiled *restmeta.Table) ([]byte, error) {
	source, err := executeTemplate("route-table", RouteTableTemplate, fileData{
		Package: g.packageName,
		Import:  RestmetaImportPath,
		Classes: compiled.Classes(),
	})
	if err != nil {
		return nil, errors.WrapGenerateError(g.fileName, err)
	}

	formatted, err := utils.FormatGoCode([]byte(source))
	if err != nil {
		return nil, errors.WrapGenerateError(g.fileName, err)
	}
	return formatted, nil
}

// WriteTo renders the table into dir and returns the written path
func (g *Generator) WriteTo(dir string, compiled *restmeta.Table) (string, error) {
	source, err := g.Generate(compiled)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, g.fileName)
	if err := utils.WriteGoFile(path, source); err != nil {
		return "", errors.WrapFileSystemError("write", path, err)
	}
	return path, nil
}

// executeTemplate executes a Go template with the generator functions
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	funcMap := template.FuncMap{
		"quote": strconv.Quote,
		"verb":  verbConstant,
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// verbConstant returns the restmeta constant naming a verb
func verbConstant(v restmeta.Verb) string {
	for _, known := range restmeta.AllVerbs {
		if known == v {
			name := string(v)
			return "restmeta.Verb" + strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return "restmeta.Verb(" + strconv.Quote(string(v)) + ")"
}
