package generator

import "github.com/toyz/restmeta/pkg/restmeta"

// CodeGenerator renders a compiled table into Go source
type CodeGenerator interface {
	Generate(compiled *restmeta.Table) ([]byte, error)
	WriteTo(dir string, compiled *restmeta.Table) (string, error)
	FileName() string
}

var _ CodeGenerator = (*Generator)(nil)
