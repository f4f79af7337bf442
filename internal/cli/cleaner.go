package cli

import (
	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/utils"
)

// Cleaner removes generated route table files
type Cleaner struct {
	files    *utils.FileProcessor
	fileName string
}

// NewCleaner creates a cleaner for files named fileName. An empty name removes
// every generated file.
func NewCleaner(fileName string) *Cleaner {
	return &Cleaner{
		files:    utils.NewFileProcessor(),
		fileName: fileName,
	}
}

// CleanGeneratedFiles removes generated files under each directory, recursively.
// Go-style "dir/..." patterns are accepted.
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	removed, err := c.files.CleanDirectories(ExpandRoots(directories), c.fileName)
	if err != nil {
		return removed, errors.WrapFileSystemError("clean", c.fileName, err)
	}
	return removed, nil
}
