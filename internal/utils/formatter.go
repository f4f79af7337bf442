package utils

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"
)

// FormatGoCode formats Go source code the way gofmt does
func FormatGoCode(source []byte) ([]byte, error) {
	formatted, err := format.Source(source)
	if err != nil {
		return source, fmt.Errorf("invalid Go source: %w", err)
	}
	return formatted, nil
}

// WriteGoFile formats source and writes it to filename, creating parent
// directories as needed. Nothing is written when formatting fails.
func WriteGoFile(filename string, source []byte) error {
	formatted, err := FormatGoCode(source)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return WrapWriteError(filename, err)
	}
	if err := os.WriteFile(filename, formatted, 0644); err != nil {
		return WrapWriteError(filename, err)
	}
	return nil
}
