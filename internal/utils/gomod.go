package utils

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// GoModParser reads go.mod files and maps source directories to import paths
type GoModParser struct {
	fileReader *FileReader
	packages   *Cache[string, string]
}

// NewGoModParser creates a new go.mod parser with caching
func NewGoModParser(fileReader *FileReader) *GoModParser {
	if fileReader == nil {
		fileReader = NewFileReader()
	}
	return &GoModParser{
		fileReader: fileReader,
		packages:   NewCache[string, string](),
	}
}

// ParseModuleName extracts the module name from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := p.fileReader.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.ParseLax(cleanPath, []byte(content), nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	if modFile.Module == nil {
		return "", fmt.Errorf("no module declaration found in go.mod")
	}

	return modFile.Module.Mod.Path, nil
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if content, err := p.fileReader.ReadFile(goModPath); err == nil && content != "" {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// PackagePath returns the import path of the package in dir, derived from the
// nearest enclosing go.mod
func (p *GoModParser) PackagePath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	if cached, ok := p.packages.Get(absDir); ok {
		return cached, nil
	}

	goModPath, err := p.FindGoModFile(absDir)
	if err != nil {
		return "", err
	}

	moduleName, err := p.ParseModuleName(goModPath)
	if err != nil {
		return "", err
	}

	importPath, err := BuildPackagePath(moduleName, filepath.Dir(goModPath), absDir)
	if err != nil {
		return "", err
	}

	p.packages.Set(absDir, importPath)
	return importPath, nil
}

// BuildPackagePath joins moduleName with the location of packageDir relative
// to moduleRoot
func BuildPackagePath(moduleName, moduleRoot, packageDir string) (string, error) {
	relPath, err := filepath.Rel(moduleRoot, packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	relPath = filepath.ToSlash(relPath)
	if relPath == ".." || strings.HasPrefix(relPath, "../") {
		return "", fmt.Errorf("package directory %s is outside module root %s", packageDir, moduleRoot)
	}

	importPath := moduleName
	if relPath != "." {
		importPath = path.Join(moduleName, relPath)
	}

	if err := module.CheckImportPath(importPath); err != nil {
		return "", err
	}
	return importPath, nil
}
