package resolver

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/models"
)

// MemoryUnits is a test declaration source whose units are registered up front.
// Discovery still enumerates the file system, so each registered path must
// exist; its content is never read.
type MemoryUnits struct {
	mu    sync.RWMutex
	units map[string]*models.Unit
	calls map[string]int
}

// NewMemoryUnits creates an empty in-memory declaration source
func NewMemoryUnits() *MemoryUnits {
	return &MemoryUnits{
		units: make(map[string]*models.Unit),
		calls: make(map[string]int),
	}
}

// Add registers a unit at path holding the given types. Each type's File is
// set to path; methods stay on the types that carry them.
func (m *MemoryUnits) Add(path, packagePath string, types ...*models.TypeDeclarations) *models.Unit {
	unit := &models.Unit{
		Path:        path,
		PackagePath: packagePath,
		Methods:     make(map[string][]models.MethodDeclarations),
	}
	for _, t := range types {
		t.File = path
		unit.PackageName = t.PackageName
		unit.Types = append(unit.Types, t)
	}
	m.AddUnit(unit)
	return unit
}

// AddUnit registers a prepared unit under its path
func (m *MemoryUnits) AddUnit(unit *models.Unit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[filepath.Clean(unit.Path)] = unit
}

// ResolveUnit implements UnitResolver
func (m *MemoryUnits) ResolveUnit(path string) (*models.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := filepath.Clean(path)
	m.calls[key]++

	unit, ok := m.units[key]
	if !ok {
		return nil, errors.WrapFileSystemError("resolve", path, fmt.Errorf("no unit registered"))
	}
	return unit, nil
}

// Calls returns how many times path was resolved
func (m *MemoryUnits) Calls(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[filepath.Clean(path)]
}
