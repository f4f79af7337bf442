package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/models"
	"github.com/toyz/restmeta/internal/utils"
)

// DefaultExtension is recognized when no extension is configured
const DefaultExtension = ".go"

// UnitResolver turns one source unit into the types and methods it declares
type UnitResolver interface {
	ResolveUnit(path string) (*models.Unit, error)
}

// Discovery enumerates source units under the configured roots and returns the
// resource-marked types they declare. The result is computed on the first
// successful call and reused for the life of the instance. Units that cannot
// be resolved do not stop discovery; they are kept in Failures.
type Discovery struct {
	roots      []string
	extensions []string
	units      UnitResolver
	files      *utils.FileProcessor
	logger     *zap.Logger

	mu         sync.Mutex
	discovered bool
	typeIDs    []string
	types      map[string]*models.TypeDeclarations
	failures   []errors.Error
}

// NewDiscovery creates a discovery over roots, recognizing DefaultExtension
func NewDiscovery(roots []string, units UnitResolver, logger *zap.Logger) *Discovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discovery{
		roots:      append([]string(nil), roots...),
		extensions: []string{DefaultExtension},
		units:      units,
		files:      utils.NewFileProcessor(),
		logger:     logger,
	}
}

// SanitizeExtension lowercases an extension, keeps letters, digits and dots,
// and adds the leading dot. It returns "" when nothing usable remains.
func SanitizeExtension(ext string) string {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			return unicode.ToLower(r)
		}
		return -1
	}, ext)
	if strings.Trim(sanitized, ".") == "" {
		return ""
	}
	if !strings.HasPrefix(sanitized, ".") {
		sanitized = "." + sanitized
	}
	return sanitized
}

// Roots returns the configured roots in order
func (d *Discovery) Roots() []string {
	return append([]string(nil), d.roots...)
}

// AddExtension recognizes another extension. It does not affect a result that
// was already discovered.
func (d *Discovery) AddExtension(ext string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ext = SanitizeExtension(ext)
	if ext == "" {
		return
	}
	for _, existing := range d.extensions {
		if existing == ext {
			return
		}
	}
	d.extensions = append(d.extensions, ext)
}

// RemoveExtension stops recognizing an extension. It does not affect a result
// that was already discovered.
func (d *Discovery) RemoveExtension(ext string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ext = SanitizeExtension(ext)
	for i, existing := range d.extensions {
		if existing == ext {
			d.extensions = append(d.extensions[:i], d.extensions[i+1:]...)
			return
		}
	}
}

// Extensions returns the recognized extensions
func (d *Discovery) Extensions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.extensions...)
}

// Discover returns the sorted identifiers of every resource-marked type
// reachable from the roots.
func (d *Discovery) Discover() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.discovered {
		return append([]string(nil), d.typeIDs...), nil
	}

	if len(d.roots) == 0 {
		return nil, errors.ConfigurationError("roots", "no source roots configured").
			WithSuggestion("Pass one or more directories or set 'roots' in restmeta.yaml")
	}

	paths, err := d.enumerate()
	if err != nil {
		return nil, err
	}

	types, failures := d.load(paths)

	ids := make([]string, 0, len(types))
	for id := range types {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	d.typeIDs = ids
	d.types = types
	d.failures = failures
	d.discovered = true

	d.logger.Debug("discovery complete",
		zap.Strings("roots", d.roots),
		zap.Strings("extensions", d.extensions),
		zap.Int("units", len(paths)),
		zap.Int("resources", len(ids)),
		zap.Int("failures", len(failures)))

	return append([]string(nil), ids...), nil
}

// Lookup returns the declarations of a discovered resource type, with methods
// from every unit of its package merged in.
func (d *Discovery) Lookup(id string) (*models.TypeDeclarations, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	decl, ok := d.types[id]
	return decl, ok
}

// Failures returns what discovery could not attribute to a resource type:
// units that failed to resolve and declaration errors on types that are not
// resource-marked. It is empty before the first successful Discover.
func (d *Discovery) Failures() []errors.Error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]errors.Error(nil), d.failures...)
}

// enumerate lists matching units under every root, each path once, roots in order
func (d *Discovery) enumerate() ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	for _, root := range d.roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.WrapFileSystemError("read root", root, err)
		}

		var matched []string
		if info.IsDir() {
			matched, err = d.files.WalkFiles(root, utils.FileWalkOptions{
				FileFilter:      utils.ExtensionFileFilter(d.extensions),
				DirectoryFilter: utils.DefaultDirectoryFilter(),
			})
			if err != nil {
				return nil, errors.WrapFileSystemError("walk", root, err)
			}
		} else if utils.ExtensionFileFilter(d.extensions)(root, utils.FileInfoEntry(info)) {
			matched = []string{root}
		}

		if len(matched) == 0 {
			d.logger.Debug("no source units under root", zap.String("root", root))
		}

		for _, path := range matched {
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			paths = append(paths, path)
		}
	}

	return paths, nil
}

// load resolves every unit and keeps the resource types declared in them.
// Declaration failures stay on their resource type; everything else that went
// wrong is returned alongside.
func (d *Discovery) load(paths []string) (map[string]*models.TypeDeclarations, []errors.Error) {
	loaded := make(map[string]bool, len(paths))
	for _, path := range paths {
		loaded[filepath.Clean(path)] = true
	}

	var failures []errors.Error
	declared := make(map[string]*models.TypeDeclarations)
	var order []string
	methods := make(map[string][]models.MethodDeclarations)

	for _, path := range paths {
		unit, err := d.units.ResolveUnit(path)
		if err != nil {
			d.logger.Debug("unit skipped", zap.String("path", path), zap.Error(err))
			failures = append(failures, asErrors(err, path)...)
			continue
		}

		for _, decl := range unit.Types {
			if existing, dup := declared[decl.ID]; dup {
				d.logger.Debug("type declared twice, keeping first",
					zap.String("type", decl.ID),
					zap.String("kept", existing.File),
					zap.String("ignored", decl.File))
				continue
			}
			declared[decl.ID] = decl
			order = append(order, decl.ID)
		}

		for receiver, receiverMethods := range unit.Methods {
			id := unit.QualifiedName(receiver)
			methods[id] = append(methods[id], receiverMethods...)
		}
	}

	resources := make(map[string]*models.TypeDeclarations)
	for _, id := range order {
		decl := declared[id]
		if !loaded[filepath.Clean(decl.File)] {
			continue
		}
		merged := decl.Clone()
		merged.Methods = append(merged.Methods, methods[id]...)

		if !merged.IsResource() {
			if err := merged.Err(); err != nil {
				failures = append(failures, asErrors(err, merged.File)...)
			}
			continue
		}
		resources[id] = merged
	}

	return resources, failures
}

// asErrors keeps typed errors, flattens collections and wraps anything else as
// a file system error
func asErrors(err error, path string) []errors.Error {
	switch typed := err.(type) {
	case *errors.MultipleErrors:
		return typed.Errors
	case errors.Error:
		return []errors.Error{typed}
	default:
		return []errors.Error{errors.WrapFileSystemError("load", path, err)}
	}
}
