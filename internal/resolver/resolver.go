package resolver

import (
	"go.uber.org/zap"

	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/utils"
	"github.com/toyz/restmeta/pkg/restmeta"
)

// Options configures a Resolver
type Options struct {
	Roots      []string     // ordered source roots
	Extensions []string     // recognized unit extensions, DefaultExtension when empty
	Units      UnitResolver // declaration source
	Policy     HandlePolicy // handle-required predicate, NoHandleRequired when nil
	CacheSize  int          // compiled types kept in memory
	Logger     *zap.Logger
}

// Resolver compiles the metadata of resource types found under a set of roots.
// Successfully compiled types are cached; failures are recomputed on every call.
type Resolver struct {
	discovery *Discovery
	assembler *Assembler
	cache     *utils.Cache[string, *restmeta.ClassMetaData]
	logger    *zap.Logger
}

// New creates a resolver
func New(opts Options) (*Resolver, error) {
	if opts.Units == nil {
		return nil, errors.ConfigurationError("units", "no declaration source configured")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	discovery := NewDiscovery(opts.Roots, opts.Units, logger.Named("discovery"))
	if len(opts.Extensions) > 0 {
		discovery.RemoveExtension(DefaultExtension)
		for _, ext := range opts.Extensions {
			discovery.AddExtension(ext)
		}
	}

	return &Resolver{
		discovery: discovery,
		assembler: NewAssembler(opts.Policy, logger.Named("assembler")),
		cache:     utils.NewSizedCache[string, *restmeta.ClassMetaData](opts.CacheSize),
		logger:    logger,
	}, nil
}

// Discovery returns the unit discovery backing this resolver
func (r *Resolver) Discovery() *Discovery {
	return r.discovery
}

// Resolve returns the metadata of one type. The boolean is false when the type
// is not a discovered resource.
func (r *Resolver) Resolve(typeID string) (*restmeta.ClassMetaData, bool, error) {
	if cached, ok := r.cache.Get(typeID); ok {
		return cached, true, nil
	}

	if _, err := r.discovery.Discover(); err != nil {
		return nil, false, err
	}

	decl, ok := r.discovery.Lookup(typeID)
	if !ok {
		return nil, false, nil
	}

	class, isResource, err := r.assembler.Assemble(decl)
	if err != nil || !isResource {
		return nil, isResource, err
	}

	r.cache.Set(typeID, class)
	return class, true, nil
}

// Compile discovers every resource type and compiles each one. The table holds
// every type that compiled; the error aggregates the ones that did not along
// with the discovery failures.
func (r *Resolver) Compile() (*restmeta.Table, error) {
	ids, err := r.discovery.Discover()
	if err != nil {
		return nil, err
	}

	var failures *errors.MultipleErrors
	classes := make([]*restmeta.ClassMetaData, 0, len(ids))

	for _, id := range ids {
		class, ok, err := r.Resolve(id)
		if err != nil {
			r.logger.Debug("type failed to compile", zap.String("type", id), zap.Error(err))
			for _, e := range asErrors(err, id) {
				errors.AddToMultiple(&failures, e)
			}
			continue
		}
		if ok {
			classes = append(classes, class)
		}
	}

	for _, e := range r.discovery.Failures() {
		errors.AddToMultiple(&failures, e)
	}

	r.logger.Debug("compilation finished",
		zap.Int("compiled", len(classes)),
		zap.Int("failed", len(ids)-len(classes)))

	return restmeta.NewTable(classes...), failures.ErrorOrNil()
}
