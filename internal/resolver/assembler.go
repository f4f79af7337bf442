package resolver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/models"
	"github.com/toyz/restmeta/pkg/restmeta"
)

// Assembler produces the ClassMetaData of one resource type by running the
// route compiler, the handle binder and the final handle check.
type Assembler struct {
	compiler *RouteCompiler
	binder   *HandleBinder
	policy   HandlePolicy
	logger   *zap.Logger
}

// NewAssembler creates an assembler. A nil policy requires no handles.
func NewAssembler(policy HandlePolicy, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = NoHandleRequired
	}
	return &Assembler{
		compiler: NewRouteCompiler(logger),
		binder:   NewHandleBinder(logger),
		policy:   policy,
		logger:   logger,
	}
}

// Assemble compiles one type. It returns (nil, false, nil) when the type is not
// a resource. A resource carrying declarations that did not parse fails with
// those errors. The returned metadata is frozen.
func (a *Assembler) Assemble(decl *models.TypeDeclarations) (*restmeta.ClassMetaData, bool, error) {
	markers := decl.OfType(annotations.ResourceAnnotation)
	if len(markers) == 0 {
		return nil, false, nil
	}

	if err := decl.Err(); err != nil {
		return nil, true, err
	}

	routeDecls := decl.Routes()
	if len(routeDecls) == 0 {
		return nil, true, errors.NewMetadataError(errors.NoRoutesDeclaredErrorCode, decl.ID,
			"resource declares no routes").
			WithLocation(location(decl.Location)).
			WithSuggestion("Add at least one //rest::route declaration to the type")
	}

	class := restmeta.NewClassMetaData(decl.ID)
	for _, marker := range markers {
		if representations, ok := listValue(marker, keyRepresentations); ok {
			for _, format := range representations {
				class.AddRepresentation(format)
			}
		}
	}

	if err := a.compiler.Compile(class, routeDecls); err != nil {
		return nil, true, err
	}

	// Routes are inserted in declaration order, so index i pairs with routeDecls[i]
	for i, route := range class.Routes() {
		route.RequiresHandle = a.policy(route, routeDecls[i])
	}

	if err := a.binder.Bind(class, decl.Methods); err != nil {
		return nil, true, err
	}

	for i, route := range class.Routes() {
		if route.NeedsHandleCall() && !route.HasHandleCall() {
			return nil, true, errors.NewMetadataError(errors.MissingRequiredHandleErrorCode, decl.ID,
				fmt.Sprintf("route '%s' requires a handle method but none is bound", route.Name)).
				WithRoute(route.Name).
				WithLocation(location(routeDecls[i].Location)).
				WithSuggestion(fmt.Sprintf("Add //rest::handle %s to an exported method of %s", route.Name, decl.Name))
		}
	}

	class.Freeze()
	a.logger.Debug("assembled resource",
		zap.String("type", class.ClassName),
		zap.Int("routes", len(routeDecls)),
		zap.String("origin", class.OriginRouteName))
	return class, true, nil
}

