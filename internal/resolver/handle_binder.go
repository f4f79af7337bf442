package resolver

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/internal/models"
	"github.com/toyz/restmeta/pkg/restmeta"
)

// HandleBinder binds handle declarations on methods to compiled routes
type HandleBinder struct {
	logger *zap.Logger
}

// NewHandleBinder creates a handle binder
func NewHandleBinder(logger *zap.Logger) *HandleBinder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HandleBinder{logger: logger}
}

// Bind walks the exported methods in order and binds every handle declaration
// to its target route. Routes must already be compiled into class.
func (b *HandleBinder) Bind(class *restmeta.ClassMetaData, methods []models.MethodDeclarations) error {
	for _, method := range methods {
		if !method.Exported {
			if len(handleDeclarations(method)) > 0 {
				b.logger.Debug("ignoring handle on unexported method",
					zap.String("type", class.ClassName),
					zap.String("method", method.Name))
			}
			continue
		}

		for _, decl := range handleDeclarations(method) {
			if err := b.bindOne(class, method, decl); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *HandleBinder) bindOne(class *restmeta.ClassMetaData, method models.MethodDeclarations, decl *annotations.ParsedAnnotation) error {
	loc := location(decl.Location)

	target, ok := stringValue(decl, keyFor)
	target = strings.TrimSpace(target)
	if !ok || target == "" {
		return errors.NewMetadataError(errors.EmptyHandleTargetErrorCode, class.ClassName,
			fmt.Sprintf("method '%s' declares a handle without a route name", method.Name)).
			WithMethod(method.Name).
			WithLocation(loc).
			WithSuggestion("Name the route the method handles: //rest::handle <route>")
	}

	route, exists := class.Route(target)
	if !exists {
		return errors.NewMetadataError(errors.UnknownHandleTargetErrorCode, class.ClassName,
			fmt.Sprintf("method '%s' handles unknown route '%s'", method.Name, target)).
			WithRoute(target).
			WithMethod(method.Name).
			WithLocation(loc).
			WithSuggestion("Declared routes: " + strings.Join(class.RouteNames(), ", "))
	}

	if route.HasHandleCall() {
		return errors.NewMetadataError(errors.DuplicateHandleBindingErrorCode, class.ClassName,
			fmt.Sprintf("route '%s' is handled by both '%s' and '%s'", target, route.HandleMethodName, method.Name)).
			WithRoute(target).
			WithMethod(method.Name).
			WithLocation(loc)
	}

	if err := route.BindHandle(method.Name); err != nil {
		return errors.Wrap(errors.DuplicateHandleBindingErrorCode, class.ClassName, err)
	}

	b.logger.Debug("bound handle",
		zap.String("type", class.ClassName),
		zap.String("route", target),
		zap.String("method", method.Name))
	return nil
}

func handleDeclarations(method models.MethodDeclarations) []*annotations.ParsedAnnotation {
	var result []*annotations.ParsedAnnotation
	for _, decl := range method.Declarations {
		if decl.Type == annotations.HandleAnnotation {
			result = append(result, decl)
		}
	}
	return result
}
