package resolver

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/internal/errors"
	"github.com/toyz/restmeta/pkg/restmeta"
)

// RouteCompiler turns the route declarations of one resource type into
// validated RouteMetaData records.
type RouteCompiler struct {
	logger *zap.Logger
}

// NewRouteCompiler creates a route compiler
func NewRouteCompiler(logger *zap.Logger) *RouteCompiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteCompiler{logger: logger}
}

// SanitizeRouteName keeps letters, digits, underscores and whitespace, then
// trims surrounding whitespace.
func SanitizeRouteName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, name)
	return strings.TrimSpace(sanitized)
}

// Compile adds one route per declaration to class, in declaration order. The
// first violation aborts compilation.
func (c *RouteCompiler) Compile(class *restmeta.ClassMetaData, decls []*annotations.ParsedAnnotation) error {
	for _, decl := range decls {
		route, origin, err := c.compileRoute(class, decl)
		if err != nil {
			return err
		}

		if origin && class.OriginRouteName != "" {
			return errors.NewMetadataError(errors.MultipleOriginRoutesErrorCode, class.ClassName,
				fmt.Sprintf("route '%s' is marked as origin but '%s' already is", route.Name, class.OriginRouteName)).
				WithRoute(route.Name).
				WithLocation(location(decl.Location)).
				WithSuggestion("Remove -Origin from all but one route")
		}

		if err := class.AddRoute(route); err != nil {
			return errors.NewMetadataError(errors.DuplicateRouteNameErrorCode, class.ClassName, err.Error()).
				WithRoute(route.Name).
				WithLocation(location(decl.Location))
		}
		if origin {
			if err := class.SetOriginRoute(route.Name); err != nil {
				return errors.Wrap(errors.UnknownErrorCode, class.ClassName, err)
			}
		}

		c.logger.Debug("compiled route",
			zap.String("type", class.ClassName),
			zap.String("route", route.Name),
			zap.String("pattern", route.RoutePattern),
			zap.Strings("verbs", restmeta.VerbStrings(route.Verbs)),
			zap.Bool("origin", origin))
	}

	return nil
}

func (c *RouteCompiler) compileRoute(class *restmeta.ClassMetaData, decl *annotations.ParsedAnnotation) (*restmeta.RouteMetaData, bool, error) {
	loc := location(decl.Location)

	rawName, _ := stringValue(decl, keyName)
	name := SanitizeRouteName(rawName)
	if name == "" {
		return nil, false, errors.NewMetadataError(errors.EmptyRouteNameErrorCode, class.ClassName,
			fmt.Sprintf("route name '%s' is empty after removing disallowed characters", rawName)).
			WithLocation(loc).
			WithSuggestion("Route names may contain letters, digits, underscores and spaces: -Name=get")
	}

	if class.HasRoute(name) {
		return nil, false, errors.NewMetadataError(errors.DuplicateRouteNameErrorCode, class.ClassName,
			fmt.Sprintf("route '%s' is declared more than once", name)).
			WithRoute(name).
			WithLocation(loc).
			WithSuggestion("Route names must be unique within a resource")
	}

	route := &restmeta.RouteMetaData{Name: name}

	if _, declared := lookup(decl, keyVerbs); declared {
		verbs, err := c.compileVerbs(decl)
		if err != nil {
			return nil, false, errors.NewMetadataError(errors.InvalidVerbErrorCode, class.ClassName, err.Error()).
				WithRoute(name).
				WithLocation(loc).
				WithSuggestion("Allowed verbs: " + strings.Join(restmeta.VerbStrings(restmeta.AllVerbs), ", "))
		}
		route.Verbs = verbs
	}

	route.IsCollection = boolValue(decl, keyCollection)

	pattern, _ := stringValue(decl, keyPattern)
	if strings.TrimSpace(pattern) == "" {
		return nil, false, errors.NewMetadataError(errors.MissingRoutePatternErrorCode, class.ClassName,
			fmt.Sprintf("route '%s' has no pattern", name)).
			WithRoute(name).
			WithLocation(loc).
			WithSuggestion("Add -Pattern=/path to the route")
	}
	route.RoutePattern = pattern

	if conditions, ok := mapValue(decl, keyConditions); ok {
		route.RouteConditions = conditions
	}
	if expose, ok := listValue(decl, keyExpose); ok {
		route.Expose = expose
	}
	route.AllowOptionsRequest = boolValue(decl, keyAllowOptions)
	route.ActionClassName, _ = stringValue(decl, keyAction)

	return route, boolValue(decl, keyOrigin), nil
}

// compileVerbs validates declared verbs and removes duplicates, keeping order
func (c *RouteCompiler) compileVerbs(decl *annotations.ParsedAnnotation) ([]restmeta.Verb, error) {
	raw, ok := listValue(decl, keyVerbs)
	if !ok {
		value, _ := lookup(decl, keyVerbs)
		s, isString := value.(string)
		if !isString {
			return nil, fmt.Errorf("verbs must be a list, got %T", value)
		}
		raw, _ = annotations.ConvertToStringSlice(s)
	}

	verbs := make([]restmeta.Verb, 0, len(raw))
	seen := make(map[restmeta.Verb]bool, len(raw))
	for _, v := range raw {
		verb, err := restmeta.ParseVerb(v)
		if err != nil {
			return nil, err
		}
		if !seen[verb] {
			seen[verb] = true
			verbs = append(verbs, verb)
		}
	}
	return verbs, nil
}
