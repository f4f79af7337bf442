package resolver

import (
	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/internal/errors"
)

// Sentinels for errors.Is. Compile failures are *errors.MetadataError values
// carrying the same code plus the type, route and method involved.
var (
	ErrConfiguration          = errors.New(errors.ConfigurationErrorCode, "configuration error")
	ErrEmptyRouteName         = errors.New(errors.EmptyRouteNameErrorCode, "route name is empty")
	ErrDuplicateRouteName     = errors.New(errors.DuplicateRouteNameErrorCode, "route name is already declared")
	ErrInvalidVerb            = errors.New(errors.InvalidVerbErrorCode, "invalid verb")
	ErrMultipleOriginRoutes   = errors.New(errors.MultipleOriginRoutesErrorCode, "more than one origin route")
	ErrMissingRoutePattern    = errors.New(errors.MissingRoutePatternErrorCode, "route pattern is missing")
	ErrNoRoutesDeclared       = errors.New(errors.NoRoutesDeclaredErrorCode, "resource declares no routes")
	ErrEmptyHandleTarget      = errors.New(errors.EmptyHandleTargetErrorCode, "handle target is empty")
	ErrUnknownHandleTarget    = errors.New(errors.UnknownHandleTargetErrorCode, "handle targets an unknown route")
	ErrDuplicateHandleBinding = errors.New(errors.DuplicateHandleBindingErrorCode, "route is already handled")
	ErrMissingRequiredHandle  = errors.New(errors.MissingRequiredHandleErrorCode, "route requires a handle")
)

func location(loc annotations.SourceLocation) errors.SourceLocation {
	return errors.SourceLocation{File: loc.File, Line: loc.Line, Column: loc.Column}
}
